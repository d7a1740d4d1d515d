// Package source holds the per-source records produced alongside an event
// catalog: which events each zone or fault owns, the ground-motion branch
// weights that apply to them, and their recurrence activities.
package source

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/dunkgray/eqrm/internal/eventset"
	"github.com/dunkgray/eqrm/internal/scaling"
)

// Kind tells zone sources from fault sources.
type Kind int

const (
	Zone Kind = iota
	Fault
)

func (k Kind) String() string {
	switch k {
	case Zone:
		return "zone"
	case Fault:
		return "fault"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Source is one zone or fault and the catalog events it generated.
type Source struct {
	Name      string
	Kind      Kind
	EventType string

	BranchModels  []string
	BranchWeights []float64

	// Indexes are catalog positions owned by this source.
	Indexes []int

	ScalingRule      string
	ScalingFaultType scaling.FaultType

	// Activities has one row per recurrence model and one column per entry
	// of Indexes.
	Activities [][]float64
}

// EventIndexes returns the catalog positions owned by s.
func (s *Source) EventIndexes() []int { return s.Indexes }

// Weights returns the raw branch weights.
func (s *Source) Weights() []float64 { return s.BranchWeights }

// NormalizedWeights returns the branch weights scaled to sum to one.
func (s *Source) NormalizedWeights() ([]float64, error) {
	w, err := normalize(s.BranchWeights)
	if err != nil {
		return nil, fmt.Errorf("source %q: %w", s.Name, err)
	}
	return w, nil
}

// Clone returns a deep copy of s.
func (s *Source) Clone() *Source {
	c := *s
	c.BranchModels = slices.Clone(s.BranchModels)
	c.BranchWeights = slices.Clone(s.BranchWeights)
	c.Indexes = slices.Clone(s.Indexes)
	if s.Activities != nil {
		c.Activities = make([][]float64, len(s.Activities))
		for i, row := range s.Activities {
			c.Activities[i] = slices.Clone(row)
		}
	}
	return &c
}

func normalize(w []float64) ([]float64, error) {
	if len(w) == 0 {
		return nil, fmt.Errorf("%w: no branches", ErrInvalidWeights)
	}
	for _, v := range w {
		if v < 0 {
			return nil, fmt.Errorf("%w: negative weight %v", ErrInvalidWeights, v)
		}
	}
	s := floats.Sum(w)
	if !(s > 0) {
		return nil, fmt.Errorf("%w: weights sum to %v", ErrInvalidWeights, s)
	}
	out := slices.Clone(w)
	floats.Scale(1/s, out)
	return out, nil
}

// Model is an ordered list of sources over one catalog.
type Model []*Source

// MaxBranches returns the largest branch count of any source.
func (m Model) MaxBranches() int {
	n := 0
	for _, s := range m {
		n = max(n, len(s.BranchWeights))
	}
	return n
}

// MaxRecurrenceModels returns the largest activity row count of any source.
func (m Model) MaxRecurrenceModels() int {
	n := 0
	for _, s := range m {
		n = max(n, len(s.Activities))
	}
	return n
}

// EventCount returns the number of events owned by any source.
func (m Model) EventCount() int {
	n := 0
	for _, s := range m {
		n += len(s.Indexes)
	}
	return n
}

// Validate checks that every index lies in [0, catalogLen), that no source
// lists an event twice and that no event is owned by two sources.
func (m Model) Validate(catalogLen int) error {
	owner := make(map[int]int)
	for si, s := range m {
		seen := make(map[int]struct{}, len(s.Indexes))
		for _, i := range s.Indexes {
			if i < 0 || i >= catalogLen {
				return fmt.Errorf("%w: source %q index %d (catalog %d)", ErrOutOfRange, s.Name, i, catalogLen)
			}
			if _, dup := seen[i]; dup {
				return fmt.Errorf("%w: source %q index %d", ErrDuplicateIndex, s.Name, i)
			}
			seen[i] = struct{}{}
			if prev, taken := owner[i]; taken {
				return fmt.Errorf("%w: event %d in sources %d and %d", ErrOverlap, i, prev, si)
			}
			owner[i] = si
		}
		for r, row := range s.Activities {
			if len(row) != len(s.Indexes) {
				return fmt.Errorf("%w: source %q activity row %d has %d values for %d events",
					eventset.ErrShape, s.Name, r, len(row), len(s.Indexes))
			}
		}
	}
	return nil
}

// Clone returns a deep copy of m.
func (m Model) Clone() Model {
	out := make(Model, len(m))
	for i, s := range m {
		out[i] = s.Clone()
	}
	return out
}
