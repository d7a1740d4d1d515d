// Package eventset implements the event catalog: a columnar table of N
// earthquake events whose attribute columns are always index-aligned.
//
// A Catalog owns its columns and is immutable after construction. Views
// select rows of a parent catalog without copying it.
package eventset

import (
	"encoding/json"
	"fmt"
	"iter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/dunkgray/eqrm/internal/rupture"
	"github.com/dunkgray/eqrm/internal/scaling"
)

// Catalog is a columnar set of events.
type Catalog struct {
	n    int
	cols [numAttributes][]float64
}

// Params holds per-event inputs for Create. Slices have length 1 or n.
type Params struct {
	CentroidLat []float64
	CentroidLon []float64
	Azimuth     []float64
	Dip         []float64

	// At least one of Mw and ML is required; the other is derived.
	Mw []float64
	ML []float64

	// Depth is the centroid depth; when empty it is derived from DepthTop.
	Depth    []float64
	DepthTop []float64

	// FaultWidth caps the scaling-law width; empty means unbounded.
	FaultWidth []float64

	// Width and Length override the scaling-law values.
	Width  []float64
	Length []float64

	FaultType   scaling.FaultType
	ScalingRule string
}

// ScenarioParams describes fixed ruptures to be repeated NumberOfEvents times.
type ScenarioParams struct {
	Params
	NumberOfEvents int
}

// Create builds a catalog from explicit rupture parameters, deriving every
// attribute not supplied.
func Create(p Params) (*Catalog, error) {
	mw, ml := p.Mw, p.ML
	switch {
	case len(mw) == 0 && len(ml) == 0:
		return nil, fmt.Errorf("%w: Mw or ML", rupture.ErrMissingInput)
	case len(mw) == 0:
		mw = mapSlice(ml, scaling.JohnstonMw)
	case len(ml) == 0:
		ml = mapSlice(mw, scaling.JohnstonML)
	}

	in := rupture.Input{
		CentroidLat: p.CentroidLat,
		CentroidLon: p.CentroidLon,
		Azimuth:     p.Azimuth,
		Dip:         p.Dip,
		Mw:          mw,
		Depth:       p.Depth,
		DepthTop:    p.DepthTop,
		FaultWidth:  p.FaultWidth,
		Width:       p.Width,
		Length:      p.Length,
		FaultType:   p.FaultType,
		Rule:        p.ScalingRule,
	}
	out, err := rupture.Synthesize(in)
	if err != nil {
		return nil, err
	}
	n := out.N
	if len(ml) > 1 && len(ml) != n {
		return nil, fmt.Errorf("%w: ML has %d values, expected 1 or %d", ErrShape, len(ml), n)
	}

	c := &Catalog{n: n}
	c.cols[Mw] = broadcast(mw, n)
	c.cols[ML] = broadcast(ml, n)
	c.cols[Dip] = broadcast(p.Dip, n)
	c.cols[Azimuth] = broadcast(p.Azimuth, n)
	c.cols[CentroidLat] = broadcast(p.CentroidLat, n)
	c.cols[CentroidLon] = broadcast(p.CentroidLon, n)
	c.cols[Depth] = out.Depth
	c.cols[DepthToTop] = out.DepthToTop
	c.cols[CentroidX] = out.CentroidX
	c.cols[CentroidY] = out.CentroidY
	c.cols[TraceStartLat] = out.TraceStartLat
	c.cols[TraceStartLon] = out.TraceStartLon
	c.cols[TraceEndLat] = out.TraceEndLat
	c.cols[TraceEndLon] = out.TraceEndLon
	c.cols[Length] = out.Length
	c.cols[Width] = out.Width
	c.cols[Area] = out.Area
	c.cols[FaultWidth] = out.FaultWidth
	c.cols[Recurrence] = make([]float64, n)
	return c, nil
}

// CreateScenario builds a catalog of fixed ruptures. Each rupture is repeated
// NumberOfEvents times (rupture-major order); zero means once.
func CreateScenario(p ScenarioParams) (*Catalog, error) {
	if p.NumberOfEvents < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, p.NumberOfEvents)
	}
	base, err := Create(p.Params)
	if err != nil {
		return nil, err
	}
	if p.NumberOfEvents <= 1 {
		return base, nil
	}
	idx := make([]int, 0, base.n*p.NumberOfEvents)
	for i := 0; i < base.n; i++ {
		for k := 0; k < p.NumberOfEvents; k++ {
			idx = append(idx, i)
		}
	}
	return base.gather(idx), nil
}

// FromColumns builds a catalog from explicit columns. Absent attributes are
// zero-filled; all supplied columns must share one length.
func FromColumns(cols map[Attribute][]float64) (*Catalog, error) {
	n := -1
	for a, v := range cols {
		if !a.valid() {
			return nil, fmt.Errorf("%w: %d", ErrUnknownAttribute, int(a))
		}
		if n == -1 {
			n = len(v)
		} else if len(v) != n {
			return nil, fmt.Errorf("%w: %s has %d values, expected %d", ErrShape, a, len(v), n)
		}
	}
	if n < 0 {
		n = 0
	}
	c := &Catalog{n: n}
	for _, a := range Attributes() {
		col := make([]float64, n)
		copy(col, cols[a])
		c.cols[a] = col
	}
	return c, nil
}

// Len returns the number of events.
func (c *Catalog) Len() int { return c.n }

// Column returns the storage of attribute a. Callers must not modify it.
func (c *Catalog) Column(a Attribute) []float64 {
	if !a.valid() {
		return nil
	}
	return c.cols[a]
}

// Event returns the i-th event.
func (c *Catalog) Event(i int) (Event, error) {
	if i < 0 || i >= c.n {
		return Event{}, fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, i, c.n)
	}
	return c.row(i, i), nil
}

// All iterates over events in catalog order.
func (c *Catalog) All() iter.Seq2[int, Event] {
	return func(yield func(int, Event) bool) {
		for i := 0; i < c.n; i++ {
			if !yield(i, c.row(i, i)) {
				return
			}
		}
	}
}

// Rows returns every event as a value.
func (c *Catalog) Rows() []Event {
	out := make([]Event, c.n)
	for i := range out {
		out[i] = c.row(i, i)
	}
	return out
}

// MarshalJSON encodes the catalog as an array of events.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Rows())
}

func (c *Catalog) String() string {
	return fmt.Sprintf("eventset.Catalog{events: %d}", c.n)
}

// Concat returns a new catalog holding the events of each input in order.
func Concat(cats ...*Catalog) *Catalog {
	out := &Catalog{}
	for _, c := range cats {
		out.n += c.n
	}
	for k := range out.cols {
		col := make([]float64, 0, out.n)
		for _, c := range cats {
			col = append(col, c.cols[k]...)
		}
		out.cols[k] = col
	}
	return out
}

// ApproxEqual reports whether a and b hold the same events, attribute by
// attribute, within an absolute or relative tolerance tol.
func ApproxEqual(a, b *Catalog, tol float64) bool {
	if a.n != b.n {
		return false
	}
	same := func(x, y float64) bool {
		if x == y {
			return true
		}
		return scalar.EqualWithinAbsOrRel(x, y, tol, tol)
	}
	for k := range a.cols {
		if !floats.EqualFunc(a.cols[k], b.cols[k], same) {
			return false
		}
	}
	return true
}

func (c *Catalog) gather(idx []int) *Catalog {
	out := &Catalog{n: len(idx)}
	for k := range c.cols {
		col := make([]float64, len(idx))
		for j, i := range idx {
			col[j] = c.cols[k][i]
		}
		out.cols[k] = col
	}
	return out
}

func broadcast(v []float64, n int) []float64 {
	out := make([]float64, n)
	if len(v) == 1 {
		for i := range out {
			out[i] = v[0]
		}
		return out
	}
	copy(out, v)
	return out
}

func mapSlice(v []float64, f func(float64) float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = f(x)
	}
	return out
}
