// Package activity holds the event activity tensor: the annual rate of every
// event, apportioned over spawn bins, ground-motion branches and recurrence
// models.
//
// Axes are ordered (spawn, branch, recurrence model, event). Storage is a
// single flat slice laid out with capacity strides, so axes can grow inside
// the planned capacity without moving data.
package activity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/dunkgray/eqrm/internal/source"
)

// DefaultMaxCells is the default cell ceiling (512 MiB of float64).
const DefaultMaxCells = 1 << 26

const (
	// conservationTol is the relative tolerance of the total-rate assertion.
	conservationTol = 1e-8
	weightSumTol    = 1e-10
)

// Policy decides what an unweighted logic split writes into branch slots.
type Policy int

const (
	// Replicate copies the raw rate into every branch slot. The total is
	// not conserved; use it for inspection only.
	Replicate Policy = iota
	// EqualShare divides the rate evenly over the source's branches.
	EqualShare
)

func (p Policy) String() string {
	switch p {
	case Replicate:
		return "replicate"
	case EqualShare:
		return "equal_share"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy maps a configuration value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "replicate":
		return Replicate, nil
	case "equal_share":
		return EqualShare, nil
	}
	return 0, fmt.Errorf("activity: unknown unweighted policy %q", s)
}

type config struct {
	maxCells int
	policy   Policy
}

// Option configures a Tensor.
type Option func(*config)

// WithMaxCells sets the cell ceiling checked before every allocation.
func WithMaxCells(n int) Option {
	return func(c *config) { c.maxCells = n }
}

// WithUnweightedPolicy sets the behaviour of an unweighted logic split.
func WithUnweightedPolicy(p Policy) Option {
	return func(c *config) { c.policy = p }
}

// Tensor is the event activity tensor. It is not safe for concurrent use.
type Tensor struct {
	cfg  config
	dims Dims
	cap  Dims
	data []float64

	split   bool
	spawned bool
}

// New allocates a (1, 1, 1, events) tensor of zero rate.
func New(events int, opts ...Option) (*Tensor, error) {
	return NewWithCapacity(Dims{Spawn: 1, Branch: 1, Recurrence: 1, Event: events}, opts...)
}

// NewWithCapacity allocates storage for capacity once. The tensor starts as
// (1, 1, 1, capacity.Event) and grows inside capacity without reallocating.
func NewWithCapacity(capacity Dims, opts ...Option) (*Tensor, error) {
	cfg := config{maxCells: DefaultMaxCells}
	for _, o := range opts {
		o(&cfg)
	}
	if capacity.Event < 0 {
		return nil, fmt.Errorf("%w: %d events", ErrShape, capacity.Event)
	}
	capacity = capacity.union(Dims{Spawn: 1, Branch: 1, Recurrence: 1})
	t := &Tensor{cfg: cfg, dims: Dims{Spawn: 1, Branch: 1, Recurrence: 1, Event: capacity.Event}}
	if err := t.allocate(capacity); err != nil {
		return nil, err
	}
	return t, nil
}

// allocate moves storage to the given capacity after the ceiling check.
func (t *Tensor) allocate(capacity Dims) error {
	n, ok := capacity.Cells()
	if !ok || n > t.cfg.maxCells {
		return fmt.Errorf("%w: %v needs more than %d cells", ErrTooLarge, capacity, t.cfg.maxCells)
	}
	data := make([]float64, n)
	if t.data != nil {
		old := *t
		for s := range t.dims.Spawn {
			for b := range t.dims.Branch {
				for r := range t.dims.Recurrence {
					src := old.offset(s, b, r, 0)
					dst := ((s*capacity.Branch+b)*capacity.Recurrence + r) * capacity.Event
					copy(data[dst:dst+t.dims.Event], old.data[src:src+t.dims.Event])
				}
			}
		}
	}
	t.data = data
	t.cap = capacity
	return nil
}

// grow extends the logical axes to at least d.
func (t *Tensor) grow(d Dims) error {
	want := t.dims.union(d)
	if !want.fits(t.cap) {
		if err := t.allocate(want.union(t.cap)); err != nil {
			return err
		}
	}
	t.dims = want
	return nil
}

func (t *Tensor) offset(s, b, r, e int) int {
	return ((s*t.cap.Branch+b)*t.cap.Recurrence+r)*t.cap.Event + e
}

// row returns the event vector at (s, b, r).
func (t *Tensor) row(s, b, r int) []float64 {
	o := t.offset(s, b, r, 0)
	return t.data[o : o+t.dims.Event]
}

// Dims returns the logical axis sizes.
func (t *Tensor) Dims() Dims { return t.dims }

// Capacity returns the allocated axis sizes.
func (t *Tensor) Capacity() Dims { return t.cap }

// NumSpawn returns the size of the spawn axis.
func (t *Tensor) NumSpawn() int { return t.dims.Spawn }

// At returns the rate at one position.
func (t *Tensor) At(s, b, r, e int) (float64, error) {
	d := t.dims
	if s < 0 || s >= d.Spawn || b < 0 || b >= d.Branch || r < 0 || r >= d.Recurrence || e < 0 || e >= d.Event {
		return 0, fmt.Errorf("%w: (%d, %d, %d, %d) outside %v", ErrOutOfRange, s, b, r, e, d)
	}
	return t.data[t.offset(s, b, r, e)], nil
}

// Sum returns the total rate.
func (t *Tensor) Sum() float64 {
	var total float64
	t.each(func(row []float64) { total += floats.Sum(row) })
	return total
}

// EventRates collapses every axis but the event axis.
func (t *Tensor) EventRates() []float64 {
	out := make([]float64, t.dims.Event)
	t.each(func(row []float64) { floats.Add(out, row) })
	return out
}

// Flatten returns the rates in row-major order over the logical axes.
func (t *Tensor) Flatten() []float64 {
	n, _ := t.dims.Cells()
	out := make([]float64, 0, n)
	t.each(func(row []float64) { out = append(out, row...) })
	return out
}

// each visits the event rows in row-major order.
func (t *Tensor) each(f func(row []float64)) {
	for s := range t.dims.Spawn {
		for b := range t.dims.Branch {
			for r := range t.dims.Recurrence {
				f(t.row(s, b, r))
			}
		}
	}
}

// SetEventActivity writes rates[r][j] at recurrence model r and event
// events[j] of spawn 0, branch 0. A nil events covers the whole event axis.
// The recurrence axis grows to len(rates).
func (t *Tensor) SetEventActivity(rates [][]float64, events []int) error {
	if t.split || t.spawned {
		return ErrSealed
	}
	width := len(events)
	if events == nil {
		width = t.dims.Event
	}
	for r, row := range rates {
		if len(row) != width {
			return fmt.Errorf("%w: rate row %d has %d values for %d events", ErrShape, r, len(row), width)
		}
		for _, v := range row {
			if v < 0 || math.IsNaN(v) {
				return fmt.Errorf("%w: %v in row %d", ErrNegativeRate, v, r)
			}
		}
	}
	for _, e := range events {
		if e < 0 || e >= t.dims.Event {
			return fmt.Errorf("%w: %d (events %d)", ErrOutOfRange, e, t.dims.Event)
		}
	}
	if err := t.grow(Dims{Recurrence: len(rates)}); err != nil {
		return err
	}
	for r, vals := range rates {
		row := t.row(0, 0, r)
		if events == nil {
			copy(row, vals)
			continue
		}
		for j, e := range events {
			row[e] = vals[j]
		}
	}
	return nil
}

// GroundMotionModelLogicSplit apportions the rate of every event owned by a
// source over that source's branches. With applyWeights each branch slot
// receives weight times the rate, weights normalised per source, and the
// total is conserved. Without it the unweighted policy applies. Events no
// source owns keep their rate in branch 0.
func (t *Tensor) GroundMotionModelLogicSplit(model source.Model, applyWeights bool) error {
	if t.split {
		return fmt.Errorf("%w: logic split already applied", ErrSealed)
	}
	weights := make([][]float64, len(model))
	owner := make(map[int]int)
	for i, s := range model {
		w, err := t.branchWeights(s, applyWeights)
		if err != nil {
			return err
		}
		weights[i] = w
		for _, e := range s.EventIndexes() {
			if e < 0 || e >= t.dims.Event {
				return fmt.Errorf("%w: source %q index %d (events %d)", ErrOutOfRange, s.Name, e, t.dims.Event)
			}
			if prev, taken := owner[e]; taken {
				return fmt.Errorf("%w: event %d in sources %d and %d", ErrOverlap, e, prev, i)
			}
			owner[e] = i
		}
	}
	if err := t.grow(Dims{Branch: model.MaxBranches()}); err != nil {
		return err
	}

	before := t.Sum()
	for i, s := range model {
		w := weights[i]
		for sp := range t.dims.Spawn {
			for r := range t.dims.Recurrence {
				base := t.row(sp, 0, r)
				// slot 0 is the source for every branch, so it is written last
				for b := len(w) - 1; b >= 0; b-- {
					dst := t.row(sp, b, r)
					for _, e := range s.EventIndexes() {
						dst[e] = w[b] * base[e]
					}
				}
			}
		}
	}
	t.split = true
	if applyWeights || t.cfg.policy == EqualShare {
		t.assertConserved("logic split", before)
	}
	return nil
}

func (t *Tensor) branchWeights(s *source.Source, applyWeights bool) ([]float64, error) {
	raw := s.Weights()
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: source %q has no branch weights", ErrShape, s.Name)
	}
	for _, v := range raw {
		if v < 0 || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: source %q weight %v", ErrNegativeWeight, s.Name, v)
		}
	}
	w := make([]float64, len(raw))
	switch {
	case applyWeights:
		sum := floats.Sum(raw)
		if !(sum > 0) {
			return nil, fmt.Errorf("%w: source %q weights sum to %v", ErrWeightSum, s.Name, sum)
		}
		copy(w, raw)
		floats.Scale(1/sum, w)
	case t.cfg.policy == EqualShare:
		for i := range w {
			w[i] = 1 / float64(len(w))
		}
	default:
		for i := range w {
			w[i] = 1
		}
	}
	return w, nil
}

// Spawn replicates the spawn axis into len(weights) bins per existing bin,
// each scaled by its weight. Old bin s becomes bins s*K .. s*K+K-1.
func (t *Tensor) Spawn(weights []float64) error {
	if len(weights) == 0 {
		return fmt.Errorf("%w: no spawn weights", ErrShape)
	}
	for _, v := range weights {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: spawn weight %v", ErrNegativeWeight, v)
		}
	}
	if sum := floats.Sum(weights); math.Abs(sum-1) > weightSumTol {
		return fmt.Errorf("%w: spawn weights sum to %v", ErrWeightSum, sum)
	}
	k := len(weights)
	old := t.dims.Spawn
	if err := t.grow(Dims{Spawn: old * k}); err != nil {
		return err
	}

	before := t.Sum()
	// descending order keeps every source bin intact until it is read
	for s := old - 1; s >= 0; s-- {
		for b := range t.dims.Branch {
			for r := range t.dims.Recurrence {
				src := t.row(s, b, r)
				for j := k - 1; j >= 0; j-- {
					dst := t.row(s*k+j, b, r)
					for e := range dst {
						dst[e] = weights[j] * src[e]
					}
				}
			}
		}
	}
	t.spawned = true
	t.assertConserved("spawn", before)
	return nil
}

func (t *Tensor) assertConserved(op string, before float64) {
	after := t.Sum()
	if math.Abs(after-before) > conservationTol*math.Max(1, math.Abs(before)) {
		panic(fmt.Sprintf("activity: %s changed the total rate from %v to %v", op, before, after))
	}
}

func (t *Tensor) String() string {
	return fmt.Sprintf("activity.Tensor%v", t.dims)
}
