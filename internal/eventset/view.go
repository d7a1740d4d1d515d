package eventset

import (
	"fmt"
	"iter"
)

// View is a non-owning selection of rows of a parent catalog.
type View struct {
	parent *Catalog
	idx    []int
}

// Subset returns a view of the events at the given positions, in that order.
func (c *Catalog) Subset(idx []int) (*View, error) {
	sel := make([]int, len(idx))
	for j, i := range idx {
		if i < 0 || i >= c.n {
			return nil, fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, i, c.n)
		}
		sel[j] = i
	}
	return &View{parent: c, idx: sel}, nil
}

// Mask returns a view of the events whose mask entry is true.
func (c *Catalog) Mask(mask []bool) (*View, error) {
	if len(mask) != c.n {
		return nil, fmt.Errorf("%w: mask has %d entries, catalog %d", ErrShape, len(mask), c.n)
	}
	var sel []int
	for i, keep := range mask {
		if keep {
			sel = append(sel, i)
		}
	}
	return &View{parent: c, idx: sel}, nil
}

// Len returns the number of selected events.
func (v *View) Len() int { return len(v.idx) }

// Index returns the parent position of the j-th selected event.
func (v *View) Index(j int) int { return v.idx[j] }

// Event returns the j-th selected event; its Index is the parent position.
func (v *View) Event(j int) (Event, error) {
	if j < 0 || j >= len(v.idx) {
		return Event{}, fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, j, len(v.idx))
	}
	return v.parent.row(v.idx[j], v.idx[j]), nil
}

// Column gathers attribute a for the selected events.
func (v *View) Column(a Attribute) []float64 {
	src := v.parent.Column(a)
	if src == nil {
		return nil
	}
	out := make([]float64, len(v.idx))
	for j, i := range v.idx {
		out[j] = src[i]
	}
	return out
}

// All iterates over the selected events in view order.
func (v *View) All() iter.Seq2[int, Event] {
	return func(yield func(int, Event) bool) {
		for j, i := range v.idx {
			if !yield(j, v.parent.row(i, i)) {
				return
			}
		}
	}
}

// Materialize copies the selected events into a new owning catalog.
func (v *View) Materialize() *Catalog {
	return v.parent.gather(v.idx)
}
