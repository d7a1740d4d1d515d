package source

import (
	"fmt"

	"github.com/dunkgray/eqrm/internal/eventset"
)

// Merge concatenates two catalogs and their source models. The sources of b
// are re-based by len(catA); no event attribute is recomputed.
func Merge(catA, catB *eventset.Catalog, a, b Model) (*eventset.Catalog, Model, error) {
	if err := a.Validate(catA.Len()); err != nil {
		return nil, nil, fmt.Errorf("merge: first model: %w", err)
	}
	if err := b.Validate(catB.Len()); err != nil {
		return nil, nil, fmt.Errorf("merge: second model: %w", err)
	}
	offset := catA.Len()
	out := make(Model, 0, len(a)+len(b))
	out = append(out, a.Clone()...)
	for _, s := range b {
		c := s.Clone()
		for i := range c.Indexes {
			c.Indexes[i] += offset
		}
		out = append(out, c)
	}
	return eventset.Concat(catA, catB), out, nil
}
