package activity

import (
	"fmt"
	"math/bits"

	"github.com/dunkgray/eqrm/internal/source"
)

// Dims are the axis sizes of a tensor.
type Dims struct {
	Spawn      int `json:"spawn"`
	Branch     int `json:"branch"`
	Recurrence int `json:"recurrence"`
	Event      int `json:"event"`
}

// Cells returns the product of the axis sizes; ok is false on overflow or a
// negative axis.
func (d Dims) Cells() (n int, ok bool) {
	p := uint64(1)
	for _, v := range [...]int{d.Spawn, d.Branch, d.Recurrence, d.Event} {
		if v < 0 {
			return 0, false
		}
		hi, lo := bits.Mul64(p, uint64(v))
		if hi != 0 || lo > uint64(maxInt) {
			return 0, false
		}
		p = lo
	}
	return int(p), true
}

func (d Dims) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", d.Spawn, d.Branch, d.Recurrence, d.Event)
}

// union is the axis-wise maximum of d and o.
func (d Dims) union(o Dims) Dims {
	return Dims{
		Spawn:      max(d.Spawn, o.Spawn),
		Branch:     max(d.Branch, o.Branch),
		Recurrence: max(d.Recurrence, o.Recurrence),
		Event:      max(d.Event, o.Event),
	}
}

func (d Dims) fits(capacity Dims) bool {
	return d.union(capacity) == capacity
}

const maxInt = int(^uint(0) >> 1)

// Plan sizes a tensor for events catalog rows split over model and spawned
// into len(spawnWeights) bins, so it can be allocated once.
func Plan(events int, model source.Model, spawnWeights []float64) Dims {
	return Dims{
		Spawn:      max(1, len(spawnWeights)),
		Branch:     max(1, model.MaxBranches()),
		Recurrence: max(1, model.MaxRecurrenceModels()),
		Event:      events,
	}
}
