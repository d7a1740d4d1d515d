// Package generate samples synthetic event catalogs from zone and fault
// source descriptions.
//
// Every call takes its configuration by value and derives one random stream
// per source from Options.Seed, so results depend only on the inputs.
package generate

import (
	"errors"
	"math/rand/v2"

	"github.com/dunkgray/eqrm/internal/recurrence"
	"github.com/dunkgray/eqrm/internal/source"
)

var (
	// ErrGeneration is returned when a source cannot produce its events.
	ErrGeneration = errors.New("generate: generation failed")
	// ErrInvalidSource is returned for malformed source descriptions.
	ErrInvalidSource = errors.New("generate: invalid source")
)

// defaultSeed replaces a zero Options.Seed.
const defaultSeed uint64 = 1

// defaultMaxAttempts bounds rejection sampling per event.
const defaultMaxAttempts = 10000

// Options control one generation call.
type Options struct {
	Seed uint64
	// EventCounts, when set, overrides the per-source number of events.
	// It must then have one entry per source.
	EventCounts []int
	// FaultWidth, when positive, replaces the geometric fault width.
	FaultWidth float64
	// MaxAttempts bounds rejection sampling of zone centroids per event.
	MaxAttempts int
}

// Recurrence is the magnitude-frequency description shared by zones and faults.
type Recurrence struct {
	Models     []recurrence.Model
	Generation recurrence.Generation
}

func (o Options) eventCount(i int, r Recurrence) int {
	if len(o.EventCounts) > 0 {
		return o.EventCounts[i]
	}
	return r.Generation.Events
}

func (o Options) maxAttempts() int {
	if o.MaxAttempts > 0 {
		return o.MaxAttempts
	}
	return defaultMaxAttempts
}

// stream returns the random source of the i-th source of a kind.
func (o Options) stream(kind source.Kind, i int) *rand.Rand {
	seed := o.Seed
	if seed == 0 {
		seed = defaultSeed
	}
	return rand.New(rand.NewPCG(mix(seed), uint64(kind)<<32|uint64(i)))
}

// mix is the SplitMix64 finaliser.
func mix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func jitter(rng *rand.Rand, centre, delta float64) float64 {
	if delta == 0 {
		return centre
	}
	return centre + delta*(2*rng.Float64()-1)
}

func newSource(name string, kind source.Kind, eventType string, g source.Group, offset, n int) *source.Source {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = offset + i
	}
	return &source.Source{
		Name:             name,
		Kind:             kind,
		EventType:        eventType,
		BranchModels:     g.Models(),
		BranchWeights:    g.Weights(),
		Indexes:          idx,
		ScalingRule:      g.ScalingRule,
		ScalingFaultType: g.ScalingFaultType,
	}
}

// sampleMagnitudes draws n magnitudes and the activities they carry.
func sampleMagnitudes(rng *rand.Rand, r Recurrence, n int) ([]float64, [][]float64, error) {
	if n == 0 {
		rows := make([][]float64, len(r.Models))
		for i := range rows {
			rows[i] = []float64{}
		}
		return []float64{}, rows, nil
	}
	gen := r.Generation
	gen.Events = n
	mags, err := recurrence.Sample(rng, r.Models, gen)
	if err != nil {
		return nil, nil, err
	}
	lo, _, err := recurrence.Range(r.Models, gen)
	if err != nil {
		return nil, nil, err
	}
	act, err := recurrence.Activities(r.Models, mags, lo)
	if err != nil {
		return nil, nil, err
	}
	return mags, act, nil
}
