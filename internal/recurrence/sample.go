package recurrence

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Generation controls how many magnitudes are drawn for a source and how.
type Generation struct {
	// MinMag truncates sampling from below.
	MinMag float64
	// Bins is the number of equal-probability strata.
	Bins int
	// Events is the number of magnitudes to draw.
	Events int
}

const bisectIterations = 64

// mixture is the weighted combination of a source's models truncated to
// [lo, hi].
type mixture struct {
	models []Model
	w      []float64
	base   []float64
	lo, hi float64
	mass   float64
}

// Range returns the sampling interval [lo, hi] for models under gen.
func Range(models []Model, gen Generation) (lo, hi float64, err error) {
	if len(models) == 0 {
		return 0, 0, fmt.Errorf("%w: no recurrence models", ErrInvalidModel)
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for i, m := range models {
		if err := m.Validate(); err != nil {
			return 0, 0, fmt.Errorf("model %d: %w", i, err)
		}
		lo = math.Min(lo, m.MinMag)
		hi = math.Max(hi, m.MaxMag)
	}
	lo = math.Max(lo, gen.MinMag)
	if !(hi > lo) {
		return 0, 0, fmt.Errorf("%w: sampling range [%v, %v]", ErrDegenerateRange, lo, hi)
	}
	return lo, hi, nil
}

func newMixture(models []Model, lo, hi float64) (*mixture, error) {
	mx := &mixture{models: models, w: Weights(models), lo: lo, hi: hi}
	mx.base = make([]float64, len(models))
	for i, m := range models {
		mx.base[i] = m.CDF(lo)
		mx.mass += mx.w[i] * (1 - mx.base[i])
	}
	if !(mx.mass > 0) {
		return nil, fmt.Errorf("%w: no probability mass in [%v, %v]", ErrDegenerateRange, lo, hi)
	}
	return mx, nil
}

func (mx *mixture) cdf(mag float64) float64 {
	var s float64
	for i, m := range mx.models {
		s += mx.w[i] * (m.CDF(mag) - mx.base[i])
	}
	return s / mx.mass
}

func (mx *mixture) pdf(mag float64) float64 {
	if mag < mx.lo || mag > mx.hi {
		return 0
	}
	var s float64
	for i, m := range mx.models {
		s += mx.w[i] * m.PDF(mag)
	}
	return s / mx.mass
}

// quantile inverts cdf by bisection.
func (mx *mixture) quantile(u float64) float64 {
	a, b := mx.lo, mx.hi
	for range bisectIterations {
		mid := 0.5 * (a + b)
		if mx.cdf(mid) < u {
			a = mid
		} else {
			b = mid
		}
	}
	return 0.5 * (a + b)
}

// Sample draws gen.Events magnitudes from the weighted mixture of models.
// Draws cycle through gen.Bins equal-probability strata so every part of
// the distribution is represented even for small samples.
func Sample(rng *rand.Rand, models []Model, gen Generation) ([]float64, error) {
	if gen.Events < 0 {
		return nil, fmt.Errorf("%w: %d events", ErrInvalidModel, gen.Events)
	}
	if gen.Events == 0 {
		return []float64{}, nil
	}
	lo, hi, err := Range(models, gen)
	if err != nil {
		return nil, err
	}
	mx, err := newMixture(models, lo, hi)
	if err != nil {
		return nil, err
	}
	bins := max(gen.Bins, 1)
	out := make([]float64, gen.Events)
	for i := range out {
		k := i % bins
		u := (float64(k) + rng.Float64()) / float64(bins)
		out[i] = mx.quantile(u)
	}
	return out, nil
}

// Activities returns, for every model, the annual rate carried by each
// sampled magnitude. Row r sums to Weight_r * RateAbove_r(lo); a model whose
// range holds none of the samples gets a zero row.
func Activities(models []Model, mags []float64, lo float64) ([][]float64, error) {
	out := make([][]float64, len(models))
	if len(mags) == 0 {
		for r := range out {
			out[r] = []float64{}
		}
		return out, nil
	}
	hi := floats.Max(mags)
	for _, m := range models {
		hi = math.Max(hi, m.MaxMag)
	}
	mx, err := newMixture(models, lo, hi)
	if err != nil {
		return nil, err
	}
	q := make([]float64, len(mags))
	for j, mag := range mags {
		q[j] = mx.pdf(mag)
	}
	w := Weights(models)
	for r, m := range models {
		row := make([]float64, len(mags))
		for j, mag := range mags {
			if q[j] > 0 {
				row[j] = m.PDF(mag) / q[j]
			}
		}
		if s := floats.Sum(row); s > 0 {
			floats.Scale(w[r]*m.RateAbove(lo)/s, row)
		}
		out[r] = row
	}
	return out, nil
}

// Weights returns the model weights normalised to sum to one. All-zero
// weights are treated as equal.
func Weights(models []Model) []float64 {
	w := make([]float64, len(models))
	for i, m := range models {
		w[i] = m.Weight
	}
	s := floats.Sum(w)
	if s <= 0 {
		for i := range w {
			w[i] = 1
		}
		s = float64(len(w))
	}
	if s > 0 {
		floats.Scale(1/s, w)
	}
	return w
}
