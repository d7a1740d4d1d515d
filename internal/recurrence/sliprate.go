package recurrence

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

const (
	// shearModulus of crustal rock in dyne/cm².
	shearModulus = 3e11
	// quadPoints is the Gauss-Legendre order per density piece.
	quadPoints = 64
)

// SeismicMoment returns the moment (dyne-cm) of an event of magnitude mw.
func SeismicMoment(mw float64) float64 {
	return math.Pow(10, 1.5*mw+16.05)
}

// AMinFromSlipRate balances the moment rate released by a fault of the given
// area (km²) and slip rate (mm/yr) against the mean moment of m, returning
// the annual rate of events above m.MinMag.
func AMinFromSlipRate(m Model, areaKm2, slipRateMmYr float64) (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	if areaKm2 < 0 || slipRateMmYr < 0 {
		return 0, fmt.Errorf("%w: area %v, slip rate %v", ErrInvalidModel, areaKm2, slipRateMmYr)
	}
	momentRate := shearModulus * areaKm2 * 1e10 * slipRateMmYr * 0.1

	var mean float64
	for _, p := range m.pieces() {
		if p[1] <= p[0] {
			continue
		}
		// Legendre nodes are interior, so each piece is integrated on its own side of a density jump.
		mean += quad.Fixed(func(x float64) float64 { return m.PDF(x) * SeismicMoment(x) }, p[0], p[1], quadPoints, nil, 0)
	}
	if mean == 0 {
		return 0, nil
	}
	return momentRate / mean, nil
}
