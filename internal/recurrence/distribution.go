// Package recurrence models how often earthquakes of a given magnitude occur
// on a source, and samples magnitudes from those models.
package recurrence

import (
	"fmt"
	"math"
	"strings"
)

// Distribution is the shape of a magnitude-frequency relation.
type Distribution int

const (
	BoundedGutenbergRichter Distribution = iota
	Characteristic
)

var distributionNames = [...]string{
	BoundedGutenbergRichter: "bounded_gutenberg_richter",
	Characteristic:          "characteristic",
}

// ParseDistribution maps a source-file distribution name to a Distribution.
func ParseDistribution(s string) (Distribution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bounded_gutenberg_richter", "":
		return BoundedGutenbergRichter, nil
	case "characteristic":
		return Characteristic, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDistribution, s)
}

func (d Distribution) String() string {
	if d < 0 || int(d) >= len(distributionNames) {
		return fmt.Sprintf("Distribution(%d)", int(d))
	}
	return distributionNames[d]
}

// MarshalText implements encoding.TextMarshaler.
func (d Distribution) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Distribution) UnmarshalText(b []byte) error {
	v, err := ParseDistribution(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// characteristicBox is the width in magnitude units of the characteristic
// plateau below MaxMag; its height equals the exponential density
// characteristicDrop units below MaxMag (Youngs & Coppersmith, 1985).
const (
	characteristicBox  = 0.5
	characteristicDrop = 1.5
)

// Model is one recurrence model of a source.
type Model struct {
	Distribution Distribution
	MinMag       float64
	MaxMag       float64
	// AMin is the annual rate of events with magnitude >= MinMag.
	AMin float64
	B    float64
	// SlipRate (mm/yr) derives AMin for faults when AMin is zero.
	SlipRate float64
	// Weight is the logic-tree weight of this model among its siblings.
	Weight float64
}

// Validate reports whether m can be evaluated.
func (m Model) Validate() error {
	switch {
	case math.IsNaN(m.MinMag) || math.IsNaN(m.MaxMag) || !(m.MaxMag > m.MinMag):
		return fmt.Errorf("%w: [%v, %v]", ErrDegenerateRange, m.MinMag, m.MaxMag)
	case m.Distribution == Characteristic && m.MaxMag-m.MinMag <= characteristicBox:
		return fmt.Errorf("%w: characteristic range [%v, %v] narrower than %v",
			ErrDegenerateRange, m.MinMag, m.MaxMag, characteristicBox)
	case !(m.B > 0):
		return fmt.Errorf("%w: b = %v", ErrInvalidModel, m.B)
	case m.AMin < 0 || m.SlipRate < 0 || m.Weight < 0:
		return fmt.Errorf("%w: negative rate, slip rate or weight", ErrInvalidModel)
	case m.Distribution != BoundedGutenbergRichter && m.Distribution != Characteristic:
		return fmt.Errorf("%w: %v", ErrUnknownDistribution, m.Distribution)
	}
	return nil
}

func (m Model) beta() float64 { return m.B * math.Ln10 }

// norm is the integral of the unnormalised density over [MinMag, MaxMag].
func (m Model) norm() float64 {
	beta := m.beta()
	switch m.Distribution {
	case Characteristic:
		knee := m.MaxMag - characteristicBox
		return -math.Expm1(-beta*(knee-m.MinMag)) + characteristicBox*m.plateau()
	default:
		return -math.Expm1(-beta * (m.MaxMag - m.MinMag))
	}
}

// plateau is the unnormalised characteristic density above the knee.
func (m Model) plateau() float64 {
	beta := m.beta()
	return beta * math.Exp(-beta*(m.MaxMag-characteristicDrop-m.MinMag))
}

// PDF is the probability density of magnitude mag.
func (m Model) PDF(mag float64) float64 {
	if mag < m.MinMag || mag > m.MaxMag {
		return 0
	}
	beta := m.beta()
	if m.Distribution == Characteristic && mag > m.MaxMag-characteristicBox {
		return m.plateau() / m.norm()
	}
	return beta * math.Exp(-beta*(mag-m.MinMag)) / m.norm()
}

// CDF is the probability of a magnitude <= mag.
func (m Model) CDF(mag float64) float64 {
	switch {
	case mag <= m.MinMag:
		return 0
	case mag >= m.MaxMag:
		return 1
	}
	beta := m.beta()
	if m.Distribution == Characteristic {
		knee := m.MaxMag - characteristicBox
		if mag > knee {
			return (-math.Expm1(-beta*(knee-m.MinMag)) + (mag-knee)*m.plateau()) / m.norm()
		}
	}
	return -math.Expm1(-beta*(mag-m.MinMag)) / m.norm()
}

// RateAbove is the annual rate of events with magnitude >= mag.
func (m Model) RateAbove(mag float64) float64 {
	return m.AMin * (1 - m.CDF(mag))
}

// pieces returns the intervals on which the density is smooth.
func (m Model) pieces() [][2]float64 {
	if m.Distribution == Characteristic {
		knee := m.MaxMag - characteristicBox
		return [][2]float64{{m.MinMag, knee}, {knee, m.MaxMag}}
	}
	return [][2]float64{{m.MinMag, m.MaxMag}}
}
