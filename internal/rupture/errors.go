package rupture

import "errors"

var (
	// ErrShape is returned when input arrays are neither length 1 nor a common length n.
	ErrShape = errors.New("rupture: mismatched input lengths")

	// ErrMissingInput is returned when a required input array is empty.
	ErrMissingInput = errors.New("rupture: required input missing")

	// ErrDegenerateDip is returned for dips of 0° or 90° (or outside that range),
	// where the centroid offset ratio is undefined.
	ErrDegenerateDip = errors.New("rupture: dip must lie strictly between 0 and 90 degrees")

	// ErrNaN is returned when derived geometry contains NaN.
	ErrNaN = errors.New("rupture: NaN in derived geometry")
)
