package recurrence

import "errors"

var (
	// ErrUnknownDistribution is returned for an unrecognised distribution name.
	ErrUnknownDistribution = errors.New("recurrence: unknown distribution")
	// ErrDegenerateRange is returned when a magnitude range cannot be sampled.
	ErrDegenerateRange = errors.New("recurrence: degenerate magnitude range")
	// ErrInvalidModel is returned for non-physical model parameters.
	ErrInvalidModel = errors.New("recurrence: invalid model")
)
