package activity

import "errors"

var (
	ErrOutOfRange     = errors.New("activity: event index out of range")
	ErrNegativeWeight = errors.New("activity: negative weight")
	ErrNegativeRate   = errors.New("activity: negative rate")
	ErrShape          = errors.New("activity: shape mismatch")
	ErrWeightSum      = errors.New("activity: weights do not sum to one")
	ErrOverlap        = errors.New("activity: event owned by more than one source")
	ErrSealed         = errors.New("activity: tensor already split or spawned")
	ErrTooLarge       = errors.New("activity: tensor exceeds the cell ceiling")
)
