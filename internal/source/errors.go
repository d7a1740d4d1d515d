package source

import "errors"

var (
	ErrUnknownEventType   = errors.New("source: unknown event type")
	ErrDuplicateEventType = errors.New("source: duplicate event type")
	ErrInvalidWeights     = errors.New("source: invalid branch weights")
	ErrOutOfRange         = errors.New("source: event index out of range")
	ErrDuplicateIndex     = errors.New("source: duplicate event index")
	ErrOverlap            = errors.New("source: event owned by more than one source")
)
