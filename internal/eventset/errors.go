package eventset

import "errors"

var (
	// ErrShape indicates attribute columns of different lengths.
	ErrShape = errors.New("eventset: attribute lengths differ")

	// ErrOutOfRange indicates an event index outside the catalog.
	ErrOutOfRange = errors.New("eventset: event index out of range")

	// ErrUnknownAttribute indicates an attribute outside the schema.
	ErrUnknownAttribute = errors.New("eventset: unknown attribute")

	// ErrInvalidCount indicates a negative scenario replication count.
	ErrInvalidCount = errors.New("eventset: invalid number of events")
)
