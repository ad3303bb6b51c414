package stories

import "errors"

// Domain errors. Match them with errors.Is; the wrapped message carries the
// detail meant for the user. A missing story is not an error: lookups
// return a nil story instead.
var (
	// ErrNotReorderable is returned when reordering a story that is not Unstarted.
	ErrNotReorderable = errors.New("can only reorder Unstarted stories")

	// ErrPositionOutOfRange is returned when a reorder target position falls
	// outside the Unstarted subsequence.
	ErrPositionOutOfRange = errors.New("position out of range")

	// ErrInvalidArgument is returned for missing required fields and unknown
	// enum values.
	ErrInvalidArgument = errors.New("invalid argument")
)

// IsDomainError reports whether err is one of the store's domain errors, as
// opposed to a storage fault.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotReorderable) ||
		errors.Is(err, ErrPositionOutOfRange) ||
		errors.Is(err, ErrInvalidArgument)
}
