package query

import "errors"

var (
	// ErrInvalidField is returned when a field path contains characters
	// that cannot be safely embedded into a SQL JSON path.
	ErrInvalidField = errors.New("query: invalid field path")

	// ErrUnsupportedPredicate is returned when a predicate cannot be
	// translated for the target backend.
	ErrUnsupportedPredicate = errors.New("query: unsupported predicate")
)
