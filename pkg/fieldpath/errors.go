package fieldpath

import "errors"

var (
	// ErrInvalidPath is returned for empty paths or paths with empty segments.
	ErrInvalidPath = errors.New("invalid field path")

	// ErrIndexOutOfRange is returned when a numeric segment points past the end of an array.
	ErrIndexOutOfRange = errors.New("array index out of range")

	// ErrNotContainer is returned when a path walks through a scalar value.
	ErrNotContainer = errors.New("value is not a map or array")
)
