package validator

import "errors"

// Sentinel errors, one per violation kind.
var (
	// ErrValidationFailed is matched by every ValidationErrors value.
	ErrValidationFailed = errors.New("validation failed")

	// ErrRequired is returned when a mandatory value is absent.
	ErrRequired = errors.New("field is required")

	// ErrOutOfRange is returned when a numeric or length bound is exceeded.
	ErrOutOfRange = errors.New("value out of range")

	// ErrInvalidFormat is returned when a value does not match the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrCoercion is returned when raw input cannot be converted to the target type.
	ErrCoercion = errors.New("invalid type")

	// ErrCustomRule is returned when a named business predicate fails.
	ErrCustomRule = errors.New("custom rule failed")
)
