package schema

import "errors"

var (
	// ErrInvalidDefinition is returned for malformed YAML schema definitions.
	ErrInvalidDefinition = errors.New("invalid schema definition")

	// ErrUnknownType is returned when a definition names an unsupported field type.
	ErrUnknownType = errors.New("unknown field type")

	// ErrUnknownPredicate is returned when a definition refers to an unregistered predicate.
	ErrUnknownPredicate = errors.New("unknown predicate")

	// ErrUnknownTransform is returned when a definition refers to an unknown string transform.
	ErrUnknownTransform = errors.New("unknown transform")
)
