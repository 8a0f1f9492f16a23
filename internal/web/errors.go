package web

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid form config")
	ErrFormNotFound  = errors.New("form not found")
	ErrRegistryShut  = errors.New("form registry is shut down")
	ErrMissingSignal = errors.New("field value missing from request")
	ErrUnknownPath   = errors.New("unknown field path")
	ErrBadIndex      = errors.New("invalid entry index")
)
