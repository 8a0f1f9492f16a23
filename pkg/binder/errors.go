package binder

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMissingContentType   = errors.New("missing content type")
	ErrInvalidForm          = errors.New("invalid form data")
	ErrFailedToParseJSON    = errors.New("failed to parse JSON request body")
	ErrInvalidFieldName     = errors.New("invalid field name")
	ErrTooManyFields        = errors.New("too many form fields")
)
