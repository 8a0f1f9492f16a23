package i18n

import (
	"errors"
	"fmt"
)

var (
	ErrYAMLParsingCancelled = errors.New("yaml parsing cancelled")
	ErrFailedToParseYAML    = errors.New("failed to parse YAML content")
	ErrInvalidCatalogue     = errors.New("invalid translation catalogue")

	ErrLoadingCancelled = errors.New("loading translations cancelled")
	ErrFailedToReadDir  = errors.New("failed to read translation directory")
	ErrFailedToReadFile = errors.New("failed to read translation file")
	ErrNoTranslations   = errors.New("no translations loaded")
	ErrNilAdapter       = errors.New("translation adapter is nil")
)

// ErrLanguageNotSupported indicates that the requested language is not available.
type ErrLanguageNotSupported struct {
	Lang string
}

func (e *ErrLanguageNotSupported) Error() string {
	return fmt.Sprintf("language not supported: %s", e.Lang)
}
