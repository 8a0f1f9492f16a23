package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/formkit/pkg/fieldpath"
)

// ValidationError represents a single field violation with translation support.
type ValidationError struct {
	Field             string
	Kind              Kind
	Rule              string
	Message           string
	TranslationKey    string
	TranslationValues map[string]any
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap exposes the sentinel error of the violation kind.
func (e ValidationError) Unwrap() error {
	return e.Kind.Err()
}

// ValidationErrors represents a collection of validation errors.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(ve))
	for _, err := range ve {
		parts = append(parts, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is matches ErrValidationFailed and the sentinel of any contained kind.
func (ve ValidationErrors) Is(target error) bool {
	if target == ErrValidationFailed {
		return true
	}
	for _, err := range ve {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (ve *ValidationErrors) Add(err ValidationError) {
	*ve = append(*ve, err)
}

func (ve ValidationErrors) Has(field string) bool {
	for _, err := range ve {
		if err.Field == field {
			return true
		}
	}
	return false
}

func (ve ValidationErrors) Get(field string) []string {
	var messages []string
	for _, err := range ve {
		if err.Field == field {
			messages = append(messages, err.Message)
		}
	}
	return messages
}

// First returns the first error recorded for field.
func (ve ValidationErrors) First(field string) (ValidationError, bool) {
	for _, err := range ve {
		if err.Field == field {
			return err, true
		}
	}
	return ValidationError{}, false
}

// Fields lists affected fields in first-seen order.
func (ve ValidationErrors) Fields() []string {
	var fields []string
	seen := make(map[string]bool)
	for _, err := range ve {
		if !seen[err.Field] {
			fields = append(fields, err.Field)
			seen[err.Field] = true
		}
	}
	return fields
}

// ByKind returns the errors of the given kind.
func (ve ValidationErrors) ByKind(kind Kind) ValidationErrors {
	var out ValidationErrors
	for _, err := range ve {
		if err.Kind == kind {
			out = append(out, err)
		}
	}
	return out
}

// Under returns the errors whose field equals path or lies beneath it.
func (ve ValidationErrors) Under(path string) ValidationErrors {
	var out ValidationErrors
	for _, err := range ve {
		if fieldpath.HasPrefix(err.Field, path) {
			out = append(out, err)
		}
	}
	return out
}

// Map returns field → first message, the shape rendered next to inputs.
func (ve ValidationErrors) Map() map[string]string {
	out := make(map[string]string, len(ve))
	for _, err := range ve {
		if _, ok := out[err.Field]; !ok {
			out[err.Field] = err.Message
		}
	}
	return out
}

func (ve ValidationErrors) IsEmpty() bool {
	return len(ve) == 0
}

// Rule represents a single validation rule bound to no particular field.
// Check reports whether a value passes; Predicate, when set, replaces Check
// and its returned error text becomes the message unless Error.Message is set.
type Rule struct {
	Check     func(value any) bool
	Predicate func(value any) error
	Error     ValidationError
}

// Name identifies the rule in errors and logs.
func (r Rule) Name() string {
	return r.Error.Rule
}

// As returns a copy of the rule reporting failures with a different kind.
func (r Rule) As(kind Kind) Rule {
	r.Error.Kind = kind
	return r
}

// WithMessage returns a copy of the rule with a fixed user-facing message.
func (r Rule) WithMessage(message string) Rule {
	if message != "" {
		r.Error.Message = message
		r.Error.TranslationKey = ""
	}
	return r
}

// Evaluate runs the rule against value and returns the failure, if any.
func (r Rule) Evaluate(field string, value any) *ValidationError {
	if r.Predicate != nil {
		err := r.Predicate(value)
		if err == nil {
			return nil
		}
		verr := r.failure(field)
		var typed ValidationError
		if errors.As(err, &typed) {
			if typed.Kind != "" {
				verr.Kind = typed.Kind
			}
			if typed.Message != "" {
				verr.Message = typed.Message
				verr.TranslationKey = typed.TranslationKey
			}
		}
		if verr.Message == "" {
			verr.Message = err.Error()
		}
		return &verr
	}

	if r.Check == nil || r.Check(value) {
		return nil
	}
	verr := r.failure(field)
	return &verr
}

func (r Rule) failure(field string) ValidationError {
	verr := r.Error
	verr.Field = field
	if len(r.Error.TranslationValues) > 0 {
		verr.TranslationValues = make(map[string]any, len(r.Error.TranslationValues)+1)
		for k, v := range r.Error.TranslationValues {
			verr.TranslationValues[k] = v
		}
		verr.TranslationValues["field"] = field
	}
	return verr
}

// Rules is an ordered rule set for one field.
type Rules []Rule

// Evaluate returns the first failing rule's error in declaration order.
func (rs Rules) Evaluate(field string, value any) *ValidationError {
	for _, rule := range rs {
		if verr := rule.Evaluate(field, value); verr != nil {
			return verr
		}
	}
	return nil
}

// EvaluateAll returns every failure instead of stopping at the first one.
func (rs Rules) EvaluateAll(field string, value any) ValidationErrors {
	var errs ValidationErrors
	for _, rule := range rs {
		if verr := rule.Evaluate(field, value); verr != nil {
			errs = append(errs, *verr)
		}
	}
	return errs
}

// Apply collects evaluated results and returns them as ValidationErrors,
// or nil when every result passed.
func Apply(results ...*ValidationError) error {
	var errs ValidationErrors
	for _, res := range results {
		if res != nil {
			errs = append(errs, *res)
		}
	}

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

// ExtractValidationErrors extracts ValidationErrors from an error.
func ExtractValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	var validationErr ValidationErrors
	if errors.As(err, &validationErr) {
		return validationErr
	}

	return nil
}

func IsValidationError(err error) bool {
	if err == nil {
		return false
	}

	var validationErr ValidationErrors
	return errors.As(err, &validationErr)
}
