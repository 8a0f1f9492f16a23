package validator

import "fmt"

var errNotANumber = ValidationError{
	Kind:           KindCoercion,
	Message:        "must be a number",
	TranslationKey: "validation.number",
}

// Min validates that a numeric value, or a string holding one, is at least min.
// Input that is not a number fails with KindCoercion rather than KindRange.
func Min(min float64, message string) Rule {
	return Rule{
		Predicate: func(value any) error {
			if IsEmpty(value) {
				return nil
			}
			n, ok := ToNumber(value)
			if !ok {
				return errNotANumber
			}
			if n < min {
				return ErrOutOfRange
			}
			return nil
		},
		Error: ValidationError{
			Kind:           KindRange,
			Rule:           "min",
			Message:        fmt.Sprintf("must be at least %v", min),
			TranslationKey: "validation.min",
			TranslationValues: map[string]any{
				"min": min,
			},
		},
	}.WithMessage(message)
}

// Max validates that a numeric value, or a string holding one, is at most max.
func Max(max float64, message string) Rule {
	return Rule{
		Predicate: func(value any) error {
			if IsEmpty(value) {
				return nil
			}
			n, ok := ToNumber(value)
			if !ok {
				return errNotANumber
			}
			if n > max {
				return ErrOutOfRange
			}
			return nil
		},
		Error: ValidationError{
			Kind:           KindRange,
			Rule:           "max",
			Message:        fmt.Sprintf("must be at most %v", max),
			TranslationKey: "validation.max",
			TranslationValues: map[string]any{
				"max": max,
			},
		},
	}.WithMessage(message)
}

// Numeric fails when a non-empty value cannot be read as a number.
func Numeric(message string) Rule {
	return Rule{
		Check: func(value any) bool {
			if IsEmpty(value) {
				return true
			}
			_, ok := ToNumber(value)
			return ok
		},
		Error: ValidationError{
			Kind:           KindCoercion,
			Rule:           "numeric",
			Message:        errNotANumber.Message,
			TranslationKey: errNotANumber.TranslationKey,
		},
	}.WithMessage(message)
}
