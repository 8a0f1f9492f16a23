package validator

import "fmt"

// Required fails on nil, blank strings and empty collections.
func Required(message string) Rule {
	return Rule{
		Check: func(value any) bool {
			return !IsEmpty(value)
		},
		Error: ValidationError{
			Kind:           KindRequired,
			Rule:           "required",
			Message:        "field is required",
			TranslationKey: "validation.required",
		},
	}.WithMessage(message)
}

// MinLength validates the rune count of a string or the size of a collection.
func MinLength(min int, message string) Rule {
	return Rule{
		Check: func(value any) bool {
			if IsEmpty(value) {
				return true
			}
			n, ok := Length(value)
			return !ok || n >= min
		},
		Error: ValidationError{
			Kind:           KindRange,
			Rule:           "minLength",
			Message:        fmt.Sprintf("must be at least %d characters long", min),
			TranslationKey: "validation.min_length",
			TranslationValues: map[string]any{
				"min": min,
			},
		},
	}.WithMessage(message)
}

func MaxLength(max int, message string) Rule {
	return Rule{
		Check: func(value any) bool {
			if IsEmpty(value) {
				return true
			}
			n, ok := Length(value)
			return !ok || n <= max
		},
		Error: ValidationError{
			Kind:           KindRange,
			Rule:           "maxLength",
			Message:        fmt.Sprintf("must be at most %d characters long", max),
			TranslationKey: "validation.max_length",
			TranslationValues: map[string]any{
				"max": max,
			},
		},
	}.WithMessage(message)
}
