package validator

import (
	"fmt"
	"slices"
	"strings"
)

// OneOf validates that a string value is one of the allowed options.
func OneOf(options []string, message string) Rule {
	allowed := slices.Clone(options)
	return Rule{
		Check: func(value any) bool {
			if IsEmpty(value) {
				return true
			}
			s, ok := value.(string)
			return ok && slices.Contains(allowed, s)
		},
		Error: ValidationError{
			Kind:           KindFormat,
			Rule:           "oneOf",
			Message:        fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
			TranslationKey: "validation.one_of",
			TranslationValues: map[string]any{
				"options": strings.Join(allowed, ", "),
			},
		},
	}.WithMessage(message)
}
