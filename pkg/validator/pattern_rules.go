package validator

import (
	"fmt"
	"regexp"
)

// Pattern validates a string against a compiled regular expression.
// Non-string values fail.
func Pattern(re *regexp.Regexp, message string) Rule {
	return Rule{
		Check: func(value any) bool {
			if IsEmpty(value) {
				return true
			}
			s, ok := AsString(value)
			return ok && re.MatchString(s)
		},
		Error: ValidationError{
			Kind:           KindFormat,
			Rule:           "pattern",
			Message:        fmt.Sprintf("must match %s", re.String()),
			TranslationKey: "validation.pattern",
			TranslationValues: map[string]any{
				"pattern": re.String(),
			},
		},
	}.WithMessage(message)
}

// MatchesRegex compiles pattern on each call - cache a *regexp.Regexp and use
// Pattern for rules built in hot paths.
func MatchesRegex(pattern, message string) Rule {
	return Pattern(regexp.MustCompile(pattern), message)
}
