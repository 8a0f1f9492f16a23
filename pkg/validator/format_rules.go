package validator

import (
	"sync"

	playground "github.com/go-playground/validator/v10"
)

var formatValidator = sync.OnceValue(func() *playground.Validate {
	return playground.New()
})

// IsEmail reports whether s is a syntactically valid email address.
func IsEmail(s string) bool {
	return formatValidator().Var(s, "required,email") == nil
}

// Email validates the address format of a string value.
func Email(message string) Rule {
	return Rule{
		Check: func(value any) bool {
			if IsEmpty(value) {
				return true
			}
			s, ok := value.(string)
			return ok && IsEmail(s)
		},
		Error: ValidationError{
			Kind:           KindFormat,
			Rule:           "email",
			Message:        "must be a valid email address",
			TranslationKey: "validation.email",
		},
	}.WithMessage(message)
}
