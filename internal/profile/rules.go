package profile

import (
	"errors"
	"regexp"

	"github.com/dmitrymomot/formkit/pkg/form"
	"github.com/dmitrymomot/formkit/pkg/validator"
)

var emailPattern = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9-]+(?:\\.[a-zA-Z0-9-]+)*$")

// Rules returns the per-field rules of the imperative setup. Fields not
// listed here are accepted as entered.
func Rules() map[string][]validator.Rule {
	return map[string][]validator.Rule{
		FieldUsername: {
			validator.Required("Name is required"),
			validator.MinLength(4, "Minimum characters should be four"),
		},
		FieldEmail: {
			validator.Required("Email is required."),
			validator.Pattern(emailPattern, "Email format is not valid."),
			validator.Validate("notAdmin", NotAdmin),
			validator.Validate("notBlackListed", NotBlackListed),
		},
		FieldAge: {
			validator.Required("Age is required."),
			validator.Min(13, "Minimum age is 13"),
			validator.Max(23, "Maximum age is 23"),
		},
		FieldGender: {
			validator.Required("Gender is required"),
		},
	}
}

// RulesResolver builds a resolver that submits age as a number.
func RulesResolver() *form.RulesResolver {
	r := form.NewRulesResolver()
	r.Convert(FieldAge, func(v any) (any, error) {
		n, ok := validator.ToNumber(v)
		if !ok {
			return nil, errors.New("Age must be a number")
		}
		return n, nil
	})
	return r
}
