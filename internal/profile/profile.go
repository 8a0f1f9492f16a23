package profile

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrymomot/formkit/pkg/form"
	"github.com/dmitrymomot/formkit/pkg/schema"
)

// Field paths of the profile form.
const (
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldAge          = "age"
	FieldDOB          = "dob"
	FieldGender       = "gender"
	FieldPhone        = "phone"
	FieldPhoneNumber  = "number"
	FieldAddressLine1 = "address.line1"
	FieldAddressLine2 = "address.line2"
)

// DateLayout is the wire format of the dob field.
const DateLayout = time.DateOnly

// Genders lists the accepted gender values in display order.
var Genders = []string{"female", "male", "other"}

// PhoneRegex matches loosely formatted phone numbers: an optional "+",
// digit groups separated by spaces or dashes, an optional bracketed area code.
var PhoneRegex = regexp.MustCompile(`^([+]?[\s0-9]+)?(\d{3}|[(]?[0-9]+[)])?([-]?[\s]?[0-9])+$`)

var (
	errAdminEmail   = errors.New("Enter a different email address")
	errBlockedEmail = errors.New("This domain is not supported")
)

// NotAdmin rejects the reserved admin address.
func NotAdmin(v any) error {
	if s, _ := v.(string); s == "admin@example.com" {
		return errAdminEmail
	}
	return nil
}

// NotBlackListed rejects addresses on blocked domains.
func NotBlackListed(v any) error {
	if s, _ := v.(string); strings.HasSuffix(s, "baddomain.com") {
		return errBlockedEmail
	}
	return nil
}

// Registry exposes the custom predicates to YAML schema definitions.
func Registry() schema.Registry {
	return schema.Registry{
		"notAdmin":       NotAdmin,
		"notBlackListed": NotBlackListed,
	}
}

// Defaults returns the initial profile values; dob is set to now's date.
func Defaults(now time.Time) form.Values {
	return form.Values{
		FieldUsername: "Booi",
		FieldEmail:    "booi@gmail.com",
		FieldAge:      12,
		FieldDOB:      now.Format(DateLayout),
		FieldGender:   "",
		FieldPhone:    []any{NewPhone()},
		"address": map[string]any{
			"line1": "",
			"line2": "",
		},
	}
}

// NewPhone is the entry appended by "Add phone number".
func NewPhone() map[string]any {
	return map[string]any{FieldPhoneNumber: ""}
}
