// Package validator provides per-field validation rules for form values and
// the error taxonomy shared by every validation strategy in formkit.
//
// A Rule pairs a Check function with error metadata (kind, user-facing
// message, translation key). Rules are declared once per field and evaluated
// later against whatever value the field currently holds, so every
// constructor takes only its parameters and the message to surface.
//
// # Taxonomy
//
// Every ValidationError carries a Kind:
//   - KindRequired – a mandatory value is absent
//   - KindRange    – a numeric or length bound is exceeded
//   - KindFormat   – a pattern, email or phone mismatch
//   - KindCoercion – raw input cannot be converted to the target type
//   - KindCustom   – a named business predicate failed
//
// ValidationError unwraps to the sentinel of its kind, so callers can test
// errors.Is(err, validator.ErrCoercion) on single errors or on a whole
// ValidationErrors value.
//
// # Usage
//
//	rules := validator.Rules{
//	    validator.Required("Age is required."),
//	    validator.Min(13, "Minimum age is 13"),
//	    validator.Max(23, "Maximum age is 23"),
//	}
//	if verr := rules.Evaluate("age", "12"); verr != nil {
//	    fmt.Println(verr.Message) // Minimum age is 13
//	}
//
// Rules.Evaluate stops at the first failing rule in declaration order.
// Rules other than Required pass on empty values; emptiness is reported once,
// by Required, rather than by every rule of the field.
//
// Named predicates follow the "true or message" convention through Validate:
//
//	validator.Validate("notAdmin", func(v any) error {
//	    if v == "admin@example.com" {
//	        return errors.New("Enter a different email address")
//	    }
//	    return nil
//	})
//
// # Error Handling
//
// ValidationErrors implements error. Use Map to obtain the field path →
// first message map rendered next to inputs, and ExtractValidationErrors
// to recover the collection from a wrapped error.
package validator
