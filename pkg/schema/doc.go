// Package schema describes the shape of a whole form record declaratively and
// validates it in one pass.
//
// A schema is built from typed nodes (String, Number, Date, Enum, Bool,
// Object and Array), each carrying its own checks. Validate walks the raw
// record (as decoded from a form: strings, nested maps, arrays), coerces
// values to their target types and returns either the normalized record or
// a validator.ValidationErrors covering every failing field. Nothing
// short-circuits: all fields are visited and, within a field, all checks
// run, so the user sees every problem at once.
//
// # Usage
//
//	profile := schema.Object(schema.Shape{
//	    "username": schema.String().NonEmpty("Username is required.").Min(4, ""),
//	    "age": schema.Number().
//	        Required("Age is required").
//	        InvalidType("Age must be a number").
//	        Min(13, "Minimum age is 13"),
//	    "phone": schema.Array(schema.Object(schema.Shape{
//	        "number": schema.String().Min(10, "Invalid phone number", schema.WithKind(validator.KindFormat)),
//	    })),
//	})
//
//	values, err := schema.Validate(ctx, profile, raw)
//	if errs := validator.ExtractValidationErrors(err); errs != nil {
//	    fmt.Println(errs.Map()) // {"age": "Minimum age is 13", ...}
//	}
//
// # Coercion
//
// Number and Date nodes convert strings. Input that cannot be converted is
// reported with validator.KindCoercion, distinct from the
// validator.KindRange reported by bound checks, so "abc" and "12" produce
// different errors for an age field bounded to [13, 23].
//
// # Definitions on disk
//
// LoadYAML builds an object schema from a YAML definition. Named business
// predicates referenced by the definition are resolved through a Registry.
package schema
