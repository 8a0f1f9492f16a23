// Package sanitizer provides string transforms applied to raw form input
// before it is validated.
//
// Transforms are plain func(string) string values so they compose with
// Apply and Compose and plug straight into schema string fields:
//
//	clean := sanitizer.Compose(sanitizer.Trim, sanitizer.RemoveExtraWhitespace)
//	schema.String().Transform(clean)
//
// Declarative schemas refer to transforms by name ("trim", "lower",
// "email", ...); Lookup resolves those names.
package sanitizer
