package validator

// Predicate is a named business rule: nil means valid, otherwise the error
// text is shown to the user.
type Predicate func(value any) error

// Validate wraps a named predicate as a Rule. Unlike the built-in rules it
// also runs on empty values, so predicates decide for themselves.
func Validate(name string, fn Predicate) Rule {
	return Rule{
		Predicate: fn,
		Error: ValidationError{
			Kind: KindCustom,
			Rule: name,
		},
	}
}
