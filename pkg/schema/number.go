package schema

import (
	"fmt"
	"math"

	"github.com/dmitrymomot/formkit/pkg/validator"
)

// NumberSchema validates numeric fields, coercing strings.
type NumberSchema struct {
	checks      validator.Rules
	optional    bool
	integer     bool
	requiredMsg string
	typeMsg     string
	intMsg      string
}

// Number starts a numeric node. Blank input is a RequiredViolation unless
// Optional is set; text that is not a number is a CoercionFailure.
func Number() *NumberSchema {
	return &NumberSchema{}
}

func (s *NumberSchema) Optional() *NumberSchema {
	s.optional = true
	return s
}

// Required sets the message for blank input.
func (s *NumberSchema) Required(message string) *NumberSchema {
	s.requiredMsg = message
	return s
}

// InvalidType sets the message for input that cannot be coerced.
func (s *NumberSchema) InvalidType(message string) *NumberSchema {
	s.typeMsg = message
	return s
}

// Int requires a whole number and returns int instead of float64.
func (s *NumberSchema) Int(message string) *NumberSchema {
	s.integer = true
	s.intMsg = message
	return s
}

// NonNegative fails on values below zero.
func (s *NumberSchema) NonNegative(message string, opts ...CheckOption) *NumberSchema {
	return s.add(validator.Rule{
		Check: func(v any) bool { return v.(float64) >= 0 },
		Error: validator.ValidationError{
			Kind:           validator.KindRange,
			Rule:           "nonNegative",
			Message:        "must not be negative",
			TranslationKey: "validation.non_negative",
		},
	}, message, opts)
}

// Min fails on values below min.
func (s *NumberSchema) Min(min float64, message string, opts ...CheckOption) *NumberSchema {
	return s.add(validator.Rule{
		Check: func(v any) bool { return v.(float64) >= min },
		Error: validator.ValidationError{
			Kind:              validator.KindRange,
			Rule:              "min",
			Message:           fmt.Sprintf("must be at least %v", min),
			TranslationKey:    "validation.min",
			TranslationValues: map[string]any{"min": min},
		},
	}, message, opts)
}

// Max fails on values above max.
func (s *NumberSchema) Max(max float64, message string, opts ...CheckOption) *NumberSchema {
	return s.add(validator.Rule{
		Check: func(v any) bool { return v.(float64) <= max },
		Error: validator.ValidationError{
			Kind:              validator.KindRange,
			Rule:              "max",
			Message:           fmt.Sprintf("must be at most %v", max),
			TranslationKey:    "validation.max",
			TranslationValues: map[string]any{"max": max},
		},
	}, message, opts)
}

// Refine adds a named predicate receiving the coerced float64.
func (s *NumberSchema) Refine(name string, fn validator.Predicate) *NumberSchema {
	s.checks = append(s.checks, validator.Validate(name, fn))
	return s
}

func (s *NumberSchema) add(rule validator.Rule, message string, opts []CheckOption) *NumberSchema {
	s.checks = append(s.checks, buildCheck(rule, message, opts))
	return s
}

func (s *NumberSchema) Parse(c *Context, path string, raw any) any {
	if validator.IsEmpty(raw) {
		if !s.optional {
			c.Report(path, requiredFailure(s.requiredMsg))
		}
		return nil
	}

	n, ok := validator.ToNumber(raw)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		c.Report(path, failure(validator.KindCoercion, "type",
			orDefault(s.typeMsg, "Expected number"), keyUnless(s.typeMsg, "validation.number")))
		return nil
	}

	if s.integer && n != math.Trunc(n) {
		c.Report(path, failure(validator.KindCoercion, "int",
			orDefault(s.intMsg, "Expected integer"), keyUnless(s.intMsg, "validation.integer")))
		return nil
	}

	c.check(path, s.checks, n)

	if s.integer {
		return int(n)
	}
	return n
}

func (s *NumberSchema) Paths(prefix string) []string {
	return []string{prefix}
}
