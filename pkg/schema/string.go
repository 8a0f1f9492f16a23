package schema

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrymomot/formkit/pkg/sanitizer"
	"github.com/dmitrymomot/formkit/pkg/validator"
)

// StringSchema validates string fields.
type StringSchema struct {
	transforms  []func(string) string
	checks      validator.Rules
	optional    bool
	requiredMsg string
	typeMsg     string
}

// String starts a string node. Missing (nil) input is a RequiredViolation
// unless Optional is set; the empty string is a present value.
func String() *StringSchema {
	return &StringSchema{}
}

// Optional accepts missing input and returns nil for it.
func (s *StringSchema) Optional() *StringSchema {
	s.optional = true
	return s
}

// RequiredMessage sets the message for missing input.
func (s *StringSchema) RequiredMessage(message string) *StringSchema {
	s.requiredMsg = message
	return s
}

// InvalidType sets the message for non-string input.
func (s *StringSchema) InvalidType(message string) *StringSchema {
	s.typeMsg = message
	return s
}

// Trim strips surrounding whitespace before the checks run.
func (s *StringSchema) Trim() *StringSchema {
	return s.Transform(strings.TrimSpace)
}

// Transform adds a normalization step applied before the checks, in order.
func (s *StringSchema) Transform(fn func(string) string) *StringSchema {
	if fn != nil {
		s.transforms = append(s.transforms, fn)
	}
	return s
}

// NonEmpty fails on the empty string.
func (s *StringSchema) NonEmpty(message string, opts ...CheckOption) *StringSchema {
	return s.add(validator.Rule{
		Check: func(v any) bool { return v.(string) != "" },
		Error: validator.ValidationError{
			Kind:           validator.KindRequired,
			Rule:           "nonEmpty",
			Message:        "field is required",
			TranslationKey: "validation.required",
		},
	}, message, opts)
}

// Min fails when the string has fewer than n characters.
func (s *StringSchema) Min(n int, message string, opts ...CheckOption) *StringSchema {
	return s.add(validator.Rule{
		Check: func(v any) bool { return utf8.RuneCountInString(v.(string)) >= n },
		Error: validator.ValidationError{
			Kind:              validator.KindRange,
			Rule:              "min",
			Message:           fmt.Sprintf("must be at least %d characters long", n),
			TranslationKey:    "validation.min_length",
			TranslationValues: map[string]any{"min": n},
		},
	}, message, opts)
}

// Max fails when the string has more than n characters.
func (s *StringSchema) Max(n int, message string, opts ...CheckOption) *StringSchema {
	return s.add(validator.Rule{
		Check: func(v any) bool { return utf8.RuneCountInString(v.(string)) <= n },
		Error: validator.ValidationError{
			Kind:              validator.KindRange,
			Rule:              "max",
			Message:           fmt.Sprintf("must be at most %d characters long", n),
			TranslationKey:    "validation.max_length",
			TranslationValues: map[string]any{"max": n},
		},
	}, message, opts)
}

// Length fails unless the string has exactly n characters.
func (s *StringSchema) Length(n int, message string, opts ...CheckOption) *StringSchema {
	return s.add(validator.Rule{
		Check: func(v any) bool { return utf8.RuneCountInString(v.(string)) == n },
		Error: validator.ValidationError{
			Kind:              validator.KindRange,
			Rule:              "length",
			Message:           fmt.Sprintf("must be exactly %d characters long", n),
			TranslationKey:    "validation.exact_length",
			TranslationValues: map[string]any{"length": n},
		},
	}, message, opts)
}

// Regex fails when the string does not match re.
func (s *StringSchema) Regex(re *regexp.Regexp, message string, opts ...CheckOption) *StringSchema {
	return s.add(validator.Rule{
		Check: func(v any) bool { return re.MatchString(v.(string)) },
		Error: validator.ValidationError{
			Kind:              validator.KindFormat,
			Rule:              "regex",
			Message:           "invalid format",
			TranslationKey:    "validation.pattern",
			TranslationValues: map[string]any{"pattern": re.String()},
		},
	}, message, opts)
}

// Email fails when the string is not a valid email address.
func (s *StringSchema) Email(message string, opts ...CheckOption) *StringSchema {
	return s.add(validator.Rule{
		Check: func(v any) bool { return validator.IsEmail(v.(string)) },
		Error: validator.ValidationError{
			Kind:           validator.KindFormat,
			Rule:           "email",
			Message:        "must be a valid email address",
			TranslationKey: "validation.email",
		},
	}, message, opts)
}

// Refine adds a named business predicate; its error text is the message.
func (s *StringSchema) Refine(name string, fn validator.Predicate) *StringSchema {
	s.checks = append(s.checks, validator.Validate(name, fn))
	return s
}

func (s *StringSchema) add(rule validator.Rule, message string, opts []CheckOption) *StringSchema {
	s.checks = append(s.checks, buildCheck(rule, message, opts))
	return s
}

func (s *StringSchema) Parse(c *Context, path string, raw any) any {
	if raw == nil {
		if !s.optional {
			c.Report(path, requiredFailure(s.requiredMsg))
		}
		return nil
	}

	str, ok := raw.(string)
	if !ok {
		c.Report(path, failure(validator.KindCoercion, "type",
			orDefault(s.typeMsg, "Expected string"), keyUnless(s.typeMsg, "validation.type_string")))
		return nil
	}

	str = sanitizer.Apply(str, s.transforms...)
	c.check(path, s.checks, str)
	return str
}

func (s *StringSchema) Paths(prefix string) []string {
	return []string{prefix}
}

func requiredFailure(message string) validator.ValidationError {
	return failure(validator.KindRequired, "required",
		orDefault(message, "Required"), keyUnless(message, "validation.required"))
}

// keyUnless returns key only when no custom message overrides the default.
func keyUnless(message, key string) string {
	if message != "" {
		return ""
	}
	return key
}
