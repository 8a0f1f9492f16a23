package schema

import (
	"strconv"
	"strings"

	"github.com/dmitrymomot/formkit/pkg/validator"
)

// BoolSchema coerces checkbox-style input to bool.
type BoolSchema struct {
	checks  validator.Rules
	typeMsg string
}

// Bool starts a boolean node. Missing input is false; "on", "true", "1"
// and their negations are accepted as strings.
func Bool() *BoolSchema {
	return &BoolSchema{}
}

func (s *BoolSchema) InvalidType(message string) *BoolSchema {
	s.typeMsg = message
	return s
}

// True fails unless the value is true, as for a terms checkbox.
func (s *BoolSchema) True(message string, opts ...CheckOption) *BoolSchema {
	s.checks = append(s.checks, buildCheck(validator.Rule{
		Check: func(v any) bool { return v.(bool) },
		Error: validator.ValidationError{
			Kind:           validator.KindRequired,
			Rule:           "true",
			Message:        "must be accepted",
			TranslationKey: "validation.accepted",
		},
	}, message, opts))
	return s
}

func (s *BoolSchema) Parse(c *Context, path string, raw any) any {
	b, ok := toBool(raw)
	if !ok {
		c.Report(path, failure(validator.KindCoercion, "type",
			orDefault(s.typeMsg, "Expected boolean"), keyUnless(s.typeMsg, "validation.boolean")))
		return nil
	}
	c.check(path, s.checks, b)
	return b
}

func (s *BoolSchema) Paths(prefix string) []string {
	return []string{prefix}
}

func toBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case nil:
		return false, true
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "off", "no":
			return false, true
		case "on", "yes":
			return true, true
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	}
	if n, ok := validator.ToNumber(raw); ok {
		return n != 0, true
	}
	return false, false
}
