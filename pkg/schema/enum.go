package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrymomot/formkit/pkg/validator"
)

// EnumSchema accepts one of a fixed set of strings.
type EnumSchema struct {
	values      []string
	optional    bool
	requiredMsg string
	message     string
}

// Enum starts a node accepting only the given values.
func Enum(values ...string) *EnumSchema {
	return &EnumSchema{values: values}
}

func (s *EnumSchema) Optional() *EnumSchema {
	s.optional = true
	return s
}

func (s *EnumSchema) Required(message string) *EnumSchema {
	s.requiredMsg = message
	return s
}

// Message sets the text reported for values outside the set.
func (s *EnumSchema) Message(message string) *EnumSchema {
	s.message = message
	return s
}

// Values returns the accepted values.
func (s *EnumSchema) Values() []string {
	return slices.Clone(s.values)
}

func (s *EnumSchema) Parse(c *Context, path string, raw any) any {
	if validator.IsEmpty(raw) {
		if !s.optional {
			c.Report(path, requiredFailure(s.requiredMsg))
		}
		return nil
	}

	str, ok := raw.(string)
	if !ok || !slices.Contains(s.values, str) {
		verr := failure(validator.KindFormat, "enum",
			orDefault(s.message, fmt.Sprintf("must be one of: %s", strings.Join(s.values, ", "))),
			keyUnless(s.message, "validation.one_of"))
		if s.message == "" {
			verr.TranslationValues = map[string]any{"options": strings.Join(s.values, ", ")}
		}
		c.Report(path, verr)
		return nil
	}
	return str
}

func (s *EnumSchema) Paths(prefix string) []string {
	return []string{prefix}
}
