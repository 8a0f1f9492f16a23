package schema

import (
	"strings"
	"time"

	"github.com/dmitrymomot/formkit/pkg/validator"
)

// DefaultDateLayouts are tried in order when coercing strings to dates.
var DefaultDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// DateSchema validates date fields, coercing strings.
type DateSchema struct {
	layouts     []string
	checks      validator.Rules
	optional    bool
	requiredMsg string
	typeMsg     string
}

// Date starts a date node accepting time.Time or strings in DefaultDateLayouts.
func Date() *DateSchema {
	return &DateSchema{layouts: DefaultDateLayouts}
}

// Layouts replaces the accepted string layouts.
func (s *DateSchema) Layouts(layouts ...string) *DateSchema {
	if len(layouts) > 0 {
		s.layouts = layouts
	}
	return s
}

func (s *DateSchema) Optional() *DateSchema {
	s.optional = true
	return s
}

func (s *DateSchema) Required(message string) *DateSchema {
	s.requiredMsg = message
	return s
}

func (s *DateSchema) InvalidType(message string) *DateSchema {
	s.typeMsg = message
	return s
}

// Min fails on dates before min.
func (s *DateSchema) Min(min time.Time, message string, opts ...CheckOption) *DateSchema {
	return s.add(validator.Rule{
		Check: func(v any) bool { return !v.(time.Time).Before(min) },
		Error: validator.ValidationError{
			Kind:              validator.KindRange,
			Rule:              "min",
			Message:           "date is too early",
			TranslationKey:    "validation.date_after",
			TranslationValues: map[string]any{"date": min.Format(time.DateOnly)},
		},
	}, message, opts)
}

// Max fails on dates after max.
func (s *DateSchema) Max(max time.Time, message string, opts ...CheckOption) *DateSchema {
	return s.add(validator.Rule{
		Check: func(v any) bool { return !v.(time.Time).After(max) },
		Error: validator.ValidationError{
			Kind:              validator.KindRange,
			Rule:              "max",
			Message:           "date is too late",
			TranslationKey:    "validation.date_before",
			TranslationValues: map[string]any{"date": max.Format(time.DateOnly)},
		},
	}, message, opts)
}

func (s *DateSchema) add(rule validator.Rule, message string, opts []CheckOption) *DateSchema {
	s.checks = append(s.checks, buildCheck(rule, message, opts))
	return s
}

func (s *DateSchema) Parse(c *Context, path string, raw any) any {
	if validator.IsEmpty(raw) {
		if !s.optional {
			c.Report(path, requiredFailure(s.requiredMsg))
		}
		return nil
	}

	t, ok := s.coerce(raw)
	if !ok {
		c.Report(path, failure(validator.KindCoercion, "type",
			orDefault(s.typeMsg, "Invalid date"), keyUnless(s.typeMsg, "validation.date")))
		return nil
	}

	c.check(path, s.checks, t)
	return t
}

func (s *DateSchema) coerce(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		return *v, true
	case string:
		str := strings.TrimSpace(v)
		for _, layout := range s.layouts {
			if t, err := time.Parse(layout, str); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func (s *DateSchema) Paths(prefix string) []string {
	return []string{prefix}
}
