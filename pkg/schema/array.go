package schema

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/dmitrymomot/formkit/pkg/fieldpath"
	"github.com/dmitrymomot/formkit/pkg/validator"
)

// ArraySchema describes a list whose items share one node.
type ArraySchema struct {
	item     Schema
	checks   validator.Rules
	optional bool
	typeMsg  string
}

// Array starts a list node. Maps keyed "0".."n-1", as produced by
// form decoders, are accepted as lists.
func Array(item Schema) *ArraySchema {
	return &ArraySchema{item: item}
}

// Item returns the node applied to every element.
func (s *ArraySchema) Item() Schema {
	return s.item
}

func (s *ArraySchema) Optional() *ArraySchema {
	s.optional = true
	return s
}

func (s *ArraySchema) InvalidType(message string) *ArraySchema {
	s.typeMsg = message
	return s
}

// Min fails when the list has fewer than n items.
func (s *ArraySchema) Min(n int, message string, opts ...CheckOption) *ArraySchema {
	return s.add(validator.Rule{
		Check: func(v any) bool { return len(v.([]any)) >= n },
		Error: validator.ValidationError{
			Kind:              validator.KindRange,
			Rule:              "min",
			Message:           fmt.Sprintf("must contain at least %d items", n),
			TranslationKey:    "validation.min_items",
			TranslationValues: map[string]any{"min": n},
		},
	}, message, opts)
}

// Max fails when the list has more than n items.
func (s *ArraySchema) Max(n int, message string, opts ...CheckOption) *ArraySchema {
	return s.add(validator.Rule{
		Check: func(v any) bool { return len(v.([]any)) <= n },
		Error: validator.ValidationError{
			Kind:              validator.KindRange,
			Rule:              "max",
			Message:           fmt.Sprintf("must contain at most %d items", n),
			TranslationKey:    "validation.max_items",
			TranslationValues: map[string]any{"max": n},
		},
	}, message, opts)
}

func (s *ArraySchema) add(rule validator.Rule, message string, opts []CheckOption) *ArraySchema {
	s.checks = append(s.checks, buildCheck(rule, message, opts))
	return s
}

func (s *ArraySchema) Parse(c *Context, path string, raw any) any {
	if raw == nil {
		if !s.optional {
			c.Report(path, requiredFailure(""))
		}
		return nil
	}

	items, ok := toList(raw)
	if !ok {
		c.Report(path, failure(validator.KindCoercion, "type",
			orDefault(s.typeMsg, "Expected array"), keyUnless(s.typeMsg, "validation.array")))
		return nil
	}

	c.check(path, s.checks, items)

	out := make([]any, len(items))
	for i, item := range items {
		if c.Done() {
			break
		}
		out[i] = s.item.Parse(c, fieldpath.Join(path, strconv.Itoa(i)), item)
	}
	return out
}

func (s *ArraySchema) Paths(prefix string) []string {
	return append([]string{prefix}, s.item.Paths(fieldpath.Join(prefix, Wildcard))...)
}

func toList(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case map[string]any:
		keys := slices.Collect(maps.Keys(v))
		items := make([]any, len(keys))
		for _, k := range keys {
			i, err := strconv.Atoi(k)
			if err != nil || i < 0 || i >= len(keys) || strconv.Itoa(i) != k {
				return nil, false
			}
			items[i] = v[k]
		}
		return items, true
	}
	if cloned, ok := fieldpath.Clone(raw).([]any); ok {
		return cloned, true
	}
	return nil, false
}
