package form

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrymomot/formkit/pkg/fieldpath"
	"github.com/dmitrymomot/formkit/pkg/schema"
	"github.com/dmitrymomot/formkit/pkg/validator"
)

// Values is a record keyed by field name; nested records and arrays are
// map[string]any and []any.
type Values = map[string]any

// Resolver validates a record. With no fields it validates everything and,
// when nothing fails, returns the normalized record. With fields it reports
// only failures at or beneath those paths. A non-nil error means the run
// itself failed, for example because ctx was cancelled.
type Resolver interface {
	Resolve(ctx context.Context, values Values, fields []string) (Values, validator.ValidationErrors, error)
	// Covers reports whether the resolver can produce an error for path.
	Covers(path string) bool
}

// RuleRegistry is implemented by resolvers that accept per-field rules.
type RuleRegistry interface {
	Register(pattern string, rules ...validator.Rule)
	Unregister(pattern string)
}

// Strategy names a validation approach.
type Strategy string

const (
	// StrategyRules validates with per-field rules registered on the controller.
	StrategyRules Strategy = "rules"
	// StrategySchema validates the whole record with a schema.
	StrategySchema Strategy = "schema"
)

func (s Strategy) String() string {
	return string(s)
}

// ParseStrategy parses a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyRules:
		return StrategyRules, nil
	case StrategySchema:
		return StrategySchema, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// NewResolver returns the resolver for strategy. The schema is required for
// StrategySchema and ignored for StrategyRules.
func NewResolver(strategy Strategy, s schema.Schema) (Resolver, error) {
	switch strategy {
	case StrategyRules:
		return NewRulesResolver(), nil
	case StrategySchema:
		if s == nil {
			return nil, fmt.Errorf("%w: schema strategy without a schema", ErrUnknownStrategy)
		}
		return NewSchemaResolver(s), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
}

// Converter turns a validated raw value into its submitted form.
type Converter func(value any) (any, error)

// RulesResolver validates each registered field with its own rule list;
// the first failing rule of a field wins. Patterns may use schema.Wildcard
// for array indexes ("phone.*.number").
type RulesResolver struct {
	mu         sync.RWMutex
	patterns   []string
	rules      map[string]validator.Rules
	converters map[string]Converter
}

func NewRulesResolver() *RulesResolver {
	return &RulesResolver{
		rules:      make(map[string]validator.Rules),
		converters: make(map[string]Converter),
	}
}

// Register appends rules for the fields matching pattern.
func (r *RulesResolver) Register(pattern string, rules ...validator.Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[pattern]; !ok {
		r.patterns = append(r.patterns, pattern)
	}
	r.rules[pattern] = append(r.rules[pattern], rules...)
}

// Unregister drops the rules and converter of pattern.
func (r *RulesResolver) Unregister(pattern string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rules, pattern)
	delete(r.converters, pattern)
	r.patterns = slices.DeleteFunc(r.patterns, func(p string) bool { return p == pattern })
}

// Convert sets the conversion applied to matching fields of a record that
// passed every rule. A conversion error is reported as a coercion failure.
func (r *RulesResolver) Convert(pattern string, fn Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[pattern]; !ok {
		r.patterns = append(r.patterns, pattern)
		r.rules[pattern] = nil
	}
	r.converters[pattern] = fn
}

func (r *RulesResolver) Covers(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.patterns {
		if schema.MatchPath(p, path) {
			return true
		}
	}
	return false
}

func (r *RulesResolver) Resolve(ctx context.Context, values Values, fields []string) (Values, validator.ValidationErrors, error) {
	r.mu.RLock()
	patterns := slices.Clone(r.patterns)
	rules := make(map[string]validator.Rules, len(r.rules))
	for k, v := range r.rules {
		rules[k] = v
	}
	converters := make(map[string]Converter, len(r.converters))
	for k, v := range r.converters {
		converters[k] = v
	}
	r.mu.RUnlock()

	var errs validator.ValidationErrors
	for _, pattern := range patterns {
		for _, path := range expandPattern(values, pattern) {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			if !inScope(path, fields) {
				continue
			}
			value, _ := fieldpath.Get(values, path)
			if verr := rules[pattern].Evaluate(path, value); verr != nil {
				errs.Add(*verr)
			}
		}
	}

	if !errs.IsEmpty() || fields != nil {
		return nil, errs, nil
	}

	out := fieldpath.CloneMap(values)
	for _, pattern := range patterns {
		convert, ok := converters[pattern]
		if !ok {
			continue
		}
		for _, path := range expandPattern(out, pattern) {
			value, _ := fieldpath.Get(out, path)
			converted, err := convert(value)
			if err != nil {
				errs.Add(validator.ValidationError{
					Field:   path,
					Kind:    validator.KindCoercion,
					Rule:    "convert",
					Message: err.Error(),
				})
				continue
			}
			if err := fieldpath.Set(out, path, converted); err != nil {
				return nil, nil, err
			}
		}
	}
	if !errs.IsEmpty() {
		return nil, errs, nil
	}
	return out, nil, nil
}

// SchemaResolver validates the whole record with a schema and filters the
// result to the requested fields.
type SchemaResolver struct {
	schema schema.Schema
}

func NewSchemaResolver(s schema.Schema) *SchemaResolver {
	return &SchemaResolver{schema: s}
}

// Schema returns the underlying schema.
func (r *SchemaResolver) Schema() schema.Schema {
	return r.schema
}

func (r *SchemaResolver) Covers(path string) bool {
	return schema.Covers(r.schema, path)
}

func (r *SchemaResolver) Resolve(ctx context.Context, values Values, fields []string) (Values, validator.ValidationErrors, error) {
	out, err := schema.Validate(ctx, r.schema, values)
	if err != nil {
		errs := validator.ExtractValidationErrors(err)
		if errs == nil {
			return nil, nil, err
		}
		if fields == nil {
			return nil, errs, nil
		}
		var scoped validator.ValidationErrors
		for _, verr := range errs {
			if inScope(verr.Field, fields) {
				scoped = append(scoped, verr)
			}
		}
		return nil, scoped, nil
	}
	return out, nil, nil
}

// inScope reports whether path is selected by fields; nil selects everything.
func inScope(path string, fields []string) bool {
	if fields == nil {
		return true
	}
	for _, f := range fields {
		if fieldpath.HasPrefix(path, f) {
			return true
		}
	}
	return false
}

// expandPattern resolves schema.Wildcard segments against the current
// array lengths. A pattern without wildcards is returned as is.
func expandPattern(values Values, pattern string) []string {
	parts := fieldpath.Split(pattern)
	if !slices.Contains(parts, schema.Wildcard) {
		return []string{pattern}
	}

	paths := []string{""}
	for _, part := range parts {
		var next []string
		for _, prefix := range paths {
			if part != schema.Wildcard {
				next = append(next, fieldpath.Join(prefix, part))
				continue
			}
			v, _ := fieldpath.Get(values, prefix)
			for i := range listLen(v) {
				next = append(next, fieldpath.Join(prefix, strconv.Itoa(i)))
			}
		}
		paths = next
	}
	return paths
}

func listLen(v any) int {
	switch t := v.(type) {
	case []any:
		return len(t)
	case map[string]any:
		return len(t)
	}
	return 0
}
