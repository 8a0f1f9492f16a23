package schema

import (
	"context"
	"slices"
	"strconv"

	"github.com/dmitrymomot/formkit/pkg/fieldpath"
	"github.com/dmitrymomot/formkit/pkg/validator"
)

// Wildcard stands for any array index in the paths returned by Paths.
const Wildcard = "*"

// Schema is a node of a record description.
type Schema interface {
	// Parse coerces raw, reports every failure under path and returns the
	// normalized value.
	Parse(c *Context, path string, raw any) any
	// Paths lists the field paths this node can report errors for.
	Paths(prefix string) []string
}

// Context collects the failures of one validation run.
type Context struct {
	ctx  context.Context
	errs validator.ValidationErrors
}

// NewContext starts a validation run bound to ctx.
func NewContext(ctx context.Context) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{ctx: ctx}
}

// Report records a failure at path.
func (c *Context) Report(path string, err validator.ValidationError) {
	err.Field = path
	if len(err.TranslationValues) > 0 {
		values := make(map[string]any, len(err.TranslationValues))
		for k, v := range err.TranslationValues {
			values[k] = v
		}
		values["field"] = path
		err.TranslationValues = values
	}
	c.errs = append(c.errs, err)
}

// Errors returns the failures collected so far.
func (c *Context) Errors() validator.ValidationErrors {
	return c.errs
}

// Done reports whether the run was cancelled.
func (c *Context) Done() bool {
	return c.ctx.Err() != nil
}

// check runs every rule against value and reports each failure.
func (c *Context) check(path string, rules validator.Rules, value any) {
	for _, verr := range rules.EvaluateAll(path, value) {
		c.Report(path, verr)
	}
}

// Validate parses values with s. It returns the normalized record, or
// validator.ValidationErrors listing every failing field. A cancelled ctx
// aborts the run with ctx.Err().
func Validate(ctx context.Context, s Schema, values map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pc := NewContext(ctx)
	out := s.Parse(pc, "", fieldpath.CloneMap(values))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if errs := pc.Errors(); !errs.IsEmpty() {
		return nil, errs
	}

	normalized, _ := out.(map[string]any)
	return normalized, nil
}

// Paths lists every field path s can report, with Wildcard for array indexes.
func Paths(s Schema) []string {
	paths := s.Paths("")
	slices.Sort(paths)
	return slices.Compact(paths)
}

// Covers reports whether path (with concrete indexes) is a path s can report.
func Covers(s Schema, path string) bool {
	for _, pattern := range s.Paths("") {
		if MatchPath(pattern, path) {
			return true
		}
	}
	return false
}

// MatchPath matches a concrete path against a pattern containing Wildcard segments.
func MatchPath(pattern, path string) bool {
	pp := fieldpath.Split(pattern)
	cp := fieldpath.Split(path)
	if len(pp) != len(cp) {
		return false
	}
	for i := range pp {
		if pp[i] == Wildcard {
			if _, err := strconv.Atoi(cp[i]); err != nil {
				return false
			}
			continue
		}
		if pp[i] != cp[i] {
			return false
		}
	}
	return true
}

// CheckOption adjusts a single check.
type CheckOption func(*validator.Rule)

// WithKind reclassifies a check's failures.
func WithKind(kind validator.Kind) CheckOption {
	return func(r *validator.Rule) {
		*r = r.As(kind)
	}
}

// WithKey sets the translation key of a check.
func WithKey(key string) CheckOption {
	return func(r *validator.Rule) {
		r.Error.TranslationKey = key
	}
}

func buildCheck(rule validator.Rule, message string, opts []CheckOption) validator.Rule {
	rule = rule.WithMessage(message)
	for _, opt := range opts {
		opt(&rule)
	}
	return rule
}

func failure(kind validator.Kind, rule, message, key string) validator.ValidationError {
	return validator.ValidationError{
		Kind:           kind,
		Rule:           rule,
		Message:        message,
		TranslationKey: key,
	}
}

func orDefault(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}
