package schema

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/formkit/pkg/fieldpath"
	"github.com/dmitrymomot/formkit/pkg/sanitizer"
	"github.com/dmitrymomot/formkit/pkg/validator"
)

// Registry maps predicate names used in definitions to their implementation.
type Registry map[string]validator.Predicate

// Definition is the on-disk form of an object schema.
type Definition struct {
	Fields map[string]FieldDef `yaml:"fields"`
	Refine []RefineDef         `yaml:"refine"`
}

// FieldDef describes one field of a definition.
type FieldDef struct {
	Type        string              `yaml:"type"`
	Optional    bool                `yaml:"optional"`
	Required    string              `yaml:"required"`
	TypeError   string              `yaml:"typeError"`
	Transform   []string            `yaml:"transform"`
	NonEmpty    *string             `yaml:"nonEmpty"`
	Min         *Bound              `yaml:"min"`
	Max         *Bound              `yaml:"max"`
	Length      *Bound              `yaml:"length"`
	Pattern     *Bound              `yaml:"pattern"`
	Email       *string             `yaml:"email"`
	NonNegative *string             `yaml:"nonNegative"`
	Integer     *string             `yaml:"integer"`
	Values      []string            `yaml:"values"`
	Message     string              `yaml:"message"`
	Refine      []string            `yaml:"refine"`
	Items       *FieldDef           `yaml:"items"`
	Fields      map[string]FieldDef `yaml:"fields"`
}

// Bound is a check argument with its optional message and kind override.
type Bound struct {
	Value   any    `yaml:"value"`
	Message string `yaml:"message"`
	Kind    string `yaml:"kind"`
	Key     string `yaml:"key"`
}

// UnmarshalYAML accepts both the short form (min: 4) and the long form
// (min: {value: 4, message: ...}).
func (b *Bound) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&b.Value)
	}
	type plain Bound
	return node.Decode((*plain)(b))
}

// RefineDef is an object-level predicate reported at Path.
type RefineDef struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// LoadYAML builds an object schema from a YAML definition. Predicates
// named under refine are looked up in reg.
func LoadYAML(data []byte, reg Registry) (*ObjectSchema, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	if len(def.Fields) == 0 {
		return nil, fmt.Errorf("%w: no fields", ErrInvalidDefinition)
	}
	return def.Build(reg)
}

// Build turns the definition into a schema.
func (d Definition) Build(reg Registry) (*ObjectSchema, error) {
	obj, err := buildObject("", d.Fields, reg)
	if err != nil {
		return nil, err
	}
	for _, r := range d.Refine {
		pred, ok := reg[r.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPredicate, r.Name)
		}
		obj.Refine(r.Name, r.Path, func(values map[string]any) error { return pred(values) })
	}
	return obj, nil
}

func buildObject(path string, fields map[string]FieldDef, reg Registry) (*ObjectSchema, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	shape := make(Shape, len(fields))
	for _, name := range names {
		node, err := buildField(fieldpath.Join(path, name), fields[name], reg)
		if err != nil {
			return nil, err
		}
		shape[name] = node
	}
	return Object(shape), nil
}

func buildField(path string, f FieldDef, reg Registry) (Schema, error) {
	switch f.Type {
	case "string", "":
		return buildString(path, f, reg)
	case "number":
		return buildNumber(path, f, reg)
	case "date":
		return buildDate(path, f)
	case "enum":
		if len(f.Values) == 0 {
			return nil, fmt.Errorf("%w: %s: enum without values", ErrInvalidDefinition, path)
		}
		s := Enum(f.Values...).Required(f.Required).Message(f.Message)
		if f.Optional {
			s.Optional()
		}
		return s, nil
	case "bool":
		s := Bool().InvalidType(f.TypeError)
		if f.Required != "" {
			s.True(f.Required)
		}
		return s, nil
	case "object":
		if len(f.Fields) == 0 {
			return nil, fmt.Errorf("%w: %s: object without fields", ErrInvalidDefinition, path)
		}
		s, err := buildObject(path, f.Fields, reg)
		if err != nil {
			return nil, err
		}
		if f.Optional {
			s.Optional()
		}
		return s.InvalidType(f.TypeError), nil
	case "array":
		if f.Items == nil {
			return nil, fmt.Errorf("%w: %s: array without items", ErrInvalidDefinition, path)
		}
		item, err := buildField(fieldpath.Join(path, Wildcard), *f.Items, reg)
		if err != nil {
			return nil, err
		}
		s := Array(item).InvalidType(f.TypeError)
		if f.Optional {
			s.Optional()
		}
		if f.Min != nil {
			n, opts, err := intBound(path, "min", f.Min)
			if err != nil {
				return nil, err
			}
			s.Min(n, f.Min.Message, opts...)
		}
		if f.Max != nil {
			n, opts, err := intBound(path, "max", f.Max)
			if err != nil {
				return nil, err
			}
			s.Max(n, f.Max.Message, opts...)
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s: %q", ErrUnknownType, path, f.Type)
}

func buildString(path string, f FieldDef, reg Registry) (Schema, error) {
	s := String().RequiredMessage(f.Required).InvalidType(f.TypeError)
	if f.Optional {
		s.Optional()
	}
	for _, name := range f.Transform {
		fn, ok := sanitizer.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s: %q", ErrUnknownTransform, path, name)
		}
		s.Transform(fn)
	}
	if f.NonEmpty != nil {
		s.NonEmpty(*f.NonEmpty)
	}
	for _, c := range []struct {
		name  string
		bound *Bound
		apply func(int, string, ...CheckOption) *StringSchema
	}{
		{"min", f.Min, s.Min},
		{"max", f.Max, s.Max},
		{"length", f.Length, s.Length},
	} {
		if c.bound == nil {
			continue
		}
		n, opts, err := intBound(path, c.name, c.bound)
		if err != nil {
			return nil, err
		}
		c.apply(n, c.bound.Message, opts...)
	}
	if f.Pattern != nil {
		expr, ok := f.Pattern.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s: pattern must be a string", ErrInvalidDefinition, path)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, path, err)
		}
		opts, err := boundOptions(path, f.Pattern)
		if err != nil {
			return nil, err
		}
		s.Regex(re, f.Pattern.Message, opts...)
	}
	if f.Email != nil {
		s.Email(*f.Email)
	}
	for _, name := range f.Refine {
		pred, ok := reg[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s: %q", ErrUnknownPredicate, path, name)
		}
		s.Refine(name, pred)
	}
	return s, nil
}

func buildNumber(path string, f FieldDef, reg Registry) (Schema, error) {
	s := Number().Required(f.Required).InvalidType(f.TypeError)
	if f.Optional {
		s.Optional()
	}
	if f.Integer != nil {
		s.Int(*f.Integer)
	}
	if f.NonNegative != nil {
		s.NonNegative(*f.NonNegative)
	}
	if f.Min != nil {
		v, opts, err := floatBound(path, "min", f.Min)
		if err != nil {
			return nil, err
		}
		s.Min(v, f.Min.Message, opts...)
	}
	if f.Max != nil {
		v, opts, err := floatBound(path, "max", f.Max)
		if err != nil {
			return nil, err
		}
		s.Max(v, f.Max.Message, opts...)
	}
	for _, name := range f.Refine {
		pred, ok := reg[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s: %q", ErrUnknownPredicate, path, name)
		}
		s.Refine(name, pred)
	}
	return s, nil
}

func buildDate(path string, f FieldDef) (Schema, error) {
	s := Date().Required(f.Required).InvalidType(f.TypeError)
	if f.Optional {
		s.Optional()
	}
	for _, c := range []struct {
		name  string
		bound *Bound
		apply func(time.Time, string, ...CheckOption) *DateSchema
	}{
		{"min", f.Min, s.Min},
		{"max", f.Max, s.Max},
	} {
		if c.bound == nil {
			continue
		}
		t, ok := dateValue(c.bound.Value)
		if !ok {
			return nil, fmt.Errorf("%w: %s: %s must be a date", ErrInvalidDefinition, path, c.name)
		}
		opts, err := boundOptions(path, c.bound)
		if err != nil {
			return nil, err
		}
		c.apply(t, c.bound.Message, opts...)
	}
	return s, nil
}

func dateValue(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range DefaultDateLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func intBound(path, name string, b *Bound) (int, []CheckOption, error) {
	v, opts, err := floatBound(path, name, b)
	if err != nil {
		return 0, nil, err
	}
	if v != float64(int(v)) || v < 0 {
		return 0, nil, fmt.Errorf("%w: %s: %s must be a non-negative integer", ErrInvalidDefinition, path, name)
	}
	return int(v), opts, nil
}

func floatBound(path, name string, b *Bound) (float64, []CheckOption, error) {
	v, ok := validator.ToNumber(b.Value)
	if !ok {
		return 0, nil, fmt.Errorf("%w: %s: %s must be a number", ErrInvalidDefinition, path, name)
	}
	opts, err := boundOptions(path, b)
	return v, opts, err
}

func boundOptions(path string, b *Bound) ([]CheckOption, error) {
	var opts []CheckOption
	if b.Kind != "" {
		kind, err := parseKind(b.Kind)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		opts = append(opts, WithKind(kind))
	}
	if b.Key != "" {
		opts = append(opts, WithKey(b.Key))
	}
	return opts, nil
}

func parseKind(s string) (validator.Kind, error) {
	for _, k := range []validator.Kind{
		validator.KindRequired,
		validator.KindRange,
		validator.KindFormat,
		validator.KindCoercion,
		validator.KindCustom,
	} {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidDefinition, s)
}
