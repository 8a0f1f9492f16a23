package schema

import (
	"maps"
	"slices"

	"github.com/dmitrymomot/formkit/pkg/fieldpath"
	"github.com/dmitrymomot/formkit/pkg/validator"
)

// Shape maps field names to their nodes.
type Shape map[string]Schema

// ObjectSchema describes a record with named fields.
type ObjectSchema struct {
	shape    Shape
	keys     []string
	refines  []refinement
	optional bool
	typeMsg  string
}

type refinement struct {
	name string
	path string
	fn   func(values map[string]any) error
}

// Object starts a record node. Unknown keys are dropped from the result.
func Object(shape Shape) *ObjectSchema {
	s := &ObjectSchema{shape: make(Shape, len(shape))}
	for k, v := range shape {
		s.shape[k] = v
	}
	s.keys = slices.Sorted(maps.Keys(s.shape))
	return s
}

// Shape returns the field nodes keyed by name.
func (s *ObjectSchema) Shape() Shape {
	return maps.Clone(s.shape)
}

// Field returns the node for a direct child.
func (s *ObjectSchema) Field(name string) (Schema, bool) {
	node, ok := s.shape[name]
	return node, ok
}

// Extend returns a copy with extra or replaced fields.
func (s *ObjectSchema) Extend(shape Shape) *ObjectSchema {
	merged := maps.Clone(s.shape)
	maps.Copy(merged, shape)
	out := Object(merged)
	out.refines = slices.Clone(s.refines)
	out.optional = s.optional
	out.typeMsg = s.typeMsg
	return out
}

func (s *ObjectSchema) Optional() *ObjectSchema {
	s.optional = true
	return s
}

func (s *ObjectSchema) InvalidType(message string) *ObjectSchema {
	s.typeMsg = message
	return s
}

// Refine adds a cross-field check reported at path, relative to this
// object. It sees the normalized record and runs only when every field
// of the object parsed cleanly.
func (s *ObjectSchema) Refine(name, path string, fn func(values map[string]any) error) *ObjectSchema {
	s.refines = append(s.refines, refinement{name: name, path: path, fn: fn})
	return s
}

func (s *ObjectSchema) Parse(c *Context, path string, raw any) any {
	if raw == nil {
		if !s.optional {
			c.Report(path, requiredFailure(""))
		}
		return nil
	}

	in, ok := raw.(map[string]any)
	if !ok {
		c.Report(path, failure(validator.KindCoercion, "type",
			orDefault(s.typeMsg, "Expected object"), keyUnless(s.typeMsg, "validation.object")))
		return nil
	}

	before := len(c.Errors().Under(path))
	out := make(map[string]any, len(s.keys))
	for _, key := range s.keys {
		if c.Done() {
			return out
		}
		v := s.shape[key].Parse(c, fieldpath.Join(path, key), in[key])
		if v != nil {
			out[key] = v
		}
	}

	if len(c.Errors().Under(path)) > before {
		return out
	}

	for _, r := range s.refines {
		rule := validator.Validate(r.name, func(any) error { return r.fn(out) })
		target := fieldpath.Join(path, r.path)
		if verr := rule.Evaluate(target, out); verr != nil {
			c.Report(target, *verr)
		}
	}
	return out
}

func (s *ObjectSchema) Paths(prefix string) []string {
	var paths []string
	if prefix != "" {
		paths = append(paths, prefix)
	}
	for _, key := range s.keys {
		paths = append(paths, s.shape[key].Paths(fieldpath.Join(prefix, key))...)
	}
	for _, r := range s.refines {
		paths = append(paths, fieldpath.Join(prefix, r.path))
	}
	return paths
}
