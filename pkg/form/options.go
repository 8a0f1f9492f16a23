package form

import (
	"log/slog"
)

// Option configures a Controller.
type Option func(*Controller)

// WithResolver sets the validation backend. The default is an empty
// RulesResolver that fields are registered on.
func WithResolver(r Resolver) Option {
	return func(c *Controller) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithMode sets when validation runs before the first submission.
func WithMode(m Mode) Option {
	return func(c *Controller) {
		c.mode = m
	}
}

// WithReValidateMode sets when validation runs after the first submission.
func WithReValidateMode(m Mode) Option {
	return func(c *Controller) {
		c.reValidate = m
	}
}

// WithLogger sets the logger for validation and submission events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithName names the form in log records.
func WithName(name string) Option {
	return func(c *Controller) {
		c.name = name
	}
}

// WithKeyGenerator sets the identity key source of field arrays.
func WithKeyGenerator(g KeyGenerator) Option {
	return func(c *Controller) {
		if g != nil {
			c.keys = g
		}
	}
}

// SetValueOption adjusts a SetValue call.
type SetValueOption func(*setValueConfig)

type setValueConfig struct {
	validate bool
	dirty    bool
	touch    bool
}

// ShouldValidate runs validation of the field after the update.
func ShouldValidate() SetValueOption {
	return func(c *setValueConfig) { c.validate = true }
}

// ShouldDirty recomputes the field's dirty flag against its default.
func ShouldDirty() SetValueOption {
	return func(c *setValueConfig) { c.dirty = true }
}

// ShouldTouch marks the field as touched.
func ShouldTouch() SetValueOption {
	return func(c *setValueConfig) { c.touch = true }
}
