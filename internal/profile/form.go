package profile

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrymomot/formkit/pkg/form"
	"github.com/dmitrymomot/formkit/pkg/schema"
)

//go:embed schema.yaml
var schemaYAML []byte

var (
	schemaOnce sync.Once
	schemaObj  *schema.ObjectSchema
	schemaErr  error
)

// Schema returns the declarative profile schema. It is parsed once; schemas
// are read-only after construction and safe to share.
func Schema() (*schema.ObjectSchema, error) {
	schemaOnce.Do(func() {
		schemaObj, schemaErr = schema.LoadYAML(schemaYAML, Registry())
	})
	return schemaObj, schemaErr
}

// New returns a profile form controller validated with strategy. opts are
// applied after the resolver, so a caller-supplied WithResolver wins.
func New(strategy form.Strategy, now time.Time, opts ...form.Option) (*form.Controller, error) {
	var resolver form.Resolver
	switch strategy {
	case form.StrategyRules:
		resolver = RulesResolver()
	case form.StrategySchema:
		s, err := Schema()
		if err != nil {
			return nil, fmt.Errorf("profile schema: %w", err)
		}
		resolver = form.NewSchemaResolver(s)
	default:
		return nil, fmt.Errorf("%w: %q", form.ErrUnknownStrategy, strategy)
	}

	c := form.New(Defaults(now), append([]form.Option{
		form.WithName("profile"),
		form.WithResolver(resolver),
	}, opts...)...)

	if strategy == form.StrategyRules {
		for path, rules := range Rules() {
			if err := c.Register(path, rules...); err != nil {
				_ = c.Close()
				return nil, fmt.Errorf("register %s: %w", path, err)
			}
		}
	}
	return c, nil
}
