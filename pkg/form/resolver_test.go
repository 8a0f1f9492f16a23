package form_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formkit/pkg/form"
	"github.com/dmitrymomot/formkit/pkg/schema"
	"github.com/dmitrymomot/formkit/pkg/validator"
)

func TestRulesResolver(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	newResolver := func() *form.RulesResolver {
		r := form.NewRulesResolver()
		r.Register("name", validator.Required("Name is required"), validator.MinLength(3, "Too short"))
		r.Register("tags.*.label", validator.Required("Label is required"))
		r.Convert("age", func(v any) (any, error) {
			return strconv.Atoi(v.(string))
		})
		return r
	}

	t.Run("first failing rule per field", func(t *testing.T) {
		r := newResolver()
		_, errs, err := r.Resolve(ctx, form.Values{"name": "", "age": "1"}, nil)
		require.NoError(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, "Name is required", errs[0].Message)
	})

	t.Run("wildcards expand over the list", func(t *testing.T) {
		r := newResolver()
		values := form.Values{
			"name": "Mira",
			"age":  "30",
			"tags": []any{
				map[string]any{"label": "a"},
				map[string]any{"label": ""},
				map[string]any{"label": " "},
			},
		}
		_, errs, err := r.Resolve(ctx, values, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"tags.1.label", "tags.2.label"}, errs.Fields())
	})

	t.Run("field filter", func(t *testing.T) {
		r := newResolver()
		values := form.Values{"name": "", "tags": []any{map[string]any{"label": ""}}}
		out, errs, err := r.Resolve(ctx, values, []string{"tags"})
		require.NoError(t, err)
		assert.Nil(t, out)
		assert.Equal(t, []string{"tags.0.label"}, errs.Fields())
	})

	t.Run("converters apply to a passing record", func(t *testing.T) {
		r := newResolver()
		values := form.Values{"name": "Mira", "age": "30"}
		out, errs, err := r.Resolve(ctx, values, nil)
		require.NoError(t, err)
		assert.Empty(t, errs)
		assert.Equal(t, 30, out["age"])
		assert.Equal(t, "30", values["age"])
	})

	t.Run("converter failure is a coercion error", func(t *testing.T) {
		r := newResolver()
		_, errs, err := r.Resolve(ctx, form.Values{"name": "Mira", "age": "old"}, nil)
		require.NoError(t, err)
		verr, ok := errs.First("age")
		require.True(t, ok)
		assert.Equal(t, validator.KindCoercion, verr.Kind)
		assert.ErrorIs(t, errs, validator.ErrCoercion)
	})

	t.Run("covers", func(t *testing.T) {
		r := newResolver()
		assert.True(t, r.Covers("name"))
		assert.True(t, r.Covers("age"))
		assert.True(t, r.Covers("tags.7.label"))
		assert.False(t, r.Covers("tags.x.label"))
		assert.False(t, r.Covers("email"))

		r.Unregister("name")
		assert.False(t, r.Covers("name"))
		_, errs, err := r.Resolve(ctx, form.Values{"name": "", "age": "1"}, nil)
		require.NoError(t, err)
		assert.Empty(t, errs)
	})

	t.Run("cancelled", func(t *testing.T) {
		r := newResolver()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := r.Resolve(cctx, form.Values{"name": "x"}, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSchemaResolver(t *testing.T) {
	t.Parallel()

	s := schema.Object(schema.Shape{
		"name": schema.String().NonEmpty("Name is required"),
		"age":  schema.Number().Int("Whole years only").Min(18, "Adults only"),
	})
	r := form.NewSchemaResolver(s)
	ctx := context.Background()

	assert.Same(t, s, r.Schema())
	assert.True(t, r.Covers("age"))
	assert.False(t, r.Covers("nickname"))

	out, errs, err := r.Resolve(ctx, form.Values{"name": "Mira", "age": "21", "extra": true}, nil)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, form.Values{"name": "Mira", "age": 21}, out)

	_, errs, err = r.Resolve(ctx, form.Values{"name": "", "age": "12"}, []string{"age"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"age": "Adults only"}, errs.Map())
}

func TestNewResolver(t *testing.T) {
	t.Parallel()

	strategy, err := form.ParseStrategy(" Schema ")
	require.NoError(t, err)
	assert.Equal(t, form.StrategySchema, strategy)

	_, err = form.ParseStrategy("magic")
	assert.ErrorIs(t, err, form.ErrUnknownStrategy)

	r, err := form.NewResolver(form.StrategyRules, nil)
	require.NoError(t, err)
	assert.IsType(t, &form.RulesResolver{}, r)

	_, err = form.NewResolver(form.StrategySchema, nil)
	assert.ErrorIs(t, err, form.ErrUnknownStrategy)

	r, err = form.NewResolver(form.StrategySchema, schema.Object(schema.Shape{}))
	require.NoError(t, err)
	c := form.New(nil, form.WithResolver(r))
	defer c.Close()
	assert.Equal(t, form.StrategySchema, c.Strategy())
}
