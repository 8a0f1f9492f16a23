package form_test

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formkit/pkg/form"
	"github.com/dmitrymomot/formkit/pkg/schema"
	"github.com/dmitrymomot/formkit/pkg/validator"
)

var phoneRegex = regexp.MustCompile(`^([+]?[\s0-9]+)?(\d{3}|[(]?[0-9]+[)])?([-]?[\s]?[0-9])+$`)

func defaults() form.Values {
	return form.Values{
		"username": "Booi",
		"email":    "booi@gmail.com",
		"age":      12,
		"gender":   "",
		"phone":    []any{map[string]any{"number": ""}},
	}
}

func notAdmin(v any) error {
	if v == "admin@example.com" {
		return errors.New("Enter a different email address")
	}
	return nil
}

func notBlackListed(v any) error {
	if s, _ := v.(string); strings.HasSuffix(s, "baddomain.com") {
		return errors.New("This domain is not supported")
	}
	return nil
}

// rulesForm builds the imperative variant: rules registered per field.
func rulesForm(t *testing.T, opts ...form.Option) *form.Controller {
	t.Helper()
	resolver := form.NewRulesResolver()
	resolver.Convert("age", func(v any) (any, error) {
		n, ok := validator.ToNumber(v)
		if !ok {
			return nil, errors.New("Age must be a number")
		}
		return n, nil
	})
	c := form.New(defaults(), append([]form.Option{form.WithResolver(resolver)}, opts...)...)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Register("username", validator.Required("Username is required"), validator.MinLength(4, "")))
	require.NoError(t, c.Register("email",
		validator.Required("Email is required"),
		validator.Email("Email format is not valid."),
		validator.Validate("notAdmin", notAdmin),
		validator.Validate("notBlackListed", notBlackListed),
	))
	require.NoError(t, c.Register("age",
		validator.Required("Age is required."),
		validator.Min(13, "Minimum age is 13"),
		validator.Max(23, "Maximum age is 23"),
	))
	require.NoError(t, c.Register("gender", validator.Required("Gender is required")))
	return c
}

func profileSchema() *schema.ObjectSchema {
	return schema.Object(schema.Shape{
		"username": schema.String().NonEmpty("Username is required.").Min(4, ""),
		"email": schema.String().
			NonEmpty("Email is required.").
			Email("Email format is not valid.").
			Refine("notAdmin", notAdmin).
			Refine("notBlackListed", notBlackListed),
		"age": schema.Number().
			Required("Age is required").
			InvalidType("Age must be a number").
			NonNegative("Age cannot be negative").
			Min(13, "Minimum age is 13").
			Max(23, "Max age is 23"),
		"gender": schema.String(),
		"phone": schema.Array(schema.Object(schema.Shape{
			"number": schema.String().
				Min(10, "Invalid phone number", schema.WithKind(validator.KindFormat)).
				Regex(phoneRegex, "Invalid number"),
		})),
	})
}

func schemaForm(t *testing.T, opts ...form.Option) *form.Controller {
	t.Helper()
	c := form.New(defaults(), append([]form.Option{form.WithResolver(form.NewSchemaResolver(profileSchema()))}, opts...)...)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNew(t *testing.T) {
	t.Parallel()

	c := form.New(defaults())
	defer c.Close()

	snap := c.Snapshot()
	assert.Equal(t, defaults(), snap.Values)
	assert.Empty(t, snap.Errors)
	assert.False(t, snap.Dirty)
	assert.False(t, snap.Submitted)
	assert.Zero(t, snap.SubmitCount)
	assert.True(t, snap.IsValid)
	assert.Equal(t, form.StrategyRules, c.Strategy())

	v, ok := c.GetValue("phone.0.number")
	require.True(t, ok)
	assert.Equal(t, "", v)
}

func TestHandleSubmit_RequiredFields(t *testing.T) {
	t.Parallel()

	c := rulesForm(t)
	ctx := context.Background()
	require.NoError(t, c.Change(ctx, "age", "18"))
	require.NoError(t, c.Change(ctx, "gender", "other"))
	require.NoError(t, c.Change(ctx, "username", ""))

	called := 0
	err := c.HandleSubmit(ctx, func(context.Context, form.Values) error {
		called++
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, validator.ErrRequired)
	assert.Zero(t, called)

	snap := c.Snapshot()
	assert.Equal(t, map[string]string{"username": "Username is required"}, snap.Errors)
	assert.True(t, snap.Submitted)
	assert.False(t, snap.SubmitSucceeded)
	assert.False(t, snap.Submitting)
	assert.Equal(t, 1, snap.SubmitCount)
	assert.False(t, snap.IsValid)

	verr, ok := c.Errors().First("username")
	require.True(t, ok)
	assert.Equal(t, validator.KindRequired, verr.Kind)
}

func TestHandleSubmit_Valid(t *testing.T) {
	t.Parallel()

	for name, build := range map[string]func(*testing.T, ...form.Option) *form.Controller{
		"rules":  rulesForm,
		"schema": schemaForm,
	} {
		t.Run(name, func(t *testing.T) {
			c := build(t)
			ctx := context.Background()
			require.NoError(t, c.Change(ctx, "age", "18"))
			require.NoError(t, c.Change(ctx, "gender", "female"))
			require.NoError(t, c.Change(ctx, "phone.0.number", "+1 (555) 123-4567"))

			var calls int
			var got form.Values
			err := c.HandleSubmit(ctx, func(_ context.Context, v form.Values) error {
				calls++
				got = v
				return nil
			})
			require.NoError(t, err)

			assert.Equal(t, 1, calls)
			assert.Equal(t, 18.0, got["age"])
			assert.Equal(t, "Booi", got["username"])
			assert.Equal(t, []any{map[string]any{"number": "+1 (555) 123-4567"}}, got["phone"])

			snap := c.Snapshot()
			assert.True(t, snap.SubmitSucceeded)
			assert.Equal(t, 1, snap.SubmitCount)
			assert.Empty(t, snap.Errors)

			stored, _ := c.GetValue("age")
			assert.Equal(t, "18", stored)
		})
	}
}

func TestHandleSubmit_Callbacks(t *testing.T) {
	t.Parallel()

	t.Run("invalid callback", func(t *testing.T) {
		c := schemaForm(t)
		var seen validator.ValidationErrors
		err := c.HandleSubmit(context.Background(),
			func(context.Context, form.Values) error {
				t.Fatal("must not be called")
				return nil
			},
			func(_ context.Context, errs validator.ValidationErrors) { seen = errs },
		)
		require.Error(t, err)
		assert.Equal(t, validator.ExtractValidationErrors(err), seen)
		assert.Equal(t, map[string]string{
			"age":            "Minimum age is 13",
			"phone.0.number": "Invalid phone number",
		}, c.Snapshot().Errors)
	})

	t.Run("handler error", func(t *testing.T) {
		c := rulesForm(t)
		ctx := context.Background()
		require.NoError(t, c.Change(ctx, "age", "20"))
		require.NoError(t, c.Change(ctx, "gender", "male"))

		boom := errors.New("boom")
		err := c.HandleSubmit(ctx, func(context.Context, form.Values) error { return boom })
		assert.ErrorIs(t, err, form.ErrSubmitFailed)
		assert.ErrorIs(t, err, boom)

		snap := c.Snapshot()
		assert.True(t, snap.Submitted)
		assert.False(t, snap.SubmitSucceeded)
		assert.Equal(t, 1, snap.SubmitCount)
	})

	t.Run("submit count grows on every attempt", func(t *testing.T) {
		c := schemaForm(t)
		for range 3 {
			_ = c.HandleSubmit(context.Background(), func(context.Context, form.Values) error { return nil })
		}
		assert.Equal(t, 3, c.Snapshot().SubmitCount)
	})

	t.Run("second submit while running", func(t *testing.T) {
		c := rulesForm(t)
		ctx := context.Background()
		require.NoError(t, c.Change(ctx, "age", "20"))
		require.NoError(t, c.Change(ctx, "gender", "male"))

		entered := make(chan struct{})
		release := make(chan struct{})
		done := make(chan error, 1)
		go func() {
			done <- c.HandleSubmit(ctx, func(context.Context, form.Values) error {
				close(entered)
				<-release
				return nil
			})
		}()

		<-entered
		assert.True(t, c.Snapshot().Submitting)
		err := c.HandleSubmit(ctx, func(context.Context, form.Values) error { return nil })
		assert.ErrorIs(t, err, form.ErrSubmitInProgress)

		close(release)
		require.NoError(t, <-done)
		assert.Equal(t, 1, c.Snapshot().SubmitCount)
	})
}

func TestAgeCoercion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("rules", func(t *testing.T) {
		c := rulesForm(t)

		_, err := c.Trigger(ctx, "age")
		require.NoError(t, err)
		verr, ok := c.Errors().First("age")
		require.True(t, ok)
		assert.Equal(t, validator.KindRange, verr.Kind)
		assert.Equal(t, "Minimum age is 13", verr.Message)

		require.NoError(t, c.SetValue(ctx, "age", "abc", form.ShouldValidate()))
		verr, ok = c.Errors().First("age")
		require.True(t, ok)
		assert.Equal(t, validator.KindCoercion, verr.Kind)
	})

	t.Run("schema", func(t *testing.T) {
		c := schemaForm(t)

		require.NoError(t, c.SetValue(ctx, "age", "12", form.ShouldValidate()))
		verr, ok := c.Errors().First("age")
		require.True(t, ok)
		assert.Equal(t, validator.KindRange, verr.Kind)
		assert.Equal(t, "Minimum age is 13", verr.Message)

		require.NoError(t, c.SetValue(ctx, "age", "abc", form.ShouldValidate()))
		verr, ok = c.Errors().First("age")
		require.True(t, ok)
		assert.Equal(t, validator.KindCoercion, verr.Kind)
		assert.Equal(t, "Age must be a number", verr.Message)
	})
}

func TestPhoneValidation(t *testing.T) {
	t.Parallel()

	c := schemaForm(t)
	ctx := context.Background()

	require.NoError(t, c.SetValue(ctx, "phone.0.number", "123", form.ShouldValidate()))
	verr, ok := c.Errors().First("phone.0.number")
	require.True(t, ok)
	assert.Equal(t, validator.KindFormat, verr.Kind)
	assert.Equal(t, "Invalid phone number", verr.Message)

	require.NoError(t, c.SetValue(ctx, "phone.0.number", "+1 (555) 123-4567", form.ShouldValidate()))
	assert.Empty(t, c.Snapshot().Error("phone.0.number"))
}

func TestEmailCustomRules(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	for name, build := range map[string]func(*testing.T, ...form.Option) *form.Controller{
		"rules":  rulesForm,
		"schema": schemaForm,
	} {
		t.Run(name, func(t *testing.T) {
			c := build(t, form.WithMode(form.OnChange))

			require.NoError(t, c.Change(ctx, "email", "admin@example.com"))
			admin, ok := c.Errors().First("email")
			require.True(t, ok)
			assert.Equal(t, validator.KindCustom, admin.Kind)
			assert.Equal(t, "Enter a different email address", admin.Message)

			require.NoError(t, c.Change(ctx, "email", "someone@baddomain.com"))
			blocked, ok := c.Errors().First("email")
			require.True(t, ok)
			assert.Equal(t, validator.KindCustom, blocked.Kind)
			assert.Equal(t, "This domain is not supported", blocked.Message)
			assert.NotEqual(t, admin.Rule, blocked.Rule)

			require.NoError(t, c.Change(ctx, "email", "booi@gmail.com"))
			assert.Empty(t, c.Snapshot().Error("email"))
		})
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	c := schemaForm(t)
	ctx := context.Background()
	initial := c.Snapshot()

	require.NoError(t, c.Change(ctx, "username", "someone"))
	require.NoError(t, c.Blur(ctx, "username"))
	require.NoError(t, c.SetValue(ctx, "age", "abc", form.ShouldValidate(), form.ShouldDirty()))
	arr, err := c.FieldArray("phone")
	require.NoError(t, err)
	require.NoError(t, arr.Append(map[string]any{"number": "5551234567"}))
	_ = c.HandleSubmit(ctx, func(context.Context, form.Values) error { return nil })

	require.NotEmpty(t, c.Snapshot().Errors)
	require.True(t, c.Snapshot().Dirty)

	require.NoError(t, c.Reset())
	first := c.Snapshot()
	if diff := cmp.Diff(initial, first); diff != "" {
		t.Errorf("snapshot after reset (-want +got):\n%s", diff)
	}
	assert.Equal(t, form.StatePristine, c.FieldState("username").State)
	assert.Equal(t, 1, arr.Len())

	require.NoError(t, c.Reset())
	if diff := cmp.Diff(first, c.Snapshot()); diff != "" {
		t.Errorf("second reset changed the snapshot (-want +got):\n%s", diff)
	}

	t.Run("with new defaults", func(t *testing.T) {
		next := defaults()
		next["username"] = "Mira"
		require.NoError(t, c.Reset(next))
		v, _ := c.GetValue("username")
		assert.Equal(t, "Mira", v)
		assert.False(t, c.Snapshot().Dirty)
		assert.Equal(t, next, c.Defaults())
	})
}

func TestDirtyAndTouched(t *testing.T) {
	t.Parallel()

	c := form.New(defaults())
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Change(ctx, "username", "Booi2"))
	snap := c.Snapshot()
	assert.True(t, snap.Dirty)
	assert.Equal(t, map[string]bool{"username": true}, snap.DirtyFields)
	assert.False(t, snap.Touched)

	require.NoError(t, c.Change(ctx, "username", "Booi"))
	snap = c.Snapshot()
	assert.False(t, snap.Dirty)
	assert.Empty(t, snap.DirtyFields)

	require.NoError(t, c.Blur(ctx, "email"))
	snap = c.Snapshot()
	assert.True(t, snap.Touched)
	assert.Equal(t, map[string]bool{"email": true}, snap.TouchedFields)

	require.NoError(t, c.SetValue(ctx, "gender", "male"))
	assert.False(t, c.FieldState("gender").Dirty)
	require.NoError(t, c.SetValue(ctx, "gender", "male", form.ShouldDirty(), form.ShouldTouch()))
	fs := c.FieldState("gender")
	assert.True(t, fs.Dirty)
	assert.True(t, fs.Touched)
	assert.Equal(t, "male", fs.Value)
}

func TestModes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	cases := []struct {
		mode         form.Mode
		afterChange  bool
		afterBlur    bool
		changeAfterT bool
	}{
		{mode: form.OnSubmit},
		{mode: form.OnChange, afterChange: true, changeAfterT: true},
		{mode: form.OnBlur, afterBlur: true},
		{mode: form.OnTouched, afterBlur: true, changeAfterT: true},
		{mode: form.All, afterChange: true, afterBlur: true, changeAfterT: true},
	}

	for _, tc := range cases {
		t.Run(tc.mode.String(), func(t *testing.T) {
			c := schemaForm(t, form.WithMode(tc.mode))

			require.NoError(t, c.Change(ctx, "age", "5"))
			assert.Equal(t, tc.afterChange, c.Snapshot().Error("age") != "", "after change")

			c.ClearErrors()
			require.NoError(t, c.Blur(ctx, "age"))
			assert.Equal(t, tc.afterBlur, c.Snapshot().Error("age") != "", "after blur")

			c.ClearErrors()
			require.NoError(t, c.Change(ctx, "age", "6"))
			assert.Equal(t, tc.changeAfterT, c.Snapshot().Error("age") != "", "change after touch")
		})
	}

	t.Run("revalidate after submit", func(t *testing.T) {
		c := schemaForm(t, form.WithMode(form.OnSubmit), form.WithReValidateMode(form.OnChange))
		require.Error(t, c.HandleSubmit(ctx, nil))
		require.Equal(t, "Minimum age is 13", c.Snapshot().Error("age"))

		require.NoError(t, c.Change(ctx, "age", "15"))
		assert.Empty(t, c.Snapshot().Error("age"))
	})

	t.Run("revalidate on blur", func(t *testing.T) {
		c := schemaForm(t, form.WithReValidateMode(form.OnBlur))
		require.Error(t, c.HandleSubmit(ctx, nil))

		require.NoError(t, c.Change(ctx, "age", "15"))
		assert.NotEmpty(t, c.Snapshot().Error("age"))
		require.NoError(t, c.Blur(ctx, "age"))
		assert.Empty(t, c.Snapshot().Error("age"))
	})

	t.Run("parse", func(t *testing.T) {
		m, err := form.ParseMode("ONBLUR")
		require.NoError(t, err)
		assert.Equal(t, form.OnBlur, m)
		_, err = form.ParseMode("onHover")
		assert.ErrorIs(t, err, form.ErrUnknownMode)
	})
}

func TestTrigger(t *testing.T) {
	t.Parallel()

	c := schemaForm(t)
	ctx := context.Background()

	ok, err := c.Trigger(ctx, "username")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, c.Snapshot().Errors)

	ok, err = c.Trigger(ctx, "phone")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, map[string]string{"phone.0.number": "Invalid phone number"}, c.Snapshot().Errors)

	ok, err = c.Trigger(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"age", "phone.0.number"}, c.Snapshot().ErrorPaths())

	require.NoError(t, c.Change(ctx, "age", "20"))
	ok, err = c.Trigger(ctx, "age")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"phone.0.number"}, c.Snapshot().ErrorPaths())
}

func TestFieldLifecycle(t *testing.T) {
	t.Parallel()

	c := schemaForm(t, form.WithMode(form.OnTouched))
	ctx := context.Background()

	assert.Equal(t, form.StatePristine, c.FieldState("age").State)

	require.NoError(t, c.Change(ctx, "age", "5"))
	assert.Equal(t, form.StatePristine, c.FieldState("age").State)

	require.NoError(t, c.Blur(ctx, "age"))
	fs := c.FieldState("age")
	assert.Equal(t, form.StateInvalid, fs.State)
	assert.True(t, fs.Invalid())

	require.NoError(t, c.Change(ctx, "age", "15"))
	fs = c.FieldState("age")
	assert.Equal(t, form.StateValid, fs.State)
	assert.Nil(t, fs.Error)

	require.NoError(t, c.Blur(ctx, "username"))
	assert.Equal(t, form.StateValid, c.FieldState("username").State)

	require.NoError(t, c.Register("gender"))
	require.NoError(t, c.Reset())
	assert.Equal(t, form.StatePristine, c.FieldState("age").State)
}

func TestSetError(t *testing.T) {
	t.Parallel()

	c := schemaForm(t)

	require.NoError(t, c.SetError("email", "Already taken"))
	assert.Equal(t, "Already taken", c.Snapshot().Error("email"))
	assert.Equal(t, form.StateInvalid, c.FieldState("email").State)

	require.NoError(t, c.SetError("phone.3.number", "Unreachable"))

	err := c.SetError("nickname", "nope")
	assert.ErrorIs(t, err, form.ErrUnknownField)
	assert.NotContains(t, c.Snapshot().Errors, "nickname")

	c.ClearErrors("phone")
	assert.Equal(t, []string{"email"}, c.Snapshot().ErrorPaths())
	c.ClearErrors()
	assert.Empty(t, c.Snapshot().Errors)
}

func TestErrorMapOnlyHoldsKnownPaths(t *testing.T) {
	t.Parallel()

	c := form.New(form.Values{"a": ""}, form.WithResolver(resolverFunc(func(context.Context, form.Values, []string) (form.Values, validator.ValidationErrors, error) {
		return nil, validator.ValidationErrors{
			{Field: "a", Kind: validator.KindRequired, Message: "A is required"},
			{Field: "ghost", Kind: validator.KindRequired, Message: "not in the form"},
		}, nil
	}, "a")))
	defer c.Close()

	ok, err := c.Trigger(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, map[string]string{"a": "A is required"}, c.Snapshot().Errors)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("rules on a schema resolver", func(t *testing.T) {
		c := schemaForm(t)
		err := c.Register("username", validator.Required(""))
		assert.ErrorIs(t, err, form.ErrRulesUnsupported)
		assert.NoError(t, c.Register("username"))
	})

	t.Run("wildcard rules follow the array", func(t *testing.T) {
		c := rulesForm(t)
		require.NoError(t, c.Register("phone.*.number", validator.Required("Phone is required")))
		arr, err := c.FieldArray("phone")
		require.NoError(t, err)
		require.NoError(t, arr.Append(map[string]any{"number": "555"}))

		_, err = c.Trigger(context.Background(), "phone")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"phone.0.number": "Phone is required"}, c.Snapshot().Errors)
	})

	t.Run("unregister drops rules and state", func(t *testing.T) {
		c := rulesForm(t)
		_, err := c.Trigger(context.Background())
		require.NoError(t, err)
		require.Contains(t, c.Snapshot().Errors, "gender")

		require.NoError(t, c.Unregister("gender"))
		assert.NotContains(t, c.Snapshot().Errors, "gender")

		_, err = c.Trigger(context.Background())
		require.NoError(t, err)
		assert.NotContains(t, c.Snapshot().Errors, "gender")
	})

	t.Run("invalid path", func(t *testing.T) {
		c := form.New(nil)
		defer c.Close()
		assert.Error(t, c.Register("a..b"))
		assert.Error(t, c.Change(context.Background(), "", "x"))
	})
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	c := schemaForm(t, form.WithMode(form.OnChange))
	ctx := context.Background()

	var mu sync.Mutex
	var updates []form.Update
	unsubscribe := c.Subscribe(func(u form.Update) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, u)
	})

	require.NoError(t, c.Change(ctx, "age", "5"))

	mu.Lock()
	require.Len(t, updates, 2)
	assert.Equal(t, []string{"age"}, updates[0].Fields)
	assert.Equal(t, "5", updates[0].Snapshot.Values["age"])
	assert.Equal(t, []string{"age"}, updates[1].Fields)
	assert.Equal(t, "Minimum age is 13", updates[1].Snapshot.Errors["age"])
	assert.True(t, updates[1].Affects("age"))
	assert.False(t, updates[1].Affects("username"))
	mu.Unlock()

	require.NoError(t, c.Reset())
	mu.Lock()
	require.Len(t, updates, 3)
	assert.Nil(t, updates[2].Fields)
	assert.True(t, updates[2].Affects("username"))
	mu.Unlock()

	unsubscribe()
	require.NoError(t, c.Change(ctx, "age", "15"))
	mu.Lock()
	assert.Len(t, updates, 3)
	mu.Unlock()
}

// blockingResolver holds its first run until the run's context ends and
// then reports a stale error.
type blockingResolver struct {
	started chan struct{}
	calls   atomic.Int32
}

func newBlockingResolver() *blockingResolver {
	return &blockingResolver{started: make(chan struct{})}
}

func (r *blockingResolver) Resolve(ctx context.Context, values form.Values, _ []string) (form.Values, validator.ValidationErrors, error) {
	if r.calls.Add(1) == 1 {
		close(r.started)
		<-ctx.Done()
		return nil, validator.ValidationErrors{{Field: "age", Kind: validator.KindRange, Message: "stale"}}, nil
	}
	return values, nil, nil
}

func (r *blockingResolver) Covers(string) bool { return true }

func TestSupersede(t *testing.T) {
	t.Parallel()

	resolver := newBlockingResolver()
	c := form.New(defaults(), form.WithResolver(resolver))
	defer c.Close()
	ctx := context.Background()

	first := make(chan error, 1)
	go func() {
		_, err := c.Trigger(ctx)
		first <- err
	}()
	<-resolver.started
	assert.True(t, c.Snapshot().IsValidating)

	ok, err := c.Trigger(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	select {
	case err := <-first:
		assert.ErrorIs(t, err, form.ErrSuperseded)
	case <-time.After(time.Second):
		t.Fatal("superseded run did not return")
	}
	assert.Empty(t, c.Snapshot().Errors)
	assert.False(t, c.Snapshot().IsValidating)
}

// gatedResolver holds its first run until release is closed, then reports
// first. Later runs pass.
type gatedResolver struct {
	started chan struct{}
	release chan struct{}
	first   validator.ValidationErrors
	calls   atomic.Int32
}

func newGatedResolver(first ...validator.ValidationError) *gatedResolver {
	return &gatedResolver{
		started: make(chan struct{}),
		release: make(chan struct{}),
		first:   first,
	}
}

func (r *gatedResolver) Resolve(ctx context.Context, values form.Values, _ []string) (form.Values, validator.ValidationErrors, error) {
	if r.calls.Add(1) == 1 {
		close(r.started)
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
		return values, r.first, nil
	}
	return values, nil, nil
}

func (r *gatedResolver) Covers(string) bool { return true }

func TestSupersede_FieldRunsDuringSubmit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("change does not abort the submission", func(t *testing.T) {
		t.Parallel()
		resolver := newGatedResolver()
		c := form.New(defaults(), form.WithResolver(resolver), form.WithMode(form.OnChange))
		defer c.Close()

		var submitted atomic.Pointer[form.Values]
		done := make(chan error, 1)
		go func() {
			done <- c.HandleSubmit(ctx, func(_ context.Context, v form.Values) error {
				submitted.Store(&v)
				return nil
			})
		}()
		<-resolver.started

		require.NoError(t, c.Change(ctx, "username", "Kate"))
		assert.True(t, c.Snapshot().Submitting)
		close(resolver.release)

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("submission did not return")
		}
		require.NotNil(t, submitted.Load())
		assert.Equal(t, "Booi", (*submitted.Load())["username"])

		snap := c.Snapshot()
		assert.Equal(t, 1, snap.SubmitCount)
		assert.True(t, snap.SubmitSucceeded)
		assert.False(t, snap.Submitting)
		assert.Equal(t, "Kate", snap.Values["username"])
	})

	t.Run("newer field result survives the full run", func(t *testing.T) {
		t.Parallel()
		resolver := newGatedResolver(validator.ValidationError{Field: "username", Kind: validator.KindRequired, Message: "stale"})
		c := form.New(defaults(), form.WithResolver(resolver), form.WithMode(form.OnChange))
		defer c.Close()

		done := make(chan bool, 1)
		go func() {
			ok, _ := c.Trigger(ctx)
			done <- ok
		}()
		<-resolver.started

		require.NoError(t, c.Change(ctx, "username", "Kate"))
		assert.Equal(t, form.StateValid, c.FieldState("username").State)
		close(resolver.release)

		select {
		case ok := <-done:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("full run did not return")
		}
		assert.Empty(t, c.Snapshot().Errors)
		assert.Equal(t, form.StateValid, c.FieldState("username").State)
	})

	t.Run("reset drops the submission", func(t *testing.T) {
		t.Parallel()
		resolver := newBlockingResolver()
		c := form.New(defaults(), form.WithResolver(resolver))
		defer c.Close()

		var called atomic.Bool
		done := make(chan error, 1)
		go func() {
			done <- c.HandleSubmit(ctx, func(context.Context, form.Values) error {
				called.Store(true)
				return nil
			})
		}()
		<-resolver.started

		require.NoError(t, c.Reset())

		select {
		case err := <-done:
			assert.ErrorIs(t, err, form.ErrSuperseded)
		case <-time.After(time.Second):
			t.Fatal("submission did not return")
		}
		assert.False(t, called.Load())

		snap := c.Snapshot()
		assert.Zero(t, snap.SubmitCount)
		assert.False(t, snap.Submitted)
		assert.False(t, snap.Submitting)
		assert.False(t, snap.SubmitSucceeded)
		assert.Empty(t, snap.Errors)
	})

	t.Run("reset during the callback drops the submission", func(t *testing.T) {
		t.Parallel()
		c := form.New(defaults())
		defer c.Close()

		err := c.HandleSubmit(ctx, func(context.Context, form.Values) error {
			return c.Reset()
		})
		require.NoError(t, err)

		snap := c.Snapshot()
		assert.Zero(t, snap.SubmitCount)
		assert.False(t, snap.Submitted)
		assert.False(t, snap.SubmitSucceeded)
		assert.False(t, snap.Submitting)
	})
}

func TestClose(t *testing.T) {
	t.Parallel()

	resolver := newBlockingResolver()
	c := form.New(defaults(), form.WithResolver(resolver))
	ctx := context.Background()

	var notified atomic.Int32
	c.Subscribe(func(form.Update) { notified.Add(1) })

	pending := make(chan error, 1)
	go func() {
		_, err := c.Trigger(ctx)
		pending <- err
	}()
	<-resolver.started
	before := notified.Load()

	require.NoError(t, c.Close())
	select {
	case err := <-pending:
		assert.ErrorIs(t, err, form.ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("pending run did not return")
	}

	assert.Empty(t, c.Snapshot().Errors)
	assert.Equal(t, before, notified.Load())
	assert.True(t, c.Closed())

	assert.ErrorIs(t, c.Change(ctx, "age", "1"), form.ErrClosed)
	assert.ErrorIs(t, c.Blur(ctx, "age"), form.ErrClosed)
	assert.ErrorIs(t, c.SetValue(ctx, "age", "1"), form.ErrClosed)
	assert.ErrorIs(t, c.Reset(), form.ErrClosed)
	assert.ErrorIs(t, c.HandleSubmit(ctx, nil), form.ErrClosed)
	_, err := c.Trigger(ctx)
	assert.ErrorIs(t, err, form.ErrClosed)
	_, err = c.FieldArray("phone")
	assert.ErrorIs(t, err, form.ErrClosed)
	assert.NoError(t, c.Close())
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()

	c := schemaForm(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := c.Trigger(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.Snapshot().Errors)
}

type funcResolver struct {
	fn    func(context.Context, form.Values, []string) (form.Values, validator.ValidationErrors, error)
	paths []string
}

func resolverFunc(fn func(context.Context, form.Values, []string) (form.Values, validator.ValidationErrors, error), paths ...string) *funcResolver {
	return &funcResolver{fn: fn, paths: paths}
}

func (r *funcResolver) Resolve(ctx context.Context, v form.Values, f []string) (form.Values, validator.ValidationErrors, error) {
	return r.fn(ctx, v, f)
}

func (r *funcResolver) Covers(path string) bool {
	return slices.Contains(r.paths, path)
}
