package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formkit/pkg/validator"
)

func TestValidationErrors_Error(t *testing.T) {
	t.Run("returns default message when no errors", func(t *testing.T) {
		var errs validator.ValidationErrors
		assert.Equal(t, "validation failed", errs.Error())
	})

	t.Run("returns formatted message with single error", func(t *testing.T) {
		var errs validator.ValidationErrors
		errs.Add(validator.ValidationError{Field: "email", Message: "is required"})
		assert.Equal(t, "validation failed: email: is required", errs.Error())
	})

	t.Run("returns formatted message with multiple errors", func(t *testing.T) {
		var errs validator.ValidationErrors
		errs.Add(validator.ValidationError{Field: "email", Message: "is required"})
		errs.Add(validator.ValidationError{Field: "age", Message: "too low"})

		msg := errs.Error()
		assert.Contains(t, msg, "email: is required")
		assert.Contains(t, msg, "age: too low")
	})
}

func TestValidationErrors_Accessors(t *testing.T) {
	errs := validator.ValidationErrors{
		{Field: "phone.0.number", Kind: validator.KindFormat, Message: "Invalid phone number"},
		{Field: "phone.0.number", Kind: validator.KindFormat, Message: "Invalid number"},
		{Field: "age", Kind: validator.KindRange, Message: "Minimum age is 13"},
	}

	t.Run("map keeps the first message per field", func(t *testing.T) {
		assert.Equal(t, map[string]string{
			"phone.0.number": "Invalid phone number",
			"age":            "Minimum age is 13",
		}, errs.Map())
	})

	t.Run("fields are listed once in first-seen order", func(t *testing.T) {
		assert.Equal(t, []string{"phone.0.number", "age"}, errs.Fields())
	})

	t.Run("get returns every message of a field", func(t *testing.T) {
		assert.Equal(t, []string{"Invalid phone number", "Invalid number"}, errs.Get("phone.0.number"))
		assert.Nil(t, errs.Get("email"))
	})

	t.Run("first returns the first error of a field", func(t *testing.T) {
		first, ok := errs.First("age")
		require.True(t, ok)
		assert.Equal(t, validator.KindRange, first.Kind)

		_, ok = errs.First("email")
		assert.False(t, ok)
	})

	t.Run("by kind filters", func(t *testing.T) {
		assert.Len(t, errs.ByKind(validator.KindFormat), 2)
		assert.Empty(t, errs.ByKind(validator.KindCoercion))
	})

	t.Run("under selects a subtree", func(t *testing.T) {
		assert.Len(t, errs.Under("phone"), 2)
		assert.Len(t, errs.Under("phone.0"), 2)
		assert.Empty(t, errs.Under("pho"))
	})

	t.Run("has", func(t *testing.T) {
		assert.True(t, errs.Has("age"))
		assert.False(t, errs.Has("username"))
	})
}

func TestValidationErrors_Is(t *testing.T) {
	errs := validator.ValidationErrors{
		{Field: "age", Kind: validator.KindCoercion, Message: "Age must be a number"},
	}
	wrapped := fmt.Errorf("submit: %w", errs)

	assert.ErrorIs(t, wrapped, validator.ErrValidationFailed)
	assert.ErrorIs(t, wrapped, validator.ErrCoercion)
	assert.NotErrorIs(t, wrapped, validator.ErrOutOfRange)
}

func TestExtractValidationErrors(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Nil(t, validator.ExtractValidationErrors(nil))
		assert.False(t, validator.IsValidationError(nil))
	})

	t.Run("wrapped validation errors", func(t *testing.T) {
		errs := validator.ValidationErrors{{Field: "email", Message: "Email is required."}}
		err := fmt.Errorf("outer: %w", errs)

		assert.True(t, validator.IsValidationError(err))
		assert.Equal(t, errs, validator.ExtractValidationErrors(err))
	})

	t.Run("other error", func(t *testing.T) {
		err := errors.New("boom")
		assert.Nil(t, validator.ExtractValidationErrors(err))
		assert.False(t, validator.IsValidationError(err))
	})
}

func TestApply(t *testing.T) {
	t.Run("returns nil when all results pass", func(t *testing.T) {
		assert.NoError(t, validator.Apply(nil, nil))
	})

	t.Run("collects every failure", func(t *testing.T) {
		err := validator.Apply(
			validator.Required("Name is required").Evaluate("username", ""),
			nil,
			validator.Min(13, "Minimum age is 13").Evaluate("age", 12),
		)
		require.Error(t, err)

		errs := validator.ExtractValidationErrors(err)
		require.Len(t, errs, 2)
		assert.Equal(t, "username", errs[0].Field)
		assert.Equal(t, "age", errs[1].Field)
	})
}

func TestRules_Evaluate(t *testing.T) {
	rules := validator.Rules{
		validator.Required("Name is required"),
		validator.MinLength(4, "Minimum characters should be four"),
		validator.MaxLength(8, ""),
	}

	t.Run("first failing rule wins", func(t *testing.T) {
		verr := rules.Evaluate("username", "")
		require.NotNil(t, verr)
		assert.Equal(t, "Name is required", verr.Message)
		assert.Equal(t, validator.KindRequired, verr.Kind)
		assert.Equal(t, "username", verr.Field)
	})

	t.Run("declaration order decides", func(t *testing.T) {
		verr := rules.Evaluate("username", "abc")
		require.NotNil(t, verr)
		assert.Equal(t, "minLength", verr.Rule)
		assert.Equal(t, "Minimum characters should be four", verr.Message)
	})

	t.Run("default message keeps translation key and values", func(t *testing.T) {
		verr := rules.Evaluate("username", "abcdefghij")
		require.NotNil(t, verr)
		assert.Equal(t, "must be at most 8 characters long", verr.Message)
		assert.Equal(t, "validation.max_length", verr.TranslationKey)
		assert.Equal(t, 8, verr.TranslationValues["max"])
		assert.Equal(t, "username", verr.TranslationValues["field"])
	})

	t.Run("valid value", func(t *testing.T) {
		assert.Nil(t, rules.Evaluate("username", "Booi"))
	})

	t.Run("evaluate all reports every failure", func(t *testing.T) {
		errs := validator.Rules{
			validator.MinLength(10, "too short"),
			validator.MatchesRegex(`^\d+$`, "digits only"),
		}.EvaluateAll("phone", "12a")
		assert.Equal(t, []string{"too short", "digits only"}, errs.Get("phone"))
	})
}

func TestRule_As(t *testing.T) {
	rule := validator.MinLength(10, "Invalid phone number").As(validator.KindFormat)
	verr := rule.Evaluate("phone.0.number", "123")
	require.NotNil(t, verr)
	assert.Equal(t, validator.KindFormat, verr.Kind)
	assert.ErrorIs(t, *verr, validator.ErrInvalidFormat)
}
