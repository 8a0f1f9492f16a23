package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formkit/pkg/statemachine"
)

// machineIn drives a fresh machine into state.
func machineIn(t *testing.T, state State) *fieldMachine {
	t.Helper()
	path := map[State][]Event{
		StatePristine:   nil,
		StateTouched:    {EventTouch},
		StateValidating: {EventValidate},
		StateValid:      {EventValidate, EventPass},
		StateInvalid:    {EventValidate, EventFail},
	}
	m := newFieldMachine()
	for _, ev := range path[state] {
		require.NoError(t, m.Fire(ev))
	}
	require.Equal(t, state, m.Current())
	return m
}

func TestFieldMachine(t *testing.T) {
	t.Parallel()

	t.Run("validation cycle", func(t *testing.T) {
		m := newFieldMachine()
		assert.Equal(t, StatePristine, m.Current())

		require.NoError(t, m.Fire(EventTouch))
		assert.Equal(t, StateTouched, m.Current())
		require.NoError(t, m.Fire(EventValidate))
		assert.Equal(t, StateValidating, m.Current())
		require.NoError(t, m.Fire(EventFail))
		assert.Equal(t, StateInvalid, m.Current())
		require.NoError(t, m.Fire(EventValidate))
		require.NoError(t, m.Fire(EventPass))
		assert.Equal(t, StateValid, m.Current())
	})

	t.Run("results only while validating", func(t *testing.T) {
		m := newFieldMachine()
		assert.False(t, m.CanFire(EventPass))

		err := m.Fire(EventPass)
		require.Error(t, err)
		assert.True(t, IsNoTransition(err))

		var nt *ErrNoTransition
		require.ErrorAs(t, err, &nt)
		assert.Equal(t, StatePristine, nt.State)
		assert.Equal(t, EventPass, nt.Event)
		assert.Equal(t, StatePristine, m.Current())

		var raw *statemachine.ErrNoTransitionAvailable
		require.ErrorAs(t, err, &raw)
		assert.Equal(t, "pristine", raw.StateName)
		assert.Equal(t, "pass", raw.EventName)
	})

	t.Run("reset from every state", func(t *testing.T) {
		for state := range fieldTransitions {
			m := machineIn(t, state)
			require.NoError(t, m.Fire(EventReset), state)
			assert.Equal(t, StatePristine, m.Current())
		}
	})

	t.Run("touch keeps the outcome", func(t *testing.T) {
		for _, state := range []State{StateValid, StateInvalid, StateValidating} {
			m := machineIn(t, state)
			require.NoError(t, m.Fire(EventTouch))
			assert.Equal(t, state, m.Current())
		}
	})
}

func TestShouldValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mode       Mode
		reValidate Mode
		submitted  bool
		touched    bool
		ev         fieldEvent
		want       bool
	}{
		{"submit mode ignores change", OnSubmit, OnChange, false, false, changeEvent, false},
		{"submit mode ignores blur", OnSubmit, OnChange, false, true, blurEvent, false},
		{"blur mode on blur", OnBlur, OnChange, false, false, blurEvent, true},
		{"blur mode on change", OnBlur, OnChange, false, true, changeEvent, false},
		{"change mode on change", OnChange, OnChange, false, false, changeEvent, true},
		{"change mode on blur", OnChange, OnChange, false, true, blurEvent, false},
		{"touched mode before touch", OnTouched, OnChange, false, false, changeEvent, false},
		{"touched mode after touch", OnTouched, OnChange, false, true, changeEvent, true},
		{"touched mode on blur", OnTouched, OnChange, false, false, blurEvent, true},
		{"all on change", All, OnChange, false, false, changeEvent, true},
		{"all on blur", All, OnChange, false, false, blurEvent, true},
		{"revalidate on change", OnSubmit, OnChange, true, false, changeEvent, true},
		{"revalidate on change ignores blur", OnSubmit, OnChange, true, true, blurEvent, false},
		{"revalidate on blur", OnChange, OnBlur, true, true, blurEvent, true},
		{"revalidate on blur ignores change", OnChange, OnBlur, true, true, changeEvent, false},
		{"revalidate on submit", All, OnSubmit, true, true, changeEvent, false},
		{"revalidate all", OnSubmit, All, true, false, blurEvent, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldValidate(tt.mode, tt.reValidate, tt.submitted, tt.touched, tt.ev))
		})
	}
}
