package statemachine_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formkit/pkg/statemachine"
)

const (
	Draft     = statemachine.StringState("draft")
	InReview  = statemachine.StringState("in_review")
	Approved  = statemachine.StringState("approved")
	Submit    = statemachine.StringEvent("submit")
	Approve   = statemachine.StringEvent("approve")
	Withdraw  = statemachine.StringEvent("withdraw")
	Undefined = statemachine.StringEvent("undefined")
)

func TestStateMachine(t *testing.T) {
	t.Parallel()

	t.Run("basic transitions", func(t *testing.T) {
		t.Parallel()
		sm := statemachine.MustNew(Draft,
			statemachine.WithTransition(Draft, InReview, Submit),
			statemachine.WithTransition(InReview, Approved, Approve),
		)
		assert.Equal(t, Draft, sm.Current())
		assert.True(t, sm.CanFire(Submit))
		assert.False(t, sm.CanFire(Approve))

		require.NoError(t, sm.Fire(Submit))
		assert.Equal(t, InReview, sm.Current())
		require.NoError(t, sm.Fire(Approve))
		assert.Equal(t, Approved, sm.Current())

		require.NoError(t, sm.Reset())
		assert.Equal(t, Draft, sm.Current())
	})

	t.Run("no transition available", func(t *testing.T) {
		t.Parallel()
		sm := statemachine.MustNew(Draft, statemachine.WithTransition(Draft, InReview, Submit))

		err := sm.Fire(Undefined)
		require.Error(t, err)
		assert.True(t, statemachine.IsNoTransitionAvailableError(err))

		var nt *statemachine.ErrNoTransitionAvailable
		require.True(t, errors.As(err, &nt))
		assert.Equal(t, "draft", nt.StateName)
		assert.Equal(t, "undefined", nt.EventName)
		assert.Equal(t, Draft, sm.Current())
	})

	t.Run("nil event", func(t *testing.T) {
		t.Parallel()
		sm := statemachine.MustNew(Draft)
		assert.ErrorIs(t, sm.Fire(nil), statemachine.ErrInvalidEvent)
		assert.False(t, sm.CanFire(nil))
	})

	t.Run("self transition", func(t *testing.T) {
		t.Parallel()
		sm := statemachine.MustNew(Draft, statemachine.WithTransition(Draft, Draft, Withdraw))
		require.NoError(t, sm.Fire(Withdraw))
		assert.Equal(t, Draft, sm.Current())
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil initial state", func(t *testing.T) {
		t.Parallel()
		_, err := statemachine.New(nil)
		assert.Error(t, err)
	})

	t.Run("invalid transition", func(t *testing.T) {
		t.Parallel()
		_, err := statemachine.New(Draft, statemachine.WithTransition(Draft, nil, Submit))
		assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)
	})

	t.Run("duplicate transition", func(t *testing.T) {
		t.Parallel()
		_, err := statemachine.New(Draft,
			statemachine.WithTransition(Draft, InReview, Submit),
			statemachine.WithTransition(Draft, Approved, Submit),
		)
		assert.ErrorIs(t, err, statemachine.ErrDuplicateTransition)
	})

	t.Run("bulk transitions", func(t *testing.T) {
		t.Parallel()
		sm, err := statemachine.New(Draft, statemachine.WithTransitions(
			statemachine.Transition{From: Draft, To: InReview, Event: Submit},
			statemachine.Transition{From: InReview, To: Approved, Event: Approve},
		))
		require.NoError(t, err)
		require.NoError(t, sm.Fire(Submit))
		require.NoError(t, sm.Fire(Approve))
		assert.Equal(t, Approved, sm.Current())
	})

	t.Run("bulk transition error names the index", func(t *testing.T) {
		t.Parallel()
		_, err := statemachine.New(Draft, statemachine.WithTransitions(
			statemachine.Transition{From: Draft, To: InReview, Event: Submit},
			statemachine.Transition{From: InReview, Event: Approve},
		))
		require.ErrorIs(t, err, statemachine.ErrInvalidTransition)
		assert.Contains(t, err.Error(), "transition[1] in_review-><nil> on approve")
	})

	t.Run("MustNew panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			statemachine.MustNew(nil)
		})
	})
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()
	sm := statemachine.MustNew(Draft,
		statemachine.WithTransition(Draft, InReview, Submit),
		statemachine.WithTransition(InReview, Draft, Withdraw),
	)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sm.Fire(Submit)
			_ = sm.CanFire(Withdraw)
			_ = sm.Fire(Withdraw)
			_ = sm.Current()
		}()
	}
	wg.Wait()
	assert.Contains(t, []statemachine.State{Draft, InReview}, sm.Current())
}
