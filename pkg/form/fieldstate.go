package form

import "github.com/dmitrymomot/formkit/pkg/statemachine"

// State is a field lifecycle state.
type State string

const (
	StatePristine   State = "pristine"
	StateTouched    State = "touched"
	StateValidating State = "validating"
	StateValid      State = "valid"
	StateInvalid    State = "invalid"
)

func (s State) String() string { return string(s) }

// Name implements statemachine.State.
func (s State) Name() string { return string(s) }

// Event drives a field between states.
type Event string

const (
	EventTouch    Event = "touch"
	EventValidate Event = "validate"
	EventPass     Event = "pass"
	EventFail     Event = "fail"
	EventReset    Event = "reset"
)

func (e Event) String() string { return string(e) }

// Name implements statemachine.Event.
func (e Event) Name() string { return string(e) }

// fieldTransitions is indexed [from][event] → to. Pass and fail are only
// accepted while validating; every state re-enters validating on change.
var fieldTransitions = map[State]map[Event]State{
	StatePristine: {
		EventTouch:    StateTouched,
		EventValidate: StateValidating,
		EventReset:    StatePristine,
	},
	StateTouched: {
		EventTouch:    StateTouched,
		EventValidate: StateValidating,
		EventReset:    StatePristine,
	},
	StateValidating: {
		EventTouch:    StateValidating,
		EventValidate: StateValidating,
		EventPass:     StateValid,
		EventFail:     StateInvalid,
		EventReset:    StatePristine,
	},
	StateValid: {
		EventTouch:    StateValid,
		EventValidate: StateValidating,
		EventReset:    StatePristine,
	},
	StateInvalid: {
		EventTouch:    StateInvalid,
		EventValidate: StateValidating,
		EventReset:    StatePristine,
	},
}

// fieldMachine tracks one field. The controller's mutex serializes access.
type fieldMachine struct {
	sm statemachine.StateMachine
}

func newFieldMachine() *fieldMachine {
	opts := make([]statemachine.Option, 0, len(fieldTransitions)*len(fieldTransitions[StateValidating]))
	for from, byEvent := range fieldTransitions {
		for ev, to := range byEvent {
			opts = append(opts, statemachine.WithTransition(from, to, ev))
		}
	}
	return &fieldMachine{sm: statemachine.MustNew(StatePristine, opts...)}
}

func (m *fieldMachine) Current() State {
	return m.sm.Current().(State)
}

func (m *fieldMachine) CanFire(ev Event) bool {
	return m.sm.CanFire(ev)
}

func (m *fieldMachine) Fire(ev Event) error {
	if err := m.sm.Fire(ev); err != nil {
		if statemachine.IsNoTransitionAvailableError(err) {
			return &ErrNoTransition{State: m.Current(), Event: ev, err: err}
		}
		return err
	}
	return nil
}
