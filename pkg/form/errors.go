package form

import (
	"errors"
	"fmt"
)

var (
	ErrClosed           = errors.New("form is closed")
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrSubmitFailed     = errors.New("submit handler failed")
	ErrSuperseded       = errors.New("validation superseded by a newer run")
	ErrRemoveDenied     = errors.New("remove denied by policy")
	ErrIndexOutOfRange  = errors.New("field array index out of range")
	ErrUnknownField     = errors.New("unknown field")
	ErrUnknownStrategy  = errors.New("unknown validation strategy")
	ErrUnknownMode      = errors.New("unknown validation mode")
	ErrUnknownPolicy    = errors.New("unknown remove policy")
	ErrNotArray         = errors.New("field is not an array")
	ErrRulesUnsupported = errors.New("resolver does not accept field rules")
)

// ErrNoTransition reports a field lifecycle event that is not valid in
// the field's current state.
type ErrNoTransition struct {
	State State
	Event Event
	err   error
}

func (e *ErrNoTransition) Error() string {
	return fmt.Sprintf("no transition from state '%s' for event '%s'", e.State, e.Event)
}

// Unwrap returns the underlying *statemachine.ErrNoTransitionAvailable.
func (e *ErrNoTransition) Unwrap() error { return e.err }

// IsNoTransition reports whether err is an *ErrNoTransition.
func IsNoTransition(err error) bool {
	var e *ErrNoTransition
	return errors.As(err, &e)
}
