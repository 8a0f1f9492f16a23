// Package statemachine provides a small finite state machine built from a
// table of transitions.
//
// States and events are anything with a Name. The machine looks transitions
// up in a nested map keyed by state name and event name, and reports an
// *ErrNoTransitionAvailable when the current state does not accept an event.
//
//	machine := statemachine.MustNew(Pristine,
//	    statemachine.WithTransition(Pristine, Touched, Touch),
//	    statemachine.WithTransition(Touched, Pristine, Reset),
//	)
//
//	if err := machine.Fire(Touch); statemachine.IsNoTransitionAvailableError(err) {
//	    // event not valid here
//	}
//
// A machine serializes Fire and Reset with an RWMutex, so it may be shared
// between goroutines.
package statemachine
