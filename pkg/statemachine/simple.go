package statemachine

import (
	"sync"
)

// SimpleStateMachine is a thread-safe in-memory state machine.
// Transitions are indexed [fromState][event].
type SimpleStateMachine struct {
	initialState State
	currentState State
	transitions  map[string]map[string]Transition
	mu           sync.RWMutex
}

func newSimpleStateMachine(initialState State) *SimpleStateMachine {
	return &SimpleStateMachine{
		initialState: initialState,
		currentState: initialState,
		transitions:  make(map[string]map[string]Transition),
	}
}

func (sm *SimpleStateMachine) Current() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

func (sm *SimpleStateMachine) addTransition(from, to State, event Event) error {
	if from == nil || to == nil || event == nil {
		return ErrInvalidTransition
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	byEvent, ok := sm.transitions[from.Name()]
	if !ok {
		byEvent = make(map[string]Transition)
		sm.transitions[from.Name()] = byEvent
	}
	if _, dup := byEvent[event.Name()]; dup {
		return ErrDuplicateTransition
	}

	byEvent[event.Name()] = Transition{From: from, To: to, Event: event}
	return nil
}

func (sm *SimpleStateMachine) Fire(event Event) error {
	if event == nil {
		return ErrInvalidEvent
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	t, ok := sm.lookup(event)
	if !ok {
		return NewErrNoTransitionAvailable(sm.currentState.Name(), event.Name())
	}

	sm.currentState = t.To
	return nil
}

func (sm *SimpleStateMachine) CanFire(event Event) bool {
	if event == nil {
		return false
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	_, ok := sm.lookup(event)
	return ok
}

func (sm *SimpleStateMachine) Reset() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.currentState = sm.initialState
	return nil
}

// lookup must be called with mu held.
func (sm *SimpleStateMachine) lookup(event Event) (Transition, bool) {
	t, ok := sm.transitions[sm.currentState.Name()][event.Name()]
	return t, ok
}
