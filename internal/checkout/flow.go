// Package checkout models the storefront checkout flow and tracks it per payment intent.
package checkout

import (
	"errors"
	"fmt"
)

type State string

const (
	StateIdle              State = "idle"
	StateGoalSelected      State = "goalSelected"
	StatePaymentOpen       State = "paymentOpen"
	StatePaymentProcessing State = "paymentProcessing"
	StateSuccess           State = "success"
	StateError             State = "error"
)

type Event string

const (
	EventSelectGoal    Event = "selectGoal"
	EventOpenPayment   Event = "openPayment"
	EventSubmitPayment Event = "submitPayment"
	EventSucceed       Event = "succeed"
	EventFail          Event = "fail"
	EventClose         Event = "close"
)

var ErrInvalidTransition = errors.New("invalid checkout transition")

var transitions = map[State]map[Event]State{
	StateIdle: {
		EventSelectGoal: StateGoalSelected,
	},
	StateGoalSelected: {
		EventSelectGoal:  StateGoalSelected,
		EventOpenPayment: StatePaymentOpen,
	},
	StatePaymentOpen: {
		EventSubmitPayment: StatePaymentProcessing,
	},
	StatePaymentProcessing: {
		EventSucceed: StateSuccess,
		EventFail:    StateError,
	},
	// A declined card may be retried from the same form.
	StateError: {
		EventSubmitPayment: StatePaymentProcessing,
	},
}

// Terminal reports whether no event can leave s.
func (s State) Terminal() bool {
	return s == StateSuccess
}

func (e Event) Valid() bool {
	switch e {
	case EventSelectGoal, EventOpenPayment, EventSubmitPayment, EventSucceed, EventFail, EventClose:
		return true
	}
	return false
}

// Next applies ev to from. Closing abandons any non-terminal checkout.
func Next(from State, ev Event) (State, error) {
	if ev == EventClose && !from.Terminal() {
		if _, known := transitions[from]; known {
			return StateIdle, nil
		}
	}
	if to, ok := transitions[from][ev]; ok {
		return to, nil
	}
	return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, from)
}
