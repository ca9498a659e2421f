package checkout

import (
	"errors"
	"fmt"
	"slices"
)

type State string

const (
	StateReviewing           State = "reviewing"
	StateCollectingGuestInfo State = "collecting_guest_info"
	StateSubmitting          State = "submitting"
	StateSucceeded           State = "succeeded"
	StateFailed              State = "failed"
)

var ErrInvalidTransition = errors.New("invalid checkout state transition")

// validTransitions defines allowed state transitions. Succeeded and Failed are
// transient: the orchestrator leaves them before Submit returns.
var validTransitions = map[State][]State{
	StateReviewing:           {StateCollectingGuestInfo, StateSubmitting},
	StateCollectingGuestInfo: {StateSubmitting, StateReviewing},
	StateSubmitting:          {StateSucceeded, StateFailed},
	StateSucceeded:           {StateReviewing},
	StateFailed:              {StateReviewing, StateCollectingGuestInfo},
}

// CanTransitionTo checks if the checkout can move from s to target
func (s State) CanTransitionTo(target State) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	return slices.Contains(allowed, target)
}

func transitionError(from, to State) error {
	return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, from, to)
}
