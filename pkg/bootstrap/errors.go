package bootstrap

import (
	"errors"
	"fmt"
)

var (
	// ErrSDKUnavailable marks an attempt that could not run because the Pi SDK
	// is not loaded or not initialized. It is a soft failure.
	ErrSDKUnavailable = errors.New("Pi SDK is not available")
	// ErrInFlight is returned by explicit login calls while another login
	// sequence is running.
	ErrInFlight = errors.New("a login sequence is already in flight")
)

// ErrNoTransition indicates the phase table has no entry for the event in the
// current phase, or every entry was rejected by its guard.
type ErrNoTransition struct {
	Phase Phase
	Event Event
}

func (e *ErrNoTransition) Error() string {
	return fmt.Sprintf("no transition from phase '%s' for event '%s'", e.Phase, e.Event)
}

// IsNoTransition reports whether err is an *ErrNoTransition.
func IsNoTransition(err error) bool {
	var e *ErrNoTransition
	return errors.As(err, &e)
}
