package bootstrap

import "sync"

// Phase is a state of the login lifecycle.
type Phase string

const (
	PhaseIdle                     Phase = "idle"
	PhaseAutoLoginInFlight        Phase = "auto_login_in_flight"
	PhaseInteractiveLoginInFlight Phase = "interactive_login_in_flight"
	PhaseAuthenticated            Phase = "authenticated"
	PhaseUnauthenticated          Phase = "unauthenticated"
)

func (p Phase) String() string { return string(p) }

// InFlight reports whether a login sequence runs in this phase.
func (p Phase) InFlight() bool {
	return p == PhaseAutoLoginInFlight || p == PhaseInteractiveLoginInFlight
}

// Event drives phase transitions.
type Event string

const (
	EventMount            Event = "mount"
	EventLoginRequested   Event = "login_requested"
	EventSessionRestored  Event = "session_restored"
	EventSessionMissing   Event = "session_missing"
	EventLoginSucceeded   Event = "login_succeeded"
	EventSoftFailure      Event = "soft_failure"
	EventHardFailure      Event = "hard_failure"
	EventRetriesExhausted Event = "retries_exhausted"
	EventAborted          Event = "aborted"
	EventLogout           Event = "logout"
)

func (e Event) String() string { return string(e) }

// guard decides whether a transition applies for the given attempt.
type guard func(attempt int) bool

type transition struct {
	to    Phase
	guard guard
}

// machine is the explicit phase table of the bootstrapper.
// Lookups are [from][event][]transition; the first transition whose guard
// passes wins.
type machine struct {
	mu          sync.RWMutex
	current     Phase
	attempt     int
	transitions map[Phase]map[Event][]transition
}

func newMachine(maxRetries int) *machine {
	m := &machine{
		current:     PhaseIdle,
		transitions: make(map[Phase]map[Event][]transition),
	}

	budgetLeft := func(attempt int) bool { return attempt < maxRetries }

	m.add(PhaseIdle, EventMount, PhaseAutoLoginInFlight, nil)
	m.add(PhaseUnauthenticated, EventMount, PhaseAutoLoginInFlight, nil)
	m.add(PhaseAuthenticated, EventMount, PhaseAutoLoginInFlight, nil)

	m.add(PhaseIdle, EventLoginRequested, PhaseInteractiveLoginInFlight, nil)
	m.add(PhaseUnauthenticated, EventLoginRequested, PhaseInteractiveLoginInFlight, nil)

	m.add(PhaseAutoLoginInFlight, EventSessionRestored, PhaseAuthenticated, nil)
	m.add(PhaseAutoLoginInFlight, EventSessionMissing, PhaseInteractiveLoginInFlight, nil)
	m.add(PhaseAutoLoginInFlight, EventAborted, PhaseUnauthenticated, nil)

	m.add(PhaseInteractiveLoginInFlight, EventLoginSucceeded, PhaseAuthenticated, nil)
	m.add(PhaseInteractiveLoginInFlight, EventSoftFailure, PhaseInteractiveLoginInFlight, budgetLeft)
	m.add(PhaseInteractiveLoginInFlight, EventHardFailure, PhaseUnauthenticated, nil)
	m.add(PhaseInteractiveLoginInFlight, EventRetriesExhausted, PhaseUnauthenticated, nil)
	m.add(PhaseInteractiveLoginInFlight, EventAborted, PhaseUnauthenticated, nil)

	m.add(PhaseAuthenticated, EventLogout, PhaseIdle, nil)
	m.add(PhaseUnauthenticated, EventLogout, PhaseIdle, nil)
	m.add(PhaseIdle, EventLogout, PhaseIdle, nil)

	return m
}

func (m *machine) add(from Phase, event Event, to Phase, g guard) {
	if _, ok := m.transitions[from]; !ok {
		m.transitions[from] = make(map[Event][]transition)
	}
	m.transitions[from][event] = append(m.transitions[from][event], transition{to: to, guard: g})
}

func (m *machine) Current() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Attempt returns the zero-based interactive attempt in progress.
func (m *machine) Attempt() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attempt
}

// Fire applies event to the current phase. attempt is the interactive attempt
// the event refers to; a soft failure moves the machine to attempt+1.
func (m *machine) Fire(event Event, attempt int) (from, to Phase, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from = m.current
	for _, t := range m.transitions[from][event] {
		if t.guard != nil && !t.guard(attempt) {
			continue
		}
		m.current = t.to
		switch {
		case event == EventSoftFailure:
			m.attempt = attempt + 1
		case t.to != PhaseInteractiveLoginInFlight:
			m.attempt = 0
		}
		return from, t.to, nil
	}

	return from, from, &ErrNoTransition{Phase: from, Event: event}
}

// CanFire reports whether event would be accepted for attempt.
func (m *machine) CanFire(event Event, attempt int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.transitions[m.current][event] {
		if t.guard == nil || t.guard(attempt) {
			return true
		}
	}
	return false
}
