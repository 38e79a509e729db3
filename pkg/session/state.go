package session

import (
	"sync"
	"time"

	"github.com/map-of-pi/mapofpi/pkg/apiclient"
)

// Listener observes state changes.
type Listener func(prev, next Snapshot)

// State is the owned, concurrency-safe session state.
type State struct {
	mu        sync.RWMutex
	snap      Snapshot
	listeners map[uint64]Listener
	nextID    uint64
	now       func() time.Time
}

// New returns a signed-out state with the default membership class.
func New() *State {
	s := &State{
		listeners: make(map[uint64]Listener),
		now:       time.Now,
	}
	s.snap = Snapshot{
		Membership:         apiclient.MembershipCasual,
		ToggleNotification: true,
		UpdatedAt:          s.now(),
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *State) CurrentUser() *apiclient.User {
	return s.Snapshot().User
}

// SigningIn reports whether a sign-in sequence is in flight.
func (s *State) SigningIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.SigningIn
}

// SetUser signs the user in with the given membership class.
func (s *State) SetUser(user apiclient.User, membership apiclient.MembershipClass) {
	s.update(func(snap *Snapshot) {
		u := user
		snap.User = &u
		if membership != "" {
			snap.Membership = membership
		}
		snap.LastError = ""
	})
}

// ClearUser signs the user out and resets the membership and counters.
func (s *State) ClearUser() {
	s.update(func(snap *Snapshot) {
		snap.User = nil
		snap.Membership = apiclient.MembershipCasual
		snap.NotificationsCount = 0
	})
}

// SetMembership updates the membership class, e.g. after an upgrade.
func (s *State) SetMembership(membership apiclient.MembershipClass) {
	s.update(func(snap *Snapshot) {
		snap.Membership = membership
	})
}

func (s *State) SetSigningIn(signingIn bool) {
	s.update(func(snap *Snapshot) {
		snap.SigningIn = signingIn
	})
}

func (s *State) SetAdsSupported(supported bool) {
	s.update(func(snap *Snapshot) {
		snap.AdsSupported = supported
	})
}

// SetNotifications stores the uncleared notification count and shows the
// notification badge when there is anything to see.
func (s *State) SetNotifications(count int) {
	s.update(func(snap *Snapshot) {
		snap.NotificationsCount = count
		snap.ToggleNotification = count > 0
	})
}

func (s *State) SetToggleNotification(on bool) {
	s.update(func(snap *Snapshot) {
		snap.ToggleNotification = on
	})
}

// SetPhase records the login phase and the last terminal error, if any.
func (s *State) SetPhase(phase string, err error) {
	s.update(func(snap *Snapshot) {
		snap.Phase = phase
		if err != nil {
			snap.LastError = err.Error()
		} else {
			snap.LastError = ""
		}
	})
}

// Subscribe registers a listener and returns a function removing it.
func (s *State) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *State) update(mutate func(*Snapshot)) {
	s.mu.Lock()
	prev := s.snap.clone()
	mutate(&s.snap)
	s.snap.UpdatedAt = s.now()
	next := s.snap.clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(prev, next)
	}
}
