package session_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/map-of-pi/mapofpi/pkg/apiclient"
	"github.com/map-of-pi/mapofpi/pkg/session"
)

func TestNew(t *testing.T) {
	t.Parallel()

	snap := session.New().Snapshot()
	assert.False(t, snap.Authenticated())
	assert.Empty(t, snap.PiUID())
	assert.False(t, snap.SigningIn)
	assert.Equal(t, apiclient.MembershipCasual, snap.Membership)
	assert.True(t, snap.ToggleNotification)
}

func TestState_SetUserAndClear(t *testing.T) {
	t.Parallel()

	state := session.New()
	state.SetPhase("unauthenticated", errors.New("login failed"))
	state.SetUser(apiclient.User{PiUID: "abc"}, apiclient.MembershipGold)

	snap := state.Snapshot()
	require.True(t, snap.Authenticated())
	assert.Equal(t, "abc", snap.PiUID())
	assert.Equal(t, apiclient.MembershipGold, snap.Membership)
	assert.Empty(t, snap.LastError)

	state.SetNotifications(4)
	state.ClearUser()

	snap = state.Snapshot()
	assert.False(t, snap.Authenticated())
	assert.Equal(t, apiclient.MembershipCasual, snap.Membership)
	assert.Zero(t, snap.NotificationsCount)
}

func TestState_SetUserKeepsMembershipWhenEmpty(t *testing.T) {
	t.Parallel()

	state := session.New()
	state.SetMembership(apiclient.MembershipGreen)
	state.SetUser(apiclient.User{PiUID: "abc"}, "")

	assert.Equal(t, apiclient.MembershipGreen, state.Snapshot().Membership)
}

func TestState_SnapshotIsACopy(t *testing.T) {
	t.Parallel()

	state := session.New()
	state.SetUser(apiclient.User{PiUID: "abc"}, apiclient.MembershipCasual)

	user := state.CurrentUser()
	user.PiUID = "mutated"

	assert.Equal(t, "abc", state.CurrentUser().PiUID)
}

func TestState_Notifications(t *testing.T) {
	t.Parallel()

	state := session.New()
	state.SetNotifications(0)
	assert.False(t, state.Snapshot().ToggleNotification)

	state.SetNotifications(3)
	snap := state.Snapshot()
	assert.Equal(t, 3, snap.NotificationsCount)
	assert.True(t, snap.ToggleNotification)

	state.SetToggleNotification(false)
	assert.False(t, state.Snapshot().ToggleNotification)
}

func TestState_Subscribe(t *testing.T) {
	t.Parallel()

	state := session.New()

	var transitions []string
	unsubscribe := state.Subscribe(func(prev, next session.Snapshot) {
		if prev.Authenticated() != next.Authenticated() {
			transitions = append(transitions, prev.PiUID()+"->"+next.PiUID())
		}
		// listeners may read the state again without deadlocking
		_ = state.Snapshot()
	})

	state.SetSigningIn(true)
	state.SetUser(apiclient.User{PiUID: "abc"}, apiclient.MembershipCasual)
	state.ClearUser()
	unsubscribe()
	unsubscribe()
	state.SetUser(apiclient.User{PiUID: "later"}, apiclient.MembershipCasual)

	assert.Equal(t, []string{"->abc", "abc->"}, transitions)
	assert.NotPanics(t, func() { state.Subscribe(nil)() })
}

func TestState_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	state := session.New()
	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			state.SetSigningIn(i%2 == 0)
			state.SetUser(apiclient.User{PiUID: "abc"}, apiclient.MembershipCasual)
		}()
		go func() {
			defer wg.Done()
			_ = state.Snapshot()
			_ = state.SigningIn()
		}()
	}
	wg.Wait()

	assert.Equal(t, "abc", state.Snapshot().PiUID())
}
