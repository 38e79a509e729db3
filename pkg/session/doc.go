// Package session holds the pioneer session state shared across the client.
//
// State is the single owner of "who is signed in": the current user, their
// membership class, whether a sign-in sequence is in flight, and a few
// session-scoped UI counters. Everything else reads immutable Snapshot values
// and may subscribe to changes; mutation goes through the State methods only,
// which keeps the login flow the sole writer of the authentication fields
// while still letting logout and profile flows update them explicitly.
//
// # Usage
//
//	state := session.New()
//
//	unsubscribe := state.Subscribe(func(prev, next session.Snapshot) {
//		if !prev.Authenticated() && next.Authenticated() {
//			log.Printf("signed in as %s", next.User.PiUID)
//		}
//	})
//	defer unsubscribe()
//
//	state.SetUser(apiclient.User{PiUID: "abc"}, apiclient.MembershipCasual)
//	snap := state.Snapshot()
//	fmt.Println(snap.Authenticated(), snap.Membership)
//
// Listeners run synchronously on the goroutine performing the mutation, after
// the state lock is released, so they may read the state again.
package session
