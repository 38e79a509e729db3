// Package notifications keeps the uncleared notification count of the
// signed-in pioneer in the session state.
//
// The counter is refreshed once a session is established and on demand:
//
//	counter := notifications.NewCounter(api, state)
//	b := bootstrap.New(api, sdk, state, bootstrap.WithAfterLogin(counter.OnLogin))
//
//	// later, e.g. after the pioneer cleared a notification
//	if _, err := counter.Refresh(ctx); err != nil {
//		log.WarnContext(ctx, "refresh notifications", logger.Error(err))
//	}
package notifications
