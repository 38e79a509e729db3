// Package bootstrap drives the pioneer login lifecycle.
//
// A Bootstrapper coordinates two strategies against the Map of Pi backend:
// a silent session check (GET /users/me) and an interactive login through
// the Pi SDK whose access token is exchanged for a backend session
// (POST /users/authenticate). Interactive attempts are retried with
// exponential backoff plus jitter; HTTP 401 and 403 from the backend stop the
// loop immediately.
//
// The lifecycle is an explicit phase table driven by discrete events:
//
//	idle            --mount-->             auto_login_in_flight
//	unauthenticated --mount-->             auto_login_in_flight
//	authenticated   --mount-->             auto_login_in_flight
//	idle            --login_requested-->   interactive_login_in_flight
//	unauthenticated --login_requested-->   interactive_login_in_flight
//	auto_login_in_flight --session_restored--> authenticated
//	auto_login_in_flight --session_missing-->  interactive_login_in_flight
//	auto_login_in_flight --aborted-->          unauthenticated
//	interactive_login_in_flight --login_succeeded-->   authenticated
//	interactive_login_in_flight --soft_failure-->      interactive_login_in_flight (attempt < max)
//	interactive_login_in_flight --hard_failure-->      unauthenticated
//	interactive_login_in_flight --retries_exhausted--> unauthenticated
//	interactive_login_in_flight --aborted-->           unauthenticated
//	authenticated | unauthenticated | idle --logout--> idle
//
// At most one login sequence runs at a time. Mount is a no-op while a
// sequence is in flight or a user is present; explicit calls return
// ErrInFlight instead.
//
// # Usage
//
//	api := apiclient.New(apiCfg)
//	sdk := pisdk.NewPlatform(sdkCfg, consent)
//	state := session.New()
//
//	b := bootstrap.New(api, sdk, state,
//		bootstrap.WithConfig(cfg),
//		bootstrap.WithTokenStore(store),
//		bootstrap.WithLogger(log),
//	)
//
//	if err := b.Mount(ctx); err != nil {
//		log.ErrorContext(ctx, "login failed", logger.Error(err))
//	}
//
// Tests substitute the wait between attempts with WithSleep and the jitter
// source with WithRand.
package bootstrap
