// Package retry runs an operation until it succeeds, fails permanently, or
// exhausts its retry budget.
//
// The loop is iterative: attempt 0 runs immediately, every following attempt
// waits for the interval returned by the configured Backoff. Waiting goes
// through a SleepFunc so callers (and tests) can substitute a virtual clock
// instead of real timers.
//
// # Usage
//
//	policy := retry.Policy{
//		MaxRetries: 3,
//		Backoff: retry.ExponentialJitter{
//			Base:       5 * time.Second,
//			Multiplier: 3,
//			MaxJitter:  time.Second,
//		},
//		IsPermanent: func(err error) bool { return errors.Is(err, errDenied) },
//	}
//
//	err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
//		return login(ctx)
//	})
//	switch {
//	case errors.Is(err, retry.ErrPermanentFailure):
//		// stopped early, the cause is still reachable with errors.As
//	case errors.Is(err, retry.ErrRetriesExhausted):
//		// MaxRetries+1 attempts failed
//	}
//
// With the values above the nominal delays are 5s, 15s and 45s, each extended
// by up to one second of jitter, for at most four attempts in total.
package retry
