package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Func is one attempt of the retried operation. attempt is zero-based.
type Func func(ctx context.Context, attempt int) error

// RetryHook is called after a failed attempt once a retry has been scheduled,
// before the policy starts waiting.
type RetryHook func(attempt int, delay time.Duration, err error)

// Policy describes how an operation is retried.
// The zero value runs the operation once.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// Backoff computes the wait before each retry. Defaults to one second fixed.
	Backoff Backoff
	// Sleep performs the wait. Defaults to Sleep.
	Sleep SleepFunc
	// IsPermanent stops the loop early for errors that will not heal by retrying.
	IsPermanent func(err error) bool
	// OnRetry observes scheduled retries.
	OnRetry RetryHook
}

// Do runs fn until it succeeds, returns a permanent error, or the retry budget
// is exhausted. Errors returned by Do wrap both a sentinel of this package and
// the cause reported by fn.
func (p Policy) Do(ctx context.Context, fn Func) error {
	backoff := p.Backoff
	if backoff == nil {
		backoff = Fixed{Interval: time.Second}
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}

		if p.IsPermanent != nil && p.IsPermanent(err) {
			return errors.Join(ErrPermanentFailure, err)
		}

		if attempt >= p.MaxRetries {
			return errors.Join(
				fmt.Errorf("%w after %d attempts", ErrRetriesExhausted, attempt+1),
				err,
			)
		}

		delay := backoff.NextInterval(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}

		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
}
