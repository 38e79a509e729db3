package bootstrap

import (
	"context"
	"log/slog"

	"github.com/map-of-pi/mapofpi/pkg/pisdk"
	"github.com/map-of-pi/mapofpi/pkg/retry"
	"github.com/map-of-pi/mapofpi/pkg/session"
	"github.com/map-of-pi/mapofpi/pkg/tokenstore"
)

// AfterLoginFunc runs once a session has been established, either restored
// or freshly registered. Errors are logged and do not fail the login.
type AfterLoginFunc func(ctx context.Context, snap session.Snapshot) error

// Option configures a Bootstrapper.
type Option func(*Bootstrapper)

func WithConfig(cfg Config) Option {
	return func(b *Bootstrapper) {
		b.cfg = cfg
	}
}

// WithTokenStore persists the backend token after registration and restores
// it before the silent session check.
func WithTokenStore(store tokenstore.Store) Option {
	return func(b *Bootstrapper) {
		b.store = store
	}
}

// WithSleep replaces the backoff wait, e.g. with a virtual clock in tests.
func WithSleep(sleep retry.SleepFunc) Option {
	return func(b *Bootstrapper) {
		if sleep != nil {
			b.sleep = sleep
		}
	}
}

// WithRand replaces the jitter source. fn must return values in [0, 1).
func WithRand(fn func() float64) Option {
	return func(b *Bootstrapper) {
		b.rand = fn
	}
}

func WithObserver(o Observer) Option {
	return func(b *Bootstrapper) {
		if o != nil {
			b.observer = append(b.observer, o)
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Bootstrapper) {
		if l != nil {
			b.logger = l
		}
	}
}

func WithAfterLogin(hooks ...AfterLoginFunc) Option {
	return func(b *Bootstrapper) {
		b.afterLogin = append(b.afterLogin, hooks...)
	}
}

// WithIncompletePaymentHandler receives payments the Pi SDK reports as left
// incomplete by a previous session.
func WithIncompletePaymentHandler(fn pisdk.IncompletePaymentFunc) Option {
	return func(b *Bootstrapper) {
		b.onIncompletePayment = fn
	}
}
