package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/map-of-pi/mapofpi/pkg/apiclient"
	"github.com/map-of-pi/mapofpi/pkg/logger"
	"github.com/map-of-pi/mapofpi/pkg/session"
)

// ErrNotAuthenticated is returned when no pioneer is signed in.
var ErrNotAuthenticated = errors.New("no signed-in user")

// Source lists notifications of the signed-in user.
// *apiclient.Client implements it.
type Source interface {
	Notifications(ctx context.Context, q apiclient.NotificationQuery) (*apiclient.NotificationsPage, error)
}

// Option configures a Counter.
type Option func(*Counter)

func WithLogger(l *slog.Logger) Option {
	return func(c *Counter) {
		if l != nil {
			c.logger = l
		}
	}
}

// Counter refreshes the uncleared notification count in the session state.
type Counter struct {
	source Source
	state  *session.State
	logger *slog.Logger
}

func NewCounter(source Source, state *session.State, opts ...Option) *Counter {
	c := &Counter{
		source: source,
		state:  state,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh fetches the uncleared count and stores it in the session state.
// Without a signed-in user the count is reset and ErrNotAuthenticated returned.
func (c *Counter) Refresh(ctx context.Context) (int, error) {
	snap := c.state.Snapshot()
	if !snap.Authenticated() {
		c.state.SetNotifications(0)
		return 0, ErrNotAuthenticated
	}

	page, err := c.source.Notifications(ctx, apiclient.NotificationQuery{
		Skip:   0,
		Limit:  1,
		Status: apiclient.NotificationsUncleared,
	})
	if err != nil {
		c.state.SetNotifications(0)
		return 0, fmt.Errorf("count uncleared notifications: %w", err)
	}

	count := page.Count
	if count == 0 {
		count = len(page.Items)
	}
	c.state.SetNotifications(count)

	c.logger.DebugContext(ctx, "notifications refreshed",
		logger.PiUID(snap.PiUID()),
		slog.Int("uncleared", count),
	)
	return count, nil
}

// OnLogin refreshes the count for a freshly established session. It has the
// shape of bootstrap.AfterLoginFunc.
func (c *Counter) OnLogin(ctx context.Context, _ session.Snapshot) error {
	_, err := c.Refresh(ctx)
	return err
}

// Uncleared returns up to limit uncleared notifications.
func (c *Counter) Uncleared(ctx context.Context, limit int) ([]apiclient.Notification, error) {
	if !c.state.Snapshot().Authenticated() {
		return nil, ErrNotAuthenticated
	}

	page, err := c.source.Notifications(ctx, apiclient.NotificationQuery{
		Limit:  limit,
		Status: apiclient.NotificationsUncleared,
	})
	if err != nil {
		return nil, fmt.Errorf("list uncleared: %w", err)
	}
	return page.Items, nil
}
