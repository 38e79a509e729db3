package statusapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/map-of-pi/mapofpi/pkg/apiclient"
	"github.com/map-of-pi/mapofpi/pkg/environment"
	"github.com/map-of-pi/mapofpi/pkg/httpserver"
	"github.com/map-of-pi/mapofpi/pkg/logger"
	"github.com/map-of-pi/mapofpi/pkg/metrics"
	"github.com/map-of-pi/mapofpi/pkg/session"
)

// Session is the login lifecycle driven by the API.
// *bootstrap.Bootstrapper implements it.
type Session interface {
	State() *session.State
	SigningIn() bool
	Mount(ctx context.Context) error
	AutoLogin(ctx context.Context) error
	Logout(ctx context.Context) error
}

// Notifications refreshes and lists uncleared notifications.
// *notifications.Counter implements it.
type Notifications interface {
	Refresh(ctx context.Context) (int, error)
	Uncleared(ctx context.Context, limit int) ([]apiclient.Notification, error)
}

// Option configures the API.
type Option func(*API)

func WithLogger(l *slog.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetrics records request metrics and serves them on /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *API) { a.metrics = m }
}

// WithNotifications enables the notification endpoints and refreshes the
// counter on reload.
func WithNotifications(n Notifications) Option {
	return func(a *API) { a.notifications = n }
}

// WithEnvironment tags every request context with env.
func WithEnvironment(env environment.Environment) Option {
	return func(a *API) { a.env = env }
}

// WithHealthChecks turns /healthz into a readiness check.
func WithHealthChecks(checks ...httpserver.Check) Option {
	return func(a *API) { a.checks = append(a.checks, checks...) }
}

// API exposes the shared session context over HTTP.
type API struct {
	session       Session
	notifications Notifications
	metrics       *metrics.Metrics
	env           environment.Environment
	checks        []httpserver.Check
	logger        *slog.Logger
}

func New(s Session, opts ...Option) *API {
	a := &API{
		session: s,
		env:     environment.Development,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handler returns the router.
func (a *API) Handler() http.Handler {
	return a.routes()
}
