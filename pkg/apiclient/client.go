package apiclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/map-of-pi/mapofpi/pkg/requestid"
)

const (
	pathMe            = "/users/me"
	pathAuthenticate  = "/users/authenticate"
	pathNotifications = "/notifications"
)

// Client is the Map of Pi backend client. It is safe for concurrent use.
type Client struct {
	rest       *resty.Client
	httpClient *http.Client
	logger     *slog.Logger

	mu    sync.RWMutex
	token string
}

// New creates a client for the configured base URL.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient != nil {
		c.rest = resty.NewWithClient(c.httpClient)
	} else {
		c.rest = resty.New()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c.rest.
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		OnBeforeRequest(requestid.ClientMiddleware()).
		OnBeforeRequest(c.injectToken)

	if cfg.Timeout > 0 {
		c.rest.SetTimeout(cfg.Timeout)
	}

	return c
}

// SetAuthToken installs the bearer token on every subsequent request of this
// client. An empty token removes the Authorization header.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// AuthToken returns the currently installed bearer token.
func (c *Client) AuthToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// injectToken adds the process-wide token unless the request carries its own.
func (c *Client) injectToken(_ *resty.Client, r *resty.Request) error {
	if r.Token != "" {
		return nil
	}
	if token := c.AuthToken(); token != "" {
		r.SetAuthToken(token)
	}
	return nil
}

// Me recovers the session for the installed token (or session cookie).
// Only 200 counts as success.
func (c *Client) Me(ctx context.Context) (*SessionResponse, error) {
	var out SessionResponse

	resp, err := c.rest.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&out).
		SetError(&errorBody{}).
		Get(pathMe)
	if err := c.check(ctx, http.MethodGet, pathMe, resp, err); err != nil {
		return nil, err
	}

	return &out, nil
}

// Authenticate exchanges a Pi access token for a backend session.
// The access token travels only in this request's Authorization header; the
// returned session token is not installed automatically.
func (c *Client) Authenticate(ctx context.Context, accessToken string) (*AuthResponse, error) {
	var out AuthResponse

	resp, err := c.rest.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		ForceContentType("application/json").
		SetBody(map[string]any{}).
		SetResult(&out).
		SetError(&errorBody{}).
		Post(pathAuthenticate)
	if err := c.check(ctx, http.MethodPost, pathAuthenticate, resp, err); err != nil {
		return nil, err
	}

	if out.Token == "" {
		return nil, ErrEmptyToken
	}

	return &out, nil
}

// Notifications returns one page of the current user's notifications.
func (c *Client) Notifications(ctx context.Context, q NotificationQuery) (*NotificationsPage, error) {
	var out NotificationsPage

	req := c.rest.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetQueryParam("skip", strconv.Itoa(q.Skip)).
		SetQueryParam("limit", strconv.Itoa(q.Limit)).
		SetResult(&out).
		SetError(&errorBody{})
	if q.Status != "" {
		req.SetQueryParam("status", string(q.Status))
	}

	resp, err := req.Get(pathNotifications)
	if err := c.check(ctx, http.MethodGet, pathNotifications, resp, err); err != nil {
		return nil, err
	}

	return &out, nil
}

// check turns transport errors and non-200 answers into package errors.
func (c *Client) check(ctx context.Context, method, path string, resp *resty.Response, err error) error {
	if err != nil {
		c.logger.DebugContext(ctx, "backend request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, path, err)
	}

	if resp.StatusCode() == http.StatusOK {
		return nil
	}

	se := &StatusError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode(),
	}
	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		se.Message = body.Message
	}

	c.logger.DebugContext(ctx, "backend answered with unexpected status",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status_code", se.StatusCode),
	)

	return se
}
