package pisdk

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"
)

// PlatformOption configures a Platform.
type PlatformOption func(*Platform)

// WithHTTPClient replaces the transport used for the script and platform calls.
func WithHTTPClient(hc *http.Client) PlatformOption {
	return func(p *Platform) {
		if hc != nil {
			p.rest = resty.NewWithClient(hc)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) PlatformOption {
	return func(p *Platform) {
		if l != nil {
			p.logger = l
		}
	}
}

// Platform implements SDK on top of the Pi platform API.
type Platform struct {
	cfg     Config
	consent Consent
	rest    *resty.Client
	logger  *slog.Logger

	loads  singleflight.Group
	loaded atomic.Bool

	mu          sync.RWMutex
	initialized bool
	initCfg     InitConfig
}

var _ SDK = (*Platform)(nil)

// NewPlatform creates a Platform asking consent for access tokens.
func NewPlatform(cfg Config, consent Consent, opts ...PlatformOption) *Platform {
	p := &Platform{
		cfg:     cfg,
		consent: consent,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rest == nil {
		p.rest = resty.New()
	}
	if p.consent == nil {
		p.consent = StaticConsent(cfg.AccessToken)
	}
	return p
}

// EnsureLoaded fetches the SDK script once. Concurrent callers share the fetch;
// a failed fetch is retried by the next caller.
func (p *Platform) EnsureLoaded(ctx context.Context) error {
	if p.loaded.Load() {
		return nil
	}

	_, err, _ := p.loads.Do("load", func() (any, error) {
		if p.loaded.Load() {
			return nil, nil
		}

		resp, err := p.rest.R().SetContext(ctx).Get(p.cfg.ScriptURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("%w: %s returned %d", ErrLoadFailed, p.cfg.ScriptURL, resp.StatusCode())
		}

		p.loaded.Store(true)
		p.logger.DebugContext(ctx, "pi sdk loaded", slog.String("url", p.cfg.ScriptURL))
		return nil, nil
	})

	return err
}

// Loaded reports whether the script has been fetched.
func (p *Platform) Loaded() bool {
	return p.loaded.Load()
}

// Init records the SDK configuration. The first successful call wins.
func (p *Platform) Init(cfg InitConfig) error {
	if !p.loaded.Load() {
		return ErrNotLoaded
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if cfg.Version == "" {
		cfg.Version = p.cfg.Version
	}
	p.initCfg = cfg
	p.initialized = true

	p.logger.Debug("pi sdk initialized",
		slog.String("version", cfg.Version),
		slog.Bool("sandbox", cfg.Sandbox),
	)
	return nil
}

func (p *Platform) Initialized() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.initialized
}

// InitConfig returns the configuration recorded by Init.
func (p *Platform) InitConfig() InitConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.initCfg
}

type platformMe struct {
	Pioneer
	Credentials struct {
		Scopes     []Scope `json:"scopes"`
		ValidUntil struct {
			Timestamp int64  `json:"timestamp"`
			ISO8601   string `json:"iso8601"`
		} `json:"valid_until"`
	} `json:"credentials"`
}

// Authenticate obtains an access token from the consent source and verifies it
// against the Pi platform.
func (p *Platform) Authenticate(ctx context.Context, scopes []Scope, onIncompletePayment IncompletePaymentFunc) (*AuthResult, error) {
	if !p.Initialized() {
		return nil, ErrNotInitialized
	}

	grant, err := p.consent.RequestConsent(ctx, scopes)
	if err != nil {
		return nil, err
	}
	if grant == nil || grant.Token == nil || grant.Token.AccessToken == "" {
		return nil, ErrConsentDeclined
	}

	var me platformMe
	resp, err := p.rest.R().
		SetContext(ctx).
		SetAuthScheme(grant.Token.Type()).
		SetAuthToken(grant.Token.AccessToken).
		ForceContentType("application/json").
		SetResult(&me).
		Get(strings.TrimRight(p.cfg.PlatformURL, "/") + "/v2/me")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPlatformRequest, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrInvalidAccessToken
	default:
		return nil, fmt.Errorf("%w: /v2/me returned %d", ErrPlatformRequest, resp.StatusCode())
	}

	granted := me.Credentials.Scopes
	if len(granted) == 0 {
		granted = slices.Clone(scopes)
	}

	result := &AuthResult{
		AccessToken: grant.Token.AccessToken,
		Scopes:      granted,
		User:        me.Pioneer,
	}
	if ts := me.Credentials.ValidUntil.Timestamp; ts > 0 {
		result.ValidUntil = time.Unix(ts, 0).UTC()
	}

	if grant.IncompletePayment != nil && onIncompletePayment != nil {
		onIncompletePayment(ctx, *grant.IncompletePayment)
	}

	return result, nil
}

// NativeFeatures returns the configured host features.
func (p *Platform) NativeFeatures(ctx context.Context) ([]string, error) {
	if !p.loaded.Load() {
		return nil, ErrNotLoaded
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(p.cfg.NativeFeatures), nil
}
