package bootstrap_test

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/map-of-pi/mapofpi/pkg/apiclient"
	"github.com/map-of-pi/mapofpi/pkg/bootstrap"
	"github.com/map-of-pi/mapofpi/pkg/pisdk"
)

// fakeSDK is a scripted Pi SDK double.
type fakeSDK struct {
	mu          sync.Mutex
	loadErr     error
	initialized bool
	features    []string
	authErrs    []error
	payment     *pisdk.Payment

	loadCalls int
	initCalls int
	authCalls int
	initCfg   pisdk.InitConfig
}

func (s *fakeSDK) EnsureLoaded(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadCalls++
	return s.loadErr
}

func (s *fakeSDK) Init(cfg pisdk.InitConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initCalls++
	s.initCfg = cfg
	s.initialized = true
	return nil
}

func (s *fakeSDK) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *fakeSDK) Authenticate(ctx context.Context, scopes []pisdk.Scope, cb pisdk.IncompletePaymentFunc) (*pisdk.AuthResult, error) {
	s.mu.Lock()
	call := s.authCalls
	s.authCalls++
	var err error
	if call < len(s.authErrs) {
		err = s.authErrs[call]
	}
	payment := s.payment
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if payment != nil && cb != nil {
		cb(ctx, *payment)
	}
	return &pisdk.AuthResult{AccessToken: "pi-access-token", Scopes: scopes}, nil
}

func (s *fakeSDK) NativeFeatures(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.features, nil
}

func (s *fakeSDK) AuthCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authCalls
}

// fakeAPI is a scripted backend double.
type fakeAPI struct {
	mu    sync.Mutex
	token string

	// me answers GET /users/me for the installed token.
	me func(ctx context.Context, token string) (*apiclient.SessionResponse, error)
	// authenticate answers POST /users/authenticate for the call index.
	authenticate func(call int, accessToken string) (*apiclient.AuthResponse, error)

	meCalls   int
	authCalls int
}

func (a *fakeAPI) Me(ctx context.Context) (*apiclient.SessionResponse, error) {
	a.mu.Lock()
	a.meCalls++
	token := a.token
	fn := a.me
	a.mu.Unlock()

	if fn == nil {
		return nil, statusErr(http.MethodGet, "/users/me", http.StatusUnauthorized)
	}
	return fn(ctx, token)
}

func (a *fakeAPI) Authenticate(_ context.Context, accessToken string) (*apiclient.AuthResponse, error) {
	a.mu.Lock()
	call := a.authCalls
	a.authCalls++
	fn := a.authenticate
	a.mu.Unlock()

	if fn == nil {
		return &apiclient.AuthResponse{
			Token:           "t1",
			User:            apiclient.User{PiUID: "xyz"},
			MembershipClass: apiclient.MembershipWhite,
		}, nil
	}
	return fn(call, accessToken)
}

func (a *fakeAPI) SetAuthToken(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = token
}

func (a *fakeAPI) AuthToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

func (a *fakeAPI) Calls() (me, auth int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.meCalls, a.authCalls
}

func statusErr(method, path string, code int) error {
	return &apiclient.StatusError{Method: method, Path: path, StatusCode: code}
}

// clock records backoff waits without sleeping.
type clock struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (c *clock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.delays = append(c.delays, d)
	c.mu.Unlock()
	return ctx.Err()
}

func (c *clock) Delays() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.delays...)
}

// recorder collects observer notifications.
type recorder struct {
	bootstrap.NopObserver
	mu        sync.Mutex
	phases    []bootstrap.Phase
	attempts  []bootstrap.AttemptKind
	retries   []int
	signingIn []bool
}

func (r *recorder) PhaseChanged(_, to bootstrap.Phase, _ bootstrap.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, to)
}

func (r *recorder) AttemptFinished(kind bootstrap.AttemptKind, _ int, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, kind)
}

func (r *recorder) RetryScheduled(attempt int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries = append(r.retries, attempt)
}

func (r *recorder) SigningInChanged(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signingIn = append(r.signingIn, v)
}
