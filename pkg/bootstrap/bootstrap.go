package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/map-of-pi/mapofpi/pkg/apiclient"
	"github.com/map-of-pi/mapofpi/pkg/logger"
	"github.com/map-of-pi/mapofpi/pkg/pisdk"
	"github.com/map-of-pi/mapofpi/pkg/retry"
	"github.com/map-of-pi/mapofpi/pkg/session"
	"github.com/map-of-pi/mapofpi/pkg/tokenstore"
)

// API is the backend surface used by the bootstrapper.
// *apiclient.Client implements it.
type API interface {
	Me(ctx context.Context) (*apiclient.SessionResponse, error)
	Authenticate(ctx context.Context, accessToken string) (*apiclient.AuthResponse, error)
	SetAuthToken(token string)
	AuthToken() string
}

// Bootstrapper owns the login lifecycle of a session.State.
type Bootstrapper struct {
	api   API
	sdk   pisdk.SDK
	state *session.State
	store tokenstore.Store

	cfg                 Config
	sleep               retry.SleepFunc
	rand                func() float64
	observer            observers
	logger              *slog.Logger
	afterLogin          []AfterLoginFunc
	onIncompletePayment pisdk.IncompletePaymentFunc

	machine   *machine
	signingIn atomic.Bool
}

// New wires a bootstrapper. A nil state gets a fresh session.State.
func New(api API, sdk pisdk.SDK, state *session.State, opts ...Option) *Bootstrapper {
	b := &Bootstrapper{
		api:    api,
		sdk:    sdk,
		state:  state,
		cfg:    DefaultConfig(),
		sleep:  retry.Sleep,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.state == nil {
		b.state = session.New()
	}
	if b.onIncompletePayment == nil {
		b.onIncompletePayment = b.logIncompletePayment
	}
	b.logger = b.logger.With(logger.Component("bootstrap"))
	b.machine = newMachine(b.cfg.MaxRetries)
	b.state.SetPhase(PhaseIdle.String(), nil)

	return b
}

// State returns the session state the bootstrapper writes to.
func (b *Bootstrapper) State() *session.State {
	return b.state
}

// Phase returns the current lifecycle phase.
func (b *Bootstrapper) Phase() Phase {
	return b.machine.Current()
}

// SigningIn reports whether a login sequence is in flight.
func (b *Bootstrapper) SigningIn() bool {
	return b.signingIn.Load()
}

// Mount handles the mount event: when no user is present and no sequence is
// running, it prepares the SDK and runs AutoLogin. Otherwise it is a no-op.
// Mount returns after the sequence and the SDK preparation have settled; the
// returned error is the terminal login failure, if any.
func (b *Bootstrapper) Mount(ctx context.Context) error {
	if b.state.CurrentUser() != nil {
		return nil
	}
	if !b.acquire() {
		b.logger.DebugContext(ctx, "login sequence already in flight, skipping mount")
		return nil
	}
	defer b.release()

	return b.bootstrap(ctx)
}

// AutoLogin re-validates the session with the backend even when a user is
// present, falling back to interactive login when the session is gone.
func (b *Bootstrapper) AutoLogin(ctx context.Context) error {
	if !b.acquire() {
		return ErrInFlight
	}
	defer b.release()

	return b.bootstrap(ctx)
}

// LoginWithRetry runs the interactive login loop directly, skipping the
// silent session check.
func (b *Bootstrapper) LoginWithRetry(ctx context.Context) error {
	if !b.acquire() {
		return ErrInFlight
	}
	defer b.release()

	if err := b.fire(ctx, EventLoginRequested, 0, nil); err != nil {
		return err
	}
	prep := b.prepareSDK(ctx)
	defer func() { <-prep }()

	err := b.loginWithRetry(ctx, prep)
	if err != nil {
		b.logger.ErrorContext(ctx, "login failed", logger.Phase(b.Phase()), logger.Error(err))
	}
	return err
}

// RegisterUser performs a single interactive attempt without retries. It
// never loads the SDK; an SDK that is not initialized yields
// ErrSDKUnavailable. A successful attempt from Idle or Unauthenticated moves
// the lifecycle to Authenticated; failures leave the phase untouched.
func (b *Bootstrapper) RegisterUser(ctx context.Context) error {
	if !b.acquire() {
		return ErrInFlight
	}
	defer b.release()

	if err := b.registerUser(ctx, 0); err != nil {
		return err
	}
	if b.machine.CanFire(EventLoginRequested, 0) {
		_ = b.fire(ctx, EventLoginRequested, 0, nil)
		_ = b.fire(ctx, EventLoginSucceeded, 0, nil)
	}
	b.runAfterLogin(ctx)
	return nil
}

// Logout signs the user out, forgets the backend token and returns the
// lifecycle to Idle. A later Mount starts over.
func (b *Bootstrapper) Logout(ctx context.Context) error {
	if !b.signingIn.CompareAndSwap(false, true) {
		return ErrInFlight
	}
	defer b.signingIn.Store(false)

	uid := b.state.Snapshot().PiUID()
	b.api.SetAuthToken("")
	b.state.ClearUser()

	var errs error
	if b.store != nil {
		if err := b.store.Delete(ctx); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if err := b.fire(ctx, EventLogout, 0, nil); err != nil {
		errs = errors.Join(errs, err)
	}

	b.logger.InfoContext(ctx, "logged out", logger.PiUID(uid))
	return errs
}

func (b *Bootstrapper) bootstrap(ctx context.Context) error {
	if err := b.fire(ctx, EventMount, 0, nil); err != nil {
		return err
	}

	prep := b.prepareSDK(ctx)
	defer func() { <-prep }()

	err := b.autoLogin(ctx, prep)
	if err != nil {
		b.logger.ErrorContext(ctx, "login failed", logger.Phase(b.Phase()), logger.Error(err))
	}
	return err
}

func (b *Bootstrapper) autoLogin(ctx context.Context, prep <-chan struct{}) error {
	restored := b.restoreToken(ctx)

	resp, err := b.api.Me(ctx)
	b.observer.AttemptFinished(AttemptAuto, 0, err)
	if err == nil {
		b.state.SetUser(resp.User, resp.MembershipClass)
		if err := b.fire(ctx, EventSessionRestored, 0, nil); err != nil {
			return err
		}
		b.logger.InfoContext(ctx, "session restored",
			logger.PiUID(resp.User.PiUID),
			logger.Membership(resp.MembershipClass),
		)
		b.runAfterLogin(ctx)
		return nil
	}

	if restored && apiclient.IsHardFailure(err) {
		b.forgetToken(ctx)
	}

	code, _ := apiclient.StatusCode(err)
	b.logger.InfoContext(ctx, "no active session, starting interactive login",
		logger.StatusCode(code),
		logger.Error(err),
	)
	if err := b.fire(ctx, EventSessionMissing, 0, nil); err != nil {
		return err
	}

	return b.loginWithRetry(ctx, prep)
}

func (b *Bootstrapper) loginWithRetry(ctx context.Context, prep <-chan struct{}) error {
	select {
	case <-prep:
	case <-ctx.Done():
		_ = b.fire(ctx, EventAborted, 0, ctx.Err())
		return ctx.Err()
	}

	policy := retry.Policy{
		MaxRetries:  b.cfg.MaxRetries,
		Backoff:     b.cfg.backoff(b.rand),
		Sleep:       b.sleep,
		IsPermanent: apiclient.IsHardFailure,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			b.logger.WarnContext(ctx, "login attempt failed, retrying",
				logger.Attempt(attempt),
				logger.Delay(delay),
				logger.Error(err),
			)
			b.observer.RetryScheduled(attempt, delay)
			_ = b.fire(ctx, EventSoftFailure, attempt, err)
		},
	}

	err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
		err := b.registerUser(ctx, attempt)
		b.observer.AttemptFinished(AttemptInteractive, attempt, err)
		return err
	})

	switch {
	case err == nil:
		if err := b.fire(ctx, EventLoginSucceeded, b.machine.Attempt(), nil); err != nil {
			return err
		}
		b.runAfterLogin(ctx)
		return nil
	case errors.Is(err, retry.ErrPermanentFailure):
		_ = b.fire(ctx, EventHardFailure, b.machine.Attempt(), err)
	case errors.Is(err, retry.ErrRetriesExhausted):
		_ = b.fire(ctx, EventRetriesExhausted, b.machine.Attempt(), err)
	default:
		_ = b.fire(ctx, EventAborted, b.machine.Attempt(), err)
	}

	return err
}

func (b *Bootstrapper) registerUser(ctx context.Context, attempt int) error {
	if b.sdk == nil || !b.sdk.Initialized() {
		b.logger.WarnContext(ctx, "pi sdk not available, skipping login attempt", logger.Attempt(attempt))
		return ErrSDKUnavailable
	}

	auth, err := b.sdk.Authenticate(ctx, pisdk.DefaultScopes(), b.onIncompletePayment)
	if err != nil {
		b.state.ClearUser()
		return err
	}

	resp, err := b.api.Authenticate(ctx, auth.AccessToken)
	if err != nil {
		b.state.ClearUser()
		return err
	}

	b.api.SetAuthToken(resp.Token)
	b.persistToken(ctx, resp.Token, resp.User.PiUID)
	b.state.SetUser(resp.User, resp.MembershipClass)

	b.logger.InfoContext(ctx, "user signed in",
		logger.PiUID(resp.User.PiUID),
		logger.Membership(resp.MembershipClass),
		logger.Attempt(attempt),
	)
	return nil
}

// prepareSDK loads and initializes the SDK in the background. The returned
// channel is closed once preparation settled, successfully or not.
func (b *Bootstrapper) prepareSDK(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if b.sdk == nil {
		close(done)
		return done
	}

	go func() {
		defer close(done)

		if err := b.sdk.EnsureLoaded(ctx); err != nil {
			b.logger.WarnContext(ctx, "failed to load pi sdk", logger.Error(err))
			return
		}
		if err := b.sdk.Init(pisdk.InitConfig{Version: b.cfg.SDKVersion, Sandbox: b.cfg.Sandbox}); err != nil {
			b.logger.WarnContext(ctx, "failed to initialize pi sdk", logger.Error(err))
			return
		}

		features, err := b.sdk.NativeFeatures(ctx)
		if err != nil {
			b.logger.WarnContext(ctx, "failed to query native features", logger.Error(err))
			return
		}
		b.state.SetAdsSupported(slices.Contains(features, pisdk.FeatureAdNetwork))
	}()

	return done
}

func (b *Bootstrapper) fire(ctx context.Context, event Event, attempt int, cause error) error {
	from, to, err := b.machine.Fire(event, attempt)
	if err != nil {
		b.logger.ErrorContext(ctx, "unexpected login event", logger.Phase(from), logger.Event(event))
		return err
	}

	b.state.SetPhase(to.String(), cause)
	b.observer.PhaseChanged(from, to, event)
	b.logger.DebugContext(ctx, "login phase changed",
		slog.String("from", from.String()),
		logger.Phase(to),
		logger.Event(event),
	)
	return nil
}

func (b *Bootstrapper) acquire() bool {
	if !b.signingIn.CompareAndSwap(false, true) {
		return false
	}
	b.state.SetSigningIn(true)
	b.observer.SigningInChanged(true)
	return true
}

func (b *Bootstrapper) release() {
	b.state.SetSigningIn(false)
	b.signingIn.Store(false)
	b.observer.SigningInChanged(false)
}

func (b *Bootstrapper) restoreToken(ctx context.Context) bool {
	if b.store == nil || b.api.AuthToken() != "" {
		return false
	}

	rec, err := b.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, tokenstore.ErrNotFound) {
			b.logger.WarnContext(ctx, "failed to load stored session token", logger.Error(err))
		}
		return false
	}

	b.api.SetAuthToken(rec.Token)
	b.logger.DebugContext(ctx, "stored session token restored", logger.PiUID(rec.PiUID))
	return true
}

func (b *Bootstrapper) forgetToken(ctx context.Context) {
	b.api.SetAuthToken("")
	if err := b.store.Delete(ctx); err != nil {
		b.logger.WarnContext(ctx, "failed to delete rejected session token", logger.Error(err))
	}
}

func (b *Bootstrapper) persistToken(ctx context.Context, token, piUID string) {
	if b.store == nil {
		return
	}
	if err := b.store.Save(ctx, tokenstore.NewRecord(token, piUID)); err != nil {
		b.logger.WarnContext(ctx, "failed to persist session token", logger.Error(err))
	}
}

func (b *Bootstrapper) runAfterLogin(ctx context.Context) {
	if len(b.afterLogin) == 0 {
		return
	}
	snap := b.state.Snapshot()
	for _, hook := range b.afterLogin {
		if err := hook(ctx, snap); err != nil {
			b.logger.WarnContext(ctx, "after-login hook failed", logger.PiUID(snap.PiUID()), logger.Error(err))
		}
	}
}

func (b *Bootstrapper) logIncompletePayment(ctx context.Context, payment pisdk.Payment) {
	b.logger.WarnContext(ctx, "incomplete payment found",
		slog.String("payment_id", payment.Identifier),
		slog.Float64("amount", payment.Amount),
	)
}
