package bootstrap_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/map-of-pi/mapofpi/pkg/apiclient"
	"github.com/map-of-pi/mapofpi/pkg/bootstrap"
	"github.com/map-of-pi/mapofpi/pkg/pisdk"
	"github.com/map-of-pi/mapofpi/pkg/retry"
	"github.com/map-of-pi/mapofpi/pkg/session"
	"github.com/map-of-pi/mapofpi/pkg/tokenstore"
)

func newBootstrapper(api bootstrap.API, sdk pisdk.SDK, opts ...bootstrap.Option) (*bootstrap.Bootstrapper, *clock) {
	c := &clock{}
	base := []bootstrap.Option{
		bootstrap.WithSleep(c.Sleep),
		bootstrap.WithRand(func() float64 { return 0.5 }),
		bootstrap.WithLogger(slog.New(slog.DiscardHandler)),
	}
	return bootstrap.New(api, sdk, session.New(), append(base, opts...)...), c
}

func meOK(uid string, class apiclient.MembershipClass) func(context.Context, string) (*apiclient.SessionResponse, error) {
	return func(context.Context, string) (*apiclient.SessionResponse, error) {
		return &apiclient.SessionResponse{User: apiclient.User{PiUID: uid}, MembershipClass: class}, nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestMount_SessionRestored(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/me":
			writeJSON(w, http.StatusOK, map[string]any{
				"user":             map[string]any{"pi_uid": "abc"},
				"membership_class": "CASUAL",
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	sdk := &fakeSDK{}
	b, c := newBootstrapper(apiclient.New(apiclient.Config{BaseURL: srv.URL}), sdk)

	require.NoError(t, b.Mount(context.Background()))

	snap := b.State().Snapshot()
	require.True(t, snap.Authenticated())
	assert.Equal(t, "abc", snap.PiUID())
	assert.Equal(t, apiclient.MembershipCasual, snap.Membership)
	assert.False(t, snap.SigningIn)
	assert.False(t, b.SigningIn())
	assert.Equal(t, bootstrap.PhaseAuthenticated, b.Phase())
	assert.Zero(t, sdk.AuthCalls())
	assert.Empty(t, c.Delays())
}

func TestMount_FallsBackToInteractiveLogin(t *testing.T) {
	t.Parallel()

	var meCalls atomic.Int32
	var lastAuthHeader atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/me":
			meCalls.Add(1)
			lastAuthHeader.Store(r.Header.Get("Authorization"))
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
		case "/users/authenticate":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer pi-access-token", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{
				"token":            "t1",
				"user":             map[string]any{"pi_uid": "xyz"},
				"membership_class": "WHITE",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	api := apiclient.New(apiclient.Config{BaseURL: srv.URL})
	sdk := &fakeSDK{}
	b, c := newBootstrapper(api, sdk)

	require.NoError(t, b.Mount(context.Background()))

	snap := b.State().Snapshot()
	require.True(t, snap.Authenticated())
	assert.Equal(t, "xyz", snap.PiUID())
	assert.Equal(t, apiclient.MembershipWhite, snap.Membership)
	assert.False(t, snap.SigningIn)
	assert.Equal(t, bootstrap.PhaseAuthenticated, b.Phase())
	assert.Equal(t, 1, sdk.AuthCalls())
	assert.Empty(t, c.Delays())
	assert.Equal(t, "t1", api.AuthToken())

	// the stored bearer token is attached to subsequent requests
	_, _ = api.Me(context.Background())
	assert.Equal(t, int32(2), meCalls.Load())
	assert.Equal(t, "Bearer t1", lastAuthHeader.Load())
}

func TestMount_HardFailureAbortsImmediately(t *testing.T) {
	t.Parallel()

	var authCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/me":
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		case "/users/authenticate":
			authCalls.Add(1)
			writeJSON(w, http.StatusForbidden, map[string]any{"message": "Forbidden"})
		}
	}))
	defer srv.Close()

	sdk := &fakeSDK{}
	b, c := newBootstrapper(apiclient.New(apiclient.Config{BaseURL: srv.URL}), sdk)

	err := b.Mount(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrPermanentFailure)
	assert.True(t, apiclient.IsHardFailure(err))

	snap := b.State().Snapshot()
	assert.False(t, snap.Authenticated())
	assert.False(t, snap.SigningIn)
	assert.NotEmpty(t, snap.LastError)
	assert.Equal(t, bootstrap.PhaseUnauthenticated, b.Phase())
	assert.Equal(t, int32(1), authCalls.Load())
	assert.Equal(t, 1, sdk.AuthCalls())
	assert.Empty(t, c.Delays())
}

func TestMount_HardFailureStatuses(t *testing.T) {
	t.Parallel()

	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			t.Parallel()

			api := &fakeAPI{
				authenticate: func(int, string) (*apiclient.AuthResponse, error) {
					return nil, statusErr(http.MethodPost, "/users/authenticate", code)
				},
			}
			b, c := newBootstrapper(api, &fakeSDK{})

			err := b.Mount(context.Background())
			require.Error(t, err)
			assert.True(t, apiclient.IsHardFailure(err))

			_, auth := api.Calls()
			assert.Equal(t, 1, auth)
			assert.Empty(t, c.Delays())
			assert.False(t, b.SigningIn())
		})
	}
}

func TestMount_SoftFailuresThenSuccess(t *testing.T) {
	t.Parallel()

	for failures := 0; failures <= 3; failures++ {
		t.Run("", func(t *testing.T) {
			t.Parallel()

			api := &fakeAPI{
				authenticate: func(call int, _ string) (*apiclient.AuthResponse, error) {
					if call < failures {
						return nil, statusErr(http.MethodPost, "/users/authenticate", http.StatusInternalServerError)
					}
					return &apiclient.AuthResponse{Token: "t1", User: apiclient.User{PiUID: "xyz"}}, nil
				},
			}
			b, c := newBootstrapper(api, &fakeSDK{})

			require.NoError(t, b.Mount(context.Background()))

			assert.Equal(t, bootstrap.PhaseAuthenticated, b.Phase())
			assert.Equal(t, "xyz", b.State().Snapshot().PiUID())
			assert.Len(t, c.Delays(), failures)
			_, auth := api.Calls()
			assert.Equal(t, failures+1, auth)
		})
	}
}

func TestMount_RetriesExhausted(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	sdk := &fakeSDK{authErrs: []error{
		pisdk.ErrConsentDeclined,
		errors.New("network down"),
		pisdk.ErrConsentDeclined,
		errors.New("network down"),
		nil,
	}}
	api := &fakeAPI{}
	b, c := newBootstrapper(api, sdk, bootstrap.WithObserver(rec))

	err := b.Mount(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrRetriesExhausted)

	assert.Equal(t, 4, sdk.AuthCalls(), "no fifth attempt")
	assert.Len(t, c.Delays(), 3)
	assert.Equal(t, bootstrap.PhaseUnauthenticated, b.Phase())
	assert.False(t, b.State().Snapshot().Authenticated())
	assert.False(t, b.SigningIn())

	_, auth := api.Calls()
	assert.Zero(t, auth)
	assert.Equal(t, []int{0, 1, 2}, rec.retries)
}

func TestMount_BackoffSchedule(t *testing.T) {
	t.Parallel()

	for _, r := range []float64{0, 0.5, 0.999999} {
		sdk := &fakeSDK{authErrs: []error{
			errors.New("boom"), errors.New("boom"), errors.New("boom"), errors.New("boom"),
		}}
		b, c := newBootstrapper(&fakeAPI{}, sdk, bootstrap.WithRand(func() float64 { return r }))

		require.Error(t, b.Mount(context.Background()))

		delays := c.Delays()
		require.Len(t, delays, 3)
		for n, d := range delays {
			lower := 5 * time.Second
			for range n {
				lower *= 3
			}
			assert.GreaterOrEqual(t, d, lower, "attempt %d", n)
			assert.Less(t, d, lower+time.Second, "attempt %d", n)
		}
	}
}

func TestMount_SDKUnavailable(t *testing.T) {
	t.Parallel()

	sdk := &fakeSDK{loadErr: pisdk.ErrLoadFailed}
	api := &fakeAPI{}
	b, c := newBootstrapper(api, sdk)

	err := b.Mount(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrRetriesExhausted)
	assert.ErrorIs(t, err, bootstrap.ErrSDKUnavailable)

	assert.Zero(t, sdk.AuthCalls())
	_, auth := api.Calls()
	assert.Zero(t, auth)
	assert.Len(t, c.Delays(), 3, "unavailable SDK still consumes the retry budget")
	assert.Equal(t, bootstrap.PhaseUnauthenticated, b.Phase())
}

func TestMount_PreparesSDK(t *testing.T) {
	t.Parallel()

	sdk := &fakeSDK{features: []string{"inline_media", pisdk.FeatureAdNetwork}}
	cfg := bootstrap.DefaultConfig()
	cfg.Sandbox = true
	b, _ := newBootstrapper(&fakeAPI{me: meOK("abc", apiclient.MembershipGold)}, sdk, bootstrap.WithConfig(cfg))

	require.NoError(t, b.Mount(context.Background()))

	snap := b.State().Snapshot()
	assert.True(t, snap.AdsSupported)
	assert.Equal(t, apiclient.MembershipGold, snap.Membership)
	assert.Equal(t, 1, sdk.loadCalls)
	assert.Equal(t, 1, sdk.initCalls)
	assert.Equal(t, pisdk.InitConfig{Version: "2.0", Sandbox: true}, sdk.initCfg)
}

func TestMount_NoopWhenUserPresent(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{me: meOK("abc", apiclient.MembershipCasual)}
	b, _ := newBootstrapper(api, &fakeSDK{})

	require.NoError(t, b.Mount(context.Background()))
	require.NoError(t, b.Mount(context.Background()))

	me, _ := api.Calls()
	assert.Equal(t, 1, me)
}

func TestMount_ConcurrentTriggerIsNoop(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	unblock := make(chan struct{})
	api := &fakeAPI{
		me: func(context.Context, string) (*apiclient.SessionResponse, error) {
			close(entered)
			<-unblock
			return &apiclient.SessionResponse{User: apiclient.User{PiUID: "abc"}}, nil
		},
	}
	b, _ := newBootstrapper(api, &fakeSDK{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, b.Mount(context.Background()))
	}()

	<-entered
	assert.True(t, b.SigningIn())
	assert.True(t, b.State().Snapshot().SigningIn)

	assert.NoError(t, b.Mount(context.Background()))
	assert.ErrorIs(t, b.AutoLogin(context.Background()), bootstrap.ErrInFlight)
	assert.ErrorIs(t, b.LoginWithRetry(context.Background()), bootstrap.ErrInFlight)
	assert.ErrorIs(t, b.RegisterUser(context.Background()), bootstrap.ErrInFlight)
	assert.ErrorIs(t, b.Logout(context.Background()), bootstrap.ErrInFlight)

	close(unblock)
	wg.Wait()

	me, auth := api.Calls()
	assert.Equal(t, 1, me)
	assert.Zero(t, auth)
	assert.False(t, b.SigningIn())
	assert.Equal(t, bootstrap.PhaseAuthenticated, b.Phase())
}

func TestMount_ContextCanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	sdk := &fakeSDK{authErrs: []error{errors.New("boom"), errors.New("boom")}}
	b := bootstrap.New(&fakeAPI{}, sdk, nil,
		bootstrap.WithLogger(slog.New(slog.DiscardHandler)),
		bootstrap.WithSleep(func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		}),
	)

	err := b.Mount(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sdk.AuthCalls())
	assert.Equal(t, bootstrap.PhaseUnauthenticated, b.Phase())
	assert.False(t, b.SigningIn())
}

func TestAutoLogin_RestoresStoredToken(t *testing.T) {
	t.Parallel()

	store := tokenstore.NewMemory()
	require.NoError(t, store.Save(context.Background(), tokenstore.NewRecord("t0", "abc")))

	api := &fakeAPI{
		me: func(_ context.Context, token string) (*apiclient.SessionResponse, error) {
			if token != "t0" {
				return nil, statusErr(http.MethodGet, "/users/me", http.StatusUnauthorized)
			}
			return &apiclient.SessionResponse{User: apiclient.User{PiUID: "abc"}}, nil
		},
	}
	sdk := &fakeSDK{}
	b, _ := newBootstrapper(api, sdk, bootstrap.WithTokenStore(store))

	require.NoError(t, b.AutoLogin(context.Background()))
	assert.Equal(t, "abc", b.State().Snapshot().PiUID())
	assert.Equal(t, "t0", api.AuthToken())
	assert.Zero(t, sdk.AuthCalls())
}

func TestAutoLogin_RejectedStoredTokenIsForgotten(t *testing.T) {
	t.Parallel()

	store := tokenstore.NewMemory()
	require.NoError(t, store.Save(context.Background(), tokenstore.NewRecord("stale", "abc")))

	api := &fakeAPI{
		me: func(_ context.Context, token string) (*apiclient.SessionResponse, error) {
			return nil, statusErr(http.MethodGet, "/users/me", http.StatusUnauthorized)
		},
	}
	sdk := &fakeSDK{}
	b, _ := newBootstrapper(api, sdk, bootstrap.WithTokenStore(store))

	require.NoError(t, b.AutoLogin(context.Background()))

	// the 401 from /users/me falls through to interactive login
	assert.Equal(t, 1, sdk.AuthCalls())
	assert.Equal(t, "xyz", b.State().Snapshot().PiUID())
	assert.Equal(t, "t1", api.AuthToken())

	rec, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "t1", rec.Token)
	assert.Equal(t, "xyz", rec.PiUID)
}

func TestAutoLogin_RefreshesPresentUser(t *testing.T) {
	t.Parallel()

	class := apiclient.MembershipCasual
	api := &fakeAPI{
		me: func(context.Context, string) (*apiclient.SessionResponse, error) {
			return &apiclient.SessionResponse{User: apiclient.User{PiUID: "abc"}, MembershipClass: class}, nil
		},
	}
	b, _ := newBootstrapper(api, &fakeSDK{})

	require.NoError(t, b.Mount(context.Background()))
	class = apiclient.MembershipTripleGold
	require.NoError(t, b.AutoLogin(context.Background()))

	assert.Equal(t, apiclient.MembershipTripleGold, b.State().Snapshot().Membership)
	assert.Equal(t, bootstrap.PhaseAuthenticated, b.Phase())
}

func TestRegisterUser(t *testing.T) {
	t.Parallel()

	t.Run("sdk not initialized", func(t *testing.T) {
		t.Parallel()

		sdk := &fakeSDK{}
		api := &fakeAPI{}
		b, _ := newBootstrapper(api, sdk)

		err := b.RegisterUser(context.Background())
		require.ErrorIs(t, err, bootstrap.ErrSDKUnavailable)
		assert.Zero(t, sdk.AuthCalls())
		_, auth := api.Calls()
		assert.Zero(t, auth)
		assert.False(t, b.State().Snapshot().Authenticated())
		assert.Zero(t, sdk.loadCalls, "register never loads the sdk")
	})

	t.Run("success persists the token", func(t *testing.T) {
		t.Parallel()

		store := tokenstore.NewMemory()
		sdk := &fakeSDK{initialized: true}
		api := &fakeAPI{}

		var hooked session.Snapshot
		b, _ := newBootstrapper(api, sdk,
			bootstrap.WithTokenStore(store),
			bootstrap.WithAfterLogin(func(_ context.Context, snap session.Snapshot) error {
				hooked = snap
				return errors.New("hook errors are only logged")
			}),
		)

		require.NoError(t, b.RegisterUser(context.Background()))
		assert.Equal(t, "xyz", b.State().Snapshot().PiUID())
		assert.Equal(t, "t1", api.AuthToken())
		assert.Equal(t, bootstrap.PhaseAuthenticated, b.Phase())
		assert.Equal(t, "xyz", hooked.PiUID())

		rec, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "t1", rec.Token)
	})

	t.Run("failure clears the user", func(t *testing.T) {
		t.Parallel()

		sdk := &fakeSDK{initialized: true}
		api := &fakeAPI{
			authenticate: func(int, string) (*apiclient.AuthResponse, error) {
				return nil, statusErr(http.MethodPost, "/users/authenticate", http.StatusBadGateway)
			},
		}
		b, _ := newBootstrapper(api, sdk)
		b.State().SetUser(apiclient.User{PiUID: "old"}, apiclient.MembershipGreen)

		require.Error(t, b.RegisterUser(context.Background()))
		snap := b.State().Snapshot()
		assert.False(t, snap.Authenticated())
		assert.Equal(t, apiclient.MembershipCasual, snap.Membership)
		assert.Equal(t, bootstrap.PhaseIdle, b.Phase())
	})

	t.Run("incomplete payment is forwarded", func(t *testing.T) {
		t.Parallel()

		sdk := &fakeSDK{initialized: true, payment: &pisdk.Payment{Identifier: "pay-1", Amount: 3.14}}
		var got []pisdk.Payment
		b, _ := newBootstrapper(&fakeAPI{}, sdk,
			bootstrap.WithIncompletePaymentHandler(func(_ context.Context, p pisdk.Payment) {
				got = append(got, p)
			}),
		)

		require.NoError(t, b.RegisterUser(context.Background()))
		require.Len(t, got, 1)
		assert.Equal(t, "pay-1", got[0].Identifier)
	})
}

func TestLoginWithRetry(t *testing.T) {
	t.Parallel()

	sdk := &fakeSDK{authErrs: []error{pisdk.ErrConsentDeclined}}
	api := &fakeAPI{me: meOK("never", apiclient.MembershipCasual)}
	b, c := newBootstrapper(api, sdk)

	require.NoError(t, b.LoginWithRetry(context.Background()))

	me, _ := api.Calls()
	assert.Zero(t, me, "silent session check is skipped")
	assert.Equal(t, 2, sdk.AuthCalls())
	assert.Len(t, c.Delays(), 1)
	assert.Equal(t, bootstrap.PhaseAuthenticated, b.Phase())

	var nt *bootstrap.ErrNoTransition
	require.ErrorAs(t, b.LoginWithRetry(context.Background()), &nt)
	assert.Equal(t, bootstrap.PhaseAuthenticated, nt.Phase)
	assert.Equal(t, bootstrap.EventLoginRequested, nt.Event)
}

func TestLogout(t *testing.T) {
	t.Parallel()

	store := tokenstore.NewMemory()
	api := &fakeAPI{}
	sdk := &fakeSDK{}
	b, _ := newBootstrapper(api, sdk, bootstrap.WithTokenStore(store))

	require.NoError(t, b.Mount(context.Background()))
	require.Equal(t, bootstrap.PhaseAuthenticated, b.Phase())

	require.NoError(t, b.Logout(context.Background()))
	assert.Equal(t, bootstrap.PhaseIdle, b.Phase())
	assert.False(t, b.State().Snapshot().Authenticated())
	assert.Empty(t, api.AuthToken())
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, tokenstore.ErrNotFound)

	// a later mount re-enters the flow
	require.NoError(t, b.Mount(context.Background()))
	assert.Equal(t, bootstrap.PhaseAuthenticated, b.Phase())
	assert.Equal(t, 2, sdk.AuthCalls())
}

func TestObserver(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	sdk := &fakeSDK{authErrs: []error{errors.New("boom")}}
	b, _ := newBootstrapper(&fakeAPI{}, sdk, bootstrap.WithObserver(rec))

	require.NoError(t, b.Mount(context.Background()))

	assert.Equal(t, []bootstrap.Phase{
		bootstrap.PhaseAutoLoginInFlight,
		bootstrap.PhaseInteractiveLoginInFlight,
		bootstrap.PhaseInteractiveLoginInFlight,
		bootstrap.PhaseAuthenticated,
	}, rec.phases)
	assert.Equal(t, []bootstrap.AttemptKind{
		bootstrap.AttemptAuto,
		bootstrap.AttemptInteractive,
		bootstrap.AttemptInteractive,
	}, rec.attempts)
	assert.Equal(t, []int{0}, rec.retries)
	assert.Equal(t, []bool{true, false}, rec.signingIn)
}
