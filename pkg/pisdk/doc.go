// Package pisdk abstracts the Pi Network SDK the bootstrapper depends on.
//
// The SDK interface exposes the four capabilities the login flow consumes:
// loading the vendor SDK, initializing it once with a version and sandbox flag,
// authenticating the pioneer for a set of scopes, and listing the native
// features of the host. Code depending on SDK can be exercised with scripted
// doubles without any network.
//
// Platform is the production implementation for processes outside the Pi
// Browser. "Loading" fetches the vendor script URL once per process lifetime
// (concurrent callers share one fetch). Authentication asks a Consent source
// for an access token (an interactive prompt in the CLI, a static token for
// headless runs), then verifies the token against the Pi platform API
// (GET /v2/me) before handing it to the caller.
//
// # Usage
//
//	sdk := pisdk.NewPlatform(cfg, pisdk.StaticConsent(os.Getenv("PI_ACCESS_TOKEN")))
//	if err := sdk.EnsureLoaded(ctx); err != nil {
//		return err
//	}
//	if err := sdk.Init(pisdk.InitConfig{Version: "2.0", Sandbox: true}); err != nil {
//		return err
//	}
//
//	res, err := sdk.Authenticate(ctx, pisdk.DefaultScopes(), func(ctx context.Context, p pisdk.Payment) {
//		log.Printf("incomplete payment %s", p.Identifier)
//	})
//
// # Errors
//
// ErrNotLoaded and ErrNotInitialized report calls made before the SDK is
// ready. ErrConsentDeclined reports a pioneer declining the consent prompt.
// Both are transient from the caller's perspective.
package pisdk
