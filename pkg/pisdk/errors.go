package pisdk

import "errors"

var (
	ErrLoadFailed         = errors.New("failed to load Pi SDK")
	ErrNotLoaded          = errors.New("Pi SDK is not loaded")
	ErrNotInitialized     = errors.New("Pi SDK is not initialized")
	ErrConsentDeclined    = errors.New("pioneer declined the authentication request")
	ErrInvalidAccessToken = errors.New("access token rejected by the Pi platform")
	ErrPlatformRequest    = errors.New("Pi platform request failed")
)
