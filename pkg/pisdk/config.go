package pisdk

// Config describes where the SDK and the Pi platform API live.
type Config struct {
	ScriptURL   string `env:"PI_SDK_URL" envDefault:"https://sdk.minepi.com/pi-sdk.js"`
	PlatformURL string `env:"PI_PLATFORM_URL" envDefault:"https://api.minepi.com"`
	Version     string `env:"PI_SDK_VERSION" envDefault:"2.0"`
	// NativeFeatures is what the host reports, e.g. "ad_network" inside the Pi Browser.
	NativeFeatures []string `env:"PI_NATIVE_FEATURES" envSeparator:","`
	// AccessToken enables headless logins with a pre-issued Pi access token.
	AccessToken string `env:"PI_ACCESS_TOKEN"`
}
