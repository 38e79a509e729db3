package environment

import "strings"

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Sandbox     Environment = "sandbox"
	Production  Environment = "production"
)

// Config reads the environment from APP_ENV.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
}

// Environment returns the parsed APP_ENV value.
func (c Config) Environment() Environment {
	return Parse(c.AppEnv)
}

// Parse maps a raw environment name to an Environment.
// Unknown and empty names resolve to Development.
func Parse(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return Production
	case "sandbox", "staging", "stage", "preview":
		return Sandbox
	default:
		return Development
	}
}

func (e Environment) String() string { return string(e) }

// IsProduction reports whether e is the live environment.
func (e Environment) IsProduction() bool { return e == Production }

// PiSandbox reports whether the Pi SDK runs against the sandbox.
// Everything except production does.
func (e Environment) PiSandbox() bool { return e != Production }

// Verbose reports whether logs should be human readable and include debug
// records.
func (e Environment) Verbose() bool { return e != Production }
