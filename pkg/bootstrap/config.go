package bootstrap

import (
	"time"

	"github.com/map-of-pi/mapofpi/pkg/retry"
)

// Config controls the login retry schedule and the SDK initialization.
type Config struct {
	MaxRetries        int           `env:"LOGIN_MAX_RETRIES" envDefault:"3"`
	BaseDelay         time.Duration `env:"LOGIN_BASE_DELAY" envDefault:"5s"`
	BackoffMultiplier float64       `env:"LOGIN_BACKOFF_MULTIPLIER" envDefault:"3"`
	MaxJitter         time.Duration `env:"LOGIN_MAX_JITTER" envDefault:"1s"`
	SDKVersion        string        `env:"PI_SDK_VERSION" envDefault:"2.0"`
	Sandbox           bool          `env:"PI_SANDBOX" envDefault:"false"`
}

// DefaultConfig mirrors the env defaults: three retries after the first
// attempt, waiting 5s, 15s and 45s plus up to one second of jitter.
func DefaultConfig() Config {
	return Config{
		MaxRetries:        3,
		BaseDelay:         5 * time.Second,
		BackoffMultiplier: 3,
		MaxJitter:         time.Second,
		SDKVersion:        "2.0",
	}
}

func (c Config) backoff(rnd func() float64) retry.Backoff {
	return retry.ExponentialJitter{
		Base:       c.BaseDelay,
		Multiplier: c.BackoffMultiplier,
		MaxJitter:  c.MaxJitter,
		Rand:       rnd,
	}
}
