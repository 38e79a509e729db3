package httpserver

import "time"

// Config holds the listener settings of the local status API.
type Config struct {
	Addr            string        `env:"STATUS_ADDR" envDefault:"127.0.0.1:8787"`
	ReadTimeout     time.Duration `env:"STATUS_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"STATUS_WRITE_TIMEOUT" envDefault:"2m"` // login may wait for backoff
	IdleTimeout     time.Duration `env:"STATUS_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"STATUS_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// NewFromConfig creates a Server from cfg. Zero values keep the defaults.
func NewFromConfig(cfg Config, opts ...Option) *Server {
	configOpts := make([]Option, 0, 5+len(opts))

	if cfg.Addr != "" {
		configOpts = append(configOpts, WithAddr(cfg.Addr))
	}
	if cfg.ReadTimeout > 0 {
		configOpts = append(configOpts, WithReadTimeout(cfg.ReadTimeout))
	}
	if cfg.WriteTimeout > 0 {
		configOpts = append(configOpts, WithWriteTimeout(cfg.WriteTimeout))
	}
	if cfg.IdleTimeout > 0 {
		configOpts = append(configOpts, WithIdleTimeout(cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout > 0 {
		configOpts = append(configOpts, WithShutdownTimeout(cfg.ShutdownTimeout))
	}

	return New(append(configOpts, opts...)...)
}
