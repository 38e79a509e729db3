package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	goredis "github.com/redis/go-redis/v9"

	"github.com/map-of-pi/mapofpi/pkg/apiclient"
	"github.com/map-of-pi/mapofpi/pkg/bootstrap"
	"github.com/map-of-pi/mapofpi/pkg/config"
	"github.com/map-of-pi/mapofpi/pkg/environment"
	"github.com/map-of-pi/mapofpi/pkg/httpserver"
	"github.com/map-of-pi/mapofpi/pkg/logger"
	"github.com/map-of-pi/mapofpi/pkg/metrics"
	"github.com/map-of-pi/mapofpi/pkg/mongo"
	"github.com/map-of-pi/mapofpi/pkg/notifications"
	"github.com/map-of-pi/mapofpi/pkg/pisdk"
	"github.com/map-of-pi/mapofpi/pkg/redis"
	"github.com/map-of-pi/mapofpi/pkg/requestid"
	"github.com/map-of-pi/mapofpi/pkg/session"
	"github.com/map-of-pi/mapofpi/pkg/tokenstore"
)

const serviceName = "mapofpi"

type appConfig struct {
	Env    environment.Config
	API    apiclient.Config
	SDK    pisdk.Config
	Login  bootstrap.Config
	Store  tokenstore.Config
	Mongo  mongo.Config
	Redis  redis.Config
	Server httpserver.Config
}

// app holds the wired components shared by the commands.
type app struct {
	cfg      appConfig
	env      environment.Environment
	log      *slog.Logger
	api      *apiclient.Client
	platform *pisdk.Platform
	store    tokenstore.Store
	state    *session.State
	boot     *bootstrap.Bootstrapper
	counter  *notifications.Counter
	metrics  *metrics.Metrics
	checks   []httpserver.Check
	closers  []func(context.Context) error
}

type appOption func(*appSetup)

type appSetup struct {
	observers []bootstrap.Observer
	metrics   bool
	noPrompt  bool
}

func withObserver(o bootstrap.Observer) appOption {
	return func(s *appSetup) { s.observers = append(s.observers, o) }
}

func withMetrics() appOption {
	return func(s *appSetup) { s.metrics = true }
}

// withoutPrompt disables the terminal consent prompt.
func withoutPrompt() appOption {
	return func(s *appSetup) { s.noPrompt = true }
}

func loadAppConfig(opts *rootOptions) (appConfig, error) {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return cfg, err
	}
	if opts.apiURL != "" {
		cfg.API.BaseURL = opts.apiURL
	}
	if cfg.Env.Environment().PiSandbox() {
		cfg.Login.Sandbox = true
	}
	return cfg, nil
}

func newApp(ctx context.Context, opts *rootOptions, setup ...appOption) (*app, error) {
	cfg, err := loadAppConfig(opts)
	if err != nil {
		return nil, err
	}

	var s appSetup
	for _, o := range setup {
		o(&s)
	}

	a := &app{cfg: cfg, env: cfg.Env.Environment()}

	a.log, err = a.newLogger(ctx, opts.verbose)
	if err != nil {
		return nil, err
	}

	var redisClient goredis.Cmdable
	if cfg.Store.Driver == tokenstore.DriverRedis {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		redisClient = client
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		a.checks = append(a.checks, httpserver.Check{Name: "redis", Ping: redis.Healthcheck(client)})
	}

	a.store, err = tokenstore.Open(cfg.Store, redisClient)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("open token store: %w", err)
	}

	a.api = apiclient.New(cfg.API, apiclient.WithLogger(a.log))
	consent := consentFor(cfg.SDK.AccessToken, opts.noInput || s.noPrompt)
	a.platform = pisdk.NewPlatform(cfg.SDK, consent, pisdk.WithLogger(a.log))
	a.state = session.New()
	a.counter = notifications.NewCounter(a.api, a.state, notifications.WithLogger(a.log))

	bootOpts := []bootstrap.Option{
		bootstrap.WithConfig(cfg.Login),
		bootstrap.WithTokenStore(a.store),
		bootstrap.WithLogger(a.log),
		bootstrap.WithAfterLogin(a.counter.OnLogin),
		bootstrap.WithIncompletePaymentHandler(a.onIncompletePayment),
	}
	if s.metrics {
		a.metrics = metrics.New()
		bootOpts = append(bootOpts, bootstrap.WithObserver(a.metrics))
	}
	for _, o := range s.observers {
		bootOpts = append(bootOpts, bootstrap.WithObserver(o))
	}
	a.boot = bootstrap.New(a.api, a.platform, a.state, bootOpts...)

	return a, nil
}

// newLogger writes to stderr. In production with MongoDB configured every
// record is also stored in the log collection.
func (a *app) newLogger(ctx context.Context, verbose bool) (*slog.Logger, error) {
	opts := []logger.Option{
		logger.WithEnvironment(a.env, serviceName),
		logger.WithOutput(os.Stderr),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if verbose {
		opts = append(opts, logger.WithLevel(slog.LevelDebug))
	} else if a.env.Verbose() {
		opts = append(opts, logger.WithLevel(slog.LevelWarn))
	}

	if a.env.IsProduction() && a.cfg.Mongo.Enabled() {
		client, err := mongo.Connect(ctx, a.cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		a.closers = append(a.closers, client.Disconnect)
		a.checks = append(a.checks, httpserver.Check{Name: "mongo", Ping: mongo.Healthcheck(client)})
		opts = append(opts, logger.WithSinks(logger.NewMongoHandler(mongo.LogCollection(client, a.cfg.Mongo))))
	}

	log := logger.New(opts...)
	logger.SetAsDefault(log)
	return log, nil
}

func (a *app) onIncompletePayment(ctx context.Context, p pisdk.Payment) {
	a.log.WarnContext(ctx, "incomplete payment found",
		slog.String("payment_id", p.Identifier),
		slog.Float64("amount", p.Amount),
	)
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close(ctx context.Context) {
	var errs error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = errors.Join(errs, a.closers[i](ctx))
	}
	a.closers = nil
	if errs != nil && a.log != nil {
		a.log.WarnContext(ctx, "close", logger.Error(errs))
	}
}
