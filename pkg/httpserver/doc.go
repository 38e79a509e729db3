// Package httpserver runs the local status API with graceful shutdown.
//
// Run binds the listener, serves until the context is canceled or SIGINT
// or SIGTERM arrives, then drains in-flight requests within the shutdown
// timeout. Listen failures are joined with ErrStart and drain failures with
// ErrShutdown.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("status api", logger.Error(err))
//	}
//
// HealthCheckHandler serves liveness without checks and readiness with them.
package httpserver
