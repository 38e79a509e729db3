package main

import (
	"github.com/spf13/cobra"

	"github.com/map-of-pi/mapofpi/pkg/httpserver"
	"github.com/map-of-pi/mapofpi/pkg/logger"
	"github.com/map-of-pi/mapofpi/pkg/statusapi"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr  string
		mount bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session over a local HTTP API",
		RunE: run(func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			// There is no terminal to prompt on while serving.
			a, err := newApp(ctx, opts, withoutPrompt(), withMetrics())
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			api := statusapi.New(a.boot,
				statusapi.WithLogger(a.log),
				statusapi.WithMetrics(a.metrics),
				statusapi.WithNotifications(a.counter),
				statusapi.WithEnvironment(a.env),
				statusapi.WithHealthChecks(a.checks...),
			)

			serverCfg := a.cfg.Server
			if addr != "" {
				serverCfg.Addr = addr
			}
			srv := httpserver.NewFromConfig(serverCfg, httpserver.WithLogger(a.log))

			if mount {
				go func() {
					if err := a.boot.Mount(ctx); err != nil {
						a.log.WarnContext(ctx, "initial login failed", logger.Error(err))
					}
				}()
			}

			return srv.Run(ctx, api.Handler())
		}),
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides STATUS_ADDR)")
	cmd.Flags().BoolVar(&mount, "mount", true, "restore the session on start")
	return cmd
}
