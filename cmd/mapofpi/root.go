package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/map-of-pi/mapofpi/pkg/config"
)

type rootOptions struct {
	apiURL  string
	envFile []string
	verbose bool
	noInput bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "mapofpi",
		Short:         "Sign in to Map of Pi with your Pi account",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if len(opts.envFile) == 0 {
				return nil
			}
			if err := config.LoadEnvFiles(opts.envFile...); err != nil {
				return fmt.Errorf("load env files: %w", err)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api-url", "", "Map of Pi backend URL (overrides MAPOFPI_API_URL)")
	flags.StringSliceVar(&opts.envFile, "env-file", nil, "load environment variables from these files")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&opts.noInput, "no-input", false, "never prompt; requires PI_ACCESS_TOKEN for interactive login")

	cmd.AddCommand(
		newLoginCmd(opts),
		newWhoamiCmd(opts),
		newLogoutCmd(opts),
		newServeCmd(opts),
	)

	return cmd
}

// run wraps a command body so that failures are rendered once.
func run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render("✗ "+err.Error()))
			return err
		}
		return nil
	}
}
