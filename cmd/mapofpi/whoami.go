package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/map-of-pi/mapofpi/pkg/apiclient"
	"github.com/map-of-pi/mapofpi/pkg/logger"
	"github.com/map-of-pi/mapofpi/pkg/notifications"
	"github.com/map-of-pi/mapofpi/pkg/tokenstore"
)

// newWhoamiCmd checks the saved session against the backend. It never
// prompts.
func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in pioneer",
		RunE: run(func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			a, err := newApp(ctx, opts, withoutPrompt())
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			rec, err := a.store.Load(ctx)
			if errors.Is(err, tokenstore.ErrNotFound) {
				printSnapshot(out, a.state.Snapshot())
				return nil
			}
			if err != nil {
				return fmt.Errorf("load saved session: %w", err)
			}

			a.api.SetAuthToken(rec.Token)
			resp, err := a.api.Me(ctx)
			if err != nil {
				if apiclient.IsHardFailure(err) {
					fmt.Fprintln(out, warningStyle.Render("Saved session has expired, run `mapofpi login`"))
					return nil
				}
				return fmt.Errorf("check session: %w", err)
			}
			a.state.SetUser(resp.User, resp.MembershipClass)

			if _, err := a.counter.Refresh(ctx); err != nil && !errors.Is(err, notifications.ErrNotAuthenticated) {
				a.log.WarnContext(ctx, "notification refresh failed", logger.Error(err))
			}

			printSnapshot(out, a.state.Snapshot())
			return nil
		}),
	}
}
