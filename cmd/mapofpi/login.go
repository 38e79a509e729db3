package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/map-of-pi/mapofpi/pkg/session"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Restore the saved session or sign in with your Pi account",
		RunE: run(func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			a, err := newApp(ctx, opts, withObserver(progress{out: cmd.ErrOrStderr()}))
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if interactive {
				err = a.boot.LoginWithRetry(ctx)
			} else {
				err = a.boot.Mount(ctx)
			}
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			fmt.Fprintln(out, successStyle.Render("✓ Signed in"))
			printSnapshot(out, a.state.Snapshot())
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "skip the saved session and sign in again")
	return cmd
}

func printSnapshot(out io.Writer, snap session.Snapshot) {
	if !snap.Authenticated() {
		fmt.Fprintln(out, infoStyle.Render("Not signed in"))
		return
	}

	fmt.Fprintln(out, titleStyle.Render("Map of Pi"))
	row := func(label, value string) {
		fmt.Fprintln(out, labelStyle.Render(label)+value)
	}
	row("Pioneer", snap.User.PiUsername)
	row("Pi UID", snap.User.PiUID)
	row("Membership", membershipStyle.Render(string(snap.Membership)))
	row("Notifications", strconv.Itoa(snap.NotificationsCount))
	if snap.AdsSupported {
		row("Ads", "supported")
	}
}
