package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prenaissance/steam-desktop-authenticator/internal/apperr"
)

func newLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the active account from the store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			active, ok := app.Store.Active()
			if !ok {
				return apperr.New(apperr.KindUnauthorized, "no active account")
			}

			if err := app.Store.Remove(active.AccountName); err != nil {
				return err
			}
			forgetWatchHistory(app, active.AccountName)
			fmt.Fprintf(cmd.OutOrStdout(), "Logged out %s\n", active.AccountName)
			if _, next := app.Store.Snapshot(); next != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Active account is now %s\n", next)
			}
			return nil
		},
	}
}
