package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/prenaissance/steam-desktop-authenticator/internal/watch"
)

func newAccountsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List stored accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stored, active := app.Store.Snapshot()
			if len(stored) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No accounts stored. Run 'authenticator login' first.")
				return nil
			}

			for _, account := range stored {
				marker := " "
				if account.AccountName == active {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (steam id %d)\n", marker, account.AccountName, account.SteamID)
			}
			return nil
		},
	}
}

func newUseCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <account>",
		Short: "Select the active account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.SetActive(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active account is now %s\n", args[0])
			return nil
		},
	}
}

func newRemoveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <account>",
		Short: "Remove a stored account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.Remove(args[0]); err != nil {
				return err
			}
			forgetWatchHistory(app, args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			if _, active := app.Store.Snapshot(); active != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Active account is now %s\n", active)
			}
			return nil
		},
	}
}

// forgetWatchHistory drops the removed account's seen-confirmation set so a
// later re-add replays notifications from scratch. Best effort; the account
// itself is already gone.
func forgetWatchHistory(app *App, account string) {
	cache, err := watch.OpenCache(app.Config.WatchCacheFile)
	if err != nil {
		slog.Warn("could not open watch cache", "error", err)
		return
	}
	defer cache.Close()
	if err := cache.Forget(account); err != nil {
		slog.Warn("could not drop watch history", "account", account, "error", err)
	}
}
