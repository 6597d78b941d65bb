package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/prenaissance/steam-desktop-authenticator/internal/steamapi"
	"github.com/prenaissance/steam-desktop-authenticator/internal/watch"
)

func newWatchCommand(app *App) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll for new confirmations and print them as they arrive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.ensureFreshTokens(cmd.Context()); err != nil {
				return err
			}

			cache, err := watch.OpenCache(app.Config.WatchCacheFile)
			if err != nil {
				return err
			}
			defer cache.Close()

			if interval <= 0 {
				interval = app.Config.WatchInterval
			}

			activeName := func() (string, bool) {
				active, ok := app.Store.Active()
				return active.AccountName, ok
			}
			notify := func(confirmation steamapi.Confirmation) {
				created := time.Unix(confirmation.CreationTime, 0).Format(time.RFC3339)
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s %s: %s\n",
					created, confirmation.Type(), confirmation.ID, confirmation.Headline)
			}

			watcher := watch.NewWatcher(app.confirmationDispatcher(), cache, activeName, interval, notify)
			fmt.Fprintf(cmd.OutOrStdout(), "Watching for confirmations every %s. Press Ctrl-C to stop.\n", interval)
			return watcher.Run(cmd.Context())
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Poll interval (defaults to SDA_WATCH_INTERVAL)")
	return cmd
}
