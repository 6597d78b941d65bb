package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/prenaissance/steam-desktop-authenticator/internal/apperr"
	"github.com/prenaissance/steam-desktop-authenticator/internal/totp"
)

func newCodeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "code",
		Short: "Print the current Steam Guard code for the active account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			active, ok := app.Store.Active()
			if !ok {
				return apperr.New(apperr.KindUnauthorized, "no active account")
			}

			code, err := totp.GenerateCode(active.SharedSecret, time.Now().Unix())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
}
