package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProfileCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the active account's Steam profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.ensureFreshTokens(cmd.Context()); err != nil {
				return err
			}

			fetched, err := app.profileService().Get(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Account:  %s\n", fetched.AccountName)
			fmt.Fprintf(cmd.OutOrStdout(), "Steam id: %d\n", fetched.SteamID)
			if fetched.PersonaName != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Persona:  %s\n", fetched.PersonaName)
			}
			if fetched.ProfileURL != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Profile:  %s\n", fetched.ProfileURL)
			}
			if fetched.AvatarURL != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Avatar:   %s\n", fetched.AvatarURL)
			}
			return nil
		},
	}
}
