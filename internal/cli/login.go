package cli

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/prenaissance/steam-desktop-authenticator/internal/dispatch"
	"github.com/prenaissance/steam-desktop-authenticator/internal/login"
	"github.com/prenaissance/steam-desktop-authenticator/internal/models"
	"github.com/prenaissance/steam-desktop-authenticator/internal/steamapi"
)

func newLoginCommand(app *App) *cobra.Command {
	var (
		username       string
		password       string
		sharedSecret   string
		identitySecret string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a Steam account and store its credentials",
		Long: "Performs the device-confirmation login handshake. The shared and identity " +
			"secrets come from your authenticator enrollment (maFile or similar export).",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				prompted, err := promptPassword(fmt.Sprintf("Password for %s: ", username))
				if err != nil {
					return err
				}
				password = prompted
			}

			request := login.Request{
				Username:       username,
				Password:       password,
				SharedSecret:   sharedSecret,
				IdentitySecret: identitySecret,
			}

			handshake := login.New(steamapi.NewAuthClient(app.Transport), app.Store)
			cred, err := dispatch.Run(cmd.Context(), func() (models.UserCredentials, error) {
				return handshake.Run(cmd.Context(), request)
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (steam id %d)\n", cred.AccountName, cred.SteamID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Steam account name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	cmd.Flags().StringVar(&sharedSecret, "shared-secret", "", "Base64 shared secret")
	cmd.Flags().StringVar(&identitySecret, "identity-secret", "", "Base64 identity secret")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("shared-secret")
	_ = cmd.MarkFlagRequired("identity-secret")
	return cmd
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}
