package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSessionsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List and answer pending login approval requests",
	}
	cmd.AddCommand(
		newSessionsListCommand(app),
		newSessionsApproveCommand(app),
		newSessionsDenyCommand(app),
		newSessionsApproveQRCommand(app),
	)
	return cmd
}

func newSessionsListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending auth sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.ensureFreshTokens(cmd.Context()); err != nil {
				return err
			}

			sessions, err := app.approvalDispatcher().ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending login requests.")
				return nil
			}

			for _, session := range sessions {
				location := session.City
				if session.Country != "" {
					location = fmt.Sprintf("%s, %s", session.City, session.Country)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d  %s  %s  %s\n",
					session.ClientID, session.DeviceDisplayName, session.IP, location)
			}
			return nil
		},
	}
}

func newSessionsApproveCommand(app *App) *cobra.Command {
	var persistent bool
	cmd := &cobra.Command{
		Use:   "approve <client-id>",
		Short: "Approve a pending login request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid client id %q: %w", args[0], err)
			}
			if err := app.ensureFreshTokens(cmd.Context()); err != nil {
				return err
			}
			if err := app.approvalDispatcher().Approve(cmd.Context(), clientID, persistent); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Approved login %d\n", clientID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&persistent, "persistent", false, "Keep the approved session signed in")
	return cmd
}

func newSessionsDenyCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deny <client-id>",
		Short: "Deny a pending login request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid client id %q: %w", args[0], err)
			}
			if err := app.ensureFreshTokens(cmd.Context()); err != nil {
				return err
			}
			if err := app.approvalDispatcher().Deny(cmd.Context(), clientID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Denied login %d\n", clientID)
			return nil
		},
	}
}

func newSessionsApproveQRCommand(app *App) *cobra.Command {
	var persistent bool
	cmd := &cobra.Command{
		Use:   "approve-qr <challenge-url>",
		Short: "Approve a login from a scanned QR challenge URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ensureFreshTokens(cmd.Context()); err != nil {
				return err
			}
			if err := app.approvalDispatcher().ApproveChallengeURL(cmd.Context(), args[0], persistent); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Approved login")
			return nil
		},
	}
	cmd.Flags().BoolVar(&persistent, "persistent", false, "Keep the approved session signed in")
	return cmd
}
