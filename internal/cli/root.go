// Package cli is the command surface over the authenticator core. Every
// command resolves its collaborators through the App container so tests can
// substitute them.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/prenaissance/steam-desktop-authenticator/internal/accounts"
	"github.com/prenaissance/steam-desktop-authenticator/internal/apperr"
	"github.com/prenaissance/steam-desktop-authenticator/internal/approvals"
	"github.com/prenaissance/steam-desktop-authenticator/internal/config"
	"github.com/prenaissance/steam-desktop-authenticator/internal/confirmations"
	"github.com/prenaissance/steam-desktop-authenticator/internal/profile"
	"github.com/prenaissance/steam-desktop-authenticator/internal/steamapi"
	"github.com/prenaissance/steam-desktop-authenticator/internal/tokens"
	"github.com/prenaissance/steam-desktop-authenticator/internal/totp"
)

// App holds the process-wide collaborators shared by every command.
type App struct {
	Config    *config.Config
	Store     *accounts.Store
	Transport *steamapi.Transport
}

// NewRootCommand builds the authenticator command tree.
func NewRootCommand(version string) *cobra.Command {
	app := &App{}

	root := &cobra.Command{
		Use:           "authenticator",
		Short:         "Steam desktop authenticator",
		Long:          "Manages Steam accounts, generates Steam Guard codes and answers trade confirmations and login approvals.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init()
		},
	}

	root.AddCommand(
		newLoginCommand(app),
		newLogoutCommand(app),
		newAccountsCommand(app),
		newUseCommand(app),
		newRemoveCommand(app),
		newCodeCommand(app),
		newConfirmationsCommand(app),
		newSessionsCommand(app),
		newProfileCommand(app),
		newWatchCommand(app),
	)
	return root
}

// init loads the configuration and the account store. A corrupt store file
// aborts startup; losing sight of saved accounts must be loud, not silent.
func (a *App) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.Config = cfg

	setupLogging(cfg.LogLevel)

	store, err := accounts.Load(cfg.AccountsFile)
	if err != nil {
		if apperr.IsKind(err, apperr.KindDeserialization) {
			return fmt.Errorf("the accounts file %s is corrupted; refusing to start: %w", cfg.AccountsFile, err)
		}
		return err
	}
	a.Store = store

	a.Transport = steamapi.NewTransport(steamapi.TransportConfig{
		APIBase:       cfg.APIBase,
		CommunityBase: cfg.CommunityBase,
		Timeout:       cfg.HTTPTimeout,
	})
	return nil
}

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

// ensureFreshTokens refreshes the active account's access token when it has
// expired and re-persists the store, mirroring the app's startup behavior.
// Commands that talk to Steam call this first.
func (a *App) ensureFreshTokens(ctx context.Context) error {
	active, ok := a.Store.Active()
	if !ok {
		return nil
	}

	refreshed, err := tokens.RefreshIfNeeded(ctx, &active, steamapi.NewTokenRefresher(a.Transport))
	if err != nil {
		return fmt.Errorf("could not refresh session for %s: %w", active.AccountName, err)
	}
	if refreshed {
		slog.Debug("access token refreshed", "account", active.AccountName)
		if err := a.Store.UpdateAccessToken(active.AccountName, active.AccessToken); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) confirmationDispatcher() *confirmations.Dispatcher {
	return confirmations.NewDispatcher(a.Store, func(account steamapi.GuardAccount) steamapi.Confirmer {
		return steamapi.NewConfirmer(a.Transport, account, totp.ConfirmationHash)
	})
}

func (a *App) approvalDispatcher() *approvals.Dispatcher {
	return approvals.NewDispatcher(a.Store, func(account steamapi.GuardAccount) steamapi.Approver {
		return steamapi.NewApprover(a.Transport, account)
	})
}

func (a *App) profileService() *profile.Service {
	return profile.NewService(a.Store, steamapi.NewProfileClient(a.Transport))
}
