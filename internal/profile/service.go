// Package profile fetches display data for the active account.
package profile

import (
	"context"
	"errors"

	"github.com/prenaissance/steam-desktop-authenticator/internal/accounts"
	"github.com/prenaissance/steam-desktop-authenticator/internal/apperr"
	"github.com/prenaissance/steam-desktop-authenticator/internal/dispatch"
	"github.com/prenaissance/steam-desktop-authenticator/internal/steamapi"
)

// Service resolves the active account and fetches its profile.
type Service struct {
	store  *accounts.Store
	client steamapi.ProfileClient
}

// NewService wires the service to the shared account store.
func NewService(store *accounts.Store, client steamapi.ProfileClient) *Service {
	return &Service{store: store, client: client}
}

// Get returns the profile of the active account.
func (s *Service) Get(ctx context.Context) (steamapi.Profile, error) {
	active, ok := s.store.Active()
	if !ok {
		return steamapi.Profile{}, apperr.New(apperr.KindUnauthorized, "no active account")
	}
	if active.AccessToken == "" {
		return steamapi.Profile{}, apperr.New(apperr.KindUnauthorized, "active account has no access token")
	}

	fetched, err := dispatch.Run(ctx, func() (steamapi.Profile, error) {
		return s.client.GetPlayerLinkDetails(ctx, active.AccessToken, active.SteamID)
	})
	if err != nil {
		switch {
		case errors.Is(err, steamapi.ErrInvalidTokens):
			return steamapi.Profile{}, apperr.Wrap(apperr.KindUnauthorized, "steam rejected the session", err)
		case errors.Is(err, steamapi.ErrNetwork):
			return steamapi.Profile{}, apperr.Wrap(apperr.KindNetworkFailure, "steam unreachable", err)
		case errors.Is(err, steamapi.ErrDeserialize):
			return steamapi.Profile{}, apperr.Wrap(apperr.KindDeserialization, "steam response unreadable", err)
		default:
			return steamapi.Profile{}, apperr.Wrap(apperr.KindAPI, "profile request failed", err)
		}
	}
	return fetched, nil
}
