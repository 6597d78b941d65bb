// Package tokens decides when the stored access token must be refreshed and
// extracts the claims this app needs from it. Access tokens are JWTs signed
// by Steam; they are parsed here without signature verification because the
// client has no key material and only needs the public claims.
package tokens

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prenaissance/steam-desktop-authenticator/internal/apperr"
	"github.com/prenaissance/steam-desktop-authenticator/internal/dispatch"
	"github.com/prenaissance/steam-desktop-authenticator/internal/models"
	"github.com/prenaissance/steam-desktop-authenticator/internal/steamapi"
)

var parser = jwt.NewParser()

// ExpiresAt returns the expiry claim of the access token.
func ExpiresAt(accessToken string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, apperr.Wrap(apperr.KindDeserialization, "parse access token", err)
	}
	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}, apperr.New(apperr.KindDeserialization, "access token has no exp claim")
	}
	return expiry.Time, nil
}

// SteamID extracts the steam id carried in the token's subject claim.
func SteamID(accessToken string) (uint64, error) {
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return 0, apperr.Wrap(apperr.KindDeserialization, "parse access token", err)
	}
	subject, err := claims.GetSubject()
	if err != nil {
		return 0, apperr.New(apperr.KindDeserialization, "access token has no sub claim")
	}
	steamID, err := strconv.ParseUint(subject, 10, 64)
	if err != nil {
		return 0, apperr.Newf(apperr.KindDeserialization, "access token subject %q is not a steam id", subject)
	}
	return steamID, nil
}

// RefreshIfNeeded refreshes the record's access token through refresher when
// the current one is expired. It reports whether a refresh happened so the
// caller knows the store must be re-persisted. Only the access token is ever
// overwritten; the refresh token is long-lived and not rotated here. The
// refresh round-trip runs on a worker like every other external call.
func RefreshIfNeeded(ctx context.Context, cred *models.UserCredentials, refresher steamapi.TokenRefresher) (bool, error) {
	expiry, err := ExpiresAt(cred.AccessToken)
	if err != nil {
		return false, err
	}
	if time.Now().Before(expiry) {
		return false, nil
	}

	accessToken, err := dispatch.Run(ctx, func() (string, error) {
		return refresher.RefreshAccessToken(ctx, cred.SteamID, steamapi.Tokens{
			AccessToken:  cred.AccessToken,
			RefreshToken: cred.RefreshToken,
		})
	})
	if err != nil {
		return false, translateRefreshError(err)
	}

	cred.AccessToken = accessToken
	return true, nil
}

func translateRefreshError(err error) error {
	switch {
	case errors.Is(err, steamapi.ErrInvalidTokens) || errors.Is(err, steamapi.ErrBadCredentials):
		return apperr.Wrap(apperr.KindUnauthorized, "refresh token rejected", err)
	case errors.Is(err, steamapi.ErrNetwork):
		return apperr.Wrap(apperr.KindNetworkFailure, "token refresh failed", err)
	case errors.Is(err, steamapi.ErrDeserialize):
		return apperr.Wrap(apperr.KindDeserialization, "token refresh response", err)
	default:
		return apperr.Wrap(apperr.KindAPI, "token refresh failed", err)
	}
}
