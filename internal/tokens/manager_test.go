package tokens

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prenaissance/steam-desktop-authenticator/internal/apperr"
	"github.com/prenaissance/steam-desktop-authenticator/internal/models"
	"github.com/prenaissance/steam-desktop-authenticator/internal/steamapi"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

type fakeRefresher struct {
	token   string
	err     error
	calls   int
	steamID uint64
}

func (f *fakeRefresher) RefreshAccessToken(_ context.Context, steamID uint64, _ steamapi.Tokens) (string, error) {
	f.calls++
	f.steamID = steamID
	return f.token, f.err
}

func TestExpiresAt(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{"exp": expiry.Unix(), "sub": "1"})

	got, err := ExpiresAt(token)
	require.NoError(t, err)
	assert.True(t, got.Equal(expiry))
}

func TestExpiresAtMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "empty", token: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExpiresAt(tt.token)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindDeserialization))
		})
	}
}

func TestExpiresAtMissingClaim(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "1"})
	_, err := ExpiresAt(token)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindDeserialization))
}

func TestSteamID(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
		"sub": "76561197960287930",
	})

	steamID, err := SteamID(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(76561197960287930), steamID)
}

func TestSteamIDNonNumericSubject(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "alice"})
	_, err := SteamID(token)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindDeserialization))
}

func TestRefreshIfNeededStillValid(t *testing.T) {
	refresher := &fakeRefresher{token: "new"}
	cred := &models.UserCredentials{
		SteamID:      1,
		AccessToken:  signedToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}),
		RefreshToken: "refresh",
	}

	refreshed, err := RefreshIfNeeded(context.Background(), cred, refresher)
	require.NoError(t, err)
	assert.False(t, refreshed)
	assert.Zero(t, refresher.calls)
}

func TestRefreshIfNeededExpired(t *testing.T) {
	refresher := &fakeRefresher{token: "new-access-token"}
	cred := &models.UserCredentials{
		SteamID:      76561197960287930,
		AccessToken:  signedToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()}),
		RefreshToken: "refresh",
	}

	refreshed, err := RefreshIfNeeded(context.Background(), cred, refresher)
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, 1, refresher.calls)
	assert.Equal(t, uint64(76561197960287930), refresher.steamID)
	assert.Equal(t, "new-access-token", cred.AccessToken)
	assert.Equal(t, "refresh", cred.RefreshToken)
}

type panickingRefresher struct{}

func (panickingRefresher) RefreshAccessToken(context.Context, uint64, steamapi.Tokens) (string, error) {
	panic("transport exploded")
}

func TestRefreshIfNeededRecoversRefresherPanic(t *testing.T) {
	cred := &models.UserCredentials{
		AccessToken:  signedToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()}),
		RefreshToken: "refresh",
	}

	refreshed, err := RefreshIfNeeded(context.Background(), cred, panickingRefresher{})
	require.Error(t, err)
	assert.False(t, refreshed)
	assert.True(t, apperr.IsKind(err, apperr.KindAPI))
	assert.Contains(t, err.Error(), "transport exploded")
	assert.Equal(t, "refresh", cred.RefreshToken)
}

func TestRefreshIfNeededErrorTranslation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind apperr.Kind
	}{
		{name: "rejected tokens", err: steamapi.ErrInvalidTokens, kind: apperr.KindUnauthorized},
		{name: "bad credentials", err: steamapi.ErrBadCredentials, kind: apperr.KindUnauthorized},
		{name: "network", err: steamapi.ErrNetwork, kind: apperr.KindNetworkFailure},
		{name: "deserialize", err: steamapi.ErrDeserialize, kind: apperr.KindDeserialization},
		{name: "remote", err: steamapi.ErrRemote, kind: apperr.KindAPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refresher := &fakeRefresher{err: tt.err}
			cred := &models.UserCredentials{
				AccessToken:  signedToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()}),
				RefreshToken: "refresh",
			}

			_, err := RefreshIfNeeded(context.Background(), cred, refresher)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, tt.kind), "got kind %s", apperr.KindOf(err))
		})
	}
}
