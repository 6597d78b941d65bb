package steamapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// WebTokenRefresher implements TokenRefresher against the auth service.
type WebTokenRefresher struct {
	transport *Transport
}

var _ TokenRefresher = (*WebTokenRefresher)(nil)

// NewTokenRefresher creates a refresher over the shared transport.
func NewTokenRefresher(transport *Transport) *WebTokenRefresher {
	return &WebTokenRefresher{transport: transport}
}

type refreshResponse struct {
	Response struct {
		AccessToken string `json:"access_token"`
	} `json:"response"`
}

// RefreshAccessToken exchanges the refresh token for a new access token.
// The refresh token itself is not rotated by this endpoint.
func (r *WebTokenRefresher) RefreshAccessToken(ctx context.Context, steamID uint64, tokens Tokens) (string, error) {
	form := url.Values{
		"refresh_token": {tokens.RefreshToken},
		"steamid":       {strconv.FormatUint(steamID, 10)},
	}

	var resp refreshResponse
	err := r.transport.apiCall(ctx, resty.MethodPost, authService, "GenerateAccessTokenForApp", 1, form, "", &resp)
	if err != nil {
		return "", err
	}
	if resp.Response.AccessToken == "" {
		return "", fmt.Errorf("%w: refresh produced no access token", ErrInvalidTokens)
	}
	return resp.Response.AccessToken, nil
}
