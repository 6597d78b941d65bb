package steamapi

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"log/slog"
	"math/big"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	authService = "IAuthenticationService"

	// Device details of the emulated mobile authenticator.
	platformTypeMobileApp = 3
	osTypeAndroidUnknown  = -500
	gamingDeviceTypePhone = 528

	defaultPollInterval = 2 * time.Second
)

// WebAuthClient implements AuthClient against IAuthenticationService. One
// instance drives one auth session; the ids returned by the begin call are
// kept for the follow-up steps.
type WebAuthClient struct {
	transport *Transport

	clientID  string
	requestID string
	steamID   string
	interval  time.Duration
}

var _ AuthClient = (*WebAuthClient)(nil)

// NewAuthClient creates a client for a single login handshake.
func NewAuthClient(transport *Transport) *WebAuthClient {
	return &WebAuthClient{transport: transport, interval: defaultPollInterval}
}

type rsaKeyResponse struct {
	Response struct {
		PublickeyMod string `json:"publickey_mod"`
		PublickeyExp string `json:"publickey_exp"`
		Timestamp    string `json:"timestamp"`
	} `json:"response"`
}

type beginAuthResponse struct {
	Response struct {
		ClientID             string               `json:"client_id"`
		RequestID            string               `json:"request_id"`
		Interval             float64              `json:"interval"`
		AllowedConfirmations []ConfirmationMethod `json:"allowed_confirmations"`
		SteamID              string               `json:"steamid"`
	} `json:"response"`
}

// BeginAuthViaCredentials fetches the account's RSA key, encrypts the
// password with it and opens an auth session.
func (c *WebAuthClient) BeginAuthViaCredentials(ctx context.Context, username, password string) ([]ConfirmationMethod, error) {
	var keyResp rsaKeyResponse
	err := c.transport.apiCall(ctx, resty.MethodGet, authService, "GetPasswordRSAPublicKey", 1,
		url.Values{"account_name": {username}}, "", &keyResp)
	if err != nil {
		return nil, err
	}

	encryptedPassword, err := encryptPassword(password, keyResp.Response.PublickeyMod, keyResp.Response.PublickeyExp)
	if err != nil {
		return nil, fmt.Errorf("%w: password encryption: %v", ErrRemote, err)
	}

	form := url.Values{
		"account_name":         {username},
		"encrypted_password":   {encryptedPassword},
		"encryption_timestamp": {keyResp.Response.Timestamp},
		"persistence":          {"1"},
		"website_id":           {"Mobile"},
		"device_friendly_name": {deviceFriendlyName()},
		"platform_type":        {strconv.Itoa(platformTypeMobileApp)},
		"os_type":              {strconv.Itoa(osTypeAndroidUnknown)},
		"gaming_device_type":   {strconv.Itoa(gamingDeviceTypePhone)},
	}

	var beginResp beginAuthResponse
	err = c.transport.apiCall(ctx, resty.MethodPost, authService, "BeginAuthSessionViaCredentials", 1, form, "", &beginResp)
	if err != nil {
		return nil, err
	}
	if beginResp.Response.ClientID == "" {
		return nil, fmt.Errorf("%w: no auth session opened", ErrBadCredentials)
	}

	c.clientID = beginResp.Response.ClientID
	c.requestID = beginResp.Response.RequestID
	c.steamID = beginResp.Response.SteamID
	if beginResp.Response.Interval > 0 {
		c.interval = time.Duration(beginResp.Response.Interval * float64(time.Second))
	}

	return beginResp.Response.AllowedConfirmations, nil
}

// SubmitGuardCode answers the session's guard challenge.
func (c *WebAuthClient) SubmitGuardCode(ctx context.Context, guardType GuardType, code string) error {
	if c.clientID == "" {
		return fmt.Errorf("%w: no auth session", ErrRemote)
	}

	form := url.Values{
		"client_id": {c.clientID},
		"steamid":   {c.steamID},
		"code":      {code},
		"code_type": {strconv.Itoa(int(guardType))},
	}
	return c.transport.apiCall(ctx, resty.MethodPost, authService, "UpdateAuthSessionWithSteamGuardCode", 1, form, "", nil)
}

type pollAuthResponse struct {
	Response struct {
		NewClientID  string `json:"new_client_id"`
		RefreshToken string `json:"refresh_token"`
		AccessToken  string `json:"access_token"`
		AccountName  string `json:"account_name"`
	} `json:"response"`
}

// PollUntilTokens polls the auth session at the server-provided interval
// until tokens are issued. Steam may rotate the client id between polls.
func (c *WebAuthClient) PollUntilTokens(ctx context.Context) (Tokens, error) {
	if c.clientID == "" {
		return Tokens{}, fmt.Errorf("%w: no auth session", ErrRemote)
	}

	for {
		form := url.Values{
			"client_id":  {c.clientID},
			"request_id": {c.requestID},
		}
		var pollResp pollAuthResponse
		if err := c.transport.apiCall(ctx, resty.MethodPost, authService, "PollAuthSessionStatus", 1, form, "", &pollResp); err != nil {
			return Tokens{}, err
		}

		if pollResp.Response.NewClientID != "" {
			c.clientID = pollResp.Response.NewClientID
		}
		if pollResp.Response.RefreshToken != "" {
			slog.Debug("auth session issued tokens", "account", pollResp.Response.AccountName)
			return Tokens{
				AccessToken:  pollResp.Response.AccessToken,
				RefreshToken: pollResp.Response.RefreshToken,
			}, nil
		}

		select {
		case <-ctx.Done():
			return Tokens{}, fmt.Errorf("%w: %v", ErrNetwork, ctx.Err())
		case <-time.After(c.interval):
		}
	}
}

// encryptPassword RSA-encrypts the password with the hex modulus/exponent
// the key endpoint returns, base64 encoded for the form field.
func encryptPassword(password, modHex, expHex string) (string, error) {
	mod, ok := new(big.Int).SetString(modHex, 16)
	if !ok {
		return "", fmt.Errorf("invalid rsa modulus")
	}
	exp, ok := new(big.Int).SetString(expHex, 16)
	if !ok {
		return "", fmt.Errorf("invalid rsa exponent")
	}

	pub := &rsa.PublicKey{N: mod, E: int(exp.Int64())}
	encrypted, err := rsa.EncryptPKCS1v15(rand.Reader, pub, []byte(password))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(encrypted), nil
}

func deviceFriendlyName() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "desktop"
	}
	return hostname + " (steam-desktop-authenticator)"
}
