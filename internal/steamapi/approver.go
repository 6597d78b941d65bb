package steamapi

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/prenaissance/steam-desktop-authenticator/internal/totp"
)

// WebApprover implements Approver against IAuthenticationService for a
// single account. Approvals are signed with the account's shared secret.
type WebApprover struct {
	transport *Transport
	account   GuardAccount
}

var _ Approver = (*WebApprover)(nil)

// NewApprover creates an approver for the given account.
func NewApprover(transport *Transport, account GuardAccount) *WebApprover {
	return &WebApprover{transport: transport, account: account}
}

type authSessionsResponse struct {
	Response struct {
		ClientIDs []string `json:"client_ids"`
	} `json:"response"`
}

// ListSessions returns the client ids of all pending auth sessions.
func (a *WebApprover) ListSessions(ctx context.Context) ([]uint64, error) {
	var sessionsResp authSessionsResponse
	err := a.transport.apiCall(ctx, resty.MethodGet, authService, "GetAuthSessionsForAccount", 1,
		url.Values{}, a.account.AccessToken, &sessionsResp)
	if err != nil {
		return nil, err
	}

	clientIDs := make([]uint64, 0, len(sessionsResp.Response.ClientIDs))
	for _, raw := range sessionsResp.Response.ClientIDs {
		clientID, parseErr := strconv.ParseUint(raw, 10, 64)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: client id %q: %v", ErrDeserialize, raw, parseErr)
		}
		clientIDs = append(clientIDs, clientID)
	}
	return clientIDs, nil
}

type sessionInfoResponse struct {
	Response SessionInfo `json:"response"`
}

// GetSessionInfo hydrates the detail view of one pending session.
func (a *WebApprover) GetSessionInfo(ctx context.Context, clientID uint64) (SessionInfo, error) {
	form := url.Values{"client_id": {strconv.FormatUint(clientID, 10)}}

	var infoResp sessionInfoResponse
	err := a.transport.apiCall(ctx, resty.MethodPost, authService, "GetAuthSessionInfo", 1,
		form, a.account.AccessToken, &infoResp)
	if err != nil {
		return SessionInfo{}, err
	}

	info := infoResp.Response
	info.ClientID = clientID
	return info, nil
}

// Approve confirms the challenge on behalf of the account.
func (a *WebApprover) Approve(ctx context.Context, challenge Challenge, persistent bool) error {
	return a.respond(ctx, challenge, true, persistent)
}

// Deny rejects the challenge.
func (a *WebApprover) Deny(ctx context.Context, challenge Challenge) error {
	return a.respond(ctx, challenge, false, false)
}

func (a *WebApprover) respond(ctx context.Context, challenge Challenge, confirm, persistent bool) error {
	signature, err := a.challengeSignature(challenge)
	if err != nil {
		return err
	}

	persistence := "0"
	if persistent {
		persistence = "1"
	}
	form := url.Values{
		"version":     {strconv.Itoa(challenge.Version)},
		"client_id":   {strconv.FormatUint(challenge.ClientID, 10)},
		"steamid":     {strconv.FormatUint(a.account.SteamID, 10)},
		"signature":   {signature},
		"confirm":     {strconv.FormatBool(confirm)},
		"persistence": {persistence},
	}
	return a.transport.apiCall(ctx, resty.MethodPost, authService, "UpdateAuthSessionWithMobileConfirmation", 1,
		form, a.account.AccessToken, nil)
}

// challengeSignature is the HMAC-SHA256 over version, client id and steam id
// (all little-endian) keyed by the shared secret. A malformed or truncated
// secret fails here rather than signing garbage.
func (a *WebApprover) challengeSignature(challenge Challenge) (string, error) {
	secret, err := totp.ParseSecret(a.account.SharedSecret)
	if err != nil {
		return "", fmt.Errorf("%w: shared secret: %v", ErrRemote, err)
	}

	data := make([]byte, 2+8+8)
	binary.LittleEndian.PutUint16(data[0:2], uint16(challenge.Version))
	binary.LittleEndian.PutUint64(data[2:10], challenge.ClientID)
	binary.LittleEndian.PutUint64(data[10:18], a.account.SteamID)

	mac := hmac.New(sha256.New, secret)
	mac.Write(data)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// ParseChallengeURL extracts the approval challenge from a scanned QR code
// URL of the form https://s.team/q/<version>/<client_id>.
func ParseChallengeURL(challengeURL string) (Challenge, error) {
	parsed, err := url.Parse(challengeURL)
	if err != nil {
		return Challenge{}, fmt.Errorf("%w: challenge url: %v", ErrDeserialize, err)
	}

	var version int
	var clientID uint64
	if _, err := fmt.Sscanf(parsed.Path, "/q/%d/%d", &version, &clientID); err != nil {
		return Challenge{}, fmt.Errorf("%w: challenge url path %q", ErrDeserialize, parsed.Path)
	}
	return Challenge{Version: version, ClientID: clientID}, nil
}
