// Package login drives the device-confirmation login handshake: credential
// submission, guard-code answer, token polling, and persisting the resulting
// credential record as the new active account.
package login

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prenaissance/steam-desktop-authenticator/internal/accounts"
	"github.com/prenaissance/steam-desktop-authenticator/internal/apperr"
	"github.com/prenaissance/steam-desktop-authenticator/internal/models"
	"github.com/prenaissance/steam-desktop-authenticator/internal/steamapi"
	"github.com/prenaissance/steam-desktop-authenticator/internal/tokens"
	"github.com/prenaissance/steam-desktop-authenticator/internal/totp"
)

// State tracks handshake progress. Failed is terminal and reachable from
// any non-terminal state.
type State int

const (
	StateNotStarted State = iota
	StateCredentialsSubmitted
	StateAwaitingGuardCode
	StateGuardCodeSubmitted
	StateTokensPolled
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateCredentialsSubmitted:
		return "credentials-submitted"
	case StateAwaitingGuardCode:
		return "awaiting-guard-code"
	case StateGuardCodeSubmitted:
		return "guard-code-submitted"
	case StateTokensPolled:
		return "tokens-polled"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Request carries the login inputs. Secrets are validated before any
// network call is made.
type Request struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	SharedSecret   string `json:"sharedSecret"`
	IdentitySecret string `json:"identitySecret"`
}

// Validate rejects malformed payloads up front.
func (r Request) Validate() error {
	if r.Username == "" {
		return apperr.New(apperr.KindValidation, "username must not be empty")
	}
	if r.Password == "" {
		return apperr.New(apperr.KindValidation, "password must not be empty")
	}
	if err := totp.ValidateSecret(r.SharedSecret); err != nil {
		return apperr.Wrap(apperr.KindValidation, "shared secret", err)
	}
	if err := totp.ValidateSecret(r.IdentitySecret); err != nil {
		return apperr.Wrap(apperr.KindValidation, "identity secret", err)
	}
	return nil
}

// Handshake is a single login attempt. Each attempt needs a fresh
// steamapi.AuthClient because the client carries the auth session.
type Handshake struct {
	client steamapi.AuthClient
	store  *accounts.Store
	now    func() time.Time

	state State
}

// New creates a handshake over a fresh auth client.
func New(client steamapi.AuthClient, store *accounts.Store) *Handshake {
	return &Handshake{
		client: client,
		store:  store,
		now:    time.Now,
	}
}

// State returns the current handshake state.
func (h *Handshake) State() State {
	return h.state
}

// Run performs the whole handshake. On success exactly one credential
// record has been added as the active account and the store persisted once;
// on any failure the store is untouched.
func (h *Handshake) Run(ctx context.Context, req Request) (models.UserCredentials, error) {
	if err := req.Validate(); err != nil {
		return h.fail(err)
	}

	methods, err := h.client.BeginAuthViaCredentials(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, steamapi.ErrNetwork) {
			return h.fail(apperr.Wrap(apperr.KindNetworkFailure, "begin auth", err))
		}
		return h.fail(apperr.Wrap(apperr.KindWrongCredentials, "credentials rejected", err))
	}
	h.state = StateCredentialsSubmitted

	if !deviceCodeAvailable(methods) {
		// Email, SMS and push-only flows are out of scope for this
		// authenticator.
		return h.fail(apperr.New(apperr.KindUnimplemented, "account offers no device-code confirmation"))
	}
	h.state = StateAwaitingGuardCode

	code, err := totp.GenerateCode(req.SharedSecret, h.now().Unix())
	if err != nil {
		return h.fail(apperr.Wrap(apperr.KindValidation, "shared secret", err))
	}
	if err := h.client.SubmitGuardCode(ctx, steamapi.GuardTypeDeviceCode, code); err != nil {
		return h.fail(apperr.Wrap(apperr.KindOTP, "guard code rejected", err))
	}
	h.state = StateGuardCodeSubmitted

	issued, err := h.client.PollUntilTokens(ctx)
	if err != nil {
		if errors.Is(err, steamapi.ErrNetwork) {
			return h.fail(apperr.Wrap(apperr.KindNetworkFailure, "poll auth session", err))
		}
		return h.fail(apperr.Wrap(apperr.KindAPI, "auth session yielded no tokens", err))
	}
	h.state = StateTokensPolled

	steamID, err := tokens.SteamID(issued.AccessToken)
	if err != nil {
		return h.fail(err)
	}

	cred := models.UserCredentials{
		AccountName:     req.Username,
		AccountPassword: req.Password,
		SharedSecret:    req.SharedSecret,
		IdentitySecret:  req.IdentitySecret,
		AccessToken:     issued.AccessToken,
		RefreshToken:    issued.RefreshToken,
		SteamID:         steamID,
		DeviceID:        models.DeviceID(steamID),
	}

	// Single insert, single persist. If the write fails the record exists
	// in memory but may not be saved; that is surfaced, not swallowed.
	if err := h.store.AddActive(cred); err != nil {
		return h.fail(err)
	}

	h.state = StateCompleted
	slog.Info("login completed", "account", cred.AccountName, "steam_id", steamID)
	return cred, nil
}

func (h *Handshake) fail(err error) (models.UserCredentials, error) {
	h.state = StateFailed
	return models.UserCredentials{}, err
}

func deviceCodeAvailable(methods []steamapi.ConfirmationMethod) bool {
	for _, method := range methods {
		if method.Type == steamapi.GuardTypeDeviceCode {
			return true
		}
	}
	return false
}
