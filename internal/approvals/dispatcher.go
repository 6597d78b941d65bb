// Package approvals lists and answers pending login approval sessions for
// the active account, including QR-challenge approvals.
package approvals

import (
	"context"
	"errors"
	"time"

	"github.com/prenaissance/steam-desktop-authenticator/internal/accounts"
	"github.com/prenaissance/steam-desktop-authenticator/internal/apperr"
	"github.com/prenaissance/steam-desktop-authenticator/internal/dispatch"
	"github.com/prenaissance/steam-desktop-authenticator/internal/steamapi"
	"github.com/prenaissance/steam-desktop-authenticator/internal/tokens"
)

// ApproverFactory builds a protocol approver for one account.
type ApproverFactory func(account steamapi.GuardAccount) steamapi.Approver

// Session is one pending auth session with a display-friendly device name.
type Session struct {
	steamapi.SessionInfo
	DeviceDisplayName string `json:"device_display_name,omitempty"`
}

// Dispatcher performs approval operations for the active account.
type Dispatcher struct {
	store       *accounts.Store
	approverFor ApproverFactory
}

// NewDispatcher wires the dispatcher to the shared account store.
func NewDispatcher(store *accounts.Store, approverFor ApproverFactory) *Dispatcher {
	return &Dispatcher{store: store, approverFor: approverFor}
}

// activeApprover resolves the active, token-valid account and builds an
// approver for it. No network call happens before this gate passes.
func (d *Dispatcher) activeApprover() (steamapi.Approver, error) {
	active, ok := d.store.Active()
	if !ok {
		return nil, apperr.New(apperr.KindUnauthorized, "no active account")
	}
	if active.AccessToken == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "active account has no access token")
	}
	expiry, err := tokens.ExpiresAt(active.AccessToken)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "active account token unreadable", err)
	}
	if time.Now().After(expiry) {
		return nil, apperr.New(apperr.KindUnauthorized, "active account token expired")
	}
	return d.approverFor(active.GuardAccount()), nil
}

// ListSessions returns every pending auth session, hydrated with its detail
// view. Session ids alone are useless to a user, so each one costs an extra
// info round-trip.
func (d *Dispatcher) ListSessions(ctx context.Context) ([]Session, error) {
	approver, err := d.activeApprover()
	if err != nil {
		return nil, err
	}

	sessions, err := dispatch.Run(ctx, func() ([]Session, error) {
		clientIDs, listErr := approver.ListSessions(ctx)
		if listErr != nil {
			return nil, listErr
		}
		hydrated := make([]Session, 0, len(clientIDs))
		for _, clientID := range clientIDs {
			info, infoErr := approver.GetSessionInfo(ctx, clientID)
			if infoErr != nil {
				return nil, infoErr
			}
			hydrated = append(hydrated, Session{
				SessionInfo:       info,
				DeviceDisplayName: FormatUserAgent(info.DeviceFriendlyName),
			})
		}
		return hydrated, nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return sessions, nil
}

// Approve confirms the login attempt identified by clientID.
func (d *Dispatcher) Approve(ctx context.Context, clientID uint64, persistent bool) error {
	approver, err := d.activeApprover()
	if err != nil {
		return err
	}
	err = dispatch.RunErr(ctx, func() error {
		return approver.Approve(ctx, steamapi.Challenge{Version: 1, ClientID: clientID}, persistent)
	})
	if err != nil {
		return translate(err)
	}
	return nil
}

// Deny rejects the login attempt identified by clientID.
func (d *Dispatcher) Deny(ctx context.Context, clientID uint64) error {
	approver, err := d.activeApprover()
	if err != nil {
		return err
	}
	err = dispatch.RunErr(ctx, func() error {
		return approver.Deny(ctx, steamapi.Challenge{Version: 1, ClientID: clientID})
	})
	if err != nil {
		return translate(err)
	}
	return nil
}

// ApproveChallengeURL approves a login from a scanned QR challenge URL.
func (d *Dispatcher) ApproveChallengeURL(ctx context.Context, challengeURL string, persistent bool) error {
	approver, err := d.activeApprover()
	if err != nil {
		return err
	}
	challenge, err := steamapi.ParseChallengeURL(challengeURL)
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, "challenge url", err)
	}
	err = dispatch.RunErr(ctx, func() error {
		return approver.Approve(ctx, challenge, persistent)
	})
	if err != nil {
		return translate(err)
	}
	return nil
}

// translate maps the steamapi error set onto approval outcomes. Expired and
// duplicate-request stay distinct so callers refresh the session list
// instead of retrying blindly.
func translate(err error) error {
	switch {
	case errors.Is(err, steamapi.ErrInvalidTokens):
		return apperr.Wrap(apperr.KindUnauthorized, "steam rejected the session", err)
	case errors.Is(err, steamapi.ErrExpired):
		return apperr.Wrap(apperr.KindExpired, "approval request expired", err)
	case errors.Is(err, steamapi.ErrDuplicateRequest):
		return apperr.Wrap(apperr.KindDuplicateRequest, "approval already answered", err)
	case errors.Is(err, steamapi.ErrNetwork):
		return apperr.Wrap(apperr.KindNetworkFailure, "steam unreachable", err)
	case errors.Is(err, steamapi.ErrDeserialize):
		return apperr.Wrap(apperr.KindDeserialization, "steam response unreadable", err)
	default:
		return apperr.Wrap(apperr.KindAPI, "approval request failed", err)
	}
}
