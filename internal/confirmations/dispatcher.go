// Package confirmations resolves the active account and dispatches trade
// and market confirmation actions against it, translating every external
// failure into the application taxonomy.
package confirmations

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prenaissance/steam-desktop-authenticator/internal/accounts"
	"github.com/prenaissance/steam-desktop-authenticator/internal/apperr"
	"github.com/prenaissance/steam-desktop-authenticator/internal/dispatch"
	"github.com/prenaissance/steam-desktop-authenticator/internal/steamapi"
	"github.com/prenaissance/steam-desktop-authenticator/internal/tokens"
)

// ConfirmerFactory builds a protocol confirmer for one account. Injected so
// tests can observe whether a network client was constructed at all.
type ConfirmerFactory func(account steamapi.GuardAccount) steamapi.Confirmer

// Dispatcher performs confirmation operations for the active account.
type Dispatcher struct {
	store        *accounts.Store
	confirmerFor ConfirmerFactory
}

// NewDispatcher wires the dispatcher to the shared account store.
func NewDispatcher(store *accounts.Store, confirmerFor ConfirmerFactory) *Dispatcher {
	return &Dispatcher{store: store, confirmerFor: confirmerFor}
}

// activeConfirmer resolves the active, token-valid account and builds a
// confirmer for it. No network call happens before this gate passes.
func (d *Dispatcher) activeConfirmer() (steamapi.Confirmer, error) {
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
	return d.confirmerFor(active.GuardAccount()), nil
}

// List fetches all pending confirmations for the active account.
func (d *Dispatcher) List(ctx context.Context) ([]steamapi.Confirmation, error) {
	confirmer, err := d.activeConfirmer()
	if err != nil {
		return nil, err
	}
	confirmations, err := dispatch.Run(ctx, func() ([]steamapi.Confirmation, error) {
		return confirmer.List(ctx)
	})
	if err != nil {
		return nil, translate(err)
	}
	return confirmations, nil
}

// GetDetails fetches the rendered detail blob for one confirmation.
func (d *Dispatcher) GetDetails(ctx context.Context, ref steamapi.ConfirmationRef) (string, error) {
	confirmer, err := d.activeConfirmer()
	if err != nil {
		return "", err
	}
	html, err := dispatch.Run(ctx, func() (string, error) {
		return confirmer.GetDetails(ctx, ref)
	})
	if err != nil {
		return "", translate(err)
	}
	return html, nil
}

// Accept approves a single confirmation.
func (d *Dispatcher) Accept(ctx context.Context, ref steamapi.ConfirmationRef) error {
	return d.single(ctx, ref, steamapi.Confirmer.Accept)
}

// Deny rejects a single confirmation.
func (d *Dispatcher) Deny(ctx context.Context, ref steamapi.ConfirmationRef) error {
	return d.single(ctx, ref, steamapi.Confirmer.Deny)
}

func (d *Dispatcher) single(ctx context.Context, ref steamapi.ConfirmationRef, op func(steamapi.Confirmer, context.Context, steamapi.ConfirmationRef) error) error {
	confirmer, err := d.activeConfirmer()
	if err != nil {
		return err
	}
	err = dispatch.RunErr(ctx, func() error {
		return op(confirmer, ctx, ref)
	})
	if err != nil {
		return translate(err)
	}
	return nil
}

// BulkResult is the per-item outcome of a batched operation. Err is nil for
// items that succeeded.
type BulkResult struct {
	Ref steamapi.ConfirmationRef
	Err error
}

// AcceptBulk approves a batch. The batch is first attempted as one external
// call; when Steam refuses it for a non-auth reason, each item is retried
// individually so stale references surface as per-item expired or
// duplicate-request outcomes instead of one opaque batch failure.
func (d *Dispatcher) AcceptBulk(ctx context.Context, refs []steamapi.ConfirmationRef) ([]BulkResult, error) {
	return d.bulk(ctx, refs, steamapi.Confirmer.AcceptBulk, steamapi.Confirmer.Accept)
}

// DenyBulk rejects a batch with the same semantics as AcceptBulk.
func (d *Dispatcher) DenyBulk(ctx context.Context, refs []steamapi.ConfirmationRef) ([]BulkResult, error) {
	return d.bulk(ctx, refs, steamapi.Confirmer.DenyBulk, steamapi.Confirmer.Deny)
}

func (d *Dispatcher) bulk(
	ctx context.Context,
	refs []steamapi.ConfirmationRef,
	bulkOp func(steamapi.Confirmer, context.Context, []steamapi.ConfirmationRef) error,
	singleOp func(steamapi.Confirmer, context.Context, steamapi.ConfirmationRef) error,
) ([]BulkResult, error) {
	confirmer, err := d.activeConfirmer()
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, nil
	}

	err = dispatch.RunErr(ctx, func() error {
		return bulkOp(confirmer, ctx, refs)
	})
	if err == nil {
		results := make([]BulkResult, len(refs))
		for i, ref := range refs {
			results[i] = BulkResult{Ref: ref}
		}
		return results, nil
	}

	translated := translate(err)
	kind := apperr.KindOf(translated)
	if kind == apperr.KindUnauthorized || kind == apperr.KindNetworkFailure {
		// Retrying per item cannot help; the whole batch shares the fault.
		return nil, translated
	}

	slog.Debug("bulk confirmation call refused, attributing per item", "error", err, "items", len(refs))
	results := make([]BulkResult, len(refs))
	for i, ref := range refs {
		itemErr := dispatch.RunErr(ctx, func() error {
			return singleOp(confirmer, ctx, ref)
		})
		if itemErr != nil {
			itemErr = translate(itemErr)
		}
		results[i] = BulkResult{Ref: ref, Err: itemErr}
	}
	return results, nil
}

// translate is the fixed, exhaustive mapping from the steamapi error set to
// the application taxonomy. New steamapi sentinels must be added here.
func translate(err error) error {
	switch {
	case errors.Is(err, steamapi.ErrInvalidTokens):
		return apperr.Wrap(apperr.KindUnauthorized, "steam rejected the session", err)
	case errors.Is(err, steamapi.ErrDeserialize):
		return apperr.Wrap(apperr.KindDeserialization, "steam response unreadable", err)
	case errors.Is(err, steamapi.ErrNetwork):
		return apperr.Wrap(apperr.KindNetworkFailure, "steam unreachable", err)
	case errors.Is(err, steamapi.ErrExpired):
		return apperr.Wrap(apperr.KindExpired, "confirmation is stale", err)
	case errors.Is(err, steamapi.ErrDuplicateRequest):
		return apperr.Wrap(apperr.KindDuplicateRequest, "confirmation already answered", err)
	case errors.Is(err, steamapi.ErrRemote),
		errors.Is(err, steamapi.ErrBadCredentials),
		errors.Is(err, steamapi.ErrGuardCodeRejected):
		return apperr.Wrap(apperr.KindAPI, "confirmation request failed", err)
	default:
		return apperr.Wrap(apperr.KindAPI, "confirmation request failed", err)
	}
}
