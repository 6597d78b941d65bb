package watch

import (
	"context"
	"log/slog"
	"time"

	"github.com/prenaissance/steam-desktop-authenticator/internal/apperr"
	"github.com/prenaissance/steam-desktop-authenticator/internal/steamapi"
)

// Lister is the slice of the confirmation dispatcher the watcher needs.
type Lister interface {
	List(ctx context.Context) ([]steamapi.Confirmation, error)
}

// ActiveName reports the account whose queue is being watched.
type ActiveName func() (string, bool)

// Watcher periodically polls the confirmation queue and hands every not yet
// seen confirmation to the notify callback.
type Watcher struct {
	lister     Lister
	cache      *Cache
	activeName ActiveName
	interval   time.Duration
	notify     func(steamapi.Confirmation)
}

// NewWatcher builds a watcher. interval <= 0 falls back to 30 seconds.
func NewWatcher(lister Lister, cache *Cache, activeName ActiveName, interval time.Duration, notify func(steamapi.Confirmation)) *Watcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Watcher{
		lister:     lister,
		cache:      cache,
		activeName: activeName,
		interval:   interval,
		notify:     notify,
	}
}

// Poll performs one list/diff/mark pass and returns the confirmations that
// were new this round.
func (w *Watcher) Poll(ctx context.Context) ([]steamapi.Confirmation, error) {
	account, ok := w.activeName()
	if !ok {
		return nil, apperr.New(apperr.KindUnauthorized, "no active account")
	}

	confirmations, err := w.lister.List(ctx)
	if err != nil {
		return nil, err
	}

	fresh, err := w.cache.FilterNew(account, confirmations)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindIO, "watch cache", err)
	}
	if err := w.cache.MarkSeen(account, fresh); err != nil {
		return nil, apperr.Wrap(apperr.KindIO, "watch cache", err)
	}

	for _, confirmation := range fresh {
		w.notify(confirmation)
	}
	return fresh, nil
}

// Run polls until ctx ends. Transient network failures are logged and the
// loop keeps going; an unauthorized outcome stops it, since no amount of
// retrying fixes a missing or stale session.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		fresh, err := w.Poll(ctx)
		switch {
		case err == nil:
			if len(fresh) > 0 {
				slog.Debug("new confirmations", "count", len(fresh))
			}
		case apperr.IsKind(err, apperr.KindUnauthorized):
			return err
		default:
			slog.Warn("confirmation poll failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
