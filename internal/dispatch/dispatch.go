// Package dispatch runs blocking network calls on their own goroutine so
// the command-dispatch loop never waits on network latency, and turns a
// worker panic into a classified error at the join point instead of a
// process crash.
package dispatch

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/prenaissance/steam-desktop-authenticator/internal/apperr"
)

type result[T any] struct {
	value T
	err   error
}

// Run executes fn on a fresh worker goroutine and waits for its outcome. A
// panic inside fn is recovered and surfaced as an api-error. If ctx ends
// first the worker is abandoned; in-flight calls are not cancelled, their
// transports enforce their own timeouts.
func Run[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	results := make(chan result[T], 1)

	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				slog.Error("worker panicked", "panic", recovered, "stack", string(debug.Stack()))
				var zero T
				results <- result[T]{value: zero, err: apperr.Newf(apperr.KindAPI, "worker panicked: %v", recovered)}
			}
		}()
		value, err := fn()
		results <- result[T]{value: value, err: err}
	}()

	select {
	case res := <-results:
		return res.value, res.err
	case <-ctx.Done():
		var zero T
		return zero, apperr.Wrap(apperr.KindAPI, "operation abandoned", ctx.Err())
	}
}

// RunErr is Run for operations without a result value.
func RunErr(ctx context.Context, fn func() error) error {
	_, err := Run(ctx, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
