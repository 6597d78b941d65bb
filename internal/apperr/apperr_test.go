package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	plain := New(KindUnauthorized, "no active account")
	assert.Equal(t, "unauthorized: no active account", plain.Error())

	wrapped := Wrap(KindNetworkFailure, "steam unreachable", errors.New("dial tcp: timeout"))
	assert.Equal(t, "network-failure: steam unreachable: dial tcp: timeout", wrapped.Error())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	wrapped := Wrap(KindIO, "save failed", cause)
	assert.ErrorIs(t, wrapped, cause)
	assert.Nil(t, errors.Unwrap(New(KindIO, "no cause")))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindExpired, KindOf(New(KindExpired, "stale")))

	// Classified errors stay recognizable through fmt wrapping.
	rewrapped := fmt.Errorf("outer: %w", New(KindValidation, "bad input"))
	assert.Equal(t, KindValidation, KindOf(rewrapped))

	// Anything unclassified falls into the external-failure catch-all.
	assert.Equal(t, KindAPI, KindOf(errors.New("mystery")))
}

func TestIsKind(t *testing.T) {
	err := Newf(KindDuplicateRequest, "confirmation %s already answered", "123")
	assert.True(t, IsKind(err, KindDuplicateRequest))
	assert.False(t, IsKind(err, KindExpired))
	assert.False(t, IsKind(errors.New("mystery"), KindAPI))
	assert.False(t, IsKind(nil, KindAPI))
}
