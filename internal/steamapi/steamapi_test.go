package steamapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEresultError(t *testing.T) {
	tests := []struct {
		name string
		code int
		want error
	}{
		{name: "ok", code: 1, want: nil},
		{name: "invalid password", code: 5, want: ErrBadCredentials},
		{name: "access denied", code: 15, want: ErrInvalidTokens},
		{name: "expired", code: 27, want: ErrExpired},
		{name: "duplicate request", code: 29, want: ErrDuplicateRequest},
		{name: "code mismatch", code: 88, want: ErrGuardCodeRejected},
		{name: "invalid token", code: 101, want: ErrInvalidTokens},
		{name: "anything else", code: 2, want: ErrRemote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eresultError(tt.code)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConfirmationTypeFromWire(t *testing.T) {
	assert.Equal(t, ConfirmationTypeTrade, ConfirmationTypeFromWire(2))
	assert.Equal(t, ConfirmationTypeMarketSell, ConfirmationTypeFromWire(3))
	assert.Equal(t, ConfirmationTypeJoinSteamFamily, ConfirmationTypeFromWire(11))
	assert.Equal(t, ConfirmationTypeUnknown, ConfirmationTypeFromWire(4))
	assert.Equal(t, ConfirmationTypeUnknown, ConfirmationTypeFromWire(0))
}

func TestConfirmationRef(t *testing.T) {
	confirmation := Confirmation{ID: "123", Nonce: "abc", WireType: 2}
	assert.Equal(t, ConfirmationRef{ID: "123", Nonce: "abc"}, confirmation.Ref())
	assert.Equal(t, ConfirmationTypeTrade, confirmation.Type())
}

func TestChallengeSignature(t *testing.T) {
	approver := NewApprover(nil, GuardAccount{
		SteamID:      76561197960287930,
		SharedSecret: "FSY2y2mThnpJv1h+lXKTVuH+cvQ=",
	})

	signature, err := approver.challengeSignature(Challenge{Version: 1, ClientID: 123456789})
	require.NoError(t, err)
	assert.Equal(t, "g7f+oMjlVcaMEISMY+zW2AjeBvKA79L5K3CmmMlhUD8=", signature)
}

func TestChallengeSignatureBadSecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{name: "not base64", secret: "!!!"},
		{name: "truncated", secret: "c2hvcnQ="},
		{name: "empty", secret: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			approver := NewApprover(nil, GuardAccount{SharedSecret: tt.secret})
			_, err := approver.challengeSignature(Challenge{Version: 1, ClientID: 1})
			assert.Error(t, err)
		})
	}
}

func TestParseChallengeURL(t *testing.T) {
	challenge, err := ParseChallengeURL("https://s.team/q/1/9876543210")
	require.NoError(t, err)
	assert.Equal(t, Challenge{Version: 1, ClientID: 9876543210}, challenge)
}

func TestParseChallengeURLMalformed(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "wrong path", url: "https://s.team/profile/alice"},
		{name: "missing client id", url: "https://s.team/q/1"},
		{name: "non numeric", url: "https://s.team/q/one/two"},
		{name: "empty", url: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseChallengeURL(tt.url)
			assert.ErrorIs(t, err, ErrDeserialize)
		})
	}
}
