// Package steamapi is the boundary to the Steam Web API. It owns the wire
// types, the transport, and a closed error set per collaborator; nothing
// above this package sees raw HTTP or JSON failures.
package steamapi

import "context"

// AuthClient drives one device-confirmation login handshake. A client is
// stateful: BeginAuthViaCredentials opens the auth session that the later
// calls operate on, so a fresh client is needed per login attempt.
type AuthClient interface {
	// BeginAuthViaCredentials submits the username and password and returns
	// the confirmation methods Steam offers for this account.
	BeginAuthViaCredentials(ctx context.Context, username, password string) ([]ConfirmationMethod, error)

	// SubmitGuardCode answers the guard challenge with a generated code.
	SubmitGuardCode(ctx context.Context, guardType GuardType, code string) error

	// PollUntilTokens polls the auth session until tokens are issued or the
	// session terminally fails. May take several round-trips.
	PollUntilTokens(ctx context.Context) (Tokens, error)
}

// TokenRefresher exchanges a refresh token for a new access token.
type TokenRefresher interface {
	RefreshAccessToken(ctx context.Context, steamID uint64, tokens Tokens) (string, error)
}

// Confirmer operates on the mobile confirmation queue of one account.
type Confirmer interface {
	List(ctx context.Context) ([]Confirmation, error)
	GetDetails(ctx context.Context, ref ConfirmationRef) (string, error)
	Accept(ctx context.Context, ref ConfirmationRef) error
	Deny(ctx context.Context, ref ConfirmationRef) error
	AcceptBulk(ctx context.Context, refs []ConfirmationRef) error
	DenyBulk(ctx context.Context, refs []ConfirmationRef) error
}

// Approver lists and answers pending login approval sessions for one
// account.
type Approver interface {
	ListSessions(ctx context.Context) ([]uint64, error)
	GetSessionInfo(ctx context.Context, clientID uint64) (SessionInfo, error)
	Approve(ctx context.Context, challenge Challenge, persistent bool) error
	Deny(ctx context.Context, challenge Challenge) error
}

// ProfileClient fetches public profile details for accounts.
type ProfileClient interface {
	GetPlayerLinkDetails(ctx context.Context, accessToken string, steamID uint64) (Profile, error)
}
