package steamapi

import (
	"errors"
	"fmt"
)

// Closed error set of this collaborator. Callers translate these into the
// application taxonomy; adding a new sentinel here must be matched by an
// entry in that translation table.
var (
	// ErrNetwork indicates the request never produced a usable response.
	ErrNetwork = errors.New("steamapi: network failure")

	// ErrDeserialize indicates the response body could not be decoded.
	ErrDeserialize = errors.New("steamapi: could not decode response")

	// ErrInvalidTokens indicates Steam rejected the access token.
	ErrInvalidTokens = errors.New("steamapi: access token rejected")

	// ErrBadCredentials indicates the username/password pair was rejected.
	ErrBadCredentials = errors.New("steamapi: credentials rejected")

	// ErrGuardCodeRejected indicates the submitted guard code was rejected.
	ErrGuardCodeRejected = errors.New("steamapi: guard code rejected")

	// ErrExpired indicates the referenced request or confirmation is stale.
	ErrExpired = errors.New("steamapi: request expired")

	// ErrDuplicateRequest indicates the request was already answered.
	ErrDuplicateRequest = errors.New("steamapi: duplicate request")

	// ErrRemote covers any other failure Steam reports.
	ErrRemote = errors.New("steamapi: remote error")
)

// Relevant EResult codes from the web API.
const (
	eresultOK                    = 1
	eresultInvalidPassword       = 5
	eresultAccessDenied          = 15
	eresultExpired               = 27
	eresultDuplicateRequest      = 29
	eresultInvalidToken          = 101
	eresultTwoFactorCodeMismatch = 88
)

// eresultError maps a non-OK EResult to a sentinel of the closed set.
func eresultError(code int) error {
	switch code {
	case eresultOK:
		return nil
	case eresultInvalidPassword:
		return fmt.Errorf("%w (eresult %d)", ErrBadCredentials, code)
	case eresultTwoFactorCodeMismatch:
		return fmt.Errorf("%w (eresult %d)", ErrGuardCodeRejected, code)
	case eresultAccessDenied, eresultInvalidToken:
		return fmt.Errorf("%w (eresult %d)", ErrInvalidTokens, code)
	case eresultExpired:
		return fmt.Errorf("%w (eresult %d)", ErrExpired, code)
	case eresultDuplicateRequest:
		return fmt.Errorf("%w (eresult %d)", ErrDuplicateRequest, code)
	default:
		return fmt.Errorf("%w (eresult %d)", ErrRemote, code)
	}
}
