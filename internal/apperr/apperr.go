// Package apperr defines the error taxonomy shared by every command-facing
// operation. Each error carries a stable kebab-case discriminant so the UI
// shell can branch on it without parsing messages.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the discriminant string attached to a classified error.
type Kind string

const (
	KindUnauthorized     Kind = "unauthorized"
	KindWrongCredentials Kind = "wrong-credentials"
	KindOTP              Kind = "otp-error"
	KindUnimplemented    Kind = "unimplemented"
	KindValidation       Kind = "validation-error"
	KindNetworkFailure   Kind = "network-failure"
	KindDeserialization  Kind = "deserialization-error"
	KindExpired          Kind = "expired"
	KindDuplicateRequest Kind = "duplicate-request"
	KindAPI              Kind = "api-error"
	KindIO               Kind = "io-error"
)

// Error is a classified error. External failures are always wrapped into one
// of these at the call site; raw collaborator errors never cross a component
// boundary.
type Error struct {
	kind Kind
	msg  string
	err  error
}

// New creates a classified error without an underlying cause.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error. The cause stays reachable through
// errors.Unwrap for logging, but callers should branch on Kind only.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{kind: kind, msg: msg, err: err}
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *Error) Unwrap() error {
	return e.err
}

// Kind returns the discriminant of the error.
func (e *Error) Kind() Kind {
	return e.kind
}

// KindOf extracts the discriminant from err. Unclassified errors report
// KindAPI, the catch-all for external failures.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.kind
	}
	return KindAPI
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.kind == kind
}
