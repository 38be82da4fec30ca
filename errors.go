package authvault

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies every failure the engine can surface. Hosts switch
// on the kind (or use [ErrorKind.HTTPStatus]) instead of matching error
// strings or concrete types.
type ErrorKind int

const (
	// KindAuthFailure covers missing or malformed credentials, claim
	// mismatches, and tokens with no matching live keystore entry.
	KindAuthFailure ErrorKind = iota
	// KindTokenExpired is surfaced distinctly so a client knows to attempt
	// a refresh instead of a re-login.
	KindTokenExpired
	// KindBadToken covers malformed or unverifiable token material.
	KindBadToken
	// KindRoleNotFound is a server-side configuration failure during
	// signup, never the caller's fault.
	KindRoleNotFound
	// KindKeyUnavailable means the signing key pair could not be loaded.
	// It is fatal at build time; the engine never starts without keys.
	KindKeyUnavailable
	// KindNotFound covers absent records on lookup paths.
	KindNotFound
	// KindForbidden covers authenticated but unauthorized access.
	KindForbidden
	// KindBadRequest covers caller mistakes outside the auth taxonomy.
	KindBadRequest
	// KindInternal covers everything else: store failures, signing
	// failures after key load, broken invariants.
	KindInternal
)

var kindStatus = map[ErrorKind]int{
	KindAuthFailure:    http.StatusUnauthorized,
	KindTokenExpired:   http.StatusUnauthorized,
	KindBadToken:       http.StatusUnauthorized,
	KindRoleNotFound:   http.StatusInternalServerError,
	KindKeyUnavailable: http.StatusInternalServerError,
	KindNotFound:       http.StatusNotFound,
	KindForbidden:      http.StatusForbidden,
	KindBadRequest:     http.StatusBadRequest,
	KindInternal:       http.StatusInternalServerError,
}

// HTTPStatus maps the kind to a transport status code. Unknown kinds map
// to 500.
func (k ErrorKind) HTTPStatus() int {
	if status, ok := kindStatus[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (k ErrorKind) String() string {
	switch k {
	case KindAuthFailure:
		return "auth_failure"
	case KindTokenExpired:
		return "token_expired"
	case KindBadToken:
		return "bad_token"
	case KindRoleNotFound:
		return "role_not_found"
	case KindKeyUnavailable:
		return "key_unavailable"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindBadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}

// Error is the single error type surfaced by the engine. It replaces a
// class hierarchy with one tagged variant: a kind, a message, and an
// optional wrapped cause.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the cause to errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is treats two engine errors with the same kind as equal, so callers can
// match against the exported template values below.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// E builds an engine error of the given kind.
func E(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an engine error of the given kind around a cause.
func Wrap(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// KindOf extracts the kind from any error chain. Errors that did not
// originate in the engine report KindInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Template errors for errors.Is matching. Operations return richer
// messages; these exist so callers can classify without string checks.
var (
	ErrAuthFailure    = E(KindAuthFailure, "authentication failure")
	ErrTokenExpired   = E(KindTokenExpired, "token expired")
	ErrBadToken       = E(KindBadToken, "invalid token")
	ErrRoleNotFound   = E(KindRoleNotFound, "role must be defined")
	ErrKeyUnavailable = E(KindKeyUnavailable, "token signing keys unavailable")
	ErrNotFound       = E(KindNotFound, "not found")
	ErrForbidden      = E(KindForbidden, "permission denied")
	ErrBadRequest     = E(KindBadRequest, "bad request")
	ErrInternal       = E(KindInternal, "internal error")
)
