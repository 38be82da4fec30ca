package flows

import (
	"context"
	"errors"

	"github.com/keplerhq/authvault/directory"
	"github.com/keplerhq/authvault/keystore"
	"github.com/keplerhq/authvault/token"
)

// ValidateFailureKind classifies validation failures for root-level
// mapping.
type ValidateFailureKind int

const (
	ValidateFailureNone ValidateFailureKind = iota
	ValidateFailureBearer
	ValidateFailureTokenExpired
	ValidateFailureTokenInvalid
	ValidateFailureClaimShape
	ValidateFailureUserUnknown
	ValidateFailureNoSession
	ValidateFailureStore
)

// ValidateResult carries the authenticated user and live entry, or
// classified failure metadata.
type ValidateResult struct {
	Failure ValidateFailureKind
	Err     error
	Claims  *token.Claims
	User    *directory.User
	Entry   *keystore.Entry
}

// ValidateDeps captures validation flow dependencies.
type ValidateDeps struct {
	Verify   func(string) (*token.Claims, error)
	Issuer   string
	Audience string
	FindUser func(context.Context, string) (*directory.User, error)
	Keys     keystore.Store
}

// RunValidate authenticates one bearer header value: signature and expiry
// via the signer, claim shape against configuration, a subject lookup, and
// finally a live keystore entry matching the embedded secret. A token
// whose signature verifies but whose entry was deleted is rejected. Pure
// read; no side effects.
func RunValidate(ctx context.Context, authorization string, deps ValidateDeps) ValidateResult {
	tokenStr, ok := BearerToken(authorization)
	if !ok {
		return ValidateResult{Failure: ValidateFailureBearer}
	}

	claims, err := deps.Verify(tokenStr)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return ValidateResult{Failure: ValidateFailureTokenExpired, Err: err}
		}
		return ValidateResult{Failure: ValidateFailureTokenInvalid, Err: err}
	}

	if !ValidPayload(claims, deps.Issuer, deps.Audience) {
		return ValidateResult{Failure: ValidateFailureClaimShape, Claims: claims}
	}

	user, err := deps.FindUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, directory.ErrUserNotFound) {
			return ValidateResult{Failure: ValidateFailureUserUnknown, Err: err, Claims: claims}
		}
		return ValidateResult{Failure: ValidateFailureStore, Err: err, Claims: claims}
	}

	entry, err := deps.Keys.Find(ctx, user.ID, claims.Prm)
	if err != nil {
		if errors.Is(err, keystore.ErrEntryNotFound) {
			return ValidateResult{Failure: ValidateFailureNoSession, Err: err, Claims: claims, User: user}
		}
		return ValidateResult{Failure: ValidateFailureStore, Err: err, Claims: claims, User: user}
	}

	return ValidateResult{
		Failure: ValidateFailureNone,
		Claims:  claims,
		User:    user,
		Entry:   entry,
	}
}
