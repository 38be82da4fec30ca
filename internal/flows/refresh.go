package flows

import (
	"context"
	"errors"

	"github.com/keplerhq/authvault/directory"
	"github.com/keplerhq/authvault/keystore"
	"github.com/keplerhq/authvault/token"
)

// RefreshFailureKind classifies refresh flow failures for root-level
// mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureBearer
	RefreshFailureAccessInvalid
	RefreshFailureRefreshExpired
	RefreshFailureRefreshInvalid
	RefreshFailureClaimShape
	RefreshFailureUserUnknown
	RefreshFailureSubjectMismatch
	RefreshFailureNoSession
	RefreshFailureStore
	RefreshFailureIssue
)

// RefreshResult carries the rotated session's token pair, or failure
// metadata. Removed is the entry retired by the rotation.
type RefreshResult struct {
	Failure      RefreshFailureKind
	Err          error
	User         *directory.User
	Removed      *keystore.Entry
	Entry        *keystore.Entry
	AccessToken  string
	RefreshToken string
}

// RefreshDeps captures refresh flow dependencies. Issue supplies the
// minting half once rotation has succeeded.
type RefreshDeps struct {
	DecodeExpired func(string) (*token.Claims, error)
	Verify        func(string) (*token.Claims, error)
	Issuer        string
	Audience      string
	FindUser      func(context.Context, string) (*directory.User, error)
	Keys          keystore.Store
	Issue         IssueDeps
}

// RunRefresh rotates one session: the presented access token is decoded
// ignoring expiry (it is expected to be stale), the refresh token is
// verified fully, both must name the same subject, and both secrets must
// match a single live entry. That entry is taken with an atomic
// conditional delete, so two refresh calls racing on one stolen pair mint
// at most one successor session. A fresh entry and pair replace the old
// one; the old tokens are permanently dead even before their exp.
func RunRefresh(ctx context.Context, authorization, refreshToken string, deps RefreshDeps) RefreshResult {
	accessStr, ok := BearerToken(authorization)
	if !ok {
		return RefreshResult{Failure: RefreshFailureBearer}
	}

	accessClaims, err := deps.DecodeExpired(accessStr)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureAccessInvalid, Err: err}
	}
	if !ValidPayload(accessClaims, deps.Issuer, deps.Audience) {
		return RefreshResult{Failure: RefreshFailureClaimShape}
	}

	user, err := deps.FindUser(ctx, accessClaims.Subject)
	if err != nil {
		if errors.Is(err, directory.ErrUserNotFound) {
			return RefreshResult{Failure: RefreshFailureUserUnknown, Err: err}
		}
		return RefreshResult{Failure: RefreshFailureStore, Err: err}
	}

	refreshClaims, err := deps.Verify(refreshToken)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return RefreshResult{Failure: RefreshFailureRefreshExpired, Err: err, User: user}
		}
		return RefreshResult{Failure: RefreshFailureRefreshInvalid, Err: err, User: user}
	}
	if !ValidPayload(refreshClaims, deps.Issuer, deps.Audience) {
		return RefreshResult{Failure: RefreshFailureClaimShape, User: user}
	}

	if accessClaims.Subject != refreshClaims.Subject {
		return RefreshResult{Failure: RefreshFailureSubjectMismatch, User: user}
	}

	removed, err := deps.Keys.TakeByPair(ctx, user.ID, accessClaims.Prm, refreshClaims.Prm)
	if err != nil {
		if errors.Is(err, keystore.ErrEntryNotFound) {
			return RefreshResult{Failure: RefreshFailureNoSession, Err: err, User: user}
		}
		return RefreshResult{Failure: RefreshFailureStore, Err: err, User: user}
	}

	issued := RunIssue(ctx, user.ID, deps.Issue)
	if issued.Failure != IssueFailureNone {
		return RefreshResult{
			Failure: RefreshFailureIssue,
			Err:     issued.Err,
			User:    user,
			Removed: removed,
		}
	}

	return RefreshResult{
		Failure:      RefreshFailureNone,
		User:         user,
		Removed:      removed,
		Entry:        issued.Entry,
		AccessToken:  issued.AccessToken,
		RefreshToken: issued.RefreshToken,
	}
}
