package authvault

import (
	"context"
	"errors"

	"github.com/keplerhq/authvault/directory"
	"github.com/keplerhq/authvault/internal"
	"github.com/keplerhq/authvault/internal/flows"
	"github.com/keplerhq/authvault/password"
)

// Signup creates an account under the configured default role and logs it
// straight in: the directory persists the user together with its initial
// keystore entry, then the token pair is signed. If signing fails the
// fresh entry is removed so no unreachable session survives.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	if req.Email == "" || req.Password == "" {
		s.metrics.Inc(MetricSignupFailure)
		return nil, E(KindBadRequest, "email and password are required")
	}

	if _, err := s.directory.FindByEmail(ctx, req.Email); err == nil {
		s.metrics.Inc(MetricSignupFailure)
		return nil, E(KindBadRequest, "user already registered")
	} else if !errors.Is(err, directory.ErrUserNotFound) {
		s.metrics.Inc(MetricSignupFailure)
		return nil, Wrap(KindInternal, "user lookup failed", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.metrics.Inc(MetricSignupFailure)
		if errors.Is(err, password.ErrPasswordTooShort) {
			return nil, E(KindBadRequest, "password too short")
		}
		return nil, Wrap(KindInternal, "hashing password", err)
	}

	primary, secondary, err := internal.NewSecretPair()
	if err != nil {
		s.metrics.Inc(MetricSignupFailure)
		return nil, Wrap(KindInternal, "generating session secrets", err)
	}

	user := &directory.User{Name: req.Name, Email: req.Email, PasswordHash: hash}
	created, entry, err := s.directory.Create(ctx, user, s.config.Account.DefaultRole, primary, secondary)
	if err != nil {
		s.metrics.Inc(MetricSignupFailure)
		if errors.Is(err, directory.ErrRoleNotFound) {
			return nil, E(KindRoleNotFound, "default role must be defined")
		}
		if errors.Is(err, directory.ErrDuplicateEmail) {
			return nil, E(KindBadRequest, "user already registered")
		}
		return nil, Wrap(KindInternal, "creating user", err)
	}

	pair, err := s.signPair(ctx, created.ID, primary, secondary, entry.ID)
	if err != nil {
		s.metrics.Inc(MetricSignupFailure)
		return nil, err
	}

	s.metrics.Inc(MetricSignupSuccess)
	return &SignupResult{User: directory.PrivateProfile(created), Tokens: pair}, nil
}

// signPair signs both tokens for an entry that already exists, removing
// the entry again when signing fails.
func (s *Service) signPair(ctx context.Context, userID, primary, secondary, entryID string) (TokenPair, error) {
	access, err := s.signer.SignAccess(userID, primary)
	if err == nil {
		var refresh string
		if refresh, err = s.signer.SignRefresh(userID, secondary); err == nil {
			return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
		}
	}
	if removeErr := s.keys.Remove(ctx, entryID); removeErr != nil {
		s.warnf("orphaned keystore entry cleanup failed", entryID, removeErr)
	}
	return TokenPair{}, Wrap(KindInternal, "token issuance failed", err)
}

// Login authenticates credentials and mints a new independent session.
// Concurrent sessions are permitted: logging in twice yields two entries,
// and revoking one leaves the other live.
func (s *Service) Login(ctx context.Context, email, plaintext string) (*LoginResult, error) {
	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		s.metrics.Inc(MetricLoginFailure)
		if errors.Is(err, directory.ErrUserNotFound) {
			return nil, E(KindBadRequest, "user not registered")
		}
		return nil, Wrap(KindInternal, "user lookup failed", err)
	}
	if user.PasswordHash == "" {
		s.metrics.Inc(MetricLoginFailure)
		return nil, E(KindBadRequest, "credential not set")
	}

	ok, err := s.hasher.Verify(plaintext, user.PasswordHash)
	if err != nil {
		s.metrics.Inc(MetricLoginFailure)
		return nil, Wrap(KindInternal, "verifying credential", err)
	}
	if !ok {
		s.metrics.Inc(MetricLoginFailure)
		return nil, E(KindAuthFailure, "authentication failure")
	}

	result := flows.RunIssue(ctx, user.ID, s.issueDeps())
	if result.Failure != flows.IssueFailureNone {
		s.metrics.Inc(MetricLoginFailure)
		return nil, Wrap(KindInternal, "token issuance failed", result.Err)
	}

	s.metrics.Inc(MetricLoginSuccess)
	return &LoginResult{
		User:   directory.PrivateProfile(user),
		Tokens: TokenPair{AccessToken: result.AccessToken, RefreshToken: result.RefreshToken},
	}, nil
}

// Logout revokes the session identified during the current request's
// Validate step. Idempotent.
func (s *Service) Logout(ctx context.Context, auth *AuthResult) error {
	if auth == nil || auth.Entry == nil {
		return E(KindAuthFailure, "no authenticated session")
	}
	return s.Revoke(ctx, auth.Entry.ID)
}

// ChangePassword verifies the current credential, stores the new hash, and
// revokes every outstanding session for the user so all devices must log
// in again with the new password.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.directory.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, directory.ErrUserNotFound) {
			return E(KindNotFound, "user not registered")
		}
		return Wrap(KindInternal, "user lookup failed", err)
	}

	ok, err := s.hasher.Verify(current, user.PasswordHash)
	if err != nil {
		return Wrap(KindInternal, "verifying credential", err)
	}
	if !ok {
		return E(KindAuthFailure, "authentication failure")
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooShort) {
			return E(KindBadRequest, "password too short")
		}
		return Wrap(KindInternal, "hashing password", err)
	}

	user.PasswordHash = hash
	if err := s.directory.UpdateInfo(ctx, user); err != nil {
		return Wrap(KindInternal, "updating credential", err)
	}

	return s.RevokeAll(ctx, userID)
}
