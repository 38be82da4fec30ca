package authvault

import (
	"context"

	"go.uber.org/zap"

	"github.com/keplerhq/authvault/cache"
	"github.com/keplerhq/authvault/directory"
	"github.com/keplerhq/authvault/internal"
	"github.com/keplerhq/authvault/internal/flows"
	"github.com/keplerhq/authvault/keystore"
	"github.com/keplerhq/authvault/password"
	"github.com/keplerhq/authvault/token"
)

// Service is the token lifecycle engine: it orchestrates the signer, the
// keystore, and the user directory to implement issue, validate, refresh,
// and revoke. Construct it through [Builder.Build]; a built Service is
// immutable and safe for concurrent use.
type Service struct {
	config    Config
	signer    *token.Signer
	keys      keystore.Store
	directory *directory.Directory
	snapshots *cache.Cache
	hasher    *password.Bcrypt
	log       *zap.Logger
	metrics   *Metrics
}

// Directory exposes the user directory for host read paths (profile
// endpoints and the like).
func (s *Service) Directory() *directory.Directory {
	return s.directory
}

// MetricsSnapshot returns the current engine counters.
func (s *Service) MetricsSnapshot() map[MetricID]uint64 {
	if s == nil {
		return map[MetricID]uint64{}
	}
	return s.metrics.Snapshot()
}

// CacheStats returns the snapshot cache counters.
func (s *Service) CacheStats() cache.Stats {
	return s.snapshots.Stats()
}

func (s *Service) warnf(msg string, args ...any) {
	s.log.Sugar().Warnw(msg, "details", args)
}

func (s *Service) issueDeps() flows.IssueDeps {
	return flows.IssueDeps{
		NewSecretPair: internal.NewSecretPair,
		SignAccess:    s.signer.SignAccess,
		SignRefresh:   s.signer.SignRefresh,
		Keys:          s.keys,
		Warn:          s.warnf,
	}
}

// Issue mints a new session for the user: a fresh secret pair, a persisted
// keystore entry, and a signed token pair. The entry is persisted before
// any token is signed, so a returned token always has a backing record.
func (s *Service) Issue(ctx context.Context, user *directory.User) (TokenPair, error) {
	result := flows.RunIssue(ctx, user.ID, s.issueDeps())
	if result.Failure != flows.IssueFailureNone {
		s.metrics.Inc(MetricIssueFailure)
		return TokenPair{}, Wrap(KindInternal, "token issuance failed", result.Err)
	}
	s.metrics.Inc(MetricIssueSuccess)
	return TokenPair{AccessToken: result.AccessToken, RefreshToken: result.RefreshToken}, nil
}

// Validate authenticates one request from its Authorization header value.
// It is a pure read: signature and expiry, claim shape, subject lookup,
// and a live keystore entry matching the embedded secret. The returned
// AuthResult identifies the session for a later Logout.
func (s *Service) Validate(ctx context.Context, authorization string) (*AuthResult, error) {
	result := flows.RunValidate(ctx, authorization, flows.ValidateDeps{
		Verify:   s.signer.Verify,
		Issuer:   s.config.Token.Issuer,
		Audience: s.config.Token.Audience,
		FindUser: s.directory.FindByID,
		Keys:     s.keys,
	})

	switch result.Failure {
	case flows.ValidateFailureNone:
		s.metrics.Inc(MetricValidateSuccess)
		return &AuthResult{User: result.User, Entry: result.Entry}, nil
	case flows.ValidateFailureBearer:
		s.metrics.Inc(MetricValidateFailure)
		return nil, E(KindAuthFailure, "invalid authorization header")
	case flows.ValidateFailureTokenExpired:
		s.metrics.Inc(MetricValidateFailure)
		return nil, Wrap(KindTokenExpired, "access token expired", result.Err)
	case flows.ValidateFailureTokenInvalid:
		s.metrics.Inc(MetricValidateFailure)
		return nil, Wrap(KindBadToken, "access token unverifiable", result.Err)
	case flows.ValidateFailureClaimShape, flows.ValidateFailureNoSession:
		s.metrics.Inc(MetricValidateFailure)
		return nil, E(KindAuthFailure, "invalid access token")
	case flows.ValidateFailureUserUnknown:
		s.metrics.Inc(MetricValidateFailure)
		return nil, E(KindAuthFailure, "user not registered")
	default:
		s.metrics.Inc(MetricValidateFailure)
		return nil, Wrap(KindInternal, "validation failed", result.Err)
	}
}

// Refresh rotates a session: the expired (or near-expired) access token is
// decoded ignoring expiry, the refresh token is verified fully, and the
// single entry matching both secrets is atomically replaced by a new one.
// The old pair is permanently unusable afterwards, even before its exp.
func (s *Service) Refresh(ctx context.Context, authorization, refreshToken string) (TokenPair, error) {
	result := flows.RunRefresh(ctx, authorization, refreshToken, flows.RefreshDeps{
		DecodeExpired: s.signer.DecodeExpired,
		Verify:        s.signer.Verify,
		Issuer:        s.config.Token.Issuer,
		Audience:      s.config.Token.Audience,
		FindUser:      s.directory.FindByID,
		Keys:          s.keys,
		Issue:         s.issueDeps(),
	})

	switch result.Failure {
	case flows.RefreshFailureNone:
		s.metrics.Inc(MetricRefreshSuccess)
		return TokenPair{AccessToken: result.AccessToken, RefreshToken: result.RefreshToken}, nil
	case flows.RefreshFailureBearer:
		s.metrics.Inc(MetricRefreshFailure)
		return TokenPair{}, E(KindAuthFailure, "invalid authorization header")
	case flows.RefreshFailureAccessInvalid:
		s.metrics.Inc(MetricRefreshFailure)
		return TokenPair{}, Wrap(KindBadToken, "access token unverifiable", result.Err)
	case flows.RefreshFailureRefreshExpired:
		s.metrics.Inc(MetricRefreshFailure)
		return TokenPair{}, Wrap(KindTokenExpired, "refresh token expired", result.Err)
	case flows.RefreshFailureRefreshInvalid:
		s.metrics.Inc(MetricRefreshFailure)
		return TokenPair{}, Wrap(KindBadToken, "refresh token unverifiable", result.Err)
	case flows.RefreshFailureClaimShape, flows.RefreshFailureSubjectMismatch:
		s.metrics.Inc(MetricRefreshFailure)
		return TokenPair{}, E(KindAuthFailure, "invalid access token")
	case flows.RefreshFailureUserUnknown:
		s.metrics.Inc(MetricRefreshFailure)
		return TokenPair{}, E(KindAuthFailure, "user not registered")
	case flows.RefreshFailureNoSession:
		s.metrics.Inc(MetricRefreshReuse)
		s.metrics.Inc(MetricRefreshFailure)
		return TokenPair{}, E(KindAuthFailure, "invalid access token")
	default:
		s.metrics.Inc(MetricRefreshFailure)
		return TokenPair{}, Wrap(KindInternal, "refresh failed", result.Err)
	}
}

// Revoke deletes one keystore entry, killing its token pair. Revoking an
// already-absent entry is not an error.
func (s *Service) Revoke(ctx context.Context, entryID string) error {
	if err := s.keys.Remove(ctx, entryID); err != nil {
		return Wrap(KindInternal, "revoking session", err)
	}
	s.metrics.Inc(MetricRevoke)
	return nil
}

// RevokeAll deletes every keystore entry for the user, forcing re-login on
// all devices.
func (s *Service) RevokeAll(ctx context.Context, userID string) error {
	if err := s.keys.RemoveAllForClient(ctx, userID); err != nil {
		return Wrap(KindInternal, "revoking sessions", err)
	}
	s.metrics.Inc(MetricRevokeAll)
	return nil
}
