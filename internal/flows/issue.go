package flows

import (
	"context"

	"github.com/keplerhq/authvault/keystore"
)

// IssueFailureKind classifies issue flow failures for root-level mapping.
type IssueFailureKind int

const (
	IssueFailureNone IssueFailureKind = iota
	IssueFailureSecret
	IssueFailureStore
	IssueFailureSign
)

// IssueResult carries the persisted entry and signed pair, or failure
// metadata.
type IssueResult struct {
	Failure      IssueFailureKind
	Err          error
	Entry        *keystore.Entry
	AccessToken  string
	RefreshToken string
}

// IssueDeps captures issue flow dependencies.
type IssueDeps struct {
	NewSecretPair func() (string, string, error)
	SignAccess    func(subject, secret string) (string, error)
	SignRefresh   func(subject, secret string) (string, error)
	Keys          keystore.Store
	Warn          func(string, ...any)
}

// RunIssue mints a secret pair, persists the keystore entry, then signs
// both tokens. The entry is persisted before signing so a token is never
// returned without its backing record; if signing fails the fresh entry is
// removed again so no orphan session survives.
func RunIssue(ctx context.Context, clientID string, deps IssueDeps) IssueResult {
	primary, secondary, err := deps.NewSecretPair()
	if err != nil {
		return IssueResult{Failure: IssueFailureSecret, Err: err}
	}

	entry, err := deps.Keys.Create(ctx, clientID, primary, secondary)
	if err != nil {
		return IssueResult{Failure: IssueFailureStore, Err: err}
	}

	access, err := deps.SignAccess(clientID, primary)
	if err != nil {
		deps.discard(ctx, entry)
		return IssueResult{Failure: IssueFailureSign, Err: err, Entry: entry}
	}

	refresh, err := deps.SignRefresh(clientID, secondary)
	if err != nil {
		deps.discard(ctx, entry)
		return IssueResult{Failure: IssueFailureSign, Err: err, Entry: entry}
	}

	return IssueResult{
		Failure:      IssueFailureNone,
		Entry:        entry,
		AccessToken:  access,
		RefreshToken: refresh,
	}
}

func (deps IssueDeps) discard(ctx context.Context, entry *keystore.Entry) {
	if err := deps.Keys.Remove(ctx, entry.ID); err != nil && deps.Warn != nil {
		deps.Warn("orphaned keystore entry cleanup failed", entry.ID, err)
	}
}
