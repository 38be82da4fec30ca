package flows

import (
	"context"
	"errors"
	"testing"

	"github.com/keplerhq/authvault/keystore"
)

func issueDeps(keys keystore.Store) IssueDeps {
	return IssueDeps{
		NewSecretPair: func() (string, string, error) { return "primary", "secondary", nil },
		SignAccess:    func(subject, secret string) (string, error) { return "access." + subject, nil },
		SignRefresh:   func(subject, secret string) (string, error) { return "refresh." + subject, nil },
		Keys:          keys,
	}
}

func TestRunIssuePersistsBeforeSigning(t *testing.T) {
	keys := keystore.NewMemory()
	result := RunIssue(context.Background(), "client-1", issueDeps(keys))

	if result.Failure != IssueFailureNone {
		t.Fatalf("unexpected failure: %v (%v)", result.Failure, result.Err)
	}
	if result.AccessToken != "access.client-1" || result.RefreshToken != "refresh.client-1" {
		t.Fatalf("unexpected tokens: %+v", result)
	}

	entry, err := keys.FindByPair(context.Background(), "client-1", "primary", "secondary")
	if err != nil {
		t.Fatalf("entry not persisted: %v", err)
	}
	if entry.ID != result.Entry.ID {
		t.Fatalf("result entry %q does not match stored %q", result.Entry.ID, entry.ID)
	}
}

func TestRunIssueDiscardsEntryOnSignFailure(t *testing.T) {
	keys := keystore.NewMemory()
	deps := issueDeps(keys)
	deps.SignRefresh = func(subject, secret string) (string, error) {
		return "", errors.New("signing broke")
	}

	result := RunIssue(context.Background(), "client-1", deps)
	if result.Failure != IssueFailureSign {
		t.Fatalf("expected sign failure, got %v", result.Failure)
	}

	// No unreachable session record survives a half-signed pair.
	if keys.Len() != 0 {
		t.Fatalf("expected empty keystore, got %d entries", keys.Len())
	}
}

func TestRunIssueSecretFailure(t *testing.T) {
	keys := keystore.NewMemory()
	deps := issueDeps(keys)
	deps.NewSecretPair = func() (string, string, error) {
		return "", "", errors.New("entropy unavailable")
	}

	result := RunIssue(context.Background(), "client-1", deps)
	if result.Failure != IssueFailureSecret {
		t.Fatalf("expected secret failure, got %v", result.Failure)
	}
	if keys.Len() != 0 {
		t.Fatalf("expected empty keystore, got %d entries", keys.Len())
	}
}

func TestBearerToken(t *testing.T) {
	if tok, ok := BearerToken("Bearer abc.def"); !ok || tok != "abc.def" {
		t.Fatalf("unexpected result: %q %v", tok, ok)
	}
	for _, header := range []string{"", "Bearer", "Bearer ", "bearer abc", "Basic abc"} {
		if _, ok := BearerToken(header); ok {
			t.Fatalf("header %q must be rejected", header)
		}
	}
}
