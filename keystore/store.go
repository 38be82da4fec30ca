package keystore

import (
	"context"
	"errors"
)

// ErrEntryNotFound is the sentinel for every lookup that matches no live
// entry. Stores return it instead of (nil, nil) so callers can errors.Is.
var ErrEntryNotFound = errors.New("keystore entry not found")

// Store is the persistence contract for session entries. Implementations
// must be safe for concurrent use; single-entry atomicity is sufficient
// because entries are only ever created and deleted.
type Store interface {
	// Find returns the live entry owned by clientID whose primary key
	// matches. Used to authorize an access token.
	Find(ctx context.Context, clientID, primaryKey string) (*Entry, error)

	// FindByPair returns the live entry owned by clientID matching both
	// secrets. Used during refresh to bind the access-token secret and
	// refresh-token secret to the same session.
	FindByPair(ctx context.Context, clientID, primaryKey, secondaryKey string) (*Entry, error)

	// TakeByPair atomically deletes and returns the entry matching both
	// secrets. Of two refresh calls racing on the same entry, exactly one
	// receives the entry; the other gets ErrEntryNotFound.
	TakeByPair(ctx context.Context, clientID, primaryKey, secondaryKey string) (*Entry, error)

	// Create inserts a new live entry. Multiple live entries per client
	// are permitted (concurrent device sessions).
	Create(ctx context.Context, clientID, primaryKey, secondaryKey string) (*Entry, error)

	// Remove deletes one entry by id. Removing an absent entry is not an
	// error.
	Remove(ctx context.Context, entryID string) error

	// RemoveAllForClient deletes every entry owned by clientID,
	// invalidating all of that client's outstanding sessions.
	RemoveAllForClient(ctx context.Context, clientID string) error
}
