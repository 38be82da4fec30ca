package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/keplerhq/authvault/keystore"
)

// KeystoreRepo implements keystore.Store over postgres. Entries are only
// ever inserted and deleted; TakeByPair relies on DELETE ... RETURNING for
// the atomic conditional delete that serializes racing refreshes.
type KeystoreRepo struct {
	db DB
}

// NewKeystoreRepo binds a repository to the given DB.
func NewKeystoreRepo(db DB) *KeystoreRepo {
	return &KeystoreRepo{db: db}
}

const entryColumns = "id, client_id, primary_key, secondary_key, active, created_at"

func scanEntry(row pgx.Row) (*keystore.Entry, error) {
	var entry keystore.Entry
	err := row.Scan(
		&entry.ID,
		&entry.ClientID,
		&entry.PrimaryKey,
		&entry.SecondaryKey,
		&entry.Active,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, keystore.ErrEntryNotFound
		}
		return nil, fmt.Errorf("scanning keystore entry: %w", err)
	}
	return &entry, nil
}

func (r *KeystoreRepo) Find(ctx context.Context, clientID, primaryKey string) (*keystore.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM keystore_entries
		WHERE client_id = $1 AND primary_key = $2 AND active
	`
	return scanEntry(r.db.QueryRow(ctx, query, clientID, primaryKey))
}

func (r *KeystoreRepo) FindByPair(ctx context.Context, clientID, primaryKey, secondaryKey string) (*keystore.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM keystore_entries
		WHERE client_id = $1 AND primary_key = $2 AND secondary_key = $3 AND active
	`
	return scanEntry(r.db.QueryRow(ctx, query, clientID, primaryKey, secondaryKey))
}

func (r *KeystoreRepo) TakeByPair(ctx context.Context, clientID, primaryKey, secondaryKey string) (*keystore.Entry, error) {
	query := `
		DELETE FROM keystore_entries
		WHERE client_id = $1 AND primary_key = $2 AND secondary_key = $3 AND active
		RETURNING ` + entryColumns + `
	`
	return scanEntry(r.db.QueryRow(ctx, query, clientID, primaryKey, secondaryKey))
}

func (r *KeystoreRepo) Create(ctx context.Context, clientID, primaryKey, secondaryKey string) (*keystore.Entry, error) {
	entry := &keystore.Entry{
		ID:           uuid.NewString(),
		ClientID:     clientID,
		PrimaryKey:   primaryKey,
		SecondaryKey: secondaryKey,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	query := `
		INSERT INTO keystore_entries (id, client_id, primary_key, secondary_key, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		entry.ID, entry.ClientID, entry.PrimaryKey, entry.SecondaryKey, entry.Active, entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting keystore entry: %w", err)
	}
	return entry, nil
}

func (r *KeystoreRepo) Remove(ctx context.Context, entryID string) error {
	// Deleting an absent entry is not an error.
	if _, err := r.db.Exec(ctx, `DELETE FROM keystore_entries WHERE id = $1`, entryID); err != nil {
		return fmt.Errorf("deleting keystore entry: %w", err)
	}
	return nil
}

func (r *KeystoreRepo) RemoveAllForClient(ctx context.Context, clientID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM keystore_entries WHERE client_id = $1`, clientID); err != nil {
		return fmt.Errorf("deleting keystore entries: %w", err)
	}
	return nil
}
