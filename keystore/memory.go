package keystore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/keplerhq/authvault/internal"
)

// Memory is an in-process Store used by embedded deployments and tests.
// All operations run under one mutex, which also makes TakeByPair a single
// atomic find-and-delete.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*Entry)}
}

func (m *Memory) Find(ctx context.Context, clientID, primaryKey string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range m.entries {
		if entry.Active && entry.ClientID == clientID &&
			internal.SecretsEqual(entry.PrimaryKey, primaryKey) {
			copied := *entry
			return &copied, nil
		}
	}
	return nil, ErrEntryNotFound
}

func (m *Memory) FindByPair(ctx context.Context, clientID, primaryKey, secondaryKey string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.matchPair(clientID, primaryKey, secondaryKey)
	if entry == nil {
		return nil, ErrEntryNotFound
	}
	copied := *entry
	return &copied, nil
}

func (m *Memory) TakeByPair(ctx context.Context, clientID, primaryKey, secondaryKey string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.matchPair(clientID, primaryKey, secondaryKey)
	if entry == nil {
		return nil, ErrEntryNotFound
	}
	delete(m.entries, entry.ID)
	copied := *entry
	return &copied, nil
}

func (m *Memory) matchPair(clientID, primaryKey, secondaryKey string) *Entry {
	for _, entry := range m.entries {
		if entry.Active &&
			entry.ClientID == clientID &&
			internal.SecretsEqual(entry.PrimaryKey, primaryKey) &&
			internal.SecretsEqual(entry.SecondaryKey, secondaryKey) {
			return entry
		}
	}
	return nil
}

func (m *Memory) Create(ctx context.Context, clientID, primaryKey, secondaryKey string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := &Entry{
		ID:           uuid.NewString(),
		ClientID:     clientID,
		PrimaryKey:   primaryKey,
		SecondaryKey: secondaryKey,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	m.entries[entry.ID] = entry
	copied := *entry
	return &copied, nil
}

func (m *Memory) Remove(ctx context.Context, entryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, entryID)
	return nil
}

func (m *Memory) RemoveAllForClient(ctx context.Context, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, entry := range m.entries {
		if entry.ClientID == clientID {
			delete(m.entries, id)
		}
	}
	return nil
}

// Len reports the number of live entries. Test helper.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
