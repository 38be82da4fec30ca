package directory

import (
	"context"
	"sync"
)

// MemoryUsers is an in-process UserStore for embedded deployments and
// tests. Records are stored role-expanded, mirroring what a SQL lookup
// would return.
type MemoryUsers struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string
}

// NewMemoryUsers returns an empty in-memory user store.
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
	}
}

func (m *MemoryUsers) FindByID(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.byID[id]
	if !ok || !user.Active {
		return nil, ErrUserNotFound
	}
	copied := user
	return &copied, nil
}

func (m *MemoryUsers) FindByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := m.byID[id]
	if !user.Active {
		return nil, ErrUserNotFound
	}
	copied := user
	return &copied, nil
}

func (m *MemoryUsers) Insert(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[user.Email]; exists {
		return ErrDuplicateEmail
	}
	m.byID[user.ID] = *user
	m.byEmail[user.Email] = user.ID
	return nil
}

func (m *MemoryUsers) Update(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prior, ok := m.byID[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	if prior.Email != user.Email {
		if _, exists := m.byEmail[user.Email]; exists {
			return ErrDuplicateEmail
		}
		delete(m.byEmail, prior.Email)
		m.byEmail[user.Email] = user.ID
	}
	m.byID[user.ID] = *user
	return nil
}

func (m *MemoryUsers) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.byID[id]; ok {
		delete(m.byEmail, user.Email)
		delete(m.byID, id)
	}
	return nil
}

// MemoryRoles is an in-process RoleStore seeded at construction. Roles
// are immutable reference data, so there is no write path.
type MemoryRoles struct {
	byCode map[string]Role
}

// NewMemoryRoles returns a role store holding the given roles.
func NewMemoryRoles(roles ...Role) *MemoryRoles {
	byCode := make(map[string]Role, len(roles))
	for _, role := range roles {
		byCode[role.Code] = role
	}
	return &MemoryRoles{byCode: byCode}
}

func (m *MemoryRoles) FindByCode(ctx context.Context, code string) (*Role, error) {
	role, ok := m.byCode[code]
	if !ok {
		return nil, ErrRoleNotFound
	}
	copied := role
	return &copied, nil
}
