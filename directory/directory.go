package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/keplerhq/authvault/cache"
	"github.com/keplerhq/authvault/keystore"
)

// Directory reads and writes user records with a read-through cache. A
// snapshot is cached under both its id key and its email key; every
// mutation invalidates both before the write reports success, so stale
// reads are bounded by the TTL on read paths only.
type Directory struct {
	users UserStore
	roles RoleStore
	cache *cache.Cache
	keys  keystore.Store
	ttl   time.Duration
	log   *zap.Logger
}

// New wires a Directory. logger may be nil.
func New(users UserStore, roles RoleStore, c *cache.Cache, keys keystore.Store, ttl time.Duration, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{users: users, roles: roles, cache: c, keys: keys, ttl: ttl, log: logger}
}

func idKey(id string) string       { return "user:id:" + id }
func emailKey(email string) string { return "user:email:" + email }

// FindByID returns the role-expanded user or ErrUserNotFound. Misses are
// always rechecked against the source of truth; absence is never cached.
func (d *Directory) FindByID(ctx context.Context, id string) (*User, error) {
	var snapshot User
	if d.cache.GetJSON(ctx, idKey(id), &snapshot) {
		return &snapshot, nil
	}

	user, err := d.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.prime(ctx, user)
	return user, nil
}

// FindByEmail returns the role-expanded user or ErrUserNotFound.
func (d *Directory) FindByEmail(ctx context.Context, email string) (*User, error) {
	var snapshot User
	if d.cache.GetJSON(ctx, emailKey(email), &snapshot) {
		return &snapshot, nil
	}

	user, err := d.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	d.prime(ctx, user)
	return user, nil
}

// FindPrivateProfile reads the same source record as FindByID but returns
// the owner-facing view, which excludes credential material.
func (d *Directory) FindPrivateProfile(ctx context.Context, id string) (*PrivateProfileView, error) {
	user, err := d.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := PrivateProfile(user)
	return &view, nil
}

// Create resolves the role, persists the user, and mints the initial
// keystore entry for the given secret pair. If the keystore insert fails
// the user insert is compensated with a delete so no account exists
// without its initial session record.
func (d *Directory) Create(ctx context.Context, user *User, roleCode, primaryKey, secondaryKey string) (*User, *keystore.Entry, error) {
	role, err := d.roles.FindByCode(ctx, roleCode)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return nil, nil, ErrRoleNotFound
		}
		return nil, nil, err
	}
	if !role.Active {
		return nil, nil, ErrRoleNotFound
	}

	now := time.Now()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Roles = []Role{*role}
	user.Active = true
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := d.users.Insert(ctx, user); err != nil {
		return nil, nil, err
	}

	entry, err := d.keys.Create(ctx, user.ID, primaryKey, secondaryKey)
	if err != nil {
		if cleanupErr := d.users.Delete(ctx, user.ID); cleanupErr != nil {
			d.log.Warn("orphaned user cleanup failed",
				zap.String("user_id", user.ID), zap.Error(cleanupErr))
		}
		return nil, nil, fmt.Errorf("keystore create: %w", err)
	}

	d.prime(ctx, user)
	return user, entry, nil
}

// Update persists field changes, stamps the update time, mints a fresh
// keystore entry for the given secret pair, and invalidates both cache
// keys before returning.
func (d *Directory) Update(ctx context.Context, user *User, primaryKey, secondaryKey string) (*User, *keystore.Entry, error) {
	priorEmail := d.priorEmail(ctx, user)
	user.UpdatedAt = time.Now()
	if err := d.users.Update(ctx, user); err != nil {
		return nil, nil, err
	}

	entry, err := d.keys.Create(ctx, user.ID, primaryKey, secondaryKey)
	if err != nil {
		return nil, nil, fmt.Errorf("keystore create: %w", err)
	}

	if err := d.invalidate(ctx, user, priorEmail); err != nil {
		return nil, nil, err
	}
	return user, entry, nil
}

// UpdateInfo persists field changes without touching the keystore and
// invalidates both cache keys before returning.
func (d *Directory) UpdateInfo(ctx context.Context, user *User) error {
	priorEmail := d.priorEmail(ctx, user)
	user.UpdatedAt = time.Now()
	if err := d.users.Update(ctx, user); err != nil {
		return err
	}
	return d.invalidate(ctx, user, priorEmail)
}

// priorEmail reads the pre-mutation email from the source of truth so an
// email change also evicts the snapshot reachable under the old address.
func (d *Directory) priorEmail(ctx context.Context, user *User) string {
	prior, err := d.users.FindByID(ctx, user.ID)
	if err != nil || prior.Email == user.Email {
		return ""
	}
	return prior.Email
}

func (d *Directory) prime(ctx context.Context, user *User) {
	d.cache.SetJSON(ctx, idKey(user.ID), user, d.ttl)
	d.cache.SetJSON(ctx, emailKey(user.Email), user, d.ttl)
}

func (d *Directory) invalidate(ctx context.Context, user *User, priorEmail string) error {
	keys := []string{idKey(user.ID), emailKey(user.Email)}
	if priorEmail != "" {
		keys = append(keys, emailKey(priorEmail))
	}
	if err := d.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("cache invalidation: %w", err)
	}
	return nil
}
