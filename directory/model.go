// Package directory is the read/write path for user identity records. It
// uses the cache as a read-through accelerator, the persistence stores as
// source of truth, and the keystore for the initial session entry minted
// alongside account writes.
package directory

import (
	"context"
	"errors"
	"time"
)

// Role is immutable reference data looked up by code.
type Role struct {
	ID     string
	Code   string
	Active bool
}

// User is the identity record. PasswordHash never leaves this package
// except through the full record; profile views strip it.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Roles        []Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleCodes returns the codes of the user's active roles, in role order.
func (u *User) RoleCodes() []string {
	codes := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		if r.Active {
			codes = append(codes, r.Code)
		}
	}
	return codes
}

// PublicProfileView is the field set exposed to anyone.
type PublicProfileView struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// PrivateProfileView is the field set exposed to the account owner. It
// adds the email but still excludes credential material.
type PrivateProfileView struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// PublicProfile shapes a user record for public exposure. Views are
// constructed field by field, never by deleting disallowed keys.
func PublicProfile(u *User) PublicProfileView {
	return PublicProfileView{ID: u.ID, Name: u.Name, Roles: u.RoleCodes()}
}

// PrivateProfile shapes a user record for the account owner.
func PrivateProfile(u *User) PrivateProfileView {
	return PrivateProfileView{ID: u.ID, Name: u.Name, Email: u.Email, Roles: u.RoleCodes()}
}

// Store sentinels.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrRoleNotFound   = errors.New("role not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserStore is the persistence contract for user records. Lookups return
// role-expanded records and ErrUserNotFound on absence.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Insert(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}

// RoleStore resolves immutable role reference data by code.
type RoleStore interface {
	FindByCode(ctx context.Context, code string) (*Role, error)
}
