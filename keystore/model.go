// Package keystore stores the per-session secret pairs that back issued
// token pairs. One live entry corresponds to exactly one outstanding
// (access, refresh) pair; deleting the entry revokes both tokens no matter
// how far their exp claims are.
package keystore

import "time"

// Entry links a client (the owning user) to one session's secret pair.
// PrimaryKey authorizes the access token, SecondaryKey the refresh token.
// Entries are never mutated: they are created on issue and deleted on
// logout, revocation, or rotation.
type Entry struct {
	ID           string
	ClientID     string
	PrimaryKey   string
	SecondaryKey string
	Active       bool
	CreatedAt    time.Time
}
