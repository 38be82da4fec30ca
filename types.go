package authvault

import (
	"github.com/keplerhq/authvault/directory"
	"github.com/keplerhq/authvault/keystore"
)

// TokenPair is one issued (access, refresh) pair, bound to exactly one
// live keystore entry.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult is returned by [Service.Validate]: the authenticated user and
// the live keystore entry that authorized the access token. Hosts pass it
// back to [Service.Logout] to revoke exactly the session that made the
// request.
type AuthResult struct {
	User  *directory.User
	Entry *keystore.Entry
}

// SignupRequest is the input to [Service.Signup]. Schema-level validation
// (formats, lengths) is the host's job; the engine checks only what it
// depends on.
type SignupRequest struct {
	Name     string
	Email    string
	Password string
}

// SignupResult carries the created account's owner view and its first
// token pair.
type SignupResult struct {
	User   directory.PrivateProfileView
	Tokens TokenPair
}

// LoginResult carries the authenticated account's owner view and a fresh
// token pair for a new independent session.
type LoginResult struct {
	User   directory.PrivateProfileView
	Tokens TokenPair
}
