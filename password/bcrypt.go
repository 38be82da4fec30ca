// Package password hashes and verifies user credentials. The engine
// treats it as an opaque collaborator that answers verified or not
// verified; nothing outside this package inspects hash structure.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordBytes = 8

// ErrPasswordTooShort is returned by Hash for passwords under 8 bytes.
var ErrPasswordTooShort = errors.New("password too short")

// Bcrypt wraps the bcrypt KDF with a fixed cost.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a hasher with the given cost. Zero selects the bcrypt
// default; out-of-range costs are rejected.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.New("invalid bcrypt cost")
	}
	return &Bcrypt{cost: cost}, nil
}

// Hash derives a storable hash from the plaintext password.
func (b *Bcrypt) Hash(plain string) (string, error) {
	if len(plain) < minPasswordBytes {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plain matches the stored hash. A mismatch is
// (false, nil); only malformed hashes produce an error.
func (b *Bcrypt) Verify(plain, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
