package internal

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
)

// secretRawSize is the entropy of one session secret in bytes. 64 bytes
// (512 bits) makes primary-key collisions between live entries for the
// same client negligible without any uniqueness enforcement in the store.
const secretRawSize = 64

// NewSecret returns a fresh hex-encoded 512-bit session secret. Failures
// are wrapped in ErrSecretGeneration so callers never expose the rand
// source error.
func NewSecret() (string, error) {
	var raw [secretRawSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSecretGeneration, err)
	}
	return hex.EncodeToString(raw[:]), nil
}

// NewSecretPair returns a fresh (primaryKey, secondaryKey) pair for one
// keystore entry.
func NewSecretPair() (string, string, error) {
	primary, err := NewSecret()
	if err != nil {
		return "", "", err
	}
	secondary, err := NewSecret()
	if err != nil {
		return "", "", err
	}
	return primary, secondary, nil
}

// ValidSecret reports whether s looks like a secret produced by NewSecret.
// Used to reject garbage prm claims before they reach the store.
func ValidSecret(s string) bool {
	if len(s) != secretRawSize*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// SecretsEqual compares two secrets in constant time.
func SecretsEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// ErrSecretGeneration marks a secret generation failure.
var ErrSecretGeneration = errors.New("secret generation failed")
