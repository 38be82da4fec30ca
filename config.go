package authvault

import (
	"errors"
	"time"
)

// Config carries every tunable of the engine. Populate it once, hand it to
// the [Builder], and treat it as immutable afterwards.
type Config struct {
	Token    TokenConfig
	Cache    CacheConfig
	Account  AccountConfig
	Password PasswordConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig configures the signer: claim identity, validity windows, and
// the RSA key pair as PEM bytes or file paths.
type TokenConfig struct {
	Issuer   string
	Audience string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	PrivateKeyPEM []byte
	PublicKeyPEM  []byte

	PrivateKeyPath string
	PublicKeyPath  string
}

/*
====================================
CACHE CONFIG
====================================
*/

// CacheConfig configures the user snapshot cache.
type CacheConfig struct {
	Prefix string
	TTL    time.Duration
}

/*
====================================
ACCOUNT CONFIG
====================================
*/

// AccountConfig configures signup behavior.
type AccountConfig struct {
	// DefaultRole is the role code resolved on signup. Signup fails with
	// a role-not-found error when it is absent or inactive.
	DefaultRole string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig configures the credential hasher.
type PasswordConfig struct {
	// BcryptCost of zero selects the bcrypt default.
	BcryptCost int
}

// DefaultConfig returns the engine defaults. Key material and claim
// identity must still be filled in before Build.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		Cache: CacheConfig{
			Prefix: "av",
			TTL:    10 * time.Minute,
		},
		Account: AccountConfig{
			DefaultRole: "user",
		},
	}
}

func (c Config) validate() error {
	if c.Token.Issuer == "" || c.Token.Audience == "" {
		return errors.New("token issuer and audience are required")
	}
	if c.Token.AccessTTL <= 0 || c.Token.RefreshTTL <= 0 {
		return errors.New("token validity windows must be positive")
	}
	if c.Cache.TTL <= 0 {
		return errors.New("cache TTL must be positive")
	}
	if c.Account.DefaultRole == "" {
		return errors.New("default role is required")
	}
	return nil
}
