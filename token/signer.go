// Package token signs and verifies the access/refresh token pair wire
// format: RSA-SHA256 signed JWTs carrying the standard iss/aud/sub/iat/exp
// claims plus a custom prm claim holding the session secret.
package token

import (
	"crypto/rsa"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired is returned by Verify when the exp claim has passed.
	// Every other verification failure maps to ErrInvalid.
	ErrExpired = errors.New("token expired")
	// ErrInvalid is returned for malformed tokens, bad signatures, and
	// unexpected signing algorithms.
	ErrInvalid = errors.New("invalid token")
)

// Config carries the signing key material and claim configuration. Key
// material may be given inline as PEM bytes or as file paths; inline bytes
// win when both are set.
type Config struct {
	Issuer   string
	Audience string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	PrivateKeyPEM []byte
	PublicKeyPEM  []byte

	PrivateKeyPath string
	PublicKeyPath  string
}

// Claims is the signed token payload. Prm carries the session secret that
// binds the token to one live keystore entry.
type Claims struct {
	Prm string `json:"prm"`
	jwt.RegisteredClaims
}

// Signer holds the parsed RSA key pair. Keys are loaded once at
// construction; a load or parse failure is fatal there, never per call.
// A Signer is immutable and safe for concurrent use.
type Signer struct {
	config  Config
	private *rsa.PrivateKey
	public  *rsa.PublicKey
	now     func() time.Time
}

// NewSigner loads and parses the key pair and returns an immutable Signer.
func NewSigner(cfg Config) (*Signer, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("issuer and audience are required")
	}

	privatePEM, err := keyMaterial(cfg.PrivateKeyPEM, cfg.PrivateKeyPath)
	if err != nil {
		return nil, err
	}
	publicPEM, err := keyMaterial(cfg.PublicKeyPEM, cfg.PublicKeyPath)
	if err != nil {
		return nil, err
	}

	private, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, errors.New("invalid rsa private key")
	}
	public, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, errors.New("invalid rsa public key")
	}

	return &Signer{
		config:  cfg,
		private: private,
		public:  public,
		now:     time.Now,
	}, nil
}

func keyMaterial(pem []byte, path string) ([]byte, error) {
	if len(pem) > 0 {
		return pem, nil
	}
	if path == "" {
		return nil, errors.New("missing key material")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// SignAccess issues a short-lived access token for subject carrying the
// entry's primary key in prm.
func (s *Signer) SignAccess(subject, secret string) (string, error) {
	return s.sign(subject, secret, s.config.AccessTTL)
}

// SignRefresh issues a long-lived refresh token for subject carrying the
// entry's secondary key in prm.
func (s *Signer) SignRefresh(subject, secret string) (string, error) {
	return s.sign(subject, secret, s.config.RefreshTTL)
}

func (s *Signer) sign(subject, secret string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Prm: secret,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Audience:  jwt.ClaimStrings{s.config.Audience},
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.private)
}

// Verify checks the signature and expiry and returns the claims.
// Issuer/audience/subject shape is deliberately left to the caller so the
// same parse path serves both validate and refresh flows; see the flows
// package.
func (s *Signer) Verify(tokenStr string) (*Claims, error) {
	return s.parse(tokenStr, false)
}

// DecodeExpired checks the signature but not the expiry. It exists only
// for the refresh flow, which inspects an access token that is expected to
// be past its exp.
func (s *Signer) DecodeExpired(tokenStr string) (*Claims, error) {
	return s.parse(tokenStr, true)
}

func (s *Signer) parse(tokenStr string, ignoreExpiry bool) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
	}
	if ignoreExpiry {
		options = append(options, jwt.WithoutClaimsValidation())
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.public, nil
	})
	if err != nil {
		if !ignoreExpiry && errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}
