// Package flows holds the token lifecycle protocol logic, free of root
// package dependencies. Each flow takes a Deps struct and classifies its
// outcome with a FailureKind enum; the root package maps kinds onto the
// public error taxonomy.
package flows

import (
	"strings"

	"github.com/keplerhq/authvault/internal"
	"github.com/keplerhq/authvault/token"
)

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(header, bearer) {
		return "", false
	}
	tok := header[len(bearer):]
	if tok == "" {
		return "", false
	}
	return tok, true
}

// ValidPayload reports whether the claims carry the full expected shape:
// issuer, audience, subject, and a well-formed session secret, with issuer
// and audience matching configuration. Garbage prm claims are rejected
// here so they never reach the store. Signature and expiry are the
// Signer's job; this is the layer above it.
func ValidPayload(claims *token.Claims, issuer, audience string) bool {
	if claims == nil {
		return false
	}
	if claims.Issuer != issuer || claims.Subject == "" || !internal.ValidSecret(claims.Prm) {
		return false
	}
	for _, aud := range claims.Audience {
		if aud == audience {
			return true
		}
	}
	return false
}
