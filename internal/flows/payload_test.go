package flows

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/keplerhq/authvault/token"
)

func claimsFixture() *token.Claims {
	return &token.Claims{
		Prm: strings.Repeat("ab", 64),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   "issuer",
			Audience: jwt.ClaimStrings{"audience"},
			Subject:  "client-1",
		},
	}
}

func TestValidPayload(t *testing.T) {
	if !ValidPayload(claimsFixture(), "issuer", "audience") {
		t.Fatal("well-formed claims rejected")
	}

	mutations := map[string]func(*token.Claims){
		"wrong issuer":    func(c *token.Claims) { c.Issuer = "other" },
		"wrong audience":  func(c *token.Claims) { c.Audience = jwt.ClaimStrings{"other"} },
		"empty audience":  func(c *token.Claims) { c.Audience = nil },
		"missing subject": func(c *token.Claims) { c.Subject = "" },
		"missing secret":  func(c *token.Claims) { c.Prm = "" },
		"garbage secret":  func(c *token.Claims) { c.Prm = "not-a-hex-secret" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			claims := claimsFixture()
			mutate(claims)
			if ValidPayload(claims, "issuer", "audience") {
				t.Fatal("malformed claims accepted")
			}
		})
	}

	if ValidPayload(nil, "issuer", "audience") {
		t.Fatal("nil claims accepted")
	}
}
