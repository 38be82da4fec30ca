package internal

import (
	"strings"
	"testing"
)

func TestNewSecretPair(t *testing.T) {
	primary, secondary, err := NewSecretPair()
	if err != nil {
		t.Fatalf("pair generation failed: %v", err)
	}
	if primary == secondary {
		t.Fatal("pair members must differ")
	}
	if !ValidSecret(primary) || !ValidSecret(secondary) {
		t.Fatal("generated secrets must be well formed")
	}
}

func TestValidSecret(t *testing.T) {
	good := strings.Repeat("0f", 64)
	if !ValidSecret(good) {
		t.Fatal("well-formed secret rejected")
	}
	for _, s := range []string{"", "0f", strings.Repeat("0f", 63), strings.Repeat("zz", 64)} {
		if ValidSecret(s) {
			t.Fatalf("malformed secret %q accepted", s)
		}
	}
}

func TestSecretsEqual(t *testing.T) {
	a := strings.Repeat("ab", 64)
	if !SecretsEqual(a, a) {
		t.Fatal("equal secrets must compare equal")
	}
	if SecretsEqual(a, strings.Repeat("cd", 64)) {
		t.Fatal("distinct secrets must compare unequal")
	}
	if SecretsEqual(a, a[:64]) {
		t.Fatal("length mismatch must compare unequal")
	}
}
