package authvault

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindHTTPStatus(t *testing.T) {
	cases := map[ErrorKind]int{
		KindAuthFailure:    http.StatusUnauthorized,
		KindTokenExpired:   http.StatusUnauthorized,
		KindBadToken:       http.StatusUnauthorized,
		KindRoleNotFound:   http.StatusInternalServerError,
		KindKeyUnavailable: http.StatusInternalServerError,
		KindNotFound:       http.StatusNotFound,
		KindForbidden:      http.StatusForbidden,
		KindBadRequest:     http.StatusBadRequest,
		KindInternal:       http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := kind.HTTPStatus(); got != want {
			t.Fatalf("%s: want %d, got %d", kind, want, got)
		}
	}
	if got := ErrorKind(999).HTTPStatus(); got != http.StatusInternalServerError {
		t.Fatalf("unknown kind must map to 500, got %d", got)
	}
}

func TestTemplateMatching(t *testing.T) {
	err := E(KindAuthFailure, "token matched no live session")
	if !errors.Is(err, ErrAuthFailure) {
		t.Fatal("same-kind errors must match")
	}
	if errors.Is(err, ErrBadRequest) {
		t.Fatal("different kinds must not match")
	}

	wrapped := fmt.Errorf("handler: %w", err)
	if !errors.Is(wrapped, ErrAuthFailure) {
		t.Fatal("matching must survive wrapping")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindInternal, "revoking session", cause)

	if !errors.Is(err, cause) {
		t.Fatal("cause must be reachable through Unwrap")
	}
	if KindOf(err) != KindInternal {
		t.Fatalf("unexpected kind: %v", KindOf(err))
	}
}

func TestKindOfForeignError(t *testing.T) {
	if KindOf(errors.New("plain")) != KindInternal {
		t.Fatal("foreign errors classify as internal")
	}
}

func TestMetricNames(t *testing.T) {
	for _, id := range MetricIDs() {
		if id.String() == "" || id.String() == "unknown" {
			t.Fatalf("metric %d has no name", id)
		}
	}
	if MetricID(9999).String() != "unknown" {
		t.Fatal("out-of-range id must report unknown")
	}
}
