// Package middleware provides a net/http guard over the engine. It stays
// router-agnostic: plain http.Handler wrapping, nothing else.
package middleware

import (
	"context"
	"net/http"

	authvault "github.com/keplerhq/authvault"
)

type authResultContextKey struct{}

// AuthResultFromContext returns the result Guard stored for the current
// request.
func AuthResultFromContext(ctx context.Context) (*authvault.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*authvault.AuthResult)
	return res, ok
}

// Guard validates the Authorization header on every request and injects
// the AuthResult into the request context. Failures are answered with the
// status the error kind maps to and never reach the wrapped handler.
func Guard(service *authvault.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if service == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			res, err := service.Validate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				kind := authvault.KindOf(err)
				http.Error(w, kind.String(), kind.HTTPStatus())
				return
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
