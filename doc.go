// Package authvault issues and validates session credentials for HTTP
// APIs: RSA-SHA256 signed access/refresh token pairs backed by per-session
// keystore records.
//
// Every issued pair is bound to exactly one live keystore entry. A token
// validates only while its entry exists, which gives the server true
// revocation: logout deletes the entry, refresh atomically replaces it
// (rotating both secrets), and a credential change deletes every entry for
// the user. Signature validity alone is never sufficient.
//
// The engine is embedded by a host application. Route wiring, request
// schema validation, and response envelopes stay on the host side; the
// host hands in a user store, a role store, a keystore, and a redis client
// through the [Builder] and calls [Service] operations from its handlers.
//
//	service, err := authvault.New().
//		WithConfig(cfg).
//		WithRedis(rdb).
//		WithUserStore(users).
//		WithRoleStore(roles).
//		WithKeystore(keys).
//		Build()
//
// See the middleware package for a net/http guard and the postgres
// package for pgx-backed stores.
package authvault
