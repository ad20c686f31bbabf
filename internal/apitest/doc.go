// Package apitest runs an in-process Fantasy 11 backend for tests and the CLI demo mode.
//
// The routes, status codes and error strings follow the production backend: JWT bearer
// auth, bcrypt-hashed passwords, league filtering and sorting, and a wallet ledger.
// State lives in memory and is lost when the [Backend] is dropped. Every request is
// recorded so tests can assert on paths, query strings and headers, and one-shot
// responses can be injected with [Backend.Inject].
package apitest
