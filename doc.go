// Package fantasy11 is a client for the Fantasy 11 contest backend: authentication,
// matches, leagues and the wallet.
//
// A [Client] is built once through [Builder.Build] and is safe to call from multiple
// goroutines. Every operation goes through [Client.Request], which attaches the bearer
// token held by a [session.Store], sends and receives JSON, and turns every failure into
// an [*Error] whose message is the backend's own "error" text when it has one.
//
// # Sessions
//
// The client reads the session store and never decides on its own that a login has
// ended. Callers persist a login with [Client.PersistAuth] and end it with
// [Client.Logout]. Clearing the session on HTTP 401 is available as an explicit opt-in
// through [SessionConfig.ClearOnUnauthorized].
//
// # Out-of-order responses
//
// Screens that re-query as a filter changes should load through [NewLatest], which
// cancels and discards superseded responses so the newest request always wins.
//
// # Architecture boundaries
//
// fantasy11 is the public surface. Storage of the token and user snapshot lives in
// session, response sequencing in view, and metric exposition under metrics/export.
//
// # What this package must NOT do
//
//   - Write the session store from an ordinary request.
//   - Retry requests on its own.
//   - Import any sub-package that re-imports fantasy11 (no import cycles).
package fantasy11
