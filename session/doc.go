// Package session provides the client-held login state: an opaque bearer token and a
// denormalized snapshot of the authenticated user, persisted in durable client-local
// key/value storage.
//
// # Storage layout
//
// Two keys are written per profile: [KeyToken] holds the token verbatim and [KeyUser]
// holds the JSON-encoded [User]. Both are written together and removed together; a
// [Backend] must apply [Backend.SetAll] and [Backend.DeleteAll] atomically.
//
// # Capability check
//
// [NewStore] asks the backend once whether persistent storage exists. A nil backend, or
// one whose Available method reports false, yields a store in unavailable mode where
// every read reports "no session" and every write is a no-op. Callers never need to
// guard individual calls.
//
// # Architecture boundaries
//
// This package owns persistence of the session pair. It does NOT issue HTTP requests,
// verify token signatures, or decide when a session should end. Those belong to the
// API client and its callers.
//
// # What this package must NOT do
//
//   - Import the fantasy11 root package (no upward imports).
//   - Surface a state where the token is present and the user snapshot was written by a
//     different SetSession call.
//   - Raise errors from the outward getters; corrupt data reads as "absent".
package session
