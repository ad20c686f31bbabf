package session

import "time"

// User is the snapshot of the authenticated identity kept alongside the token.
//
// Wallet is the balance at the time the snapshot was written; it is not refreshed
// unless a caller persists a newer snapshot.
type User struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Wallet float64 `json:"wallet"`
	Mobile string  `json:"mobile,omitempty"`
}

// Session is the token and user pair as read from a [Store].
type Session struct {
	Token string
	User  User
}

// Claims returns the unverified claims carried by the session token.
func (s Session) Claims() (TokenInfo, bool) {
	return TokenClaims(s.Token)
}

// Expired reports whether the token carries an expiry that is not after now.
// Opaque tokens without an expiry never expire from the client's point of view.
func (s Session) Expired(now time.Time) bool {
	info, ok := s.Claims()
	if !ok || info.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(info.ExpiresAt)
}
