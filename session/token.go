package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo holds the claims the client can read from a token without the signing key.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

type tokenClaims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

var unverifiedParser = jwt.NewParser(jwt.WithoutClaimsValidation())

// TokenClaims parses token as a JWT without verifying its signature.
//
// The result is advisory only: it lets callers show "session expired" before a
// round trip, but the backend remains the authority on token validity. It returns
// false for tokens that are not JWTs.
func TokenClaims(token string) (TokenInfo, bool) {
	token = strings.TrimSpace(token)
	if token == "" || strings.Count(token, ".") != 2 {
		return TokenInfo{}, false
	}

	claims := &tokenClaims{}
	if _, _, err := unverifiedParser.ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, false
	}

	info := TokenInfo{Subject: claims.Subject}
	if info.Subject == "" {
		info.Subject = claims.UserID
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}

	return info, true
}
