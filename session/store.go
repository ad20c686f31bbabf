package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/fantasy11/internal/logging"
)

// ErrNoSession is returned by [Store.Load] when nothing is stored.
var ErrNoSession = errors.New("no session")

// ErrSessionCorrupt is returned when the stored pair cannot be decoded or only half of it exists.
var ErrSessionCorrupt = errors.New("session corrupt")

// ErrStorageUnavailable wraps backend failures.
var ErrStorageUnavailable = errors.New("session storage unavailable")

// ErrEmptyToken is returned by [Store.SetSession] for a blank token.
var ErrEmptyToken = errors.New("empty session token")

// ErrSessionSuperseded is returned by [Store.UpdateUserIf] when the stored token is no
// longer the one the caller expected.
var ErrSessionSuperseded = errors.New("session superseded")

// Store owns the durable token and user pair for one client profile.
//
// The outward getters (IsAuthenticated, CurrentUser, Token) never return errors;
// Load and LoadToken expose the distinct failure kinds for callers that need them.
type Store struct {
	backend   Backend
	available bool
	log       logging.Logger
}

// NewStore creates a Store over backend. The availability check happens here, once:
// a nil or unavailable backend yields a store whose reads report no session and
// whose writes do nothing.
func NewStore(backend Backend) *Store {
	s := &Store{
		backend: backend,
		log:     logging.GetLogger("session.store"),
	}
	s.available = backend != nil && backend.Available()
	if !s.available {
		s.log.Debug("persistent storage unavailable, session store disabled")
	}
	return s
}

// Available reports whether the store is backed by persistent storage.
func (s *Store) Available() bool {
	return s != nil && s.available
}

// Load reads both keys in one backend round trip.
func (s *Store) Load(ctx context.Context) (Session, error) {
	if !s.Available() {
		return Session{}, ErrNoSession
	}

	vals, err := s.backend.GetAll(ctx, KeyToken, KeyUser)
	if err != nil {
		return Session{}, wrapStorage(err)
	}

	token, hasToken := vals[KeyToken]
	raw, hasUser := vals[KeyUser]
	hasToken = hasToken && token != ""

	switch {
	case !hasToken && !hasUser:
		return Session{}, ErrNoSession
	case !hasToken || !hasUser:
		return Session{}, fmt.Errorf("%w: token present=%t user present=%t", ErrSessionCorrupt, hasToken, hasUser)
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrSessionCorrupt, err)
	}

	return Session{Token: token, User: user}, nil
}

// LoadToken reads only the token. Absence is [ErrNoSession].
func (s *Store) LoadToken(ctx context.Context) (string, error) {
	if !s.Available() {
		return "", ErrNoSession
	}

	vals, err := s.backend.GetAll(ctx, KeyToken)
	if err != nil {
		return "", wrapStorage(err)
	}

	token := vals[KeyToken]
	if token == "" {
		return "", ErrNoSession
	}
	return token, nil
}

// IsAuthenticated reports whether a token is stored.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.Token(ctx)
	return ok
}

// Token returns the stored token, if any.
func (s *Store) Token(ctx context.Context) (string, bool) {
	token, err := s.LoadToken(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			s.log.WarnContext(ctx, "read session token failed", "err", err)
		}
		return "", false
	}
	return token, true
}

// CurrentUser returns the stored user snapshot. Missing or undecodable data reads as absent.
func (s *Store) CurrentUser(ctx context.Context) (User, bool) {
	sess, err := s.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrSessionCorrupt) {
			s.log.WarnContext(ctx, "stored session is corrupt, treating as logged out", "err", err)
		} else if !errors.Is(err, ErrNoSession) {
			s.log.WarnContext(ctx, "read session failed", "err", err)
		}
		return User{}, false
	}
	return sess.User, true
}

// SetSession persists token and user together.
func (s *Store) SetSession(ctx context.Context, token string, user User) error {
	if strings.TrimSpace(token) == "" {
		return ErrEmptyToken
	}
	if !s.Available() {
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	if err := s.backend.SetAll(ctx, map[string]string{
		KeyToken: token,
		KeyUser:  string(data),
	}); err != nil {
		return wrapStorage(err)
	}
	return nil
}

// UpdateUser replaces the user snapshot while keeping the stored token. It fails with
// [ErrNoSession] when nobody is logged in.
func (s *Store) UpdateUser(ctx context.Context, user User) error {
	if !s.Available() {
		return nil
	}

	token, err := s.LoadToken(ctx)
	if err != nil {
		return err
	}
	return s.UpdateUserIf(ctx, token, user)
}

// UpdateUserIf replaces the user snapshot only while the stored token is still
// expectedToken. Otherwise it returns [ErrNoSession] when nothing is stored, or
// [ErrSessionSuperseded] when another login replaced the session.
func (s *Store) UpdateUserIf(ctx context.Context, expectedToken string, user User) error {
	if strings.TrimSpace(expectedToken) == "" {
		return ErrEmptyToken
	}
	if !s.Available() {
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	applied, err := s.backend.SetAllIf(ctx, KeyToken, expectedToken, map[string]string{
		KeyUser: string(data),
	})
	if err != nil {
		return wrapStorage(err)
	}
	if !applied {
		return s.missedGuard(ctx)
	}
	return nil
}

// ClearSessionIf removes both keys only while the stored token is still expectedToken.
// It reports whether anything was cleared.
func (s *Store) ClearSessionIf(ctx context.Context, expectedToken string) (bool, error) {
	if !s.Available() || expectedToken == "" {
		return false, nil
	}

	cleared, err := s.backend.DeleteAllIf(ctx, KeyToken, expectedToken, KeyToken, KeyUser)
	if err != nil {
		return false, wrapStorage(err)
	}
	return cleared, nil
}

func (s *Store) missedGuard(ctx context.Context) error {
	if _, err := s.LoadToken(ctx); errors.Is(err, ErrNoSession) {
		return ErrNoSession
	}
	return ErrSessionSuperseded
}

// ClearSession removes both keys. Clearing an empty store is not an error.
func (s *Store) ClearSession(ctx context.Context) error {
	if !s.Available() {
		return nil
	}

	if err := s.backend.DeleteAll(ctx, KeyToken, KeyUser); err != nil {
		return wrapStorage(err)
	}
	return nil
}

func wrapStorage(err error) error {
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}
