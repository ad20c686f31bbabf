package fantasy11

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/MrEthical07/fantasy11/session"
)

// Client talks to the Fantasy 11 backend.
//
// A Client reads the bearer token from its session store but never writes it, except
// through [Client.PersistAuth], [Client.Logout], [Client.RefreshUser] and the opt-in
// clear on 401. Clients are safe for concurrent use.
type Client struct {
	config     Config
	baseURL    string
	httpClient *http.Client
	store      *session.Store
	limiter    *rate.Limiter
	metrics    *Metrics
	audit      *auditDispatcher
	log        *slog.Logger
}

// Close flushes pending audit events. Safe to call on a nil client.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.audit != nil {
		c.audit.Close()
	}
}

// FlushAudit waits until every audit event emitted so far has reached the sink.
// It returns ctx's error when the sink does not keep up.
func (c *Client) FlushAudit(ctx context.Context) error {
	if c == nil || c.audit == nil {
		return nil
	}
	return c.audit.Flush(ctx)
}

func (c *Client) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

// Metrics exposes the live counters for exporters.
func (c *Client) Metrics() *Metrics {
	if c == nil {
		return nil
	}
	return c.metrics
}

func (c *Client) SessionStore() *session.Store {
	if c == nil {
		return nil
	}
	return c.store
}

func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// PersistAuth writes the token and user from a login or registration response into the
// session store.
func (c *Client) PersistAuth(ctx context.Context, resp *AuthResponse) error {
	if c == nil {
		return ErrClientNotReady
	}
	token, user, ok := SessionFromAuth(resp)
	if !ok {
		err := &Error{Op: "persist_auth", Kind: KindProtocol, Message: "Login response has no token or user"}
		c.emitAudit(ctx, AuditSessionCreated, false, "", err, nil)
		return err
	}

	if err := c.store.SetSession(ctx, token, user); err != nil {
		c.emitAudit(ctx, AuditSessionCreated, false, user.ID, err, nil)
		return &Error{Op: "persist_auth", Kind: KindSession, Message: "Could not save session", Err: err}
	}

	c.metrics.Inc(MetricSessionCreated)
	c.emitAudit(ctx, AuditSessionCreated, true, user.ID, nil, nil)
	return nil
}

// Logout clears the stored session. The backend keeps no session state, so no request
// is sent.
func (c *Client) Logout(ctx context.Context) error {
	if c == nil {
		return ErrClientNotReady
	}
	user, _ := c.store.CurrentUser(ctx)
	if err := c.store.ClearSession(ctx); err != nil {
		c.emitAudit(ctx, AuditSessionCleared, false, user.ID, err, nil)
		return &Error{Op: "logout", Kind: KindSession, Message: "Could not clear session", Err: err}
	}

	c.metrics.Inc(MetricSessionCleared)
	c.emitAudit(ctx, AuditSessionCleared, true, user.ID, nil, nil)
	return nil
}

// RefreshUser fetches the profile and replaces the stored user snapshot, keeping the
// token. The profile is fetched with the token stored when the call starts and saved
// only if that token is still stored, so a logout or new login in the meantime wins.
func (c *Client) RefreshUser(ctx context.Context) (session.User, error) {
	if c == nil {
		return session.User{}, ErrClientNotReady
	}

	token, err := c.store.LoadToken(ctx)
	switch {
	case errors.Is(err, session.ErrNoSession):
		return session.User{}, &Error{Op: "refresh_user", Kind: KindUnauthorized, Message: "Not logged in", Err: err}
	case err != nil:
		return session.User{}, &Error{Op: "refresh_user", Kind: KindSession, Message: "Session unavailable", Err: err}
	}

	profile, err := c.GetProfile(withPinnedToken(ctx, token))
	if err != nil {
		return session.User{}, err
	}

	user := profile.SessionUser()
	if err := c.store.UpdateUserIf(ctx, token, user); err != nil {
		c.emitAudit(ctx, AuditSessionRefreshed, false, user.ID, err, nil)
		switch {
		case errors.Is(err, session.ErrNoSession):
			return session.User{}, &Error{Op: "refresh_user", Kind: KindUnauthorized, Message: "Not logged in", Err: err}
		case errors.Is(err, session.ErrSessionSuperseded):
			return session.User{}, &Error{Op: "refresh_user", Kind: KindSession, Message: "Session changed during refresh", Err: err}
		}
		return session.User{}, &Error{Op: "refresh_user", Kind: KindSession, Message: "Could not save session", Err: err}
	}

	c.emitAudit(ctx, AuditSessionRefreshed, true, user.ID, nil, nil)
	return user, nil
}
