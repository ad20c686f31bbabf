package fantasy11

import (
	"context"
	"net/http"
)

// Login authenticates by email or mobile. The caller decides whether to persist the
// result, usually through [Client.PersistAuth].
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := req.validate(); err != nil {
		c.rejectLocally(err)
		return nil, err
	}

	var resp AuthResponse
	if err := c.call(ctx, "login", http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns the same payload as [Client.Login].
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := req.validate(); err != nil {
		c.rejectLocally(err)
		return nil, err
	}

	var resp AuthResponse
	if err := c.call(ctx, "register", http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyToken asks the backend whether the stored token is still accepted.
func (c *Client) VerifyToken(ctx context.Context) (*VerifyResponse, error) {
	var resp VerifyResponse
	if err := c.call(ctx, "verify_token", http.MethodPost, "/auth/verify", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetProfile(ctx context.Context) (*UserProfile, error) {
	var resp profileResponse
	if err := c.call(ctx, "get_profile", http.MethodGet, "/users/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// UpdateProfile sends only the fields set in update.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*MessageResponse, error) {
	if err := update.validate(); err != nil {
		c.rejectLocally(err)
		return nil, err
	}

	var resp MessageResponse
	if err := c.call(ctx, "update_profile", http.MethodPut, "/users/profile", update, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// rejectLocally counts an argument error that never reached the network.
func (c *Client) rejectLocally(err error) {
	if c == nil {
		return
	}
	c.metrics.Inc(metricForKind(KindOf(err)))
}
