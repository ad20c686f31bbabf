package fantasy11

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/fantasy11/internal/logging"
	"github.com/MrEthical07/fantasy11/session"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerRequestID     = "X-Request-ID"
	contentTypeJSON     = "application/json"

	maxResponseBytes = 8 << 20
)

type pinnedTokenKey struct{}

// withPinnedToken makes requests on ctx carry token instead of whatever the store
// holds when they are sent.
func withPinnedToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, pinnedTokenKey{}, token)
}

type errorBody struct {
	Error string `json:"error"`
}

// Request sends one JSON request to the backend and decodes the JSON response into out.
//
// The path is appended to the configured base URL. body, when non-nil, is encoded as
// JSON. The stored session token, when present, is sent as a bearer token. Every
// failure is returned as an [*Error]; a non-2xx response uses the body's "error" field
// as the message, or [FallbackErrorMessage] when it has none. out may be nil, in which
// case the response must still be valid JSON.
func (c *Client) Request(ctx context.Context, method, path string, body, out any) error {
	return c.call(ctx, "request", method, path, body, out)
}

func (c *Client) call(ctx context.Context, op, method, path string, body, out any) error {
	if c == nil || c.httpClient == nil {
		return ErrClientNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx = logging.WithRequestID(ctx, uuid.NewString())

	start := time.Now()
	err := c.roundTrip(ctx, op, method, path, body, out)
	c.metrics.Observe(MetricRequestLatency, time.Since(start))

	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) {
			c.metrics.Inc(metricForKind(apiErr.Kind))
		}
		c.log.WarnContext(ctx, "api request failed",
			"op", op,
			"method", method,
			"path", path,
			"kind", KindOf(err).String(),
			"status", StatusCode(err),
			"err", err,
		)
		return err
	}

	c.metrics.Inc(MetricRequestSuccess)
	c.log.DebugContext(ctx, "api request", "op", op, "method", method, "path", path, "elapsed", time.Since(start))
	return nil
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, body, out any) error {
	token, pinned := ctx.Value(pinnedTokenKey{}).(string)
	if !pinned {
		var err error
		token, err = c.store.LoadToken(ctx)
		switch {
		case err == nil:
		case errors.Is(err, session.ErrNoSession):
			token = ""
		default:
			return &Error{Op: op, Kind: KindSession, Message: "Session unavailable", Err: err}
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Kind: KindValidation, Message: "Invalid request body", Err: err}
		}
		reader = bytes.NewReader(data)
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Op: op, Kind: KindValidation, Message: "Invalid request", Err: err}
	}

	req.Header.Set(headerContentType, contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	if ua := c.config.HTTP.UserAgent; ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	if id, ok := logging.RequestIDFromContext(ctx); ok {
		req.Header.Set(headerRequestID, id)
	}
	if token != "" {
		req.Header.Set(headerAuthorization, "Bearer "+token)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &Error{Op: op, Kind: KindNetwork, Message: err.Error(), Err: err}
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: op, Kind: KindNetwork, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	// One byte past the cap tells an oversized body apart from one that fits exactly.
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return &Error{Op: op, Kind: KindNetwork, Status: resp.StatusCode, Message: err.Error(), Err: err}
	}
	oversized := len(data) > maxResponseBytes
	if oversized {
		data = data[:maxResponseBytes]
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{
			Op:      op,
			Kind:    kindForStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: FallbackErrorMessage,
		}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
		}
		if apiErr.Kind == KindUnauthorized && token != "" && c.config.Session.ClearOnUnauthorized {
			c.forceLogout(ctx, token, apiErr)
		}
		return apiErr
	}

	if oversized {
		return &Error{
			Op:      op,
			Kind:    KindProtocol,
			Status:  resp.StatusCode,
			Message: "Response too large",
			Err:     ErrResponseTooLarge,
		}
	}

	if out == nil {
		if !json.Valid(data) {
			return &Error{
				Op:      op,
				Kind:    KindProtocol,
				Status:  resp.StatusCode,
				Message: "Malformed response from server",
			}
		}
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &Error{
			Op:      op,
			Kind:    KindProtocol,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("Malformed response from server: %v", err),
			Err:     err,
		}
	}

	return nil
}

// forceLogout clears the store only if it still holds the token that was rejected, so
// a login that completed meanwhile survives. The compare and the delete are one step.
func (c *Client) forceLogout(ctx context.Context, rejected string, cause error) {
	var userID string
	if sess, err := c.store.Load(ctx); err == nil && sess.Token == rejected {
		userID = sess.User.ID
	}

	cleared, err := c.store.ClearSessionIf(ctx, rejected)
	if err != nil {
		c.log.WarnContext(ctx, "forced logout failed", "err", err)
		c.emitAudit(ctx, AuditForcedLogout, false, userID, err, nil)
		return
	}
	if !cleared {
		c.log.DebugContext(ctx, "session changed before forced logout, keeping it")
		return
	}

	c.metrics.Inc(MetricForcedLogout)
	c.log.InfoContext(ctx, "session cleared after unauthorized response")
	c.emitAudit(ctx, AuditForcedLogout, true, userID, nil, map[string]string{"cause": cause.Error()})
}
