package fantasy11

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/MrEthical07/fantasy11/internal/apitest"
	"github.com/MrEthical07/fantasy11/session"
)

type testEnv struct {
	backend *apitest.Backend
	server  *httptest.Server
	store   *session.Store
	client  *Client
}

func newTestEnv(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()

	backend := apitest.New()
	server := backend.Start()
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.HTTP.BaseURL = server.URL + apitest.BasePath
	cfg.Metrics.Enabled = true
	if mutate != nil {
		mutate(&cfg)
	}

	store := session.NewStore(session.NewMemoryBackend())
	client, err := New().WithConfig(cfg).WithSessionStore(store).Build()
	if err != nil {
		t.Fatalf("build client: %v", err)
	}
	t.Cleanup(client.Close)

	return &testEnv{backend: backend, server: server, store: store, client: client}
}

func newClientFor(t *testing.T, baseURL string, store *session.Store) *Client {
	t.Helper()

	cfg := DefaultConfig()
	cfg.HTTP.BaseURL = baseURL
	cfg.Metrics.Enabled = true

	client, err := New().WithConfig(cfg).WithSessionStore(store).Build()
	if err != nil {
		t.Fatalf("build client: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

// loginAs seeds a user, stores a valid token for it and returns the user id.
func (e *testEnv) loginAs(t *testing.T, wallet float64) string {
	t.Helper()

	id, err := e.backend.AddUser("Ann", "a@x.com", "9876543210", "secret1", wallet)
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	token, err := e.backend.IssueToken(id)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	u, _ := e.backend.User(id)
	if err := e.store.SetSession(context.Background(), token, session.User{ID: id, Name: u.Name, Email: u.Email, Wallet: u.WalletBalance}); err != nil {
		t.Fatalf("set session: %v", err)
	}
	return id
}

func (e *testEnv) lastRequest(t *testing.T) apitest.RecordedRequest {
	t.Helper()
	req, ok := e.backend.LastRequest()
	if !ok {
		t.Fatalf("backend received no request")
	}
	return req
}

type failingBackend struct{}

var errDiskGone = errors.New("disk gone")

func (failingBackend) Available() bool { return true }
func (failingBackend) GetAll(context.Context, ...string) (map[string]string, error) {
	return nil, errDiskGone
}
func (failingBackend) SetAll(context.Context, map[string]string) error { return errDiskGone }
func (failingBackend) DeleteAll(context.Context, ...string) error      { return errDiskGone }
func (failingBackend) SetAllIf(context.Context, string, string, map[string]string) (bool, error) {
	return false, errDiskGone
}
func (failingBackend) DeleteAllIf(context.Context, string, string, ...string) (bool, error) {
	return false, errDiskGone
}
