package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	fantasy11 "github.com/MrEthical07/fantasy11"
	"github.com/MrEthical07/fantasy11/internal/apitest"
	"github.com/MrEthical07/fantasy11/session"
)

func newDemoClient(t *testing.T) (*apitest.Backend, *fantasy11.Client, *bytes.Buffer) {
	t.Helper()

	backend := apitest.New()
	if _, err := backend.SeedDemo(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	srv := backend.Start()
	t.Cleanup(srv.Close)

	cfg := fantasy11.DefaultConfig()
	cfg.HTTP.BaseURL = srv.URL + apitest.BasePath
	cfg.Metrics.Enabled = true

	client, err := fantasy11.New().
		WithConfig(cfg).
		WithSessionStore(session.NewStore(session.NewMemoryBackend())).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(client.Close)

	var out bytes.Buffer
	prev := stdout
	stdout = &out
	t.Cleanup(func() { stdout = prev })

	return backend, client, &out
}

func runCommand(t *testing.T, c *fantasy11.Client, name string, args ...string) error {
	t.Helper()
	cmd, ok := commands[name]
	if !ok {
		t.Fatalf("no command %q", name)
	}
	return cmd.run(context.Background(), c, args)
}

func TestLoginPersistsAndWhoami(t *testing.T) {
	_, client, out := newDemoClient(t)

	if err := runCommand(t, client, "login", "-mobile", "9876543210", "-password", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out.String(), "Signed in as Demo Player (wallet ₹500.00)") {
		t.Fatalf("login output = %q", out.String())
	}

	out.Reset()
	if err := runCommand(t, client, "whoami"); err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out.String(), "Demo Player <demo@fantasy11.test>") || !strings.Contains(out.String(), "token valid until") {
		t.Fatalf("whoami output = %q", out.String())
	}

	out.Reset()
	if err := runCommand(t, client, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	out.Reset()
	if err := runCommand(t, client, "whoami"); err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if strings.TrimSpace(out.String()) != "Not signed in" {
		t.Fatalf("whoami after logout = %q", out.String())
	}
}

func TestJoinThenRefreshUpdatesWallet(t *testing.T) {
	backend, client, out := newDemoClient(t)
	leagueID := backend.AddLeague(apitest.League{Name: "Weekend", PrizePool: 1000, EntryFee: 49, MaxTeams: 10})

	if err := loginDemo(context.Background(), client); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := runCommand(t, client, "join", leagueID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := runCommand(t, client, "refresh"); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !strings.Contains(out.String(), "wallet=₹451.00") {
		t.Fatalf("output = %q", out.String())
	}

	user, ok := client.SessionStore().CurrentUser(context.Background())
	if !ok || user.Wallet != 451 {
		t.Fatalf("stored user = %+v (%v)", user, ok)
	}
}

func TestLeaguesListsSorted(t *testing.T) {
	_, client, out := newDemoClient(t)

	if err := runCommand(t, client, "leagues", "-filter", "free", "-sort", "teams"); err != nil {
		t.Fatalf("leagues: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.Contains(lines[1], "Beginners Free Roll") || !strings.Contains(lines[2], "Practice League") {
		t.Fatalf("unexpected order: %q", lines)
	}
}

func TestUsageErrors(t *testing.T) {
	_, client, _ := newDemoClient(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "match"},
		{name: "join", args: []string{"a", "b"}},
		{name: "add-money", args: []string{"lots"}},
		{name: "leagues", args: []string{"-bogus"}},
	}

	for _, tt := range tests {
		err := runCommand(t, client, tt.name, tt.args...)
		var usageErr *usageError
		if !errors.As(err, &usageErr) {
			t.Fatalf("%s %v: expected usage error, got %v", tt.name, tt.args, err)
		}
	}
}

func TestProtectedCommandWithoutLogin(t *testing.T) {
	_, client, _ := newDemoClient(t)

	err := runCommand(t, client, "balance")
	if !fantasy11.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestOpenMemoryAndUnknownStore(t *testing.T) {
	store, closeStore, err := openStore(context.Background(), options{store: storeMemory})
	if err != nil || !store.Available() {
		t.Fatalf("memory store: %v", err)
	}
	closeStore()

	if _, _, err := openStore(context.Background(), options{store: "etcd"}); err == nil {
		t.Fatal("expected error for unknown store")
	}
}

func TestOpenMiniRedisStore(t *testing.T) {
	store, closeStore, err := openStore(context.Background(), options{store: storeRedis, redisAddr: miniRedisAddr, profile: "cli"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeStore()

	if err := store.SetSession(context.Background(), "t1", session.User{ID: "u1"}); err != nil {
		t.Fatalf("SetSession: %v", err)
	}
	if !store.IsAuthenticated(context.Background()) {
		t.Fatal("expected authenticated")
	}
}

func TestOpenSQLiteStore(t *testing.T) {
	path := t.TempDir() + "/nested/session.db"
	store, closeStore, err := openStore(context.Background(), options{store: storeSQLite, dbPath: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeStore()

	if !store.Available() {
		t.Fatal("sqlite store unavailable")
	}
}

func TestFlushAuditWritesLinesBeforeExit(t *testing.T) {
	backend := apitest.New()
	if _, err := backend.SeedDemo(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	srv := backend.Start()
	t.Cleanup(srv.Close)

	cfg := fantasy11.DefaultConfig()
	cfg.HTTP.BaseURL = srv.URL + apitest.BasePath
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 4

	var events bytes.Buffer
	client, err := fantasy11.New().
		WithConfig(cfg).
		WithSessionStore(session.NewStore(session.NewMemoryBackend())).
		WithAuditSink(fantasy11.NewJSONWriterSink(&events)).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(client.Close)

	ctx := context.Background()
	if err := loginDemo(ctx, client); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := flushAudit(ctx, client, time.Second); err != nil {
		t.Fatalf("flushAudit: %v", err)
	}
	if !strings.Contains(events.String(), `"event_type":"session_created"`) {
		t.Fatalf("audit output = %q", events.String())
	}
}
