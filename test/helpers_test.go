//go:build integration
// +build integration

package test

import (
	"testing"

	"github.com/MrEthical07/fantasy11/session"
)

func testUser(id string) session.User {
	return session.User{ID: id, Name: "User " + id, Email: id + "@example.com", Wallet: 100}
}

func mustStore(t *testing.T, backend session.Backend) *session.Store {
	t.Helper()
	store := session.NewStore(backend)
	if !store.Available() {
		t.Fatal("store unavailable")
	}
	return store
}
