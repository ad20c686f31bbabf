package fantasy11

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrEthical07/fantasy11/session"
)

// paddedBalance returns a valid balance document exactly size bytes long.
func paddedBalance(size int) string {
	const head, tail = `{"balance":42,"pad":"`, `"}`
	return head + strings.Repeat("x", size-len(head)-len(tail)) + tail
}

func TestResponseSizeLimit(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{name: "at limit", size: maxResponseBytes},
		{name: "one byte over", size: maxResponseBytes + 1, wantErr: true},
		{name: "far over", size: maxResponseBytes + 4096, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := paddedBalance(tt.size)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			client := newClientFor(t, srv.URL+"/api", session.NewStore(session.NewMemoryBackend()))
			balance, err := client.WalletBalance(context.Background())

			if !tt.wantErr {
				if err != nil || balance != 42 {
					t.Fatalf("balance = %v, err = %v", balance, err)
				}
				return
			}
			if !errors.Is(err, ErrResponseTooLarge) || !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("expected oversized protocol error, got %v", err)
			}
			if err.Error() != "Response too large" || StatusCode(err) != http.StatusOK {
				t.Fatalf("error = %q status = %d", err.Error(), StatusCode(err))
			}
		})
	}
}
