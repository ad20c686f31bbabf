package fantasy11

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{name: "defaults", mutate: func(*Config) {}, wantValid: true},
		{name: "https base url", mutate: func(c *Config) { c.HTTP.BaseURL = "https://api.fantasy11.example/api" }, wantValid: true},
		{name: "empty base url", mutate: func(c *Config) { c.HTTP.BaseURL = "  " }, wantValid: false},
		{name: "non http scheme", mutate: func(c *Config) { c.HTTP.BaseURL = "ftp://host/api" }, wantValid: false},
		{name: "missing host", mutate: func(c *Config) { c.HTTP.BaseURL = "http:///api" }, wantValid: false},
		{name: "query in base url", mutate: func(c *Config) { c.HTTP.BaseURL = "http://host/api?x=1" }, wantValid: false},
		{name: "negative timeout", mutate: func(c *Config) { c.HTTP.Timeout = -time.Second }, wantValid: false},
		{name: "zero timeout", mutate: func(c *Config) { c.HTTP.Timeout = 0 }, wantValid: true},
		{name: "negative rate", mutate: func(c *Config) { c.HTTP.RequestsPerSecond = -1 }, wantValid: false},
		{name: "rate without burst", mutate: func(c *Config) {
			c.HTTP.RequestsPerSecond = 5
			c.HTTP.Burst = 0
		}, wantValid: false},
		{name: "rate with burst", mutate: func(c *Config) {
			c.HTTP.RequestsPerSecond = 5
			c.HTTP.Burst = 2
		}, wantValid: true},
		{name: "audit without buffer", mutate: func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.BufferSize = 0
		}, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.wantValid && err == nil {
				t.Fatal("expected invalid config")
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("F11TEST", filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := DefaultConfig()
	if cfg != want {
		t.Fatalf("config = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("F11TEST_API_URL", "https://api.example.com/api")
	t.Setenv("F11TEST_TIMEOUT", "5s")
	t.Setenv("F11TEST_RATE_LIMIT", "2.5")
	t.Setenv("F11TEST_RATE_BURST", "3")
	t.Setenv("F11TEST_SESSION_CLEAR_ON_UNAUTHORIZED", "true")
	t.Setenv("F11TEST_METRICS_ENABLED", "true")
	t.Setenv("F11TEST_AUDIT_BUFFER_SIZE", "8")
	t.Setenv("NEXT_PUBLIC_API_URL", "http://ignored.example/api")

	cfg, err := LoadConfig("F11TEST", filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.BaseURL != "https://api.example.com/api" {
		t.Fatalf("base url = %q", cfg.HTTP.BaseURL)
	}
	if cfg.HTTP.Timeout != 5*time.Second || cfg.HTTP.RequestsPerSecond != 2.5 || cfg.HTTP.Burst != 3 {
		t.Fatalf("http = %+v", cfg.HTTP)
	}
	if !cfg.Session.ClearOnUnauthorized || !cfg.Metrics.Enabled || cfg.Audit.BufferSize != 8 {
		t.Fatalf("config = %+v", cfg)
	}
}

func TestLoadConfigLegacyBaseURL(t *testing.T) {
	t.Setenv("NEXT_PUBLIC_API_URL", "http://10.0.0.5:5000/api")

	cfg, err := LoadConfig("F11LEGACY", filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.BaseURL != "http://10.0.0.5:5000/api" {
		t.Fatalf("base url = %q", cfg.HTTP.BaseURL)
	}
}

func TestLoadConfigDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("F11DOT_API_URL=http://dotenv.example/api\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("F11DOT_API_URL") })

	cfg, err := LoadConfig("F11DOT", path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.BaseURL != "http://dotenv.example/api" {
		t.Fatalf("base url = %q", cfg.HTTP.BaseURL)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("F11BAD_API_URL", "not a url")
	if _, err := LoadConfig("F11BAD", filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected validation error")
	}

	t.Setenv("F11BAD_API_URL", "http://ok/api")
	t.Setenv("F11BAD_TIMEOUT", "soon")
	if _, err := LoadConfig("F11BAD", filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected parse error")
	}
}
