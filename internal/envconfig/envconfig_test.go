package envconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type nestedConfig struct {
	Path string `env:"PATH" default:"nested-default"`
}

type testConfig struct {
	URL     string        `env:"URL" default:"http://localhost"`
	Retries int           `env:"RETRIES" default:"3"`
	Enabled bool          `env:"ENABLED" default:"true"`
	Rate    float64       `env:"RATE" default:"0.5"`
	Timeout time.Duration `env:"TIMEOUT" default:"2s"`
	NoTag   string
	Nested  nestedConfig `envPrefix:"NESTED_"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		env       map[string]string
		want      testConfig
		wantErr   bool
	}{
		{
			name:      "defaults",
			namespace: "APP",
			want: testConfig{
				URL: "http://localhost", Retries: 3, Enabled: true, Rate: 0.5,
				Timeout: 2 * time.Second, Nested: nestedConfig{Path: "nested-default"},
			},
		},
		{
			name:      "namespaced values and nested prefix",
			namespace: "APP",
			env: map[string]string{
				"APP_URL":         "http://api",
				"APP_RETRIES":     "0",
				"APP_ENABLED":     "false",
				"APP_TIMEOUT":     "150ms",
				"APP_NESTED_PATH": "/tmp/x.db",
			},
			want: testConfig{
				URL: "http://api", Retries: 0, Enabled: false, Rate: 0.5,
				Timeout: 150 * time.Millisecond, Nested: nestedConfig{Path: "/tmp/x.db"},
			},
		},
		{
			name:      "more specific namespace wins",
			namespace: "APP_CLI",
			env: map[string]string{
				"APP_URL":     "less",
				"APP_CLI_URL": "more",
			},
			want: testConfig{
				URL: "more", Retries: 3, Enabled: true, Rate: 0.5,
				Timeout: 2 * time.Second, Nested: nestedConfig{Path: "nested-default"},
			},
		},
		{
			name:      "invalid int",
			namespace: "APP",
			env:       map[string]string{"APP_RETRIES": "many"},
			wantErr:   true,
		},
		{
			name:      "invalid duration",
			namespace: "APP",
			env:       map[string]string{"APP_TIMEOUT": "soon"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var cfg testConfig
			err := Parse(&cfg, tt.namespace)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if cfg != tt.want {
				t.Fatalf("got %+v, want %+v", cfg, tt.want)
			}
		})
	}
}

func TestParseRejectsNonPointer(t *testing.T) {
	if err := Parse(testConfig{}, "APP"); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestParseMissingRequired(t *testing.T) {
	var cfg struct {
		Secret string `env:"SECRET"`
	}
	if err := Parse(&cfg, "ENVCONFIG_TEST_NONE"); !errors.Is(err, ErrVarNotSet) {
		t.Fatalf("expected ErrVarNotSet, got %v", err)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	if err := os.WriteFile(file, []byte("ENVCONFIG_DOTENV_A=fromfile\nENVCONFIG_DOTENV_B=fromfile\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENVCONFIG_DOTENV_A", "fromenv")
	t.Cleanup(func() { _ = os.Unsetenv("ENVCONFIG_DOTENV_B") })

	if err := LoadDotEnv(file, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("ENVCONFIG_DOTENV_A"); got != "fromenv" {
		t.Fatalf("expected existing var to win, got %q", got)
	}
	if got := os.Getenv("ENVCONFIG_DOTENV_B"); got != "fromfile" {
		t.Fatalf("expected file var to load, got %q", got)
	}
}
