package fantasy11

import (
	"errors"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/MrEthical07/fantasy11/internal/envconfig"
)

// DefaultBaseURL is the backend root used when nothing is configured.
const DefaultBaseURL = "http://127.0.0.1:5000/api"

// legacyBaseURLEnv is the variable name the web front end reads the backend root from.
const legacyBaseURLEnv = "NEXT_PUBLIC_API_URL"

// Config is the client configuration. Build it with [DefaultConfig] or [LoadConfig]
// and treat it as immutable once passed to the [Builder].
type Config struct {
	HTTP    HTTPConfig
	Session SessionConfig `envPrefix:"SESSION_"`
	Metrics MetricsConfig `envPrefix:"METRICS_"`
	Audit   AuditConfig   `envPrefix:"AUDIT_"`
}

/*
====================================
HTTP CONFIG
====================================
*/

// HTTPConfig controls how requests reach the backend.
type HTTPConfig struct {
	BaseURL string        `env:"API_URL" default:"http://127.0.0.1:5000/api"`
	Timeout time.Duration `env:"TIMEOUT" default:"30s"`
	// RequestsPerSecond caps outgoing requests; 0 disables the limiter.
	RequestsPerSecond float64 `env:"RATE_LIMIT" default:"0"`
	Burst             int     `env:"RATE_BURST" default:"1"`
	UserAgent         string  `env:"USER_AGENT" default:"fantasy11-go"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls how the client treats the session store.
type SessionConfig struct {
	// ClearOnUnauthorized clears the stored session when a request that carried a
	// token is answered with HTTP 401. Off by default: the client only reads the store.
	ClearOnUnauthorized bool `env:"CLEAR_ON_UNAUTHORIZED" default:"false"`
}

/*
====================================
METRICS / AUDIT CONFIG
====================================
*/

// MetricsConfig enables the in-process counters.
type MetricsConfig struct {
	Enabled                 bool `env:"ENABLED" default:"false"`
	EnableLatencyHistograms bool `env:"LATENCY" default:"false"`
}

// AuditConfig controls session audit event dispatch.
type AuditConfig struct {
	Enabled    bool `env:"ENABLED" default:"false"`
	BufferSize int  `env:"BUFFER_SIZE" default:"256"`
	DropIfFull bool `env:"DROP_IF_FULL" default:"true"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			BaseURL:   DefaultBaseURL,
			Timeout:   30 * time.Second,
			Burst:     1,
			UserAgent: "fantasy11-go",
		},
		Audit: AuditConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

// LoadConfig reads .env files (when present) and then the environment under namespace,
// e.g. "FANTASY11" for FANTASY11_API_URL. When no namespaced base URL is set, the web
// front end's NEXT_PUBLIC_API_URL is honored.
func LoadConfig(namespace string, dotenvFiles ...string) (Config, error) {
	if err := envconfig.LoadDotEnv(dotenvFiles...); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := envconfig.Parse(&cfg, namespace); err != nil {
		return Config{}, err
	}

	if !baseURLSet(namespace) {
		if legacy, ok := os.LookupEnv(legacyBaseURLEnv); ok && strings.TrimSpace(legacy) != "" {
			cfg.HTTP.BaseURL = legacy
		}
	}

	return cfg, cfg.Validate()
}

func baseURLSet(namespace string) bool {
	parts := strings.Split(namespace, "_")
	for i := len(parts); i > 0; i-- {
		key := "API_URL"
		if ns := strings.Join(parts[:i], "_"); ns != "" {
			key = ns + "_" + key
		}
		if _, ok := os.LookupEnv(key); ok {
			return true
		}
	}
	return false
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	base := strings.TrimSpace(c.HTTP.BaseURL)
	if base == "" {
		return errors.New("HTTP BaseURL must be set")
	}
	u, err := url.Parse(base)
	if err != nil {
		return errors.New("HTTP BaseURL is not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("HTTP BaseURL scheme must be http or https")
	}
	if u.Host == "" {
		return errors.New("HTTP BaseURL must include a host")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return errors.New("HTTP BaseURL must not carry a query or fragment")
	}

	if c.HTTP.Timeout < 0 {
		return errors.New("HTTP Timeout must be >= 0")
	}
	if c.HTTP.RequestsPerSecond < 0 {
		return errors.New("HTTP RequestsPerSecond must be >= 0")
	}
	if c.HTTP.RequestsPerSecond > 0 && c.HTTP.Burst < 1 {
		return errors.New("HTTP Burst must be >= 1 when RequestsPerSecond is set")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
