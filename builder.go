package fantasy11

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/MrEthical07/fantasy11/internal/logging"
	"github.com/MrEthical07/fantasy11/session"
)

// Builder assembles a [Client]. A Builder can build exactly once.
type Builder struct {
	config     Config
	store      *session.Store
	httpClient *http.Client
	auditSink  AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithSessionStore sets the store the client reads the bearer token from. Without one
// the client behaves as permanently logged out.
func (b *Builder) WithSessionStore(store *session.Store) *Builder {
	b.store = store
	return b
}

// WithHTTPClient overrides the transport. Its Timeout is replaced only when zero.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration and returns the client.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := b.store
	if store == nil {
		store = session.NewStore(nil)
	}

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	} else {
		clone := *httpClient
		httpClient = &clone
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = cfg.HTTP.Timeout
	}

	var limiter *rate.Limiter
	if cfg.HTTP.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.HTTP.RequestsPerSecond), cfg.HTTP.Burst)
	}

	c := &Client{
		config:     cfg,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.HTTP.BaseURL), "/"),
		httpClient: httpClient,
		store:      store,
		limiter:    limiter,
		metrics:    NewMetrics(cfg.Metrics),
		audit:      newAuditDispatcher(cfg.Audit, b.auditSink),
		log:        logging.GetLogger("client"),
	}

	b.built = true
	return c, nil
}
