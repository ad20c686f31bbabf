package apitest

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrEthical07/fantasy11/internal/logging"
)

// BasePath is where the API is mounted, matching the production base URL.
const BasePath = "/api"

var ErrDuplicateUser = errors.New("user already exists")

// Backend is an in-memory Fantasy 11 API.
type Backend struct {
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
	log      *slog.Logger

	mu           sync.Mutex
	users        map[string]*User
	matches      []Match
	userMatches  map[string][]Match
	leagues      []League
	participants map[string][]string
	transactions map[string][]Transaction
	recorded     []RecordedRequest
	inject       []injected
}

type Option func(*Backend)

// WithSecret sets the HS256 signing key.
func WithSecret(secret string) Option {
	return func(b *Backend) { b.secret = []byte(secret) }
}

// WithTokenTTL sets the lifetime of issued tokens. The default is 24 hours.
func WithTokenTTL(ttl time.Duration) Option {
	return func(b *Backend) { b.tokenTTL = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

func New(opts ...Option) *Backend {
	b := &Backend{
		secret:       []byte("fantasy11-test-secret"),
		tokenTTL:     24 * time.Hour,
		now:          time.Now,
		log:          logging.GetLogger("apitest"),
		users:        make(map[string]*User),
		userMatches:  make(map[string][]Match),
		participants: make(map[string][]string),
		transactions: make(map[string][]Transaction),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start serves the backend on a loopback listener. Callers close the server; the API
// base URL is server.URL + [BasePath].
func (b *Backend) Start() *httptest.Server {
	return httptest.NewServer(b.Handler())
}

// Handler returns the router with the API mounted under [BasePath].
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	// Preflights are answered here and never reach the recorder.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(b.record)

	r.Route(BasePath, func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", b.handleRegister)
			r.Post("/login", b.handleLogin)
			r.Post("/verify", b.handleVerify)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(b.requireAuth)
			r.Get("/profile", b.handleGetProfile)
			r.Put("/profile", b.handleUpdateProfile)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", b.handleListMatches)
			r.With(b.requireAuth).Get("/my-matches", b.handleMyMatches)
			r.Get("/{id}", b.handleGetMatch)
		})

		r.Route("/leagues", func(r chi.Router) {
			r.Get("/", b.handleListLeagues)
			r.With(b.requireAuth).Post("/{id}/join", b.handleJoinLeague)
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Use(b.requireAuth)
			r.Get("/balance", b.handleBalance)
			r.Get("/transactions", b.handleTransactions)
			r.Post("/add-money", b.handleAddMoney)
		})
	})

	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		path := strings.TrimPrefix(r.URL.Path, BasePath)
		rec := RecordedRequest{
			Method:        r.Method,
			Path:          path,
			RawQuery:      r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          body,
		}

		b.mu.Lock()
		b.recorded = append(b.recorded, rec)
		inj, ok := b.takeInjected(r.Method, path)
		b.mu.Unlock()

		b.log.Debug("request", "method", r.Method, "path", path, "query", r.URL.RawQuery, "request_id", rec.RequestID)

		if ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(inj.status)
			_, _ = io.WriteString(w, inj.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// takeInjected pops the first injected response for method and path. b.mu must be held.
func (b *Backend) takeInjected(method, path string) (injected, bool) {
	for i, inj := range b.inject {
		if inj.method == method && inj.path == path {
			b.inject = append(b.inject[:i], b.inject[i+1:]...)
			return inj, true
		}
	}
	return injected{}, false
}

// Inject makes the next request for method and path (relative to [BasePath]) answer
// with status and the raw body instead of reaching the handler.
func (b *Backend) Inject(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inject = append(b.inject, injected{method: method, path: path, status: status, body: body})
}

// Requests returns a copy of everything received so far.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.recorded))
	copy(out, b.recorded)
	return out
}

// LastRequest returns the most recent request, if any.
func (b *Backend) LastRequest() (RecordedRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.recorded) == 0 {
		return RecordedRequest{}, false
	}
	return b.recorded[len(b.recorded)-1], true
}

// AddUser creates an account and returns its id.
func (b *Backend) AddUser(name, email, mobile, password string, wallet float64) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.users {
		if existing.Email == email {
			return "", ErrDuplicateUser
		}
	}
	u := &User{
		ID:            uuid.NewString(),
		Name:          name,
		Email:         email,
		Mobile:        mobile,
		WalletBalance: wallet,
		CreatedAt:     b.now().UTC(),
		passwordHash:  hash,
	}
	b.users[u.ID] = u
	return u.ID, nil
}

// User returns a copy of the account with id.
func (b *Backend) User(id string) (User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[id]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// AddMatch stores m, assigning an id when empty.
func (b *Backend) AddMatch(m Match) string {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.matches = append(b.matches, m)
	return m.ID
}

// AddUserMatch records that userID plays m.
func (b *Backend) AddUserMatch(userID string, m Match) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.userMatches[userID] = append(b.userMatches[userID], m)
}

func (b *Backend) AddLeague(l League) string {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.leagues = append(b.leagues, l)
	return l.ID
}

// Participants returns the user ids that joined league id.
func (b *Backend) Participants(id string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.participants[id]...)
}

// SeedDemo loads a small fixture set and a demo account (demo@fantasy11.test, mobile
// 9876543210, password "secret1", wallet 500). It returns the account id.
func (b *Backend) SeedDemo() (string, error) {
	id, err := b.AddUser("Demo Player", "demo@fantasy11.test", "9876543210", "secret1", 500)
	if err != nil {
		return "", err
	}

	today := b.now().UTC()
	day := func(n int) string { return today.AddDate(0, 0, n).Format(time.RFC3339) }

	b.AddMatch(Match{Team1: "Mumbai Indians", Team2: "Chennai Super Kings", MatchDate: day(1), Status: "upcoming", League: "T20 League"})
	b.AddMatch(Match{Team1: "Royal Challengers", Team2: "Kolkata Knight Riders", MatchDate: day(2), Status: "upcoming", League: "T20 League"})
	b.AddMatch(Match{Team1: "Punjab Kings", Team2: "Rajasthan Royals", MatchDate: day(0), Status: "live", Score: "142/3 (16.2)", League: "T20 League"})
	b.AddMatch(Match{Team1: "Delhi Capitals", Team2: "Sunrisers Hyderabad", MatchDate: day(-1), Status: "completed", Score: "DC won by 12 runs", League: "T20 League"})

	b.AddUserMatch(id, Match{Team1: "Delhi Capitals", Team2: "Sunrisers Hyderabad", MatchDate: day(-1), Status: "completed", Score: "DC won by 12 runs"})
	b.AddUserMatch(id, Match{Team1: "Mumbai Indians", Team2: "Chennai Super Kings", MatchDate: day(1), Status: "upcoming"})

	b.AddLeague(League{Name: "Mega Contest", PrizePool: 1000000, EntryFee: 49, MaxTeams: 50000, TeamsCount: 42150, Popularity: 98})
	b.AddLeague(League{Name: "Head to Head", PrizePool: 180, EntryFee: 100, MaxTeams: 2, TeamsCount: 1, Popularity: 60})
	b.AddLeague(League{Name: "Practice League", PrizePool: 0, EntryFee: 0, MaxTeams: 1000, TeamsCount: 812, Popularity: 75})
	b.AddLeague(League{Name: "Beginners Free Roll", PrizePool: 500, EntryFee: 0, MaxTeams: 5000, TeamsCount: 4980, Popularity: 92})

	return id, nil
}

// findUserLocked matches an email or mobile. b.mu must be held.
func (b *Backend) findUserLocked(emailOrMobile string) *User {
	for _, u := range b.users {
		if u.Email == emailOrMobile || u.Mobile == emailOrMobile {
			return u
		}
	}
	return nil
}

func filterLeagues(all []League, filter string) []League {
	out := make([]League, 0, len(all))
	for _, l := range all {
		switch filter {
		case "free":
			if l.EntryFee != 0 {
				continue
			}
		case "paid":
			if l.EntryFee <= 0 {
				continue
			}
		case "popular":
			if l.Popularity < 90 {
				continue
			}
		}
		out = append(out, l)
	}
	return out
}

func sortLeagues(leagues []League, by string) {
	switch by {
	case "teams":
		sort.SliceStable(leagues, func(i, j int) bool { return leagues[i].TeamsCount > leagues[j].TeamsCount })
	case "entry":
		sort.SliceStable(leagues, func(i, j int) bool { return leagues[i].EntryFee < leagues[j].EntryFee })
	case "prize":
		sort.SliceStable(leagues, func(i, j int) bool { return leagues[i].PrizePool > leagues[j].PrizePool })
	}
}
