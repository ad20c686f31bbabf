package apitest

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

type authPayload struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Mobile   string `json:"mobile"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	switch {
	case !emailPattern.MatchString(req.Email):
		writeError(w, http.StatusBadRequest, "Invalid email")
		return
	case len(req.Password) < 6:
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	case strings.TrimSpace(req.Name) == "":
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	case !mobilePattern.MatchString(req.Mobile):
		writeError(w, http.StatusBadRequest, "Invalid mobile number")
		return
	}

	id, err := b.AddUser(req.Name, req.Email, req.Mobile, req.Password, 0)
	if errors.Is(err, ErrDuplicateUser) {
		writeError(w, http.StatusBadRequest, "User already exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	b.respondWithToken(w, http.StatusCreated, "User registered successfully", id)
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Mobile   string `json:"mobile"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	login := req.Email
	if login == "" {
		login = req.Mobile
	}
	if login == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email/mobile and password are required")
		return
	}

	b.mu.Lock()
	u := b.findUserLocked(login)
	var hash []byte
	var id string
	if u != nil {
		hash, id = u.passwordHash, u.ID
	}
	b.mu.Unlock()

	if u == nil || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	b.respondWithToken(w, http.StatusOK, "Login successful", id)
}

func (b *Backend) respondWithToken(w http.ResponseWriter, status int, msg, userID string) {
	token, err := b.IssueToken(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	u, _ := b.User(userID)
	writeJSON(w, status, authPayload{Message: msg, Token: token, User: u})
}

func (b *Backend) handleVerify(w http.ResponseWriter, r *http.Request) {
	raw := bearer(r)
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "Token required")
		return
	}
	userID, err := b.verifyToken(raw)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "user_id": userID})
}

func (b *Backend) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := b.User(userIDFrom(r.Context()))
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]User{"user": u})
}

func (b *Backend) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   *string `json:"name"`
		Email  *string `json:"email"`
		Mobile *string `json:"mobile"`
	}
	if !decode(w, r, &req) {
		return
	}

	b.mu.Lock()
	u, ok := b.users[userIDFrom(r.Context())]
	if ok {
		if req.Name != nil {
			u.Name = *req.Name
		}
		if req.Email != nil {
			u.Email = *req.Email
		}
		if req.Mobile != nil {
			u.Mobile = *req.Mobile
		}
	}
	b.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated successfully"})
}

func byStatus(all []Match, status string) []Match {
	out := make([]Match, 0, len(all))
	for _, m := range all {
		if status == "" || status == "all" || m.Status == status {
			out = append(out, m)
		}
	}
	return out
}

func (b *Backend) handleListMatches(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	out := byStatus(b.matches, r.URL.Query().Get("status"))
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string][]Match{"matches": out})
}

func (b *Backend) handleMyMatches(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	out := byStatus(b.userMatches[userIDFrom(r.Context())], r.URL.Query().Get("status"))
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string][]Match{"matches": out})
}

func (b *Backend) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range b.matches {
		if m.ID == id {
			writeJSON(w, http.StatusOK, map[string]Match{"match": m})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Match not found")
}

func (b *Backend) handleListLeagues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sortBy := q.Get("sort")
	if sortBy == "" {
		sortBy = "prize"
	}

	b.mu.Lock()
	out := filterLeagues(b.leagues, q.Get("filter"))
	b.mu.Unlock()

	sortLeagues(out, sortBy)
	writeJSON(w, http.StatusOK, map[string][]League{"leagues": out})
}

func (b *Backend) handleJoinLeague(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "id")
	userID := userIDFrom(r.Context())

	b.mu.Lock()
	defer b.mu.Unlock()

	var league *League
	for i := range b.leagues {
		if b.leagues[i].ID == leagueID {
			league = &b.leagues[i]
			break
		}
	}
	if league == nil {
		writeError(w, http.StatusNotFound, "League not found")
		return
	}

	u, ok := b.users[userID]
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if u.WalletBalance < league.EntryFee {
		writeError(w, http.StatusBadRequest, "Insufficient balance")
		return
	}

	u.WalletBalance -= league.EntryFee
	league.TeamsCount++
	b.participants[leagueID] = append(b.participants[leagueID], userID)
	if league.EntryFee > 0 {
		b.addTransactionLocked(userID, "debit", league.EntryFee, "Joined "+league.Name)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully joined league"})
}

func (b *Backend) handleBalance(w http.ResponseWriter, r *http.Request) {
	u, ok := b.User(userIDFrom(r.Context()))
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"balance": u.WalletBalance})
}

func (b *Backend) handleTransactions(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	src := b.transactions[userIDFrom(r.Context())]
	out := make([]Transaction, len(src))
	copy(out, src)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string][]Transaction{"transactions": out})
}

func (b *Backend) handleAddMoney(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	userID := userIDFrom(r.Context())
	u, ok := b.users[userID]
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	u.WalletBalance += req.Amount
	b.addTransactionLocked(userID, "credit", req.Amount, "Money added to wallet")

	writeJSON(w, http.StatusOK, map[string]string{"message": "Money added successfully"})
}

// addTransactionLocked appends a ledger entry. b.mu must be held.
func (b *Backend) addTransactionLocked(userID, kind string, amount float64, desc string) {
	b.transactions[userID] = append(b.transactions[userID], Transaction{
		ID:          uuid.NewString(),
		Type:        kind,
		Amount:      amount,
		Description: desc,
		CreatedAt:   b.now().UTC().Format("2006-01-02T15:04:05.000000"),
	})
}
