package fantasy11

import "github.com/MrEthical07/fantasy11/session"

// MatchStatus filters match listings. [MatchAll] sends no filter.
type MatchStatus string

const (
	MatchAll       MatchStatus = "all"
	MatchUpcoming  MatchStatus = "upcoming"
	MatchLive      MatchStatus = "live"
	MatchCompleted MatchStatus = "completed"
)

// Valid reports whether s is one of the known statuses or empty.
func (s MatchStatus) Valid() bool {
	switch s {
	case "", MatchAll, MatchUpcoming, MatchLive, MatchCompleted:
		return true
	}
	return false
}

// LeagueFilter narrows league listings.
type LeagueFilter string

const (
	LeagueAll     LeagueFilter = "all"
	LeagueFree    LeagueFilter = "free"
	LeaguePaid    LeagueFilter = "paid"
	LeaguePopular LeagueFilter = "popular"
)

func (f LeagueFilter) Valid() bool {
	switch f {
	case "", LeagueAll, LeagueFree, LeaguePaid, LeaguePopular:
		return true
	}
	return false
}

// LeagueSort orders league listings.
type LeagueSort string

const (
	SortByPrize LeagueSort = "prize"
	SortByTeams LeagueSort = "teams"
	SortByEntry LeagueSort = "entry"
)

func (s LeagueSort) Valid() bool {
	switch s {
	case "", SortByPrize, SortByTeams, SortByEntry:
		return true
	}
	return false
}

// TransactionType is the direction of a wallet movement.
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// LoginRequest authenticates by email or mobile. Exactly one identifier is normally set.
type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
	Password string `json:"password"`
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

// UserProfile is the backend's view of a user.
type UserProfile struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Mobile        string  `json:"mobile,omitempty"`
	WalletBalance float64 `json:"wallet_balance"`
}

// SessionUser converts the profile into the snapshot kept by the session store.
func (p UserProfile) SessionUser() session.User {
	return session.User{
		ID:     p.ID,
		Name:   p.Name,
		Email:  p.Email,
		Wallet: p.WalletBalance,
		Mobile: p.Mobile,
	}
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    UserProfile `json:"user"`
}

// SessionFromAuth returns the pair a caller should persist after authenticating.
// ok is false when the response lacks a token or a user id.
func SessionFromAuth(resp *AuthResponse) (token string, user session.User, ok bool) {
	if resp == nil || resp.Token == "" || resp.User.ID == "" {
		return "", session.User{}, false
	}
	return resp.Token, resp.User.SessionUser(), true
}

// VerifyResponse is returned by token verification.
type VerifyResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id"`
}

// ProfileUpdate carries the fields to change; nil fields are left untouched.
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Mobile *string `json:"mobile,omitempty"`
}

// MessageResponse is the body of operations that only acknowledge.
type MessageResponse struct {
	Message string `json:"message"`
}

type profileResponse struct {
	User UserProfile `json:"user"`
}

// Match is a fixture between two teams.
type Match struct {
	ID        string      `json:"id"`
	Team1     string      `json:"team1"`
	Team2     string      `json:"team2"`
	MatchDate string      `json:"match_date"`
	Status    MatchStatus `json:"status"`
	Score     string      `json:"score,omitempty"`
	League    string      `json:"league,omitempty"`
}

type matchesResponse struct {
	Matches []Match `json:"matches"`
}

type matchResponse struct {
	Match Match `json:"match"`
}

// League is a joinable contest.
type League struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	PrizePool  float64 `json:"prize_pool"`
	EntryFee   float64 `json:"entry_fee"`
	MaxTeams   int     `json:"max_teams"`
	TeamsCount int     `json:"teams_count"`
	Popularity float64 `json:"popularity"`
}

// Free reports whether joining costs nothing.
func (l League) Free() bool { return l.EntryFee == 0 }

type leaguesResponse struct {
	Leagues []League `json:"leagues"`
}

// Transaction is one wallet ledger entry.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   string          `json:"created_at"`
}

type balanceResponse struct {
	Balance float64 `json:"balance"`
}

type transactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

type addMoneyRequest struct {
	Amount float64 `json:"amount"`
}
