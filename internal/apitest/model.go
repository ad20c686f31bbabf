package apitest

import "time"

// User is an account held by the fake backend.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Mobile        string    `json:"mobile"`
	WalletBalance float64   `json:"wallet_balance"`
	CreatedAt     time.Time `json:"created_at"`

	passwordHash []byte
}

type Match struct {
	ID        string `json:"id"`
	Team1     string `json:"team1"`
	Team2     string `json:"team2"`
	MatchDate string `json:"match_date"`
	Status    string `json:"status"`
	Score     string `json:"score,omitempty"`
	League    string `json:"league,omitempty"`
}

type League struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	PrizePool  float64 `json:"prize_pool"`
	EntryFee   float64 `json:"entry_fee"`
	MaxTeams   int     `json:"max_teams"`
	TeamsCount int     `json:"teams_count"`
	Popularity float64 `json:"popularity"`
}

type Transaction struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
}

// RecordedRequest is what the backend saw for one call.
type RecordedRequest struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	ContentType   string
	RequestID     string
	Body          []byte
}

// RequestURI returns the path with its query string, as sent.
func (r RecordedRequest) RequestURI() string {
	if r.RawQuery == "" {
		return r.Path
	}
	return r.Path + "?" + r.RawQuery
}

type injected struct {
	method string
	path   string
	status int
	body   string
}
