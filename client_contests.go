package fantasy11

import (
	"context"
	"net/http"
	"net/url"
)

// ListMatches returns matches in status. [MatchAll] and the empty status list everything.
func (c *Client) ListMatches(ctx context.Context, status MatchStatus) ([]Match, error) {
	return c.listMatches(ctx, "list_matches", "/matches", status)
}

// ListMyMatches returns the matches the caller has joined a league for.
func (c *Client) ListMyMatches(ctx context.Context, status MatchStatus) ([]Match, error) {
	return c.listMatches(ctx, "list_my_matches", "/matches/my-matches", status)
}

func (c *Client) listMatches(ctx context.Context, op, path string, status MatchStatus) ([]Match, error) {
	if !status.Valid() {
		err := validationError(op, "Invalid match status")
		c.rejectLocally(err)
		return nil, err
	}

	q := url.Values{}
	if status != "" && status != MatchAll {
		q.Set("status", string(status))
	}

	var resp matchesResponse
	if err := c.call(ctx, op, http.MethodGet, withQuery(path, q), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Matches == nil {
		resp.Matches = []Match{}
	}
	return resp.Matches, nil
}

func (c *Client) GetMatch(ctx context.Context, id string) (*Match, error) {
	if err := validateID("get_match", "Match", id); err != nil {
		c.rejectLocally(err)
		return nil, err
	}

	var resp matchResponse
	if err := c.call(ctx, "get_match", http.MethodGet, "/matches/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Match, nil
}

// ListLeagues returns leagues narrowed by filter and ordered by sort. Empty values and
// [LeagueAll] are not sent; the backend then lists all leagues by prize pool.
func (c *Client) ListLeagues(ctx context.Context, filter LeagueFilter, sort LeagueSort) ([]League, error) {
	if !filter.Valid() {
		err := validationError("list_leagues", "Invalid league filter")
		c.rejectLocally(err)
		return nil, err
	}
	if !sort.Valid() {
		err := validationError("list_leagues", "Invalid league sort")
		c.rejectLocally(err)
		return nil, err
	}

	q := url.Values{}
	if filter != "" && filter != LeagueAll {
		q.Set("filter", string(filter))
	}
	if sort != "" {
		q.Set("sort", string(sort))
	}

	var resp leaguesResponse
	if err := c.call(ctx, "list_leagues", http.MethodGet, withQuery("/leagues", q), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Leagues == nil {
		resp.Leagues = []League{}
	}
	return resp.Leagues, nil
}

// JoinLeague enters the caller into a league, debiting the entry fee from the wallet.
func (c *Client) JoinLeague(ctx context.Context, id string) (*MessageResponse, error) {
	if err := validateID("join_league", "League", id); err != nil {
		c.rejectLocally(err)
		return nil, err
	}

	var resp MessageResponse
	if err := c.call(ctx, "join_league", http.MethodPost, "/leagues/"+url.PathEscape(id)+"/join", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
