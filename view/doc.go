// Package view keeps the displayed result of a query in step with the newest request
// issued for it.
//
// A screen that reloads when a filter changes can have several requests in flight for
// the same logical query. Responses may arrive in any order. [Sequencer] numbers the
// requests per query and [Latest] applies a result only when it belongs to the newest
// request, cancelling and discarding everything older.
//
// Example:
//
//	matches := view.NewLatest[[]fantasy11.Match]()
//	go matches.Load(ctx, func(ctx context.Context) ([]fantasy11.Match, error) {
//		return client.ListMatches(ctx, fantasy11.MatchUpcoming)
//	})
//	go matches.Load(ctx, func(ctx context.Context) ([]fantasy11.Match, error) {
//		return client.ListMatches(ctx, fantasy11.MatchLive)
//	})
//	// matches.Result() eventually holds the live list, whichever response lands last.
package view
