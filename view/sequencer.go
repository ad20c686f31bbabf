package view

import "sync"

// Sequencer hands out monotonically increasing request numbers per query key.
// The zero value is ready to use.
type Sequencer struct {
	mu     sync.Mutex
	latest map[string]uint64
}

// Ticket identifies one request issued for a query.
type Ticket struct {
	s     *Sequencer
	query string
	seq   uint64
}

// Begin issues a ticket for query, superseding every earlier ticket for the same query.
func (s *Sequencer) Begin(query string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == nil {
		s.latest = make(map[string]uint64)
	}
	s.latest[query]++
	return Ticket{s: s, query: query, seq: s.latest[query]}
}

// Latest returns the newest sequence number issued for query, or 0.
func (s *Sequencer) Latest(query string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[query]
}

// Current reports whether no newer ticket has been issued for the same query.
func (t Ticket) Current() bool {
	if t.s == nil {
		return false
	}
	return t.s.Latest(t.query) == t.seq
}

func (t Ticket) Seq() uint64 { return t.seq }

func (t Ticket) Query() string { return t.query }
