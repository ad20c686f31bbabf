package view

import (
	"context"
	"sync"
)

// Result is what a [Latest] currently shows.
type Result[T any] struct {
	Value T
	Err   error
	// Seq is the ticket number of the request that produced the result.
	Seq uint64
	// Applied is false until the first current request completes.
	Applied bool
}

// DiscardFunc observes a result dropped because a newer request superseded it.
type DiscardFunc func(seq uint64, err error)

// Option configures a [Latest].
type Option func(*options)

type options struct {
	seq       *Sequencer
	query     string
	onDiscard []DiscardFunc
}

// WithDiscardHook registers fn to run for every stale result. Hooks run on the loading
// goroutine without locks held.
func WithDiscardHook(fn DiscardFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.onDiscard = append(o.onDiscard, fn)
		}
	}
}

// WithSequencer shares seq with other holders under the given query key, so a ticket
// begun elsewhere for the same key also supersedes this holder's loads.
func WithSequencer(seq *Sequencer, query string) Option {
	return func(o *options) {
		o.query = query
		o.seq = seq
	}
}

// Latest holds the result of the newest load of one logical query.
type Latest[T any] struct {
	seq       *Sequencer
	query     string
	onDiscard []DiscardFunc

	mu     sync.Mutex
	cancel context.CancelFunc
	result Result[T]
}

func NewLatest[T any](opts ...Option) *Latest[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.seq == nil {
		o.seq = &Sequencer{}
	}
	return &Latest[T]{
		seq:       o.seq,
		query:     o.query,
		onDiscard: o.onDiscard,
	}
}

// Load runs fetch as the newest request for the query. The context passed to the
// previous in-flight fetch is cancelled.
//
// applied reports whether the result was stored. A superseded load returns
// applied=false and a nil error; its outcome goes only to the discard hooks.
func (l *Latest[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) (applied bool, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	fetchCtx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	ticket := l.seq.Begin(l.query)
	if l.cancel != nil {
		l.cancel()
	}
	l.cancel = cancel
	l.mu.Unlock()

	value, fetchErr := fetch(fetchCtx)

	l.mu.Lock()
	if !ticket.Current() {
		l.mu.Unlock()
		cancel()
		for _, fn := range l.onDiscard {
			fn(ticket.Seq(), fetchErr)
		}
		return false, nil
	}
	l.result = Result[T]{Value: value, Err: fetchErr, Seq: ticket.Seq(), Applied: true}
	l.cancel = nil
	l.mu.Unlock()
	cancel()

	return true, fetchErr
}

func (l *Latest[T]) Result() Result[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.result
}

// Value returns the shown value and whether any load has been applied.
func (l *Latest[T]) Value() (T, bool) {
	r := l.Result()
	return r.Value, r.Applied
}

// Cancel aborts the in-flight load, if any. Its result will be discarded.
func (l *Latest[T]) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.seq.Begin(l.query)
}
