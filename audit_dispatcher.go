package fantasy11

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// auditDispatcher delivers session audit events to the sink from one goroutine, in
// the order they were queued. Requests only wait on it when DropIfFull is off and the
// queue is full.
type auditDispatcher struct {
	sink       AuditSink
	dropIfFull bool

	queue   chan AuditEvent
	flushes chan chan struct{}
	stop    chan struct{}
	stopped chan struct{}

	stopOnce  sync.Once
	dropped   atomic.Uint64
	delivered atomic.Uint64
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	size := cfg.BufferSize
	if size <= 0 {
		size = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &auditDispatcher{
		sink:       sink,
		dropIfFull: cfg.DropIfFull,
		queue:      make(chan AuditEvent, size),
		flushes:    make(chan chan struct{}),
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *auditDispatcher) loop() {
	defer close(d.stopped)

	for {
		select {
		case event := <-d.queue:
			d.deliver(event)
		case ack := <-d.flushes:
			d.drainQueued()
			close(ack)
		case <-d.stop:
			d.drainQueued()
			return
		}
	}
}

// drainQueued delivers whatever is buffered right now without waiting for more.
func (d *auditDispatcher) drainQueued() {
	for {
		select {
		case event := <-d.queue:
			d.deliver(event)
		default:
			return
		}
	}
}

func (d *auditDispatcher) deliver(event AuditEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	d.sink.Emit(context.Background(), event)
	d.delivered.Add(1)
}

// Emit queues event. Once the dispatcher is closed events are discarded.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.isStopped() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.dropIfFull {
		select {
		case d.queue <- event:
		case <-d.stop:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
		d.dropped.Add(1)
	case <-d.stop:
	}
}

// Flush returns once every event queued before the call has reached the sink, or
// with ctx's error if that takes too long. A closed dispatcher has nothing to flush.
func (d *auditDispatcher) Flush(ctx context.Context) error {
	if d == nil {
		return nil
	}

	ack := make(chan struct{})
	select {
	case d.flushes <- ack:
	case <-d.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close delivers buffered events and stops the dispatcher. Safe to call more than once.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() { close(d.stop) })
	<-d.stopped
}

func (d *auditDispatcher) isStopped() bool {
	select {
	case <-d.stop:
		return true
	default:
		return false
	}
}

func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

func (d *auditDispatcher) Delivered() uint64 {
	if d == nil {
		return 0
	}
	return d.delivered.Load()
}
