// File: internal/logbus/logbus.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Asynchronous fan-in hub behind the log-event callback. Publish never
// blocks the calling actor: events are appended to an unbounded FIFO and
// drained by a single goroutine into the user-supplied sink, so slow
// presentation layers cannot stall producers or consumers. Ordering
// across actors is best-effort.

package logbus

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-pipe/api"
)

// Bus buffers log events between concurrent actors and one sink.
type Bus struct {
	mu      sync.Mutex
	pending *queue.Queue
	closed  bool

	notify chan struct{}
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup

	sink api.LogSink
}

// New starts the drain goroutine for the given sink.
func New(sink api.LogSink) *Bus {
	if sink == nil {
		sink = api.Discard
	}
	b := &Bus{
		pending: queue.New(),
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
		sink:    sink,
	}
	b.wg.Add(1)
	go b.drain()
	return b
}

// Publish enqueues one event. Safe for concurrent use; events published
// after Close are dropped.
func (b *Bus) Publish(message string) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.pending.Add(message)
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// Close stops accepting events, flushes everything already queued, and
// waits for the drain goroutine to exit. Idempotent.
func (b *Bus) Close() {
	b.once.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()
		close(b.done)
		b.wg.Wait()
	})
}

func (b *Bus) drain() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			b.flush()
			return
		case <-b.notify:
			b.flush()
		}
	}
}

// flush hands queued events to the sink outside the lock.
func (b *Bus) flush() {
	for {
		b.mu.Lock()
		if b.pending.Length() == 0 {
			b.mu.Unlock()
			return
		}
		msg := b.pending.Remove().(string)
		b.mu.Unlock()
		b.sink(msg)
	}
}
