// File: core/buffer/bounded.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-capacity blocking ring buffer shared by producer and consumer
// goroutines within one process. Capacity is enforced by two counting
// permit channels ("free slots" and "filled slots"); slot storage and the
// read/write indices are mutated only inside the mutex-guarded critical
// section. Stop closes a shared cancellation channel, which wakes every
// blocked waiter at once; a waiter that already holds a permit re-checks
// the stopped flag under the mutex before mutating anything.

package buffer

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-pipe/api"
)

// BoundedBuffer is a blocking MPMC ring buffer with explicit admission
// control. Insert and Remove suspend the calling goroutine until a permit
// is available or the buffer is stopped.
type BoundedBuffer[T any] struct {
	mu    sync.Mutex
	slots []T
	in    int // next write index, advanced modulo capacity
	out   int // next read index, advanced modulo capacity
	size  int

	free   chan struct{} // one token per free slot
	filled chan struct{} // one token per filled slot

	stopped  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once

	sink api.LogSink
}

// New allocates a buffer with the given capacity. Capacity must be
// positive; the caller validates configuration before construction.
func New[T any](capacity int, sink api.LogSink) *BoundedBuffer[T] {
	if capacity < 1 {
		panic("bounded buffer capacity must be positive")
	}
	if sink == nil {
		sink = api.Discard
	}
	b := &BoundedBuffer[T]{
		slots:  make([]T, capacity),
		free:   make(chan struct{}, capacity),
		filled: make(chan struct{}, capacity),
		stopCh: make(chan struct{}),
		sink:   sink,
	}
	for i := 0; i < capacity; i++ {
		b.free <- struct{}{}
	}
	return b
}

// Insert blocks until a free slot exists, then stores item at the write
// index and signals one waiting consumer. Returns api.ErrStopped without
// mutating state if the buffer is stopped before or while waiting.
func (b *BoundedBuffer[T]) Insert(item T) error {
	select {
	case <-b.stopCh:
		return api.ErrStopped
	case <-b.free:
	}
	b.mu.Lock()
	if b.stopped.Load() {
		// Woken with a permit after Stop: give it back by exiting.
		b.mu.Unlock()
		return api.ErrStopped
	}
	b.slots[b.in] = item
	b.in = (b.in + 1) % len(b.slots)
	b.size++
	b.sink(fmt.Sprintf("produced: %v", item))
	b.mu.Unlock()
	b.filled <- struct{}{}
	return nil
}

// Remove blocks until a filled slot exists, then returns the item at the
// read index, clears the slot, and signals one waiting producer. Returns
// api.ErrStopped without mutating state if the buffer is stopped.
func (b *BoundedBuffer[T]) Remove() (T, error) {
	var zero T
	select {
	case <-b.stopCh:
		return zero, api.ErrStopped
	case <-b.filled:
	}
	b.mu.Lock()
	if b.stopped.Load() {
		b.mu.Unlock()
		return zero, api.ErrStopped
	}
	item := b.slots[b.out]
	b.slots[b.out] = zero
	b.out = (b.out + 1) % len(b.slots)
	b.size--
	b.sink(fmt.Sprintf("consumed: %v", item))
	b.mu.Unlock()
	b.free <- struct{}{}
	return item, nil
}

// Stop transitions the buffer to its terminal state and wakes every
// goroutine blocked in Insert or Remove. Idempotent; there is no way back
// to the running state.
func (b *BoundedBuffer[T]) Stop() {
	b.stopOnce.Do(func() {
		b.stopped.Store(true)
		close(b.stopCh)
		b.sink("buffer stopped")
	})
}

// Stopped reports whether Stop has been called.
func (b *BoundedBuffer[T]) Stopped() bool {
	return b.stopped.Load()
}

// Len returns the number of items currently held.
func (b *BoundedBuffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Cap returns the fixed capacity.
func (b *BoundedBuffer[T]) Cap() int {
	return len(b.slots)
}
