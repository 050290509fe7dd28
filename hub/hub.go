// Package hub implements the action bus between television's components.
// Every input stimulus is converted to a typed action and submitted here;
// the core drains the queue and applies actions in arrival order. The bus
// is the sole way application state mutates.
package hub

import (
	"context"
	"sync"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/pkg/errors"
)

// ErrBusClosed is returned by Submit after Close. Submission during
// shutdown is not an error condition for callers; they are expected to
// drop the action on the floor.
var ErrBusClosed = errors.New("action bus is closed")

// Hub is an unbounded multi-producer / single-consumer action queue.
// Submit never blocks; ordering is FIFO per submitter.
type Hub[T any] struct {
	mutex  sync.Mutex
	queue  []T
	notify chan struct{}
	closed bool
}

// New creates a new Hub
func New[T any]() *Hub[T] {
	return &Hub[T]{
		notify: make(chan struct{}, 1),
	}
}

// Submit enqueues an action. It never blocks. The only possible error is
// ErrBusClosed, during shutdown.
func (h *Hub[T]) Submit(v T) error {
	h.mutex.Lock()
	if h.closed {
		h.mutex.Unlock()
		return ErrBusClosed
	}
	h.queue = append(h.queue, v)
	h.mutex.Unlock()

	// Wake the consumer. The channel has capacity 1; a pending wakeup
	// already covers us.
	select {
	case h.notify <- struct{}{}:
	default:
	}
	return nil
}

// Drain returns up to max queued actions in arrival order without
// blocking. It may return an empty slice.
func (h *Hub[T]) Drain(max int) []T {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	n := len(h.queue)
	if n == 0 {
		return nil
	}
	if max > 0 && n > max {
		n = max
	}

	out := make([]T, n)
	copy(out, h.queue[:n])
	rest := copy(h.queue, h.queue[n:])
	// Nil out the tail so drained actions can be collected
	var zero T
	for i := rest; i < len(h.queue); i++ {
		h.queue[i] = zero
	}
	h.queue = h.queue[:rest]

	if rest > 0 {
		select {
		case h.notify <- struct{}{}:
		default:
		}
	}
	return out
}

// Wait blocks until at least one action is queued or the context is
// cancelled. Returns false on cancellation or close.
func (h *Hub[T]) Wait(ctx context.Context) bool {
	for {
		h.mutex.Lock()
		n := len(h.queue)
		closed := h.closed
		h.mutex.Unlock()

		if n > 0 {
			return true
		}
		if closed {
			return false
		}

		select {
		case <-ctx.Done():
			return false
		case <-h.notify:
		}
	}
}

// Close shuts the bus down. Queued actions remain drainable; further
// submissions fail with ErrBusClosed.
func (h *Hub[T]) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.closed {
		return
	}
	if pdebug.Enabled {
		pdebug.Printf("hub: closing action bus (%d queued)", len(h.queue))
	}
	h.closed = true
	select {
	case h.notify <- struct{}{}:
	default:
	}
}
