package ingest

import (
	"sync"
	"time"

	"github.com/television/television/entry"
)

// batcher accumulates entries and hands them to the sink in size- and
// time-bounded batches, amortizing matcher synchronization.
type batcher struct {
	mutex    sync.Mutex
	sink     Sink
	pending  []*entry.Entry
	bytes    int
	maxBytes int
	interval time.Duration
	timer    *time.Timer
	closed   bool
}

func newBatcher(sink Sink, maxBytes int, interval time.Duration) *batcher {
	return &batcher{
		sink:     sink,
		maxBytes: maxBytes,
		interval: interval,
	}
}

// add queues one entry. The batch flushes when it crosses the byte bound;
// otherwise a timer flushes it after the interval.
func (b *batcher) add(e *entry.Entry, size int) {
	b.mutex.Lock()

	b.pending = append(b.pending, e)
	b.bytes += size

	if b.bytes >= b.maxBytes {
		b.flushLocked()
		b.mutex.Unlock()
		return
	}

	if b.timer == nil {
		b.timer = time.AfterFunc(b.interval, func() {
			b.mutex.Lock()
			b.timer = nil
			b.flushLocked()
			b.mutex.Unlock()
		})
	}
	b.mutex.Unlock()
}

// flush hands any pending entries to the sink immediately.
func (b *batcher) flush() {
	b.mutex.Lock()
	b.flushLocked()
	b.mutex.Unlock()
}

func (b *batcher) flushLocked() {
	if len(b.pending) == 0 || b.closed {
		return
	}
	batch := b.pending
	b.pending = nil
	b.bytes = 0
	b.sink.Inject(batch)
}

// close flushes and stops the timer. Further adds are dropped; the stream
// is shutting down.
func (b *batcher) close() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.flushLocked()
	b.closed = true
}
