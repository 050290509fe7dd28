package ingest

import (
	"context"
	"sync"
	"time"

	pdebug "github.com/lestrrat-go/pdebug"
)

// Watcher fires a reload request at the channel's declared watch
// interval. Missed ticks coalesce: while a reload is still pending, new
// ticks are dropped rather than queued.
type Watcher struct {
	mutex    sync.Mutex
	interval time.Duration
	request  func() // submits a Reload action to the bus
	pending  bool
	cancel   context.CancelFunc
}

// NewWatcher creates a watcher. request must not block.
func NewWatcher(interval time.Duration, request func()) *Watcher {
	return &Watcher{
		interval: interval,
		request:  request,
	}
}

// Start begins ticking. No-op when the interval is zero.
func (w *Watcher) Start(ctx context.Context) {
	if w.interval <= 0 {
		return
	}

	w.mutex.Lock()
	if w.cancel != nil {
		w.mutex.Unlock()
		return
	}
	wctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.mutex.Unlock()

	go w.loop(wctx)
}

func (w *Watcher) loop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.mutex.Lock()
			skip := w.pending
			if !skip {
				w.pending = true
			}
			w.mutex.Unlock()

			if skip {
				if pdebug.Enabled {
					pdebug.Printf("watch: tick coalesced, reload still pending")
				}
				continue
			}
			w.request()
		}
	}
}

// ReloadDone marks the pending reload as completed so the next tick can
// fire again.
func (w *Watcher) ReloadDone() {
	w.mutex.Lock()
	w.pending = false
	w.mutex.Unlock()
}

// Stop halts the watcher. Called on channel switch.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}
