package matcher

import (
	"sync"

	"github.com/television/television/entry"
)

// Pool is the append-only candidate store. Entries are only ever removed
// by Reset, which starts a new epoch.
type Pool struct {
	mutex   sync.RWMutex
	entries []*entry.Entry
	epoch   uint64
}

func NewPool() *Pool {
	return &Pool{}
}

// Append adds entries to the pool. Returns the epoch the entries landed
// in, so callers racing a reset can detect that their batch was dropped.
func (p *Pool) Append(es []*entry.Entry) uint64 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.entries = append(p.entries, es...)
	return p.epoch
}

// Size returns the number of entries in the pool.
func (p *Pool) Size() int {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return len(p.entries)
}

// Epoch returns the current pool epoch.
func (p *Pool) Epoch() uint64 {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.epoch
}

// Slice returns the entries in [from, to). The returned slice aliases the
// pool's backing array; since the pool is append-only within an epoch,
// the contents are stable for the reader.
func (p *Pool) Slice(from, to int) []*entry.Entry {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	if to > len(p.entries) {
		to = len(p.entries)
	}
	if from > to {
		from = to
	}
	return p.entries[from:to]
}

// At returns the entry at index n, or nil if out of range.
func (p *Pool) At(n int) *entry.Entry {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	if n < 0 || n >= len(p.entries) {
		return nil
	}
	return p.entries[n]
}

// Reset drops all entries and bumps the epoch.
func (p *Pool) Reset() uint64 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.entries = nil
	p.epoch++
	return p.epoch
}
