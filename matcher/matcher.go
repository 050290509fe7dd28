// Package matcher maintains a live ranking of the candidate pool against
// the current query. A single worker goroutine scores entries; readers
// obtain immutable, version-tagged snapshots without blocking it.
package matcher

import (
	"container/heap"
	"context"
	"sort"
	"strings"
	"sync/atomic"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/television/television/entry"
)

// DefaultTopK bounds how many ranked results a snapshot carries. The UI
// only ever pages through the best TopK; totals still count everything.
const DefaultTopK = 1024

// chunkSize is how many pool entries the worker scores between checks
// for a superseding query.
const chunkSize = 2048

// Scored is one ranked result.
type Scored struct {
	Entry  *entry.Entry
	Score  int
	Ranges [][]int // byte offsets into Entry.Display()
}

// Snapshot is an immutable view of the current best matches, tagged with
// the query generation and pool epoch that produced it.
type Snapshot struct {
	Items        []Scored
	Generation   uint64
	Epoch        uint64
	TotalMatched int
	TotalPool    int
	// Complete is true once every pool entry present at publish time has
	// been scored against this generation.
	Complete bool
}

// Bias adds a rank-time score for an entry's output; the frecency store
// implements it. An empty query ranks by bias alone.
type Bias interface {
	Score(output string) int
}

type queryReq struct {
	query      string
	generation uint64
	exact      bool
}

// Matcher owns the pool and the worker.
type Matcher struct {
	pool     *Pool
	topK     int
	bias     Bias
	onUpdate func()

	snapshot atomic.Pointer[Snapshot]
	queryCh  chan queryReq
	notifyCh chan struct{}
	resetCh  chan uint64
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithTopK overrides the snapshot size bound.
func WithTopK(k int) Option {
	return func(m *Matcher) { m.topK = k }
}

// WithBias installs a rank-time bias (frecency).
func WithBias(b Bias) Option {
	return func(m *Matcher) { m.bias = b }
}

// WithUpdateFunc installs a callback invoked after every snapshot
// publish. Used by the core to request renders. Must not block.
func WithUpdateFunc(fn func()) Option {
	return func(m *Matcher) { m.onUpdate = fn }
}

func New(options ...Option) *Matcher {
	m := &Matcher{
		pool:     NewPool(),
		topK:     DefaultTopK,
		queryCh:  make(chan queryReq, 1),
		notifyCh: make(chan struct{}, 1),
		resetCh:  make(chan uint64, 1),
	}
	for _, o := range options {
		o(m)
	}
	m.snapshot.Store(&Snapshot{Complete: true})
	return m
}

// Pool exposes the candidate pool.
func (m *Matcher) Pool() *Pool {
	return m.pool
}

// Inject appends entries to the pool and wakes the worker. Runs
// concurrently with queries.
func (m *Matcher) Inject(es []*entry.Entry) {
	if len(es) == 0 {
		return
	}
	m.pool.Append(es)
	select {
	case m.notifyCh <- struct{}{}:
	default:
	}
}

// SetQuery replaces the current query. A pending, not-yet-consumed query
// is superseded in place: the worker always prefers the newest.
func (m *Matcher) SetQuery(q string, generation uint64, exact bool) {
	req := queryReq{query: q, generation: generation, exact: exact}
	for {
		select {
		case m.queryCh <- req:
			return
		default:
			select {
			case <-m.queryCh:
			default:
			}
		}
	}
}

// Reset clears the pool and all pending work, starting a new epoch.
func (m *Matcher) Reset() uint64 {
	ep := m.pool.Reset()
	for {
		select {
		case m.resetCh <- ep:
			return ep
		default:
			select {
			case <-m.resetCh:
			default:
			}
		}
	}
}

// Snapshot returns the best maxRows current matches. Wait-free: it never
// touches the worker.
func (m *Matcher) Snapshot(maxRows int) *Snapshot {
	s := m.snapshot.Load()
	if maxRows <= 0 || maxRows >= len(s.Items) {
		return s
	}
	return &Snapshot{
		Items:        s.Items[:maxRows],
		Generation:   s.Generation,
		Epoch:        s.Epoch,
		TotalMatched: s.TotalMatched,
		TotalPool:    s.TotalPool,
		Complete:     s.Complete,
	}
}

// workerState carries the incremental scan between worker wakeups.
type workerState struct {
	query      string
	atoms      []Atom
	generation uint64
	exact      bool
	epoch      uint64

	scanned int      // pool entries scored so far for this generation
	matched []Scored // every match for this generation, pool order
	top     topHeap  // bounded best-K
	topK    int
}

// Run is the matcher worker. Exactly one per channel.
func (m *Matcher) Run(ctx context.Context) {
	if pdebug.Enabled {
		g := pdebug.Marker("Matcher.Run")
		defer g.End()
	}

	st := &workerState{topK: m.topK, epoch: m.pool.Epoch()}

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-m.queryCh:
			m.applyQuery(st, req)
		case ep := <-m.resetCh:
			m.applyReset(st, ep)
		case <-m.notifyCh:
		}

		m.scan(ctx, st)
	}
}

// applyQuery installs a new query, reusing the prior match set when the
// new query textually extends the old one and the old scan completed.
func (m *Matcher) applyQuery(st *workerState, req queryReq) {
	size := m.pool.Size()
	prevQuery := st.query
	prevMatched := st.matched
	prevComplete := st.scanned >= size

	st.query = req.query
	st.generation = req.generation
	st.exact = req.exact
	st.atoms = ParseQuery(req.query, req.exact)
	st.matched = nil
	st.top = st.top[:0]
	st.scanned = 0

	if prevComplete && prevQuery != "" && strings.HasPrefix(req.query, prevQuery) &&
		!strings.ContainsAny(req.query, "!$\\") {
		// Narrowing an already-complete result set: only prior matches
		// can still match. Negations, suffix anchors and escapes can
		// widen the set when extended, so those queries rescan.
		st.scanned = size
		for _, sc := range prevMatched {
			if s, ranges, ok := m.score(st.atoms, sc.Entry); ok {
				st.push(Scored{Entry: sc.Entry, Score: s, Ranges: ranges})
			}
		}
	}
}

func (m *Matcher) applyReset(st *workerState, epoch uint64) {
	st.epoch = epoch
	st.matched = nil
	st.top = st.top[:0]
	st.scanned = 0
	m.publish(st)
}

// scan scores pool entries until caught up, abandoning the pass when a
// newer query or reset arrives.
func (m *Matcher) scan(ctx context.Context, st *workerState) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-m.queryCh:
			m.applyQuery(st, req)
			continue
		case ep := <-m.resetCh:
			m.applyReset(st, ep)
			continue
		default:
		}

		size := m.pool.Size()
		if st.scanned >= size {
			m.publish(st)
			return
		}

		to := st.scanned + chunkSize
		if to > size {
			to = size
		}
		for _, e := range m.pool.Slice(st.scanned, to) {
			if s, ranges, ok := m.score(st.atoms, e); ok {
				st.push(Scored{Entry: e, Score: s, Ranges: ranges})
			}
		}
		st.scanned = to
		m.publish(st)
	}
}

// score evaluates every atom against one entry. All positive atoms must
// match; negated atoms must not.
func (m *Matcher) score(atoms []Atom, e *entry.Entry) (int, [][]int, bool) {
	display := e.Display()

	var (
		total  int
		ranges [][]int
	)
	for _, a := range atoms {
		if a.Negate {
			if contains(a, display) {
				return 0, nil, false
			}
			continue
		}
		s, r, ok := matchAtom(a, display)
		if !ok {
			return 0, nil, false
		}
		total += s
		ranges = append(ranges, r...)
	}

	if m.bias != nil {
		total += m.bias.Score(e.Output())
	}
	return total, ranges, true
}

// push records a match in pool order and in the bounded top-K heap.
func (st *workerState) push(sc Scored) {
	st.matched = append(st.matched, sc)

	if len(st.top) < st.topK {
		heap.Push(&st.top, sc)
		return
	}
	if worseThan(st.top[0], sc) {
		st.top[0] = sc
		heap.Fix(&st.top, 0)
	}
}

// publish assembles an immutable snapshot from the worker's top-K.
func (m *Matcher) publish(st *workerState) {
	items := make([]Scored, len(st.top))
	copy(items, st.top)
	sort.Slice(items, func(i, j int) bool {
		return worseThan(items[j], items[i])
	})

	poolSize := m.pool.Size()
	m.snapshot.Store(&Snapshot{
		Items:        items,
		Generation:   st.generation,
		Epoch:        st.epoch,
		TotalMatched: len(st.matched),
		TotalPool:    poolSize,
		Complete:     st.scanned >= poolSize,
	})

	if m.onUpdate != nil {
		m.onUpdate()
	}
}

// worseThan orders results: higher score wins, ties break to the lower
// entry id.
func worseThan(a, b Scored) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Entry.ID() > b.Entry.ID()
}

// topHeap is a min-heap whose root is the worst retained result.
type topHeap []Scored

func (h topHeap) Len() int            { return len(h) }
func (h topHeap) Less(i, j int) bool  { return worseThan(h[i], h[j]) }
func (h topHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *topHeap) Push(x interface{}) { *h = append(*h, x.(Scored)) }
func (h *topHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
