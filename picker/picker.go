// Package picker tracks what the user is pointing at: the highlighted
// result, the multi-selection set, and the visible window over the
// matcher's ranked results.
package picker

import (
	"sync"

	"github.com/google/btree"
	"github.com/television/television/entry"
	"github.com/television/television/matcher"
)

// Picker owns the cursor and selection for one result list.
type Picker struct {
	mutex sync.Mutex

	// cursor anchors to an entry id, not an index, so the highlight
	// survives re-ranks whenever the entry stays in the results.
	cursorID    uint64
	cursorValid bool
	cursorIndex int // last resolved index; fallback for snapped cursors

	selected *selectionSet

	// view window
	offset int // first visible result row
	height int // visible rows, fed back from the render layer
}

func New() *Picker {
	return &Picker{
		selected: newSelectionSet(),
	}
}

// SetHeight records the number of visible result rows. The render layer
// feeds this back after every layout.
func (p *Picker) SetHeight(h int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if h < 1 {
		h = 1
	}
	p.height = h
	p.clampLocked()
}

// Height returns the visible row count.
func (p *Picker) Height() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.height
}

// Offset returns the first visible result row.
func (p *Picker) Offset() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.offset
}

// Sync reconciles the cursor with a fresh snapshot. If the highlighted
// entry dropped out of the results, the cursor snaps to the nearest
// surviving rank.
func (p *Picker) Sync(s *matcher.Snapshot) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(s.Items) == 0 {
		p.cursorValid = false
		p.cursorIndex = 0
		p.offset = 0
		return
	}

	if p.cursorValid {
		for i, it := range s.Items {
			if it.Entry.ID() == p.cursorID {
				p.cursorIndex = i
				p.clampLocked()
				return
			}
		}
	}

	// Entry gone (or no cursor yet): snap to the nearest surviving rank
	if p.cursorIndex >= len(s.Items) {
		p.cursorIndex = len(s.Items) - 1
	}
	if p.cursorIndex < 0 {
		p.cursorIndex = 0
	}
	p.cursorID = s.Items[p.cursorIndex].Entry.ID()
	p.cursorValid = true
	p.clampLocked()
}

// Current returns the highlighted entry, or nil when results are empty.
func (p *Picker) Current(s *matcher.Snapshot) *entry.Entry {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.cursorValid || p.cursorIndex >= len(s.Items) {
		return nil
	}
	return s.Items[p.cursorIndex].Entry
}

// Index returns the highlighted result index and whether it is valid.
func (p *Picker) Index() (int, bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.cursorIndex, p.cursorValid
}

// Move shifts the cursor by delta rows within the snapshot.
func (p *Picker) Move(s *matcher.Snapshot, delta int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(s.Items) == 0 {
		return
	}
	p.cursorIndex += delta
	if p.cursorIndex < 0 {
		p.cursorIndex = 0
	}
	if p.cursorIndex >= len(s.Items) {
		p.cursorIndex = len(s.Items) - 1
	}
	p.cursorID = s.Items[p.cursorIndex].Entry.ID()
	p.cursorValid = true
	p.clampLocked()
}

// Page moves by one window height.
func (p *Picker) Page(s *matcher.Snapshot, dir int) {
	h := p.Height()
	if h <= 0 {
		h = 10
	}
	p.Move(s, dir*h)
}

// Top moves to the best-ranked result.
func (p *Picker) Top(s *matcher.Snapshot) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if len(s.Items) == 0 {
		return
	}
	p.cursorIndex = 0
	p.cursorID = s.Items[0].Entry.ID()
	p.cursorValid = true
	p.clampLocked()
}

// Bottom moves to the worst-ranked result in the snapshot.
func (p *Picker) Bottom(s *matcher.Snapshot) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if len(s.Items) == 0 {
		return
	}
	p.cursorIndex = len(s.Items) - 1
	p.cursorID = s.Items[p.cursorIndex].Entry.ID()
	p.cursorValid = true
	p.clampLocked()
}

// ToggleMultiSelect flips membership of the highlighted entry.
func (p *Picker) ToggleMultiSelect(s *matcher.Snapshot) {
	e := p.Current(s)
	if e == nil {
		return
	}
	p.selected.Toggle(e)
}

// SelectAllVisible adds every entry in the current window.
func (p *Picker) SelectAllVisible(s *matcher.Snapshot) {
	p.mutex.Lock()
	from, to := p.offset, p.offset+p.height
	p.mutex.Unlock()

	if to > len(s.Items) {
		to = len(s.Items)
	}
	for i := from; i < to; i++ {
		p.selected.Add(s.Items[i].Entry)
	}
}

// SelectedCount returns the size of the multi-selection set.
func (p *Picker) SelectedCount() int {
	return p.selected.Len()
}

// IsSelected reports membership of an entry in the multi-selection.
func (p *Picker) IsSelected(e *entry.Entry) bool {
	return p.selected.Has(e)
}

// ClearSelection empties the multi-selection set.
func (p *Picker) ClearSelection() {
	p.selected.Reset()
}

// Confirm returns the outputs to print: every multi-selected entry in
// insertion order, or the highlighted entry alone when the set is empty.
// Returns nil when there is nothing to confirm.
func (p *Picker) Confirm(s *matcher.Snapshot) []string {
	if outs := p.selected.Outputs(); len(outs) > 0 {
		return outs
	}
	e := p.Current(s)
	if e == nil {
		return nil
	}
	return []string{e.Output()}
}

// ConfirmedEntries returns the entries a confirm would emit, for frecency
// accounting.
func (p *Picker) ConfirmedEntries(s *matcher.Snapshot) []*entry.Entry {
	if es := p.selected.Entries(); len(es) > 0 {
		return es
	}
	e := p.Current(s)
	if e == nil {
		return nil
	}
	return []*entry.Entry{e}
}

// Visible returns the window bounds [from, to) over the snapshot.
func (p *Picker) Visible(total int) (int, int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	from := p.offset
	to := from + p.height
	if p.height <= 0 {
		to = total
	}
	if to > total {
		to = total
	}
	if from > to {
		from = to
	}
	return from, to
}

// clampLocked scrolls the window so the cursor stays visible.
func (p *Picker) clampLocked() {
	if p.height <= 0 {
		return
	}
	if p.cursorIndex < p.offset {
		p.offset = p.cursorIndex
	}
	if p.cursorIndex >= p.offset+p.height {
		p.offset = p.cursorIndex - p.height + 1
	}
	if p.offset < 0 {
		p.offset = 0
	}
}

// selectionSet is the multi-selection: a btree for membership plus an
// insertion-order list so confirm emits outputs in the order the user
// picked them.
type selectionSet struct {
	mutex sync.RWMutex
	tree  *btree.BTree
	order []*entry.Entry
}

func newSelectionSet() *selectionSet {
	s := &selectionSet{}
	s.Reset()
	return s
}

func (s *selectionSet) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.tree = btree.New(32)
	s.order = nil
}

func (s *selectionSet) Add(e *entry.Entry) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.tree.Has(e) {
		return
	}
	s.tree.ReplaceOrInsert(e)
	s.order = append(s.order, e)
}

func (s *selectionSet) Remove(e *entry.Entry) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.tree.Delete(e) == nil {
		return
	}
	for i, o := range s.order {
		if o.ID() == e.ID() {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *selectionSet) Toggle(e *entry.Entry) {
	s.mutex.RLock()
	has := s.tree.Has(e)
	s.mutex.RUnlock()
	if has {
		s.Remove(e)
	} else {
		s.Add(e)
	}
}

func (s *selectionSet) Has(e *entry.Entry) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.tree.Has(e)
}

func (s *selectionSet) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.tree.Len()
}

func (s *selectionSet) Outputs() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	out := make([]string, len(s.order))
	for i, e := range s.order {
		out[i] = e.Output()
	}
	return out
}

func (s *selectionSet) Entries() []*entry.Entry {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	out := make([]*entry.Entry, len(s.order))
	copy(out, s.order)
	return out
}
