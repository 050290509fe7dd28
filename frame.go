package television

import (
	"strconv"
	"time"

	"github.com/television/television/entry"
	"github.com/television/television/matcher"
	"github.com/television/television/preview"
	"github.com/television/television/ui"
)

var spinnerFrames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// buildFrame assembles the next frame from current state. Called by the
// render loop; reads are safe because each referenced structure is
// internally synchronized and snapshots are immutable.
func (t *Television) buildFrame() *ui.Frame {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()

	sc := t.active()
	if sc == nil {
		return nil
	}

	s := sc.snapshot()
	sc.picker.Sync(s)

	from, to := sc.picker.Visible(len(s.Items))
	cursorIdx, cursorOK := sc.picker.Index()

	rows := make([]ui.Row, 0, to-from)
	for i := from; i < to; i++ {
		it := s.Items[i]
		rows = append(rows, ui.Row{
			ID:        it.Entry.ID(),
			Display:   it.Entry.Display(),
			Ranges:    it.Ranges,
			Spans:     it.Entry.Spans(),
			Cursor:    cursorOK && i == cursorIdx,
			Selected:  sc.picker.IsSelected(it.Entry),
			Truncated: it.Entry.Truncated(),
		})
	}

	f := &ui.Frame{
		Prompt: t.framePrompt(),
		Query:  sc.query.String(),
		Caret:  sc.caret.Pos(),
		Counts: ui.FormatCounts(s.TotalMatched, s.TotalPool),
		Rows:   rows,
		Status: t.statusLine(),
		Spec: ui.LayoutSpec{
			Layout:      t.layout,
			Features:    t.frameFeatures(),
			PreviewSize: t.previewSize,
			UIScale:     t.uiScale,
		},
	}
	if t.inputHeader != "" {
		f.InputHeader = t.inputHeader
	}

	if sc.loading {
		t.spinnerIdx = (t.spinnerIdx + 1) % len(spinnerFrames)
		f.Spinner = spinnerFrames[t.spinnerIdx]
	}

	if t.banner != "" && time.Now().Before(t.bannerUntil) {
		f.Banner = t.banner
	}

	if t.features.Help {
		f.Help = t.keymap.Bindings()
		if len(f.Help) > 8 {
			f.Help = f.Help[:8]
		}
	}

	if f.Spec.Features.Preview {
		f.Preview = t.previewView(sc, s)
	}

	return f
}

// frameFeatures disables panels that make no sense in overlay modes.
func (t *Television) frameFeatures() ui.Features {
	feats := t.features
	if t.overlay != nil {
		feats.Preview = false
		feats.Help = false
	}
	if sc := t.scope; sc == nil || sc.previewer == nil {
		feats.Preview = false
	}
	return feats
}

func (t *Television) framePrompt() string {
	switch t.mode {
	case ModeRemote:
		return "channel>"
	case ModeActionPicker:
		return "action>"
	}
	return t.prompt
}

func (t *Television) statusLine() string {
	sc := t.scope
	if sc == nil || sc.proto == nil {
		return ""
	}
	status := sc.proto.Metadata.Name
	if t.mode != ModeChannel {
		status += " [" + t.mode.String() + "]"
	}
	if n := sc.picker.SelectedCount(); n > 0 {
		status += "  " + strconv.Itoa(n) + " selected"
	}
	return status
}

// previewView resolves the preview panel content for the highlighted
// entry from the cache; misses render as pending.
func (t *Television) previewView(sc *scope, s *matcher.Snapshot) *ui.PreviewView {
	if sc.previewer == nil {
		return nil
	}
	e := sc.picker.Current(s)
	if e == nil {
		return &ui.PreviewView{}
	}

	title := e.Display()
	if sc.proto != nil && sc.proto.Preview.Header != "" {
		title = entry.Placeholder{Pattern: sc.proto.Preview.Header}.Render(e.Output())
	}
	pv := &ui.PreviewView{Title: title}
	c, ok := sc.previewer.Get(sc.revision, e.Output())
	switch {
	case !ok || c.Status == preview.StatusPending:
		pv.Message = "loading…"
	case c.Status == preview.StatusFailed:
		msg := c.Kind.String()
		if c.Stderr != "" {
			msg += ": " + c.Stderr
		}
		pv.Message = msg
	default:
		pv.Text = c.Text
		pv.Truncated = c.Truncated
		pv.Scroll = c.Offset + t.previewScroll
	}
	return pv
}
