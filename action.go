package television

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Action is one unit of state mutation. Actions are the sole way
// application state changes; the state loop applies them in submission
// order.
type Action interface {
	Execute(ctx context.Context, t *Television)
}

// ActionFunc is an Action backed by a plain function.
type ActionFunc func(context.Context, *Television)

func (a ActionFunc) Execute(ctx context.Context, t *Television) {
	a(ctx, t)
}

// nameToActions is the registry of user-bindable actions, keyed by the
// names channel files and configs use.
var nameToActions map[string]ActionFunc

// Register puts an action into the registry under name.
func (a ActionFunc) Register(name string) {
	nameToActions[name] = a
}

// namedAction resolves a registered action; unknown names become no-ops
// (validation happens at config load, not here).
func namedAction(name string) Action {
	if a, ok := nameToActions[name]; ok {
		return a
	}
	return ActionFunc(doNothing)
}

// validateActionNames rejects config references to unknown actions.
func validateActionNames(names []string) error {
	for _, n := range names {
		if _, ok := nameToActions[n]; !ok {
			return errors.Errorf("unknown action %q", n)
		}
	}
	return nil
}

// sequenceAction executes a chord's action list in order within one
// tick.
func sequenceAction(names []string) Action {
	return ActionFunc(func(ctx context.Context, t *Television) {
		for _, n := range names {
			namedAction(n).Execute(ctx, t)
		}
	})
}

func init() {
	nameToActions = map[string]ActionFunc{}

	ActionFunc(doQuit).Register("quit")
	ActionFunc(doConfirm).Register("confirm")

	ActionFunc(doSelectNext).Register("select-next")
	ActionFunc(doSelectPrev).Register("select-prev")
	ActionFunc(doSelectNextPage).Register("select-next-page")
	ActionFunc(doSelectPrevPage).Register("select-prev-page")
	ActionFunc(doGoToTop).Register("go-to-top")
	ActionFunc(doGoToBottom).Register("go-to-bottom")

	ActionFunc(doToggleSelection).Register("toggle-selection")
	ActionFunc(doSelectAllVisible).Register("select-all-visible")
	ActionFunc(doClearSelection).Register("clear-selection")

	ActionFunc(doDeletePrevChar).Register("delete-prev-char")
	ActionFunc(doDeleteNextChar).Register("delete-next-char")
	ActionFunc(doDeletePrevWord).Register("delete-prev-word")
	ActionFunc(doDeleteLine).Register("delete-line")
	ActionFunc(doCursorLeft).Register("move-cursor-left")
	ActionFunc(doCursorRight).Register("move-cursor-right")
	ActionFunc(doCursorHome).Register("move-cursor-home")
	ActionFunc(doCursorEnd).Register("move-cursor-end")

	ActionFunc(doToggleRemote).Register("toggle-remote")
	ActionFunc(doToggleActionPicker).Register("toggle-action-picker")
	ActionFunc(doTogglePreview).Register("toggle-preview")
	ActionFunc(doToggleHelp).Register("toggle-help")
	ActionFunc(doToggleStatusBar).Register("toggle-status-bar")

	ActionFunc(doReload).Register("reload")
	ActionFunc(doCycleSource).Register("cycle-source")
	ActionFunc(doCyclePreview).Register("cycle-preview")

	ActionFunc(doPreviewScrollDown).Register("preview-scroll-down")
	ActionFunc(doPreviewScrollUp).Register("preview-scroll-up")

	ActionFunc(doHistoryPrev).Register("history-prev")
	ActionFunc(doHistoryNext).Register("history-next")

	ActionFunc(doCopyEntry).Register("copy-entry")
	ActionFunc(doSuspend).Register("suspend")
}

func doNothing(_ context.Context, _ *Television) {}

func doQuit(ctx context.Context, t *Television) {
	if t.overlay != nil {
		t.leaveOverlay()
		t.dirty()
		return
	}
	t.Exit(ctx, nil)
}

func doConfirm(ctx context.Context, t *Television) {
	t.confirm(ctx)
}

// insertCharAction types one rune into the active query.
func insertCharAction(ch rune) Action {
	return ActionFunc(func(_ context.Context, t *Television) {
		sc := t.active()
		if sc == nil {
			return
		}
		gen := sc.query.InsertAt(ch, sc.caret.Pos())
		sc.caret.Move(1)
		sc.matcher.SetQuery(sc.query.String(), gen, t.exact)
		t.dirty()
	})
}

func doDeletePrevChar(_ context.Context, t *Television) {
	sc := t.active()
	if sc == nil || sc.caret.Pos() == 0 {
		return
	}
	pos := sc.caret.Pos()
	gen := sc.query.DeleteRange(pos-1, pos)
	sc.caret.Move(-1)
	sc.matcher.SetQuery(sc.query.String(), gen, t.exact)
	t.dirty()
}

func doDeleteNextChar(_ context.Context, t *Television) {
	sc := t.active()
	if sc == nil {
		return
	}
	pos := sc.caret.Pos()
	if pos >= sc.query.Len() {
		return
	}
	gen := sc.query.DeleteRange(pos, pos+1)
	sc.matcher.SetQuery(sc.query.String(), gen, t.exact)
	t.dirty()
}

func doDeletePrevWord(_ context.Context, t *Television) {
	sc := t.active()
	if sc == nil || sc.caret.Pos() == 0 {
		return
	}
	pos := sc.caret.Pos()
	start := sc.query.WordStart(pos)
	gen := sc.query.DeleteRange(start, pos)
	sc.caret.SetPos(start)
	sc.matcher.SetQuery(sc.query.String(), gen, t.exact)
	t.dirty()
}

func doDeleteLine(_ context.Context, t *Television) {
	sc := t.active()
	if sc == nil {
		return
	}
	gen := sc.query.Reset()
	sc.caret.SetPos(0)
	sc.matcher.SetQuery("", gen, t.exact)
	t.dirty()
}

func doCursorLeft(_ context.Context, t *Television) {
	if sc := t.active(); sc != nil {
		sc.caret.Move(-1)
		t.dirty()
	}
}

func doCursorRight(_ context.Context, t *Television) {
	if sc := t.active(); sc != nil {
		sc.caret.Move(1)
		sc.caret.Clamp(sc.query.Len())
		t.dirty()
	}
}

func doCursorHome(_ context.Context, t *Television) {
	if sc := t.active(); sc != nil {
		sc.caret.SetPos(0)
		t.dirty()
	}
}

func doCursorEnd(_ context.Context, t *Television) {
	if sc := t.active(); sc != nil {
		sc.caret.SetPos(sc.query.Len())
		t.dirty()
	}
}

func doSelectNext(_ context.Context, t *Television) {
	if sc := t.active(); sc != nil {
		sc.picker.Move(sc.snapshot(), 1)
		t.previewScroll = 0
		t.dirty()
	}
}

func doSelectPrev(_ context.Context, t *Television) {
	if sc := t.active(); sc != nil {
		sc.picker.Move(sc.snapshot(), -1)
		t.previewScroll = 0
		t.dirty()
	}
}

func doSelectNextPage(_ context.Context, t *Television) {
	if sc := t.active(); sc != nil {
		sc.picker.Page(sc.snapshot(), 1)
		t.previewScroll = 0
		t.dirty()
	}
}

func doSelectPrevPage(_ context.Context, t *Television) {
	if sc := t.active(); sc != nil {
		sc.picker.Page(sc.snapshot(), -1)
		t.previewScroll = 0
		t.dirty()
	}
}

func doGoToTop(_ context.Context, t *Television) {
	if sc := t.active(); sc != nil {
		sc.picker.Top(sc.snapshot())
		t.previewScroll = 0
		t.dirty()
	}
}

func doGoToBottom(_ context.Context, t *Television) {
	if sc := t.active(); sc != nil {
		sc.picker.Bottom(sc.snapshot())
		t.previewScroll = 0
		t.dirty()
	}
}

func doToggleSelection(_ context.Context, t *Television) {
	if t.overlay != nil {
		return // overlays are single-select
	}
	if sc := t.scope; sc != nil {
		sc.picker.ToggleMultiSelect(sc.snapshot())
		t.dirty()
	}
}

func doSelectAllVisible(_ context.Context, t *Television) {
	if t.overlay != nil {
		return
	}
	if sc := t.scope; sc != nil {
		sc.picker.SelectAllVisible(sc.snapshot())
		t.dirty()
	}
}

func doClearSelection(_ context.Context, t *Television) {
	if sc := t.scope; sc != nil {
		sc.picker.ClearSelection()
		t.dirty()
	}
}

func doToggleRemote(ctx context.Context, t *Television) {
	if t.mode == ModeRemote {
		t.leaveOverlay()
	} else if t.mode == ModeChannel {
		t.enterRemote(ctx)
	}
	t.dirty()
}

func doToggleActionPicker(ctx context.Context, t *Television) {
	if t.mode == ModeActionPicker {
		t.leaveOverlay()
	} else if t.mode == ModeChannel {
		t.enterActionPicker(ctx)
	}
	t.dirty()
}

func doTogglePreview(_ context.Context, t *Television) {
	t.features.Preview = !t.features.Preview
	t.dirty()
}

func doToggleHelp(_ context.Context, t *Television) {
	t.features.Help = !t.features.Help
	t.dirty()
}

func doToggleStatusBar(_ context.Context, t *Television) {
	t.features.Status = !t.features.Status
	t.dirty()
}

func doReload(ctx context.Context, t *Television) {
	sc := t.scope
	if sc == nil || sc.ingestor == nil {
		return
	}
	if err := sc.ingestor.Reload(ctx); err != nil {
		t.setBanner("reload failed: "+err.Error(), 5*time.Second)
	}
	gen := sc.query.Generation()
	sc.matcher.SetQuery(sc.query.String(), gen, t.exact)
	t.dirty()
}

func doCycleSource(ctx context.Context, t *Television) {
	sc := t.scope
	if sc == nil || sc.ingestor == nil {
		return
	}
	if err := sc.ingestor.CycleSource(ctx); err != nil {
		t.setBanner("cycle-source failed: "+err.Error(), 5*time.Second)
	}
	sc.matcher.SetQuery(sc.query.String(), sc.query.Generation(), t.exact)
	t.dirty()
}

func doCyclePreview(_ context.Context, t *Television) {
	sc := t.scope
	if sc == nil || sc.previewer == nil {
		return
	}
	sc.previewer.CyclePreview()
	// a new preview command invalidates prior content: new revision
	rev := t.revision.Add(1)
	sc.previewer.CancelAllBefore(rev)
	sc.revision = rev
	t.dirty()
}

func doPreviewScrollDown(_ context.Context, t *Television) {
	t.scrollPreview(1)
}

func doPreviewScrollUp(_ context.Context, t *Television) {
	t.scrollPreview(-1)
}

// scrollPreview moves the preview by half a panel page.
func (t *Television) scrollPreview(dir int) {
	t.uiMutex.Lock()
	rows := t.lastUI.ResultRows
	t.uiMutex.Unlock()
	if rows <= 0 {
		rows = 10
	}
	t.previewScroll += dir * rows / 2
	if t.previewScroll < 0 {
		t.previewScroll = 0
	}
	t.dirty()
}

func doHistoryPrev(_ context.Context, t *Television) {
	sc := t.active()
	if sc == nil || t.history == nil {
		return
	}
	if q, ok := t.history.Prev(sc.query.String()); ok {
		gen := sc.query.Set(q)
		sc.caret.SetPos(sc.query.Len())
		sc.matcher.SetQuery(q, gen, t.exact)
		t.dirty()
	}
}

func doHistoryNext(_ context.Context, t *Television) {
	sc := t.active()
	if sc == nil || t.history == nil {
		return
	}
	if q, ok := t.history.Next(); ok {
		gen := sc.query.Set(q)
		sc.caret.SetPos(sc.query.Len())
		sc.matcher.SetQuery(q, gen, t.exact)
		t.dirty()
	}
}

// doCopyEntry copies the highlighted entry's output via OSC 52. The
// clipboard handle (the tty) is lazily used; failure is non-fatal.
func doCopyEntry(_ context.Context, t *Television) {
	sc := t.active()
	if sc == nil {
		return
	}
	e := sc.picker.Current(sc.snapshot())
	if e == nil {
		return
	}
	if err := writeClipboard(e.Output()); err != nil {
		t.setBanner("copy failed: "+err.Error(), 2*time.Second)
		return
	}
	t.setBanner("copied", time.Second)
}

func doSuspend(_ context.Context, t *Television) {
	t.suspend()
}
