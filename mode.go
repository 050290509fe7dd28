package television

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/television/television/channels"
	"github.com/television/television/entry"
	"github.com/television/television/ingest"
	"github.com/television/television/matcher"
	"github.com/television/television/picker"
	"github.com/television/television/preview"
	"github.com/television/television/query"
)

// Mode selects which input map is active and which picker the matcher
// feeds.
type Mode int

const (
	// ModeChannel is normal picking within a channel.
	ModeChannel Mode = iota
	// ModeRemote binds the picker to the in-memory channel list.
	ModeRemote
	// ModeActionPicker binds the picker to the channel's declared actions.
	ModeActionPicker
)

func (m Mode) String() string {
	switch m {
	case ModeChannel:
		return "channel"
	case ModeRemote:
		return "remote"
	case ModeActionPicker:
		return "actions"
	}
	return "unknown"
}

// scope bundles everything one picker session owns: the matcher, the
// cursor state, the query, and (for real channels) the source and
// preview machinery. Loading a channel constructs a fresh scope;
// tearing one down cancels its whole subtree.
type scope struct {
	proto     *channels.Prototype
	revision  uint64
	matcher   *matcher.Matcher
	picker    *picker.Picker
	ingestor  *ingest.Ingestor
	previewer *preview.Previewer
	watcher   *ingest.Watcher
	query     *query.Query
	caret     *query.Caret
	cancel    context.CancelFunc

	loading bool
}

// stop cancels the scope subtree and kills its subprocesses.
func (s *scope) stop() {
	if s == nil {
		return
	}
	if s.watcher != nil {
		s.watcher.Stop()
	}
	if s.ingestor != nil {
		s.ingestor.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
}

// snapshot returns the scope's current ranked view, bounded to what the
// UI can use.
func (s *scope) snapshot() *matcher.Snapshot {
	return s.matcher.Snapshot(0)
}

// newOverlayScope builds an in-memory scope over a fixed entry list, for
// the remote control and the action picker. No subprocesses are
// involved; entries are injected directly.
func (t *Television) newOverlayScope(ctx context.Context, lines []string) *scope {
	sctx, cancel := context.WithCancel(ctx)

	m := matcher.New(matcher.WithUpdateFunc(t.submitSnapshotUpdate))
	go m.Run(sctx)

	idg := entry.NewIDGen()
	es := make([]*entry.Entry, 0, len(lines))
	for _, l := range lines {
		out := l
		if i := strings.IndexByte(l, '\t'); i >= 0 {
			out = l[:i]
		}
		e := entry.New(idg.Next(), l, tabDisplay{}, fixed{out}, false)
		es = append(es, e)
	}
	m.Inject(es)

	sc := &scope{
		matcher: m,
		picker:  picker.New(),
		query:   query.New(),
		caret:   &query.Caret{},
		cancel:  cancel,
	}
	sc.matcher.SetQuery("", sc.query.Set(""), false)
	return sc
}

// tabDisplay renders "name\tdescription" lines with aligned columns.
type tabDisplay struct{}

func (tabDisplay) Render(raw string) string {
	return strings.ReplaceAll(raw, "\t", "  ")
}

// fixed is a Template returning a constant.
type fixed struct{ s string }

func (f fixed) Render(string) string { return f.s }

// enterRemote pushes the current picker and binds the remote control.
func (t *Television) enterRemote(ctx context.Context) {
	if t.overlay != nil || !t.features.Remote {
		return
	}
	t.overlay = t.newOverlayScope(ctx, t.cable.Descriptions())
	t.mode = ModeRemote
}

// enterActionPicker binds the picker to the channel's declared actions.
func (t *Television) enterActionPicker(ctx context.Context) {
	if t.overlay != nil || t.scope == nil || t.scope.proto == nil {
		return
	}
	names := make([]string, 0, len(t.scope.proto.Actions))
	for name, spec := range t.scope.proto.Actions {
		names = append(names, name+"\t"+spec.Command)
	}
	if len(names) == 0 {
		t.setBanner("channel declares no actions", 2*time.Second)
		return
	}
	sort.Strings(names)
	t.overlay = t.newOverlayScope(ctx, names)
	t.mode = ModeActionPicker
}

// leaveOverlay pops back to the channel picker.
func (t *Television) leaveOverlay() {
	if t.overlay == nil {
		return
	}
	t.overlay.stop()
	t.overlay = nil
	t.mode = ModeChannel
}

// active returns the scope input currently drives.
func (t *Television) active() *scope {
	if t.overlay != nil {
		return t.overlay
	}
	return t.scope
}
