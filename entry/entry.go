// Package entry defines the candidate values that television matches,
// displays and finally prints.
package entry

import (
	"strings"
	"sync/atomic"

	"github.com/google/btree"
	"github.com/television/television/internal/ansi"
)

// IDGenerator hands out unique IDs for entries within a channel.
type IDGenerator interface {
	Next() uint64
}

// IDGen is the default IDGenerator. IDs are monotonic and channel-local;
// the ingestor keeps one generator across reloads.
type IDGen struct {
	n atomic.Uint64
}

func NewIDGen() *IDGen {
	return &IDGen{}
}

func (ig *IDGen) Next() uint64 {
	return ig.n.Add(1) - 1
}

// Template renders a string from an entry's raw text. The interpolation
// language itself is an external collaborator; the engine only ever calls
// Render. Implementations must be pure: the same raw text always yields
// the same output.
type Template interface {
	Render(raw string) string
}

// Identity is the zero template: the raw text itself.
type Identity struct{}

func (Identity) Render(raw string) string { return raw }

// Placeholder substitutes every `{}` in the pattern with the raw text;
// there is no escape for a literal `{}`. This covers the common `printf '%s' {}`-style preview and
// output templates without pulling in the full template language.
type Placeholder struct {
	Pattern string
}

func (t Placeholder) Render(raw string) string {
	return strings.ReplaceAll(t.Pattern, "{}", raw)
}

// Entry is one candidate produced by a source command.
type Entry struct {
	id        uint64
	raw       string
	display   string
	output    string
	spans     []ansi.AttrSpan
	truncated bool
}

// New creates an Entry. The raw text must already be UTF-8 (use Sanitize
// on bytes straight from a subprocess). display and output are rendered
// once, here, so they stay pure functions of raw and the channel templates.
func New(id uint64, raw string, display, output Template, truncated bool) *Entry {
	return &Entry{
		id:        id,
		raw:       raw,
		display:   display.Render(raw),
		output:    output.Render(raw),
		truncated: truncated,
	}
}

// Sanitize makes raw subprocess bytes safe to store: invalid UTF-8 is
// replaced, never dropped.
func Sanitize(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}

// SetSpans attaches ANSI style spans covering the display string. Only
// the ingestor calls this, before the entry is handed to the matcher.
func (e *Entry) SetSpans(spans []ansi.AttrSpan) {
	e.spans = spans
}

// Spans returns the ANSI style spans for the display string, or nil.
func (e *Entry) Spans() []ansi.AttrSpan {
	return e.spans
}

// ID returns the channel-local id of this entry
func (e *Entry) ID() uint64 {
	return e.id
}

// Raw returns the original text as read from the source command
func (e *Entry) Raw() string {
	return e.raw
}

// Display returns the string to be displayed in the result list
func (e *Entry) Display() string {
	return e.display
}

// Output returns the string printed to stdout when this entry is selected
func (e *Entry) Output() string {
	return e.output
}

// Truncated reports whether the source line exceeded the per-entry byte
// limit and was cut
func (e *Entry) Truncated() bool {
	return e.truncated
}

// Less implements the btree.Item interface; entries order by id
func (e *Entry) Less(b btree.Item) bool {
	o, ok := b.(*Entry)
	if !ok {
		return false
	}
	return e.id < o.id
}
