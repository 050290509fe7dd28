package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/television/television/internal/ansi"
)

// Row is one visible result line.
type Row struct {
	ID        uint64
	Display   string
	Ranges    [][]int // matched byte offsets into Display
	Spans     []ansi.AttrSpan
	Cursor    bool
	Selected  bool
	Truncated bool
}

// PreviewView is the preview panel content for one frame.
type PreviewView struct {
	Title     string
	Text      string
	Scroll    int
	Truncated bool
	Message   string // failure or pending text shown instead of content
}

// Frame is everything one draw needs. The render loop assembles it from
// core state; the draw layer holds no references back.
type Frame struct {
	Prompt      string
	InputHeader string
	Query       string
	Caret       int // rune position within Query
	Counts      string
	Spinner     rune // 0 when idle
	Rows        []Row
	Preview     *PreviewView
	Status      string
	Banner      string
	Help        []string
	Spec        LayoutSpec
}

// Result reports layout facts back to the core so the previewer can be
// driven from what is actually visible.
type Result struct {
	ResultRows int // rows the results panel can show
	VisibleIDs []uint64
}

// Draw paints one frame and returns the layout feedback.
func Draw(s Screen, styles *StyleSet, f *Frame) Result {
	w, h := s.Size()
	f.Spec.HelpLines = len(f.Help)
	panels := Compute(w, h, f.Spec)

	s.Clear()
	drawInput(s, styles, f, panels.Input)
	visible := drawResults(s, styles, f, panels.Results)
	if !panels.Preview.Empty() && f.Preview != nil {
		drawPreview(s, styles, f.Preview, panels.Preview)
	}
	if !panels.Status.Empty() {
		drawStatus(s, styles, f, panels.Status)
	}
	if !panels.Help.Empty() {
		drawHelp(s, styles, f.Help, panels.Help)
	}
	s.Show()

	return Result{ResultRows: panels.Results.H, VisibleIDs: visible}
}

func drawInput(s Screen, styles *StyleSet, f *Frame, r Rect) {
	if r.Empty() {
		return
	}

	x := r.X
	if f.InputHeader != "" {
		x = Print(s).X(x).Y(r.Y).MaxX(r.X+r.W).Style(styles.Status).Msg(f.InputHeader + " ").Do()
	}
	x = Print(s).X(x).Y(r.Y).MaxX(r.X+r.W).Style(styles.Basic).Msg(f.Prompt + " ").Do()

	queryStart := x
	Print(s).X(x).Y(r.Y).MaxX(r.X+r.W).Style(styles.Query).Msg(f.Query).Fill(true).Do()

	// caret position in display cells
	runes := []rune(f.Query)
	caret := f.Caret
	if caret > len(runes) {
		caret = len(runes)
	}
	cx := queryStart
	for i := 0; i < caret; i++ {
		cx += runewidth.RuneWidth(runes[i])
	}
	if cx < r.X+r.W {
		s.ShowCursor(cx, r.Y)
	}

	// counts (and spinner) right-aligned
	counts := f.Counts
	if f.Spinner != 0 {
		counts = string(f.Spinner) + " " + counts
	}
	if counts != "" {
		cw := runewidth.StringWidth(counts)
		if r.W > cw {
			Print(s).X(r.X + r.W - cw).Y(r.Y).MaxX(r.X + r.W).Style(styles.Status).Msg(counts).Do()
		}
	}
}

func drawResults(s Screen, styles *StyleSet, f *Frame, r Rect) []uint64 {
	if r.Empty() {
		return nil
	}

	visible := make([]uint64, 0, len(f.Rows))
	for i := 0; i < r.H && i < len(f.Rows); i++ {
		row := f.Rows[i]
		visible = append(visible, row.ID)
		drawRow(s, styles, row, r, r.Y+i)
	}
	return visible
}

func drawRow(s Screen, styles *StyleSet, row Row, r Rect, y int) {
	base := styles.Basic
	if row.Cursor {
		base = styles.CursorRow
	}

	prefix := "  "
	if row.Selected {
		prefix = "▌ "
	}
	x := Print(s).X(r.X).Y(y).MaxX(r.X+r.W).Style(selStyle(styles, row, base)).Msg(prefix).Do()

	display := row.Display
	if row.Truncated {
		display += "…"
	}

	// per-rune styling: matched ranges and ANSI spans layer over base
	matched := make([]bool, len(display))
	for _, rg := range row.Ranges {
		for i := rg[0]; i < rg[1] && i < len(matched); i++ {
			matched[i] = true
		}
	}

	spanAt := spanIndex(row.Spans)

	bi := 0 // byte index into display
	ri := 0 // rune index
	for _, ch := range display {
		st := base
		if sp, ok := spanAt(ri); ok && !row.Cursor {
			st = StyleFromAttr(base, sp.Fg, sp.Bg)
		}
		if bi < len(matched) && matched[bi] {
			st = mergeMatched(styles.Matched, row.Cursor)
		}

		w := runewidth.RuneWidth(ch)
		if w == 0 {
			bi += len(string(ch))
			ri++
			continue
		}
		if x+w > r.X+r.W {
			break
		}
		s.SetCell(x, y, ch, st)
		for i := 1; i < w; i++ {
			s.SetCell(x+i, y, ' ', st)
		}
		x += w
		bi += len(string(ch))
		ri++
	}

	for ; x < r.X+r.W; x++ {
		s.SetCell(x, y, ' ', base)
	}
}

func selStyle(styles *StyleSet, row Row, base tcell.Style) tcell.Style {
	if row.Selected {
		return styles.Selected
	}
	return base
}

// mergeMatched keeps match highlighting readable on the cursor row.
func mergeMatched(matched tcell.Style, onCursor bool) tcell.Style {
	if onCursor {
		return matched.Reverse(true)
	}
	return matched
}

// spanIndex returns a lookup from rune index to ANSI span.
func spanIndex(spans []ansi.AttrSpan) func(int) (ansi.AttrSpan, bool) {
	if len(spans) == 0 {
		return func(int) (ansi.AttrSpan, bool) { return ansi.AttrSpan{}, false }
	}
	return func(ri int) (ansi.AttrSpan, bool) {
		acc := 0
		for _, sp := range spans {
			if ri < acc+sp.Length {
				return sp, true
			}
			acc += sp.Length
		}
		return ansi.AttrSpan{}, false
	}
}

func drawPreview(s Screen, styles *StyleSet, pv *PreviewView, r Rect) {
	// left border
	for y := r.Y; y < r.Y+r.H; y++ {
		s.SetCell(r.X, y, '│', styles.Border)
	}
	inner := Rect{X: r.X + 1, Y: r.Y, W: r.W - 1, H: r.H}
	if inner.Empty() {
		return
	}

	y := inner.Y
	if pv.Title != "" {
		Print(s).X(inner.X).Y(y).MaxX(inner.X+inner.W).Style(styles.Status).Msg(pv.Title).Fill(true).Do()
		y++
	}

	if pv.Message != "" {
		Print(s).X(inner.X).Y(y).MaxX(inner.X+inner.W).Style(styles.Banner).Msg(pv.Message).Do()
		return
	}

	lines := strings.Split(pv.Text, "\n")
	from := pv.Scroll
	if from >= len(lines) {
		from = len(lines) - 1
	}
	if from < 0 {
		from = 0
	}

	for i := from; i < len(lines) && y < inner.Y+inner.H; i++ {
		drawAnsiLine(s, styles, lines[i], inner, y)
		y++
	}

	if pv.Truncated && r.H > 0 {
		Print(s).X(inner.X).Y(r.Y+r.H-1).MaxX(inner.X+inner.W).Style(styles.Status).Msg("[truncated]").Do()
	}
}

// drawAnsiLine paints one preview line, converting SGR runs to styles.
func drawAnsiLine(s Screen, styles *StyleSet, line string, r Rect, y int) {
	parsed := ansi.Parse(strings.ReplaceAll(line, "\t", "    "))
	spanAt := spanIndex(parsed.Attrs)

	x := r.X
	ri := 0
	for _, ch := range parsed.Stripped {
		st := styles.Basic
		if sp, ok := spanAt(ri); ok {
			st = StyleFromAttr(styles.Basic, sp.Fg, sp.Bg)
		}
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			ri++
			continue
		}
		if x+w > r.X+r.W {
			break
		}
		s.SetCell(x, y, ch, st)
		x += w
		ri++
	}
}

func drawStatus(s Screen, styles *StyleSet, f *Frame, r Rect) {
	if f.Banner != "" {
		Print(s).X(r.X).Y(r.Y).MaxX(r.X+r.W).Style(styles.Banner).Msg(f.Banner).Fill(true).Do()
		return
	}
	Print(s).X(r.X).Y(r.Y).MaxX(r.X+r.W).Style(styles.Status).Msg(f.Status).Fill(true).Do()
}

func drawHelp(s Screen, styles *StyleSet, lines []string, r Rect) {
	for i := 0; i < len(lines) && i < r.H; i++ {
		Print(s).X(r.X).Y(r.Y+i).MaxX(r.X+r.W).Style(styles.Help).Msg(lines[i]).Fill(true).Do()
	}
}

// FormatCounts renders the "matched / total" indicator.
func FormatCounts(matched, total int) string {
	return fmt.Sprintf("%d / %d", matched, total)
}
