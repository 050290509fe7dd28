package ui

import (
	"context"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// MockScreen is an in-memory Screen for tests and for driving the draw
// layer headlessly.
type MockScreen struct {
	mutex   sync.Mutex
	width   int
	height  int
	cells   map[[2]int]rune
	styles  map[[2]int]tcell.Style
	events  chan tcell.Event
	cursorX int
	cursorY int
	closed  bool
}

func NewMockScreen(w, h int) *MockScreen {
	return &MockScreen{
		width:  w,
		height: h,
		cells:  make(map[[2]int]rune),
		styles: make(map[[2]int]tcell.Style),
		events: make(chan tcell.Event, 64),
	}
}

func (m *MockScreen) Init() error { return nil }

func (m *MockScreen) Close() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.closed = true
}

func (m *MockScreen) Closed() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.closed
}

func (m *MockScreen) Size() (int, int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.width, m.height
}

func (m *MockScreen) Resize(w, h int) {
	m.mutex.Lock()
	m.width = w
	m.height = h
	m.mutex.Unlock()
	m.events <- tcell.NewEventResize(w, h)
}

func (m *MockScreen) SetCell(x, y int, r rune, style tcell.Style) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}
	m.cells[[2]int{x, y}] = r
	m.styles[[2]int{x, y}] = style
}

func (m *MockScreen) ShowCursor(x, y int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.cursorX = x
	m.cursorY = y
}

func (m *MockScreen) HideCursor() {}

func (m *MockScreen) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.cells = make(map[[2]int]rune)
	m.styles = make(map[[2]int]tcell.Style)
}

func (m *MockScreen) Show() {}

func (m *MockScreen) PollEvent(ctx context.Context) <-chan tcell.Event {
	return m.events
}

func (m *MockScreen) Suspend() error { return nil }
func (m *MockScreen) Resume() error  { return nil }

// SendKey injects a key event, as if the user typed it.
func (m *MockScreen) SendKey(key tcell.Key, ch rune, mods tcell.ModMask) {
	m.events <- tcell.NewEventKey(key, ch, mods)
}

// Line returns the text of row y, trailing spaces trimmed.
func (m *MockScreen) Line(y int) string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	var b strings.Builder
	for x := 0; x < m.width; x++ {
		if r, ok := m.cells[[2]int{x, y}]; ok {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// StyleAt returns the style of one cell.
func (m *MockScreen) StyleAt(x, y int) tcell.Style {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.styles[[2]int{x, y}]
}

// Cursor returns the last cursor position.
func (m *MockScreen) Cursor() (int, int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.cursorX, m.cursorY
}
