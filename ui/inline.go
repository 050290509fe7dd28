package ui

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
)

// Inline renders television in a fixed-height region at the bottom of the
// terminal, without the alternate screen buffer, so terminal scrollback
// above the region survives. Existing content is scrolled up to make room;
// the region is not placed at the cursor row. On exit the cursor is
// restored to the start of the region.
type Inline struct {
	mutex      sync.Mutex
	screen     tcell.Screen
	height     int // requested rows
	resolved   int // rows actually reserved
	yOffset    int // physical row where the region starts
	savedAlt   string
	mouse      bool
	hasSaved   bool
}

// NewInline creates an inline Screen reserving the given number of rows.
func NewInline(height int, mouse bool) *Inline {
	if height < 1 {
		height = 10
	}
	return &Inline{height: height, mouse: mouse}
}

func (s *Inline) Init() error {
	// tcell decides on the alternate screen at init time; disable it for
	// the inline viewport and restore the variable on Close.
	s.savedAlt = os.Getenv("TCELL_ALTSCREEN")
	s.hasSaved = true
	os.Setenv("TCELL_ALTSCREEN", "disable")

	screen, err := tcell.NewScreen()
	if err != nil {
		s.restoreAltEnv()
		return errors.Wrap(err, "failed to create screen")
	}
	if err := screen.Init(); err != nil {
		s.restoreAltEnv()
		return errors.Wrap(err, "failed to acquire the terminal")
	}
	if s.mouse {
		screen.EnableMouse()
	}

	s.mutex.Lock()
	s.screen = screen
	s.mutex.Unlock()

	s.anchor(screen)
	return nil
}

// anchor reserves the inline region at the bottom of the terminal:
// scroll existing content up, then lock everything above the region.
func (s *Inline) anchor(screen tcell.Screen) {
	termWidth, termHeight := screen.Size()

	s.mutex.Lock()
	s.resolved = s.height
	if s.resolved > termHeight {
		s.resolved = termHeight
	}
	s.yOffset = termHeight - s.resolved
	yOffset := s.yOffset
	resolved := s.resolved
	s.mutex.Unlock()

	if tty, ok := screen.Tty(); ok {
		buf := make([]byte, resolved)
		for i := range buf {
			buf[i] = '\n'
		}
		_, _ = tty.Write(buf)
		fmt.Fprintf(tty, "\033[%dA", resolved)
	}

	if yOffset > 0 {
		screen.LockRegion(0, 0, termWidth, yOffset, true)
	}
}

// Reanchor recomputes the region after a terminal resize, anchoring it at
// the bottom of the terminal as Init does; the cursor row is not
// consulted and nothing is repainted here.
func (s *Inline) Reanchor() {
	s.mutex.Lock()
	screen := s.screen
	s.mutex.Unlock()
	if screen == nil {
		return
	}
	s.anchor(screen)
}

func (s *Inline) restoreAltEnv() {
	if s.hasSaved {
		os.Setenv("TCELL_ALTSCREEN", s.savedAlt)
		s.hasSaved = false
	}
}

// Close restores the cursor to the start of the inline region and
// releases the terminal without clearing scrollback.
func (s *Inline) Close() {
	s.mutex.Lock()
	screen := s.screen
	s.screen = nil
	yOffset := s.yOffset
	s.mutex.Unlock()

	if screen != nil {
		if tty, ok := screen.Tty(); ok {
			// Park the cursor at the region start so the shell prompt
			// lands exactly where the UI began.
			fmt.Fprintf(tty, "\033[%d;1H\033[J", yOffset+1)
		}
		screen.Fini()
	}
	s.restoreAltEnv()
}

// Size reports the inline region, not the whole terminal.
func (s *Inline) Size() (int, int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.screen == nil {
		return 0, 0
	}
	w, _ := s.screen.Size()
	return w, s.resolved
}

// SetCell translates region-local rows to physical rows.
func (s *Inline) SetCell(x, y int, r rune, style tcell.Style) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.screen == nil || y >= s.resolved {
		return
	}
	s.screen.SetContent(x, s.yOffset+y, r, nil, style)
}

func (s *Inline) ShowCursor(x, y int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.screen != nil {
		s.screen.ShowCursor(x, s.yOffset+y)
	}
}

func (s *Inline) HideCursor() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.screen != nil {
		s.screen.HideCursor()
	}
}

// Clear blanks the inline region only.
func (s *Inline) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.screen == nil {
		return
	}
	w, _ := s.screen.Size()
	for y := 0; y < s.resolved; y++ {
		for x := 0; x < w; x++ {
			s.screen.SetContent(x, s.yOffset+y, ' ', nil, tcell.StyleDefault)
		}
	}
}

func (s *Inline) Show() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.screen != nil {
		s.screen.Show()
	}
}

func (s *Inline) PollEvent(ctx context.Context) <-chan tcell.Event {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return pollEvents(ctx, s.screen)
}

func (s *Inline) Suspend() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.screen == nil {
		return nil
	}
	return errors.Wrap(s.screen.Suspend(), "failed to suspend screen")
}

func (s *Inline) Resume() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.screen == nil {
		return nil
	}
	return errors.Wrap(s.screen.Resume(), "failed to resume screen")
}
