package ui

import (
	"context"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
)

// Fullscreen renders on the alternate screen buffer, restoring the
// original terminal contents on exit.
type Fullscreen struct {
	mutex  sync.Mutex
	screen tcell.Screen
	mouse  bool
}

// NewFullscreen creates a fullscreen Screen. Mouse capture is optional.
func NewFullscreen(mouse bool) *Fullscreen {
	return &Fullscreen{mouse: mouse}
}

func (f *Fullscreen) Init() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "failed to create screen")
	}
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "failed to acquire the terminal")
	}
	if f.mouse {
		screen.EnableMouse()
	}

	f.mutex.Lock()
	f.screen = screen
	f.mutex.Unlock()
	return nil
}

// Close releases the terminal. Safe to call more than once; it must run
// on every exit path, including panics.
func (f *Fullscreen) Close() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.screen != nil {
		f.screen.Fini()
		f.screen = nil
	}
}

func (f *Fullscreen) Size() (int, int) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.screen == nil {
		return 0, 0
	}
	return f.screen.Size()
}

func (f *Fullscreen) SetCell(x, y int, r rune, style tcell.Style) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.screen != nil {
		f.screen.SetContent(x, y, r, nil, style)
	}
}

func (f *Fullscreen) ShowCursor(x, y int) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.screen != nil {
		f.screen.ShowCursor(x, y)
	}
}

func (f *Fullscreen) HideCursor() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.screen != nil {
		f.screen.HideCursor()
	}
}

func (f *Fullscreen) Clear() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.screen != nil {
		f.screen.Clear()
	}
}

func (f *Fullscreen) Show() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.screen != nil {
		f.screen.Show()
	}
}

func (f *Fullscreen) PollEvent(ctx context.Context) <-chan tcell.Event {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return pollEvents(ctx, f.screen)
}

func (f *Fullscreen) Suspend() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.screen == nil {
		return nil
	}
	return errors.Wrap(f.screen.Suspend(), "failed to suspend screen")
}

func (f *Fullscreen) Resume() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.screen == nil {
		return nil
	}
	return errors.Wrap(f.screen.Resume(), "failed to resume screen")
}
