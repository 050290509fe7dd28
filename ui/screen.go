// Package ui owns the terminal: raw mode, the alternate screen or the
// inline viewport, cell drawing, styles, and the panel layout. Exactly
// one goroutine (the render loop) draws; everyone else sends it frames.
package ui

import (
	"context"

	"github.com/gdamore/tcell/v2"
)

// Screen abstracts the terminal surface so the draw layer works the same
// in fullscreen, inline and test modes.
type Screen interface {
	Init() error
	Close()
	Size() (int, int)
	SetCell(x, y int, r rune, style tcell.Style)
	ShowCursor(x, y int)
	HideCursor()
	Clear()
	Show()
	PollEvent(ctx context.Context) <-chan tcell.Event
	Suspend() error
	Resume() error
}

// pollEvents pumps tcell events into a channel so the input loop can
// select on it alongside cancellation. tcell's own ChannelEvents quits
// via the supplied quit channel.
func pollEvents(ctx context.Context, s tcell.Screen) <-chan tcell.Event {
	evCh := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(quit)
	}()
	go s.ChannelEvents(evCh, quit)
	return evCh
}
