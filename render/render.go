// Package render owns the draw cadence: frames are produced only when
// the UI is dirty, never more often than the frame-rate cap, and each
// draw feeds layout facts (visible rows) back to the core.
package render

import (
	"context"
	"time"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/television/television/ui"
)

// Loop is the single goroutine allowed to touch the screen.
type Loop struct {
	screen   ui.Screen
	styles   *ui.StyleSet
	interval time.Duration

	// requestCh has capacity 1: render ticks never queue more than one
	// pending frame.
	requestCh chan struct{}

	build    func() *ui.Frame
	feedback func(ui.Result)
}

// New creates a render loop. build assembles a frame from core state;
// feedback returns layout facts to the core. fps caps the draw rate.
func New(screen ui.Screen, styles *ui.StyleSet, fps int, build func() *ui.Frame, feedback func(ui.Result)) *Loop {
	if fps <= 0 {
		fps = 60
	}
	return &Loop{
		screen:    screen,
		styles:    styles,
		interval:  time.Second / time.Duration(fps),
		requestCh: make(chan struct{}, 1),
		build:     build,
		feedback:  feedback,
	}
}

// Request marks the UI dirty. Non-blocking; consecutive requests within
// one frame slot coalesce.
func (l *Loop) Request() {
	select {
	case l.requestCh <- struct{}{}:
	default:
	}
}

// Run draws until the context is cancelled. Scheduling uses the
// monotonic clock: after each draw the loop sleeps out the remainder of
// the frame slot, so a burst of requests produces at most one frame per
// slot.
func (l *Loop) Run(ctx context.Context) {
	if pdebug.Enabled {
		g := pdebug.Marker("render.Loop.Run")
		defer g.End()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.requestCh:
		}

		start := time.Now()
		frame := l.build()
		if frame != nil {
			res := ui.Draw(l.screen, l.styles, frame)
			if l.feedback != nil {
				l.feedback(res)
			}
		}

		// cap: yield for the rest of the frame slot
		if rest := l.interval - time.Since(start); rest > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(rest):
			}
		}
	}
}
