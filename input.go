package television

import (
	"context"

	"github.com/gdamore/tcell/v2"
	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/television/television/ui"
)

// inputLoop reads terminal events and converts them to actions. It never
// mutates state itself; everything goes through the bus.
func (t *Television) inputLoop(ctx context.Context) {
	if pdebug.Enabled {
		g := pdebug.Marker("Television.inputLoop")
		defer g.End()
	}

	evCh := t.screen.PollEvent(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-evCh:
			if !ok {
				return
			}
			t.handleEvent(ev)
		}
	}
}

func (t *Television) handleEvent(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventResize:
		_ = t.bus.Submit(ActionFunc(func(_ context.Context, t *Television) {
			if inline, ok := t.screen.(*ui.Inline); ok {
				inline.Reanchor()
			}
			t.dirty()
		}))
	case *tcell.EventKey:
		t.handleKey(e)
	case *tcell.EventMouse:
		t.handleMouse(e)
	}
}

func (t *Television) handleKey(ev *tcell.EventKey) {
	chord := ChordFromEvent(ev)

	t.stateMu.Lock()
	names, expectKey, bound := t.keymap.Lookup(chord)
	t.stateMu.Unlock()
	switch {
	case expectKey != "":
		key := expectKey
		_ = t.bus.Submit(ActionFunc(func(ctx context.Context, t *Television) {
			t.confirmWithExpect(ctx, key)
		}))
	case bound:
		_ = t.bus.Submit(sequenceAction(names))
	case chord.Key == tcell.KeyRune && chord.Mods&(tcell.ModCtrl|tcell.ModAlt) == 0:
		_ = t.bus.Submit(insertCharAction(chord.Ch))
	default:
		// unknown chords are no-ops, not errors
	}
}

func (t *Television) handleMouse(ev *tcell.EventMouse) {
	switch {
	case ev.Buttons()&tcell.WheelUp != 0:
		_ = t.bus.Submit(namedAction("select-prev"))
	case ev.Buttons()&tcell.WheelDown != 0:
		_ = t.bus.Submit(namedAction("select-next"))
	}
}
