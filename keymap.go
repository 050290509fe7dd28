package television

import (
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/television/television/channels"
)

// Chord identifies one key press. Comparable, so it keys the binding map
// directly.
type Chord struct {
	Key  tcell.Key
	Ch   rune
	Mods tcell.ModMask
}

// namedKeys maps chord spelling to tcell keys. Spellings follow the
// channel file format: "ctrl-e", "alt-x", "esc", "enter", "f1", ...
var namedKeys = map[string]tcell.Key{
	"enter":     tcell.KeyEnter,
	"esc":       tcell.KeyEscape,
	"tab":       tcell.KeyTab,
	"backtab":   tcell.KeyBacktab,
	"backspace": tcell.KeyBackspace2,
	"delete":    tcell.KeyDelete,
	"insert":    tcell.KeyInsert,
	"up":        tcell.KeyUp,
	"down":      tcell.KeyDown,
	"left":      tcell.KeyLeft,
	"right":     tcell.KeyRight,
	"home":      tcell.KeyHome,
	"end":       tcell.KeyEnd,
	"pgup":      tcell.KeyPgUp,
	"pgdn":      tcell.KeyPgDn,
	"space":     0, // handled as the ' ' rune
	"f1":        tcell.KeyF1,
	"f2":        tcell.KeyF2,
	"f3":        tcell.KeyF3,
	"f4":        tcell.KeyF4,
	"f5":        tcell.KeyF5,
	"f6":        tcell.KeyF6,
	"f7":        tcell.KeyF7,
	"f8":        tcell.KeyF8,
	"f9":        tcell.KeyF9,
	"f10":       tcell.KeyF10,
	"f11":       tcell.KeyF11,
	"f12":       tcell.KeyF12,
}

var keyNames = func() map[tcell.Key]string {
	m := make(map[tcell.Key]string, len(namedKeys))
	for n, k := range namedKeys {
		if k != 0 {
			m[k] = n
		}
	}
	return m
}()

// ParseChord turns a spelling like "ctrl-e" or "alt-enter" or "A" into a
// Chord. Unknown spellings are errors: a config typo should be caught at
// load time, not silently ignored at runtime.
func ParseChord(s string) (Chord, error) {
	var c Chord
	rest := strings.ToLower(strings.TrimSpace(s))

	for {
		switch {
		case strings.HasPrefix(rest, "ctrl-"):
			c.Mods |= tcell.ModCtrl
			rest = rest[len("ctrl-"):]
			continue
		case strings.HasPrefix(rest, "alt-"):
			c.Mods |= tcell.ModAlt
			rest = rest[len("alt-"):]
			continue
		case strings.HasPrefix(rest, "shift-"):
			c.Mods |= tcell.ModShift
			rest = rest[len("shift-"):]
			continue
		}
		break
	}

	if rest == "" {
		return c, errors.Errorf("empty key in chord %q", s)
	}

	if rest == "space" {
		c.Key = tcell.KeyRune
		c.Ch = ' '
		return c, nil
	}
	if k, ok := namedKeys[rest]; ok {
		c.Key = k
		return c, nil
	}

	runes := []rune(rest)
	if len(runes) != 1 {
		return c, errors.Errorf("unknown key %q in chord %q", rest, s)
	}

	if c.Mods&tcell.ModCtrl != 0 {
		// tcell reports ctrl-letter as a dedicated key code
		r := runes[0]
		if r >= 'a' && r <= 'z' {
			key := tcell.Key(r - 'a' + 1)
			if !isCtrlLetter(key) {
				// ctrl-m, ctrl-i, ctrl-h arrive as enter/tab/backspace
				c.Mods &^= tcell.ModCtrl
			}
			c.Key = key
			c.Ch = 0
			return c, nil
		}
	}
	c.Ch = runes[0]
	c.Key = tcell.KeyRune
	return c, nil
}

// ChordFromEvent normalizes a tcell key event into a Chord.
func ChordFromEvent(ev *tcell.EventKey) Chord {
	c := Chord{Key: ev.Key(), Mods: ev.Modifiers()}
	if ev.Key() == tcell.KeyRune {
		c.Ch = ev.Rune()
		// shift is already baked into the rune
		c.Mods &^= tcell.ModShift
	}
	if isCtrlLetter(c.Key) {
		// tcell sets ModCtrl inconsistently across terminals; the key
		// code alone identifies the chord
		c.Mods |= tcell.ModCtrl
	}
	return c
}

// isCtrlLetter reports whether the key code is a ctrl-letter chord.
// Enter, Tab and Backspace share code points with ctrl-m/i/h and must
// keep their own identity.
func isCtrlLetter(k tcell.Key) bool {
	if k < tcell.KeyCtrlA || k > tcell.KeyCtrlZ {
		return false
	}
	switch k {
	case tcell.KeyEnter, tcell.KeyTab, tcell.Key(8):
		return false
	}
	return true
}

// String renders the chord in config spelling ("ctrl-e").
func (c Chord) String() string {
	var b strings.Builder
	if c.Mods&tcell.ModCtrl != 0 {
		b.WriteString("ctrl-")
	}
	if c.Mods&tcell.ModAlt != 0 {
		b.WriteString("alt-")
	}
	switch {
	case keyNames[c.Key] != "":
		b.WriteString(keyNames[c.Key])
	case isCtrlLetter(c.Key):
		b.WriteRune(rune(c.Key) - 1 + 'a')
	case c.Key == tcell.KeyRune:
		if c.Ch == ' ' {
			b.WriteString("space")
		} else {
			b.WriteRune(c.Ch)
		}
	default:
		if n, ok := keyNames[c.Key]; ok {
			b.WriteString(n)
		} else {
			b.WriteString("key")
		}
	}
	return b.String()
}

// Keymap resolves chords to action sequences. Channel-scoped bindings
// override global ones; expect keys are checked before either.
type Keymap struct {
	global  map[Chord][]string
	channel map[Chord][]string
	expect  map[Chord]string // chord -> key name for the stdout contract
}

// NewKeymap builds the default bindings overlaid with the global config
// map.
func NewKeymap(global map[string]channels.ActionList) (Keymap, error) {
	km := Keymap{
		global:  make(map[Chord][]string),
		channel: make(map[Chord][]string),
		expect:  make(map[Chord]string),
	}

	for spelling, names := range defaultBindings {
		c, err := ParseChord(spelling)
		if err != nil {
			return km, err
		}
		km.global[c] = names
	}

	for spelling, list := range global {
		c, err := ParseChord(spelling)
		if err != nil {
			return km, configError(err)
		}
		if err := validateActionNames(list.Actions()); err != nil {
			return km, configError(err)
		}
		km.global[c] = list.Actions()
	}
	return km, nil
}

// ApplyChannel overlays a channel's keybindings and shortcuts. A chord
// bound both as an expect key and a channel action is a config conflict,
// reported rather than silently resolved.
func (km *Keymap) ApplyChannel(proto *channels.Prototype, expectKeys []string) error {
	km.channel = make(map[Chord][]string)
	km.expect = make(map[Chord]string)

	for spelling, list := range proto.Keybindings {
		c, err := ParseChord(spelling)
		if err != nil {
			return configError(err)
		}
		if err := validateActionNames(list.Actions()); err != nil {
			return configError(err)
		}
		km.channel[c] = list.Actions()
	}
	for spelling, name := range proto.Shortcuts {
		c, err := ParseChord(spelling)
		if err != nil {
			return configError(err)
		}
		if err := validateActionNames([]string{name}); err != nil {
			return configError(err)
		}
		km.channel[c] = []string{name}
	}

	for _, spelling := range expectKeys {
		c, err := ParseChord(spelling)
		if err != nil {
			return configError(err)
		}
		if _, bound := km.channel[c]; bound {
			return configErrorf("--expect key %q conflicts with a channel keybinding", spelling)
		}
		km.expect[c] = spelling
	}
	return nil
}

// Lookup resolves a chord. Expect keys win, then channel bindings, then
// global. Unknown chords are no-ops, reported via ok=false.
func (km *Keymap) Lookup(c Chord) (names []string, expectKey string, ok bool) {
	if name, isExpect := km.expect[c]; isExpect {
		return nil, name, true
	}
	if names, found := km.channel[c]; found {
		return names, "", true
	}
	if names, found := km.global[c]; found {
		return names, "", true
	}
	return nil, "", false
}

// Bindings lists the active bindings for the help panel, sorted by
// chord spelling.
func (km *Keymap) Bindings() []string {
	merged := make(map[Chord][]string, len(km.global)+len(km.channel))
	for c, names := range km.global {
		merged[c] = names
	}
	for c, names := range km.channel {
		merged[c] = names
	}

	out := make([]string, 0, len(merged))
	for c, names := range merged {
		out = append(out, c.String()+"  "+strings.Join(names, ", "))
	}
	sort.Strings(out)
	return out
}

// defaultBindings is the built-in keymap; config and channel maps layer
// over it.
var defaultBindings = map[string][]string{
	"enter":      {"confirm"},
	"esc":        {"quit"},
	"ctrl-c":     {"quit"},
	"up":         {"select-prev"},
	"ctrl-p":     {"select-prev"},
	"down":       {"select-next"},
	"ctrl-n":     {"select-next"},
	"pgup":       {"select-prev-page"},
	"pgdn":       {"select-next-page"},
	"home":       {"go-to-top"},
	"end":        {"go-to-bottom"},
	"tab":        {"toggle-selection", "select-next"},
	"backtab":    {"toggle-selection", "select-prev"},
	"ctrl-a":     {"select-all-visible"},
	"backspace":  {"delete-prev-char"},
	"ctrl-h":     {"delete-prev-char"},
	"delete":     {"delete-next-char"},
	"ctrl-w":     {"delete-prev-word"},
	"ctrl-u":     {"delete-line"},
	"left":       {"move-cursor-left"},
	"right":      {"move-cursor-right"},
	"ctrl-e":     {"move-cursor-end"},
	"ctrl-b":     {"move-cursor-home"},
	"ctrl-r":     {"reload"},
	"ctrl-s":     {"cycle-source"},
	"ctrl-t":     {"toggle-remote"},
	"ctrl-k":     {"toggle-action-picker"},
	"ctrl-o":     {"toggle-preview"},
	"f1":         {"toggle-help"},
	"f2":         {"toggle-status-bar"},
	"ctrl-f":     {"preview-scroll-down"},
	"ctrl-g":     {"preview-scroll-up"},
	"ctrl-y":     {"copy-entry"},
	"ctrl-d":     {"history-next"},
	"ctrl-x":     {"history-prev"},
	"ctrl-l":     {"cycle-preview"},
	"ctrl-z":     {"suspend"},
	"alt-enter":  {"select-all-visible", "confirm"},
	"shift-up":   {"preview-scroll-up"},
	"shift-down": {"preview-scroll-down"},
}
