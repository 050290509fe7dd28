// Package ansi parses ANSI SGR escape sequences out of source and preview
// text. It produces stripped plain text plus run-length encoded attribute
// spans that the draw layer converts to terminal styles, and a sanitizer
// that removes control sequences which would corrupt the host terminal.
package ansi

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Attribute is a packed color/style value consumed by the ui layer.
type Attribute = uint32

// Named palette color constants.
const (
	ColorDefault Attribute = 0x0000
	ColorBlack   Attribute = 0x0001
	ColorRed     Attribute = 0x0002
	ColorGreen   Attribute = 0x0003
	ColorYellow  Attribute = 0x0004
	ColorBlue    Attribute = 0x0005
	ColorMagenta Attribute = 0x0006
	ColorCyan    Attribute = 0x0007
	ColorWhite   Attribute = 0x0008
)

const (
	AttrTrueColor Attribute = 0x01000000
	AttrBold      Attribute = 0x02000000
	AttrUnderline Attribute = 0x04000000
	AttrReverse   Attribute = 0x08000000
)

// basicFgColors maps SGR codes 30-37 to palette colors.
var basicFgColors = [8]Attribute{
	ColorBlack, ColorRed, ColorGreen, ColorYellow,
	ColorBlue, ColorMagenta, ColorCyan, ColorWhite,
}

// AttrSpan represents a run of characters sharing identical attributes.
type AttrSpan struct {
	Fg     Attribute
	Bg     Attribute
	Length int // number of runes
}

// ParseResult contains the output of SGR parsing.
type ParseResult struct {
	Stripped string     // text with ANSI codes removed
	Attrs    []AttrSpan // run-length encoded attributes; nil if no codes found
}

// Renderer converts ANSI-carrying text into stripped text plus style
// spans. The ui layer consumes the spans; everything else in the engine
// only ever sees the stripped text.
type Renderer interface {
	Render(input string) ParseResult
}

// SGR is the default Renderer.
type SGR struct{}

func (SGR) Render(input string) ParseResult {
	return Parse(input)
}

// Parse parses SGR sequences from input and returns the stripped text
// along with run-length encoded per-rune attributes.
// If no escape sequences are found, Attrs is nil.
func Parse(input string) ParseResult {
	// Fast path: no ESC character at all
	if !strings.ContainsRune(input, '\x1b') {
		return ParseResult{Stripped: input, Attrs: nil}
	}

	var (
		out   strings.Builder
		spans []AttrSpan
		curFg = ColorDefault
		curBg = ColorDefault
		count int // runes in current span
	)

	out.Grow(len(input))

	flush := func() {
		if count > 0 {
			spans = append(spans, AttrSpan{Fg: curFg, Bg: curBg, Length: count})
			count = 0
		}
	}

	i := 0
	for i < len(input) {
		if input[i] == '\x1b' && i+1 < len(input) && input[i+1] == '[' {
			j := i + 2
			for j < len(input) && input[j] >= 0x20 && input[j] <= 0x3F {
				j++
			}
			if j >= len(input) {
				// Incomplete sequence at end of string: drop it
				break
			}
			if input[j] == 'm' {
				flush()
				parseSGR(input[i+2:j], &curFg, &curBg)
			}
			// Non-SGR CSI sequences are stripped without effect
			i = j + 1
			continue
		}

		r, n := utf8.DecodeRuneInString(input[i:])
		out.WriteRune(r)
		count++
		i += n
	}
	flush()

	return ParseResult{Stripped: out.String(), Attrs: spans}
}

// Strip removes all CSI escape sequences from the input, returning plain
// text. Used when a channel declares ansi = false but the source emits
// sequences anyway: strip, never interpret.
func Strip(input string) string {
	return Parse(input).Stripped
}

// parseSGR applies the parameters of one SGR sequence to fg/bg.
func parseSGR(params string, fg, bg *Attribute) {
	if params == "" {
		*fg = ColorDefault
		*bg = ColorDefault
		return
	}

	parts := strings.Split(params, ";")
	for k := 0; k < len(parts); k++ {
		n, err := strconv.Atoi(parts[k])
		if err != nil {
			continue
		}
		switch {
		case n == 0:
			*fg = ColorDefault
			*bg = ColorDefault
		case n == 1:
			*fg |= AttrBold
		case n == 4:
			*fg |= AttrUnderline
		case n == 7:
			*fg |= AttrReverse
		case n >= 30 && n <= 37:
			*fg = (*fg &^ 0x00FFFFFF) | basicFgColors[n-30]
		case n == 39:
			*fg &= ^Attribute(0x00FFFFFF)
		case n >= 40 && n <= 47:
			*bg = (*bg &^ 0x00FFFFFF) | basicFgColors[n-40]
		case n == 49:
			*bg &= ^Attribute(0x00FFFFFF)
		case n == 38 || n == 48:
			// Extended color: 38;5;N or 38;2;R;G;B
			attr, used, ok := parseExtendedColor(parts[k+1:])
			if !ok {
				return
			}
			if n == 38 {
				*fg = (*fg &^ 0x00FFFFFF) | attr
			} else {
				*bg = (*bg &^ 0x00FFFFFF) | attr
			}
			k += used
		}
	}
}

// parseExtendedColor handles the 5;N and 2;R;G;B forms following SGR 38/48.
func parseExtendedColor(parts []string) (Attribute, int, bool) {
	if len(parts) == 0 {
		return 0, 0, false
	}
	switch parts[0] {
	case "5":
		if len(parts) < 2 {
			return 0, 0, false
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 0 || n > 255 {
			return 0, 0, false
		}
		if n < 8 {
			return basicFgColors[n], 1, true
		}
		return AttrTrueColor | palette256(n), 1, true
	case "2":
		if len(parts) < 4 {
			return 0, 0, false
		}
		var rgb [3]int
		for i := 0; i < 3; i++ {
			n, err := strconv.Atoi(parts[1+i])
			if err != nil || n < 0 || n > 255 {
				return 0, 0, false
			}
			rgb[i] = n
		}
		return AttrTrueColor | Attribute(rgb[0])<<16 | Attribute(rgb[1])<<8 | Attribute(rgb[2]), 3, true
	}
	return 0, 0, false
}

// palette256 converts a 256-palette index to a packed RGB attribute.
func palette256(n int) Attribute {
	switch {
	case n < 16:
		// Bright variants of the basic palette
		v := Attribute(0x80)
		if n >= 8 {
			v = 0xFF
		}
		var r, g, b Attribute
		if n&1 != 0 {
			r = v
		}
		if n&2 != 0 {
			g = v
		}
		if n&4 != 0 {
			b = v
		}
		return r<<16 | g<<8 | b
	case n < 232:
		// 6x6x6 color cube
		n -= 16
		steps := [6]Attribute{0, 95, 135, 175, 215, 255}
		r := steps[n/36]
		g := steps[(n/6)%6]
		b := steps[n%6]
		return r<<16 | g<<8 | b
	default:
		// Grayscale ramp
		v := Attribute(8 + (n-232)*10)
		return v<<16 | v<<8 | v
	}
}
