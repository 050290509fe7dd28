package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/television/television/internal/ansi"
)

// StyleSet is the theme consumed by the draw layer.
type StyleSet struct {
	Basic     tcell.Style
	Query     tcell.Style
	Matched   tcell.Style
	CursorRow tcell.Style
	Selected  tcell.Style
	Border    tcell.Style
	Status    tcell.Style
	Banner    tcell.Style
	Help      tcell.Style
}

// DefaultStyles returns the built-in theme.
func DefaultStyles() *StyleSet {
	return &StyleSet{
		Basic:     tcell.StyleDefault,
		Query:     tcell.StyleDefault.Bold(true),
		Matched:   tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
		CursorRow: tcell.StyleDefault.Reverse(true),
		Selected:  tcell.StyleDefault.Foreground(tcell.ColorYellow),
		Border:    tcell.StyleDefault.Foreground(tcell.ColorGray),
		Status:    tcell.StyleDefault.Dim(true),
		Banner:    tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorRed),
		Help:      tcell.StyleDefault.Dim(true),
	}
}

// ansiPalette maps the parser's basic palette to tcell colors.
var ansiPalette = [9]tcell.Color{
	tcell.ColorDefault,
	tcell.ColorBlack, tcell.ColorMaroon, tcell.ColorGreen, tcell.ColorOlive,
	tcell.ColorNavy, tcell.ColorPurple, tcell.ColorTeal, tcell.ColorSilver,
}

// StyleFromAttr converts a parsed ANSI attribute pair into a tcell style
// layered over the base style.
func StyleFromAttr(base tcell.Style, fg, bg ansi.Attribute) tcell.Style {
	st := base
	st = st.Foreground(colorFromAttr(fg))
	if c := colorFromAttr(bg); c != tcell.ColorDefault {
		st = st.Background(c)
	}
	if fg&ansi.AttrBold != 0 {
		st = st.Bold(true)
	}
	if fg&ansi.AttrUnderline != 0 {
		st = st.Underline(true)
	}
	if fg&ansi.AttrReverse != 0 {
		st = st.Reverse(true)
	}
	return st
}

func colorFromAttr(a ansi.Attribute) tcell.Color {
	if a&ansi.AttrTrueColor != 0 {
		return tcell.NewRGBColor(
			int32((a>>16)&0xFF),
			int32((a>>8)&0xFF),
			int32(a&0xFF),
		)
	}
	idx := a & 0x0F
	if int(idx) < len(ansiPalette) {
		return ansiPalette[idx]
	}
	return tcell.ColorDefault
}
