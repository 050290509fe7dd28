package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// PrintCtx is a fluent cell printer bound to a screen, in the style the
// rest of the draw layer composes: position, style, message, print.
type PrintCtx struct {
	screen Screen
	x, y   int
	maxX   int
	style  tcell.Style
	msg    string
	fill   bool
}

// Print starts a print operation on the screen.
func Print(s Screen) *PrintCtx {
	w, _ := s.Size()
	return &PrintCtx{screen: s, maxX: w, style: tcell.StyleDefault}
}

func (p *PrintCtx) X(x int) *PrintCtx {
	p.x = x
	return p
}

func (p *PrintCtx) Y(y int) *PrintCtx {
	p.y = y
	return p
}

// MaxX caps the rightmost column (exclusive).
func (p *PrintCtx) MaxX(x int) *PrintCtx {
	p.maxX = x
	return p
}

func (p *PrintCtx) Style(st tcell.Style) *PrintCtx {
	p.style = st
	return p
}

func (p *PrintCtx) Msg(s string) *PrintCtx {
	p.msg = s
	return p
}

// Fill pads the rest of the line with spaces.
func (p *PrintCtx) Fill(b bool) *PrintCtx {
	p.fill = b
	return p
}

// Do writes the message, truncating at the cap with an ellipsis when the
// text does not fit. Returns the column after the last written cell.
func (p *PrintCtx) Do() int {
	x := p.x
	avail := p.maxX - x
	if avail <= 0 {
		return x
	}

	msg := p.msg
	if runewidth.StringWidth(msg) > avail {
		msg = runewidth.Truncate(msg, avail, "…")
	}

	for _, r := range msg {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > p.maxX {
			break
		}
		p.screen.SetCell(x, p.y, r, p.style)
		// wide runes occupy the following cell too
		for i := 1; i < w; i++ {
			p.screen.SetCell(x+i, p.y, ' ', p.style)
		}
		x += w
	}

	if p.fill {
		for ; x < p.maxX; x++ {
			p.screen.SetCell(x, p.y, ' ', p.style)
		}
	}
	return x
}
