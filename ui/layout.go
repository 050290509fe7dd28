package ui

// LayoutType positions the preview panel relative to the results.
type LayoutType string

const (
	// Landscape puts the preview to the right of the results.
	Landscape LayoutType = "landscape"
	// Portrait puts the preview above the results.
	Portrait LayoutType = "portrait"
)

// IsValidLayoutType checks if a string is a supported layout type.
func IsValidLayoutType(v string) bool {
	return LayoutType(v) == Landscape || LayoutType(v) == Portrait
}

// Rect is a panel area in screen cells.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rect has no drawable area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Features controls panel visibility.
type Features struct {
	Preview   bool
	Status    bool
	Help      bool
	Remote    bool
	Scrollbar bool
	WordWrap  bool
}

// LayoutSpec carries everything the layout pass needs.
type LayoutSpec struct {
	Layout      LayoutType
	Features    Features
	PreviewSize int // percentage of the split axis, 1..99
	UIScale     int // percentage of the terminal used, 0..100
	HelpLines   int
}

// Panels is the computed frame geometry.
type Panels struct {
	Input   Rect
	Results Rect
	Preview Rect
	Status  Rect
	Help    Rect
}

// Compute splits a w x h terminal into panels. The input bar always
// survives; when space runs out, panels degrade in the order help,
// status, preview, results. A 1x1 terminal yields just the input bar.
func Compute(w, h int, spec LayoutSpec) Panels {
	var p Panels
	if w <= 0 || h <= 0 {
		return p
	}

	if scale := spec.UIScale; scale > 0 && scale < 100 {
		sw := w * scale / 100
		sh := h * scale / 100
		if sw > 0 {
			w = sw
		}
		if sh > 0 {
			h = sh
		}
	}

	y := 0
	remaining := h

	// Input bar: top row, unconditional
	p.Input = Rect{X: 0, Y: y, W: w, H: 1}
	y++
	remaining--

	if spec.Features.Status && remaining > 1 {
		p.Status = Rect{X: 0, Y: h - 1, W: w, H: 1}
		remaining--
	}

	if spec.Features.Help && spec.HelpLines > 0 && remaining > spec.HelpLines+1 {
		p.Help = Rect{X: 0, Y: h - p.Status.H - spec.HelpLines, W: w, H: spec.HelpLines}
		remaining -= spec.HelpLines
	}

	if remaining <= 0 {
		return p
	}

	body := Rect{X: 0, Y: y, W: w, H: remaining}

	if !spec.Features.Preview {
		p.Results = body
		return p
	}

	size := spec.PreviewSize
	if size < 1 || size > 99 {
		size = 50
	}

	switch spec.Layout {
	case Portrait:
		ph := body.H * size / 100
		if ph < 1 || body.H-ph < 1 {
			p.Results = body
			return p
		}
		p.Preview = Rect{X: body.X, Y: body.Y, W: body.W, H: ph}
		p.Results = Rect{X: body.X, Y: body.Y + ph, W: body.W, H: body.H - ph}
	default: // Landscape
		pw := body.W * size / 100
		if pw < 2 || body.W-pw < 2 {
			p.Results = body
			return p
		}
		p.Results = Rect{X: body.X, Y: body.Y, W: body.W - pw, H: body.H}
		p.Preview = Rect{X: body.X + body.W - pw, Y: body.Y, W: pw, H: body.H}
	}
	return p
}
