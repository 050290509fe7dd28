package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeLandscapeSplit(t *testing.T) {
	p := Compute(100, 30, LayoutSpec{
		Layout:      Landscape,
		Features:    Features{Preview: true, Status: true},
		PreviewSize: 50,
	})

	assert.Equal(t, Rect{0, 0, 100, 1}, p.Input)
	assert.Equal(t, 50, p.Preview.W)
	assert.Equal(t, 50, p.Results.W)
	assert.Equal(t, p.Results.H, p.Preview.H)
	assert.Equal(t, 1, p.Status.H)
	assert.Equal(t, 29, p.Status.Y)
	// body rows: 30 - input - status
	assert.Equal(t, 28, p.Results.H)
}

func TestComputePortraitSplit(t *testing.T) {
	p := Compute(80, 40, LayoutSpec{
		Layout:      Portrait,
		Features:    Features{Preview: true},
		PreviewSize: 25,
	})

	assert.Equal(t, 80, p.Preview.W)
	assert.Equal(t, 80, p.Results.W)
	assert.Equal(t, p.Preview.H+p.Results.H, 39)
	assert.Equal(t, 39*25/100, p.Preview.H)
	assert.Greater(t, p.Results.Y, p.Preview.Y, "portrait preview sits above the results")
}

func TestComputeNoPreview(t *testing.T) {
	p := Compute(80, 24, LayoutSpec{Layout: Landscape})
	assert.True(t, p.Preview.Empty())
	assert.Equal(t, 23, p.Results.H)
}

func TestComputeTinyTerminal(t *testing.T) {
	// 1x1: input bar only, nothing panics
	p := Compute(1, 1, LayoutSpec{
		Layout:      Landscape,
		Features:    Features{Preview: true, Status: true, Help: true},
		PreviewSize: 50,
		HelpLines:   3,
	})
	assert.Equal(t, Rect{0, 0, 1, 1}, p.Input)
	assert.True(t, p.Results.Empty())
	assert.True(t, p.Preview.Empty())
	assert.True(t, p.Status.Empty())
	assert.True(t, p.Help.Empty())
}

func TestComputeZeroSize(t *testing.T) {
	p := Compute(0, 0, LayoutSpec{})
	assert.True(t, p.Input.Empty())
}

func TestComputeUIScale(t *testing.T) {
	full := Compute(100, 40, LayoutSpec{Layout: Landscape})
	scaled := Compute(100, 40, LayoutSpec{Layout: Landscape, UIScale: 50})
	assert.Equal(t, 100, full.Input.W)
	assert.Equal(t, 50, scaled.Input.W)
	assert.Less(t, scaled.Results.H, full.Results.H)
}

func TestComputeHelpPanel(t *testing.T) {
	p := Compute(80, 24, LayoutSpec{
		Layout:    Landscape,
		Features:  Features{Help: true, Status: true},
		HelpLines: 4,
	})
	assert.Equal(t, 4, p.Help.H)
	assert.Equal(t, 23, p.Status.Y)
	assert.Equal(t, 19, p.Help.Y, "help sits just above the status bar")
}

func TestPreviewSizeDefaultsWhenOutOfRange(t *testing.T) {
	p := Compute(100, 30, LayoutSpec{
		Layout:      Landscape,
		Features:    Features{Preview: true},
		PreviewSize: 0,
	})
	assert.Equal(t, 50, p.Preview.W)
}
