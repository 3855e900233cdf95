// Package uitest provides a recording Display for tests.
package uitest

import (
	"fmt"

	"github.com/stlalpha/pocketscene/internal/ui"
)

// Display records every call made against it.
type Display struct {
	W, H         int
	GlyphW       int
	GlyphH       int
	Calls        []string
	Drawn        []ui.Item
	CursorDrawn  int
	Clears       int
	LastCursorAt [2]int
}

// New returns a recording display with 6x12 glyphs.
func New(w, h int) *Display {
	return &Display{W: w, H: h, GlyphW: 6, GlyphH: 12}
}

func (d *Display) DrawItem(it *ui.Item) {
	d.Drawn = append(d.Drawn, *it)
	d.Calls = append(d.Calls, fmt.Sprintf("item %d %q", it.ID, it.Visible()))
}

func (d *Display) DrawItems(items []*ui.Item, originX, originY, maxVisible int) {
	n := 0
	for _, it := range items {
		if !it.Displayable || n >= maxVisible {
			continue
		}
		d.Drawn = append(d.Drawn, *it)
		n++
	}
	d.Calls = append(d.Calls, fmt.Sprintf("items %d", n))
}

func (d *Display) Clear(c ui.Color, r ui.Rect) {
	d.Clears++
	d.Calls = append(d.Calls, fmt.Sprintf("clear %d,%d %dx%d", r.X, r.Y, r.W, r.H))
}

func (d *Display) DrawCursorGlyph(x, y, w, h int, c ui.Color) {
	d.CursorDrawn++
	d.LastCursorAt = [2]int{x, y}
	d.Calls = append(d.Calls, fmt.Sprintf("cursor %d,%d", x, y))
}

func (d *Display) Width() int  { return d.W }
func (d *Display) Height() int { return d.H }

func (d *Display) GlyphMetrics(f ui.Font) (int, int) {
	return d.GlyphW, d.GlyphH
}

// Reset forgets recorded calls.
func (d *Display) Reset() {
	d.Calls = nil
	d.Drawn = nil
	d.CursorDrawn = 0
	d.Clears = 0
}
