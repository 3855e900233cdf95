package ui

// Display is the rendering collaborator. Calls are synchronous: the engine
// assumes the panel has been updated when a call returns.
type Display interface {
	// DrawItem renders a single item at its own position.
	DrawItem(it *Item)
	// DrawItems renders the displayable items of a range stacked top to
	// bottom from the origin, one glyph row each, at most maxVisible rows.
	DrawItems(items []*Item, originX, originY, maxVisible int)
	// Clear fills rect with c.
	Clear(c Color, rect Rect)
	// DrawCursorGlyph paints the text cursor cell.
	DrawCursorGlyph(x, y, w, h int, c Color)
	Width() int
	Height() int
	// GlyphMetrics returns the pixel size of one glyph of the font.
	GlyphMetrics(f Font) (w, h int)
}

// TextWidth returns the rendered pixel width of the item's visible text.
func TextWidth(d Display, it *Item) int {
	w, _ := d.GlyphMetrics(it.Font)
	return it.Len() * w
}

// Theme is the color set a scene paints with.
type Theme struct {
	ID         int
	Name       string
	Background Color
	Foreground Color
	Title      Color
	Highlight  Color // background of the focused item
	Cursor     Color
	Modal      Color // modal panel background
	Error      Color
	Accent     Color
}
