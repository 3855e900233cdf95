package viewport

// Cursor is the text cursor: a column within the current line and a row
// within the scroll window. Its position is meaningless unless Active.
type Cursor struct {
	X, Y int
	// W and H are the glyph cell size in pixels.
	W, H int
	// Active is set while a line is in cursor-controlling mode.
	Active bool
}

// Pixel translates the cursor cell into panel coordinates.
func (c Cursor) Pixel(originX, originY int) (px, py int) {
	return originX + c.X*c.W, originY + c.Y*c.H
}

// CellAt translates panel coordinates into a (column, row) cell.
func (c Cursor) CellAt(px, py, originX, originY int) (x, y int) {
	if c.W <= 0 || c.H <= 0 {
		return 0, 0
	}
	x = (px - originX) / c.W
	y = (py - originY) / c.H
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}
