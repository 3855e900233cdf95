package ui

// Rect is a pixel rectangle with its origin at the top-left corner.
type Rect struct {
	X, Y int
	W, H int
}

// NewRect creates a new rectangle with the specified bounds
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the X coordinate of the right edge (exclusive)
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the Y coordinate of the bottom edge (exclusive)
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains checks if a point is within this rectangle
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// IsEmpty returns true if the rectangle has zero area
func (r Rect) IsEmpty() bool {
	return r.W <= 0 || r.H <= 0
}
