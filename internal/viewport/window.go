package viewport

import "github.com/stlalpha/pocketscene/internal/ui"

// DefaultMaxLinesPerPage is the number of content rows that fit below the
// header with the default font.
const DefaultMaxLinesPerPage = 9

// Window is the scroll window: a contiguous [start, end) range of line
// indices that are currently displayable. After every operation it holds
// min(total, page) lines.
type Window struct {
	start int
	end   int
	page  int
}

// NewWindow creates an empty window showing at most page lines.
func NewWindow(page int) Window {
	if page <= 0 {
		page = DefaultMaxLinesPerPage
	}
	return Window{page: page}
}

// Start returns the index of the first displayable line.
func (w Window) Start() int { return w.start }

// End returns one past the index of the last displayable line.
func (w Window) End() int { return w.end }

// Count returns the number of displayable lines.
func (w Window) Count() int { return w.end - w.start }

// Page returns the maximum number of displayable lines.
func (w Window) Page() int { return w.page }

// Contains reports whether line i is displayable.
func (w Window) Contains(i int) bool {
	return i >= w.start && i < w.end
}

// Line converts a window row into a line index.
func (w Window) Line(row int) int {
	return w.start + row
}

// Row converts a line index into a window row.
func (w Window) Row(line int) int {
	return line - w.start
}

// Fit restores the window invariant after the number of lines changed:
// the range is clamped to the document and back-filled, first downward and
// then upward, until it is as full as the document allows.
func (w *Window) Fit(total int) {
	want := min(total, w.page)
	if w.end > total {
		w.end = total
	}
	if w.start > w.end {
		w.start = w.end
	}
	for w.end-w.start < want && w.end < total {
		w.end++
	}
	for w.end-w.start < want && w.start > 0 {
		w.start--
	}
	if w.end-w.start > want {
		w.end = w.start + want
	}
}

// Scroll shifts the window by up to n lines over a document of total lines.
// Down reveals later lines, Up reveals earlier ones. It returns the number
// of lines actually scrolled, 0 when already at the boundary.
func (w *Window) Scroll(dir ui.Direction, n, total int) int {
	if n <= 0 {
		return 0
	}
	w.Fit(total)
	k := 0
	switch dir {
	case ui.Down:
		k = min(n, total-w.end)
		w.start += k
		w.end += k
	case ui.Up:
		k = min(n, w.start)
		w.start -= k
		w.end -= k
	}
	if k < 0 {
		k = 0
	}
	w.Fit(total)
	return k
}

// Reset moves the window back to the top of a document of total lines.
func (w *Window) Reset(total int) {
	w.start, w.end = 0, 0
	w.Fit(total)
}

// SetPage changes the page size and refits the window.
func (w *Window) SetPage(page, total int) {
	if page > 0 {
		w.page = page
	}
	w.Fit(total)
}

// Layout marks the items inside the window displayable and stacks them
// top to bottom from the origin, rowH pixels apart. Items outside the
// window lose their displayable flag.
func Layout(items []*ui.Item, w Window, originX, originY, rowH int) {
	for i, it := range items {
		it.Displayable = w.Contains(i)
		if it.Displayable {
			it.X = originX
			it.Y = originY + w.Row(i)*rowH
		}
	}
}
