// Package focus moves input focus between positioned UI items.
package focus

import (
	"github.com/stlalpha/pocketscene/internal/ui"
)

// Navigator selects the next focus target in a screen direction and
// repaints the items whose focus changed.
type Navigator struct {
	disp ui.Display
	// normal is the background of unfocused items, highlight the one of
	// the focused item.
	normal    ui.Color
	highlight ui.Color
}

// New creates a navigator drawing on disp.
func New(disp ui.Display, normal, highlight ui.Color) *Navigator {
	return &Navigator{disp: disp, normal: normal, highlight: highlight}
}

// SetColors changes the backgrounds used for unfocused and focused items.
func (n *Navigator) SetColors(normal, highlight ui.Color) {
	n.normal, n.highlight = normal, highlight
}

// Colors returns the unfocused and focused backgrounds.
func (n *Navigator) Colors() (normal, highlight ui.Color) {
	return n.normal, n.highlight
}

// Focus moves focus from the focused item of items to the nearest
// focusable, displayable item strictly beyond it in dir. It reports whether
// a target was found; on a miss nothing changes. With nothing focused it
// behaves like FocusFirst.
func (n *Navigator) Focus(items []*ui.Item, dir ui.Direction) bool {
	cur := ui.Focused(items)
	if cur == nil {
		return n.FocusFirst(items)
	}
	next := Next(n.disp, items, cur, dir)
	if next == nil {
		return false
	}
	n.move(cur, next)
	return true
}

// FocusFirst focuses the first focusable, displayable item in list order.
func (n *Navigator) FocusFirst(items []*ui.Item) bool {
	for _, it := range items {
		if eligible(it) {
			n.Select(items, it)
			return true
		}
	}
	return false
}

// Select focuses target, clearing any other focused item of items.
func (n *Navigator) Select(items []*ui.Item, target *ui.Item) {
	prev := ui.Focused(items)
	if prev == target {
		if target != nil && target.Bg != n.highlight {
			target.Bg = n.highlight
			n.redraw(target)
		}
		return
	}
	n.move(prev, target)
}

// Clear drops focus from every item without repainting.
func (n *Navigator) Clear(items []*ui.Item) {
	for _, it := range items {
		if it.Focused {
			it.Focused = false
			it.Bg = n.normal
		}
	}
}

func (n *Navigator) move(prev, next *ui.Item) {
	if prev != nil {
		prev.Focused = false
		prev.Bg = n.normal
		n.redraw(prev)
	}
	if next != nil {
		next.Focused = true
		next.Bg = n.highlight
		n.redraw(next)
	}
}

func (n *Navigator) redraw(it *ui.Item) {
	if n.disp == nil || !it.Displayable {
		return
	}
	_, h := n.disp.GlyphMetrics(it.Font)
	n.disp.Clear(n.normal, ui.NewRect(it.X, it.Y, ui.TextWidth(n.disp, it), h))
	n.disp.DrawItem(it)
}

func eligible(it *ui.Item) bool {
	return it.Focusable && it.Displayable
}

// Next returns the nearest focusable, displayable item strictly beyond cur
// in dir, or nil. Up and Down compare y; Left and Right compare x, Right
// measuring from the end of cur's rendered text. Ties on the main axis go
// to the item closest on the other axis, then to the leftmost or topmost.
func Next(d ui.Display, items []*ui.Item, cur *ui.Item, dir ui.Direction) *ui.Item {
	var best *ui.Item
	bestMain, bestCross := 0, 0
	for _, it := range items {
		if it == cur || !eligible(it) {
			continue
		}
		main, ok := distance(d, cur, it, dir)
		if !ok {
			continue
		}
		cross := abs(it.X - cur.X)
		if !dir.Vertical() {
			cross = abs(it.Y - cur.Y)
		}
		if best == nil || main < bestMain ||
			(main == bestMain && cross < bestCross) ||
			(main == bestMain && cross == bestCross && before(it, best)) {
			best, bestMain, bestCross = it, main, cross
		}
	}
	return best
}

// distance returns how far it lies beyond cur along dir.
func distance(d ui.Display, cur, it *ui.Item, dir ui.Direction) (int, bool) {
	switch dir {
	case ui.Down:
		return it.Y - cur.Y, it.Y > cur.Y
	case ui.Up:
		return cur.Y - it.Y, it.Y < cur.Y
	case ui.Right:
		edge := cur.X
		if d != nil {
			edge += ui.TextWidth(d, cur)
		}
		return it.X - edge, it.X > cur.X && it.X >= edge
	case ui.Left:
		return cur.X - it.X, it.X < cur.X
	}
	return 0, false
}

func before(a, b *ui.Item) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
