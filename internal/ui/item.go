package ui

import (
	"strings"
	"sync/atomic"
	"unicode/utf8"
)

// Font is an opaque font handle owned by the display collaborator.
type Font int

const (
	FontDefault Font = iota
	FontSmall
	FontLarge
)

// lastID feeds item ids. Ids are never reused for the life of the process.
var lastID atomic.Uint32

// NextID returns a fresh, never-before-issued item id.
func NextID() uint32 {
	return lastID.Add(1)
}

// Item is one logical line or UI element: a menu entry, a button, a modal
// option or a content line of a document.
type Item struct {
	ID   uint32
	Text string
	X, Y int
	Fg   Color
	Bg   Color
	Font Font

	// Focusable items may receive input focus.
	Focusable bool
	// Displayable items are currently inside the visible window.
	Displayable bool
	// Focused is true for at most one item of a related group.
	Focused bool
}

// NewItem creates a displayable item with a fresh id and a transparent background.
func NewItem(text string, x, y int, fg Color, font Font) *Item {
	return &Item{
		ID:          NextID(),
		Text:        text,
		X:           x,
		Y:           y,
		Fg:          fg,
		Bg:          NoColor,
		Font:        font,
		Displayable: true,
	}
}

// NewButton creates a focusable item.
func NewButton(text string, x, y int, fg Color, font Font) *Item {
	it := NewItem(text, x, y, fg, font)
	it.Focusable = true
	return it
}

// Visible returns the text as drawn: without a trailing hard newline.
func (it *Item) Visible() string {
	return strings.TrimSuffix(it.Text, "\n")
}

// Len returns the number of visible characters on the item.
func (it *Item) Len() int {
	return utf8.RuneCountInString(it.Visible())
}

// HardBreak reports whether the item text ends with an explicit newline.
func (it *Item) HardBreak() bool {
	return strings.HasSuffix(it.Text, "\n")
}

// Focused returns the first focused item of the list, or nil.
func Focused(items []*Item) *Item {
	for _, it := range items {
		if it.Focused {
			return it
		}
	}
	return nil
}
