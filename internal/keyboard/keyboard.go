// Package keyboard turns key presses from the matrix keyboard into the
// discrete events a scene handles.
package keyboard

import (
	"fmt"
	"unicode"

	"github.com/stlalpha/pocketscene/internal/ui"
)

// Kind is the type of an input event.
type Kind int

const (
	Arrow Kind = iota
	Enter
	Escape
	Delete
	Character
)

func (k Kind) String() string {
	switch k {
	case Arrow:
		return "Arrow"
	case Enter:
		return "Enter"
	case Escape:
		return "Escape"
	case Delete:
		return "Delete"
	case Character:
		return "Character"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is one input event delivered to the active scene.
type Event struct {
	Kind Kind
	Dir  ui.Direction // Arrow only
	Char rune         // Character only
}

func (e Event) String() string {
	switch e.Kind {
	case Arrow:
		return "Arrow(" + e.Dir.String() + ")"
	case Character:
		return fmt.Sprintf("Character(%q)", e.Char)
	}
	return e.Kind.String()
}

// ArrowEvent returns an arrow event.
func ArrowEvent(dir ui.Direction) Event { return Event{Kind: Arrow, Dir: dir} }

// CharEvent returns a character event.
func CharEvent(r rune) Event { return Event{Kind: Character, Char: r} }

// Key is a physical key of the matrix. Printable keys use their unshifted
// rune; the modifier and control keys use the codes below.
type Key rune

// Non-printable keys (outside the rune range used by printable keys).
const (
	KeyFn        Key = 0x110000 + iota // function layer
	KeyShift                           // one-shot shift, twice for caps lock
	KeyEnter                           // enter
	KeyBackspace                       // delete left
	KeyTab                             // tab
)

// The Fn layer puts the cursor keys on the right of the bottom rows.
var fnLayer = map[Key]Event{
	';': ArrowEvent(ui.Up),
	'.': ArrowEvent(ui.Down),
	',': ArrowEvent(ui.Left),
	'/': ArrowEvent(ui.Right),
	'`': {Kind: Escape},
}

var shifted = map[rune]rune{
	'`': '~', '1': '!', '2': '@', '3': '#', '4': '$', '5': '%',
	'6': '^', '7': '&', '8': '*', '9': '(', '0': ')', '-': '_',
	'=': '+', '[': '{', ']': '}', '\\': '|', ';': ':', '\'': '"',
	',': '<', '.': '>', '/': '?',
}

// State holds the modifier latches of the keyboard. It replaces any global
// key state: the owner passes it to whoever translates keys.
type State struct {
	fn       bool
	shift    bool
	capsLock bool
}

// Fn reports whether the function layer is latched.
func (s *State) Fn() bool { return s.fn }

// Shift reports whether shift applies to the next key.
func (s *State) Shift() bool { return s.shift || s.capsLock }

// CapsLock reports whether shift is locked.
func (s *State) CapsLock() bool { return s.capsLock }

// Reset releases every latch.
func (s *State) Reset() {
	*s = State{}
}

// Press feeds one key press. It returns the resulting event, or false when
// the key only changed modifier state or has no meaning on its layer.
func (s *State) Press(k Key) (Event, bool) {
	switch k {
	case KeyFn:
		s.fn = !s.fn
		return Event{}, false
	case KeyShift:
		switch {
		case s.capsLock:
			s.capsLock = false
		case s.shift:
			s.shift = false
			s.capsLock = true
		default:
			s.shift = true
		}
		return Event{}, false
	}

	fn := s.fn
	shift := s.Shift()
	s.fn = false
	s.shift = false

	switch k {
	case KeyEnter:
		return Event{Kind: Enter}, true
	case KeyBackspace:
		return Event{Kind: Delete}, true
	case KeyTab:
		return CharEvent('\t'), true
	}
	if fn {
		ev, ok := fnLayer[k]
		return ev, ok
	}

	r := rune(k)
	if !unicode.IsPrint(r) {
		return Event{}, false
	}
	if shift {
		if up, ok := shifted[r]; ok {
			r = up
		} else {
			r = unicode.ToUpper(r)
		}
	}
	return CharEvent(r), true
}
