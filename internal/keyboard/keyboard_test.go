package keyboard

import (
	"testing"

	"github.com/stlalpha/pocketscene/internal/ui"
)

func TestPressPlainKeys(t *testing.T) {
	tests := []struct {
		key  Key
		want Event
	}{
		{'a', CharEvent('a')},
		{'7', CharEvent('7')},
		{KeyEnter, Event{Kind: Enter}},
		{KeyBackspace, Event{Kind: Delete}},
		{KeyTab, CharEvent('\t')},
	}
	for _, tt := range tests {
		var s State
		got, ok := s.Press(tt.key)
		if !ok || got != tt.want {
			t.Errorf("Press(%q) = %v %v, want %v", rune(tt.key), got, ok, tt.want)
		}
	}
}

func TestFnLayer(t *testing.T) {
	tests := []struct {
		key  Key
		want Event
	}{
		{';', ArrowEvent(ui.Up)},
		{'.', ArrowEvent(ui.Down)},
		{',', ArrowEvent(ui.Left)},
		{'/', ArrowEvent(ui.Right)},
		{'`', Event{Kind: Escape}},
	}
	for _, tt := range tests {
		var s State
		if _, ok := s.Press(KeyFn); ok {
			t.Fatal("Fn alone must not produce an event")
		}
		got, ok := s.Press(tt.key)
		if !ok || got != tt.want {
			t.Errorf("Fn+%q = %v, want %v", rune(tt.key), got, tt.want)
		}
		if s.Fn() {
			t.Error("Fn latch should release after one key")
		}
	}

	var s State
	s.Press(KeyFn)
	if _, ok := s.Press('q'); ok {
		t.Error("expected Fn+q to have no meaning")
	}
}

func TestShiftLatchAndCapsLock(t *testing.T) {
	var s State
	s.Press(KeyShift)
	if ev, _ := s.Press('a'); ev.Char != 'A' {
		t.Errorf("expected A, got %q", ev.Char)
	}
	if ev, _ := s.Press('a'); ev.Char != 'a' {
		t.Errorf("expected shift to release, got %q", ev.Char)
	}

	s.Press(KeyShift)
	s.Press(KeyShift)
	if !s.CapsLock() {
		t.Fatal("expected caps lock after a double shift")
	}
	for _, want := range []rune{'B', '!'} {
		k := Key('b')
		if want == '!' {
			k = '1'
		}
		if ev, _ := s.Press(k); ev.Char != want {
			t.Errorf("expected %q under caps lock, got %q", want, ev.Char)
		}
	}
	s.Press(KeyShift)
	if s.CapsLock() || s.Shift() {
		t.Error("expected a third shift to release caps lock")
	}
}

func TestEventString(t *testing.T) {
	if got := ArrowEvent(ui.Left).String(); got != "Arrow(left)" {
		t.Errorf("unexpected %q", got)
	}
	if got := CharEvent('x').String(); got != `Character('x')` {
		t.Errorf("unexpected %q", got)
	}
}
