package stage

import (
	"errors"
	"testing"

	"github.com/stlalpha/pocketscene/internal/ui"
)

const (
	home ID = iota
	menuStage
	confirmStage
)

type recorder struct {
	calls []string
}

func (r *recorder) RenderModal(id ID, m *Modal) {
	r.calls = append(r.calls, "modal "+m.Data.(string))
}

func (r *recorder) RenderAll() {
	r.calls = append(r.calls, "all")
}

type hooks struct {
	log   *[]string
	name  string
	chars []rune
}

func (h *hooks) PreEnter(m *Modal) { *h.log = append(*h.log, "enter "+h.name) }
func (h *hooks) PreLeave(m *Modal) { *h.log = append(*h.log, "leave "+h.name) }

func (h *hooks) OnCharacter(m *Modal, r rune) bool {
	h.chars = append(h.chars, r)
	return true
}

func setupMachine() (*Machine, *recorder, *[]string) {
	r := &recorder{}
	log := &[]string{}
	s := NewMachine(home, r)
	s.SetMain([]*ui.Item{ui.NewItem("main", 0, 0, ui.White, ui.FontDefault)})
	s.Register(menuStage, &Modal{
		Items:   []*ui.Item{ui.NewButton("Run", 0, 0, ui.White, ui.FontDefault)},
		Handler: &hooks{log: log, name: "menu"},
		Data:    "menu",
	})
	s.Register(confirmStage, &Modal{
		Items:   []*ui.Item{ui.NewButton("Yes", 0, 0, ui.White, ui.FontDefault)},
		Handler: &hooks{log: log, name: "confirm"},
		Data:    "confirm",
	})
	return s, r, log
}

func TestInitialStateIsHome(t *testing.T) {
	s, _, _ := setupMachine()
	if s.Current() != home || s.InModal() {
		t.Fatal("expected the machine to start on the home stage")
	}
	if s.Active()[0].Text != "main" {
		t.Error("expected the main list to be active")
	}
}

func TestOpenAndLeaveModal(t *testing.T) {
	s, r, log := setupMachine()

	if !s.OpenStageModal(menuStage) {
		t.Fatal("expected the menu modal to open")
	}
	if s.Current() != menuStage || !s.InModal() || s.Active()[0].Text != "Run" {
		t.Fatal("expected the menu list to be active")
	}

	if !s.LeaveModalControlling(home, true) {
		t.Fatal("expected to leave the modal")
	}
	if s.Current() != home || s.InModal() || s.Active()[0].Text != "main" {
		t.Error("expected the main list to be active again")
	}

	wantLog := []string{"enter menu", "leave menu"}
	wantCalls := []string{"modal menu", "all"}
	for i := range wantLog {
		if (*log)[i] != wantLog[i] {
			t.Errorf("hook %d: expected %q, got %q", i, wantLog[i], (*log)[i])
		}
	}
	for i := range wantCalls {
		if r.calls[i] != wantCalls[i] {
			t.Errorf("render %d: expected %q, got %q", i, wantCalls[i], r.calls[i])
		}
	}
}

func TestLeaveToAnotherModal(t *testing.T) {
	s, r, log := setupMachine()
	s.OpenStageModal(menuStage)
	s.LeaveModalControlling(confirmStage, false)

	if s.Current() != confirmStage || s.Active()[0].Text != "Yes" {
		t.Fatal("expected the confirm list to be active")
	}
	if len(r.calls) != 1 {
		t.Errorf("expected no repaint without rerender, got %v", r.calls)
	}
	// Leaving for another modal does not run its PreEnter hook.
	if len(*log) != 2 || (*log)[1] != "leave menu" {
		t.Errorf("unexpected hooks %v", *log)
	}

	s.LeaveModalControlling(menuStage, true)
	if r.calls[len(r.calls)-1] != "modal menu" {
		t.Errorf("expected the menu to repaint, got %v", r.calls)
	}
}

func TestTransitionsWithoutModalAreNoops(t *testing.T) {
	s, r, log := setupMachine()

	if s.EnterModalControlling() {
		t.Error("expected enter on the home stage to be a no-op")
	}
	if s.LeaveModalControlling(menuStage, true) {
		t.Error("expected leave on the home stage to be a no-op")
	}
	if s.Current() != home {
		t.Error("expected to stay home")
	}

	const unknown ID = 42
	if s.OpenStageModal(unknown) {
		t.Error("expected an unknown stage to have no modal")
	}
	if s.Current() != unknown || s.InModal() {
		t.Error("expected the stage to change without entering a modal")
	}
	if len(r.calls) != 0 || len(*log) != 0 {
		t.Errorf("expected no hooks or repaints, got %v %v", r.calls, *log)
	}
}

func TestCharacterGoesToActiveModal(t *testing.T) {
	s, _, _ := setupMachine()
	if s.Character('a') {
		t.Error("expected no handler on the main list")
	}
	s.OpenStageModal(menuStage)
	if !s.Character('x') {
		t.Fatal("expected the modal to consume the character")
	}
	h := s.Modal(menuStage).Handler.(*hooks)
	if len(h.chars) != 1 || h.chars[0] != 'x' {
		t.Errorf("unexpected characters %q", h.chars)
	}
	if s.Direction(ui.Down) {
		t.Error("expected the modal to ignore arrows without a handler")
	}
}

func TestRegisterRejectsHome(t *testing.T) {
	s, _, _ := setupMachine()
	if err := s.Register(home, &Modal{}); !errors.Is(err, ErrHomeStage) {
		t.Errorf("expected ErrHomeStage, got %v", err)
	}
}

func TestRemoveCurrentModalReturnsHome(t *testing.T) {
	s, _, _ := setupMachine()
	s.OpenStageModal(confirmStage)
	s.Remove(confirmStage)
	if s.Current() != home || s.InModal() || s.Modal(confirmStage) != nil {
		t.Error("expected the modal to be gone and control home")
	}
}
