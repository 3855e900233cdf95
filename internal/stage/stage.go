// Package stage tracks which stage of a scene is current, the scene's home
// state or one of its modals, and which item list receives input.
package stage

import (
	"errors"

	"github.com/stlalpha/pocketscene/internal/ui"
)

// ID identifies the home stage of a scene or one of its modals.
type ID int

// ErrHomeStage is returned when a modal is registered under the home id.
var ErrHomeStage = errors.New("stage: modal cannot use the home stage id")

// Modal is an alternate item list with its own lifecycle hooks.
type Modal struct {
	Items []*ui.Item
	// Handler may implement any of PreEnterer, PreLeaver, DirectionHandler
	// and CharacterHandler.
	Handler any
	Data    any
}

// PreEnterer runs before its modal becomes the active list.
type PreEnterer interface {
	PreEnter(m *Modal)
}

// PreLeaver runs before control leaves its modal.
type PreLeaver interface {
	PreLeave(m *Modal)
}

// DirectionHandler receives arrow keys while its modal is active. It
// reports whether the key was consumed.
type DirectionHandler interface {
	OnDirection(m *Modal, dir ui.Direction) bool
}

// CharacterHandler receives typed characters while its modal is active.
type CharacterHandler interface {
	OnCharacter(m *Modal, r rune) bool
}

// Renderer repaints on stage transitions.
type Renderer interface {
	RenderModal(id ID, m *Modal)
	RenderAll()
}

// Machine is the stage state machine of one scene. It lives as long as the
// scene and is only touched from the UI goroutine.
type Machine struct {
	home    ID
	current ID
	// active names the list receiving input: home for the main list,
	// otherwise a modal id.
	active ID
	modals map[ID]*Modal
	main   []*ui.Item
	r      Renderer
}

// NewMachine creates a machine resting on its home stage.
func NewMachine(home ID, r Renderer) *Machine {
	return &Machine{
		home:    home,
		current: home,
		active:  home,
		modals:  make(map[ID]*Modal),
		r:       r,
	}
}

// Register installs m as the modal of stage id, replacing any previous one.
func (s *Machine) Register(id ID, m *Modal) error {
	if id == s.home {
		return ErrHomeStage
	}
	s.modals[id] = m
	return nil
}

// Remove tears down the modal of stage id. If it is current, control
// returns to the home stage without a repaint.
func (s *Machine) Remove(id ID) {
	if s.current == id {
		s.LeaveModalControlling(s.home, false)
	}
	delete(s.modals, id)
}

// Modal returns the modal of stage id, or nil.
func (s *Machine) Modal(id ID) *Modal {
	return s.modals[id]
}

// Home returns the home stage id.
func (s *Machine) Home() ID { return s.home }

// Current returns the current stage id.
func (s *Machine) Current() ID { return s.current }

// InModal reports whether a modal list is receiving input.
func (s *Machine) InModal() bool {
	return s.active != s.home && s.modals[s.active] != nil
}

// ActiveModal returns the modal receiving input, or nil on the main list.
func (s *Machine) ActiveModal() *Modal {
	if !s.InModal() {
		return nil
	}
	return s.modals[s.active]
}

// SetMain replaces the main item list.
func (s *Machine) SetMain(items []*ui.Item) {
	s.main = items
}

// Main returns the main item list.
func (s *Machine) Main() []*ui.Item {
	return s.main
}

// Active returns the item list receiving input.
func (s *Machine) Active() []*ui.Item {
	if m := s.ActiveModal(); m != nil {
		return m.Items
	}
	return s.main
}

// OpenStageModal makes id current and enters its modal.
func (s *Machine) OpenStageModal(id ID) bool {
	s.current = id
	return s.EnterModalControlling()
}

// EnterModalControlling gives input to the modal of the current stage and
// repaints it. It is a no-op when the current stage has no modal.
func (s *Machine) EnterModalControlling() bool {
	m := s.modals[s.current]
	if m == nil {
		return false
	}
	if h, ok := m.Handler.(PreEnterer); ok {
		h.PreEnter(m)
	}
	s.active = s.current
	if s.r != nil {
		s.r.RenderModal(s.current, m)
	}
	return true
}

// LeaveModalControlling leaves the modal of the current stage for target:
// the main list when target is the home stage (or has no modal), otherwise
// target's modal. With rerender set the new active surface is repainted.
// It is a no-op when the current stage has no modal.
func (s *Machine) LeaveModalControlling(target ID, rerender bool) bool {
	m := s.modals[s.current]
	if m == nil {
		return false
	}
	if h, ok := m.Handler.(PreLeaver); ok {
		h.PreLeave(m)
	}
	if tm := s.modals[target]; target != s.home && tm != nil {
		s.active = target
		if rerender && s.r != nil {
			s.r.RenderModal(target, tm)
		}
	} else {
		s.active = s.home
		if rerender && s.r != nil {
			s.r.RenderAll()
		}
	}
	s.current = target
	return true
}

// Direction forwards an arrow key to the active modal's handler.
func (s *Machine) Direction(dir ui.Direction) bool {
	m := s.ActiveModal()
	if m == nil {
		return false
	}
	if h, ok := m.Handler.(DirectionHandler); ok {
		return h.OnDirection(m, dir)
	}
	return false
}

// Character forwards a typed character to the active modal's handler.
func (s *Machine) Character(r rune) bool {
	m := s.ActiveModal()
	if m == nil {
		return false
	}
	if h, ok := m.Handler.(CharacterHandler); ok {
		return h.OnCharacter(m, r)
	}
	return false
}
