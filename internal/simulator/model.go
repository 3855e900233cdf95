// Package simulator hosts the device UI in a terminal with bubbletea. Host
// keys are translated to device key events and the panel is drawn as
// terminal cells.
package simulator

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stlalpha/pocketscene/internal/display"
	"github.com/stlalpha/pocketscene/internal/engine"
	"github.com/stlalpha/pocketscene/internal/keyboard"
	"github.com/stlalpha/pocketscene/internal/logging"
	"github.com/stlalpha/pocketscene/internal/ui"
)

// wakeMsg reports that the engine has queued work.
type wakeMsg struct{}

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8"))
	latchStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("11"))
)

// Model is the bubbletea model of the simulator.
type Model struct {
	eng    *engine.Engine
	canvas *display.Canvas
	keys   KeyMap
	kb     keyboard.State
	help   help.Model

	quitting bool
}

// New creates a model over an engine drawing onto canvas. The engine must
// already be started.
func New(eng *engine.Engine, canvas *display.Canvas) *Model {
	return &Model{
		eng:    eng,
		canvas: canvas,
		keys:   DefaultKeyMap(),
		help:   help.New(),
	}
}

// Init starts listening for engine wake-ups.
func (m *Model) Init() tea.Cmd {
	return m.waitForWake()
}

func (m *Model) waitForWake() tea.Cmd {
	wake := m.eng.Wake()
	return func() tea.Msg {
		<-wake
		return wakeMsg{}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case wakeMsg:
		m.eng.Drain()
		return m, m.waitForWake()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			m.eng.Close()
			return m, tea.Quit
		}
		if ev, ok := m.translate(msg); ok {
			m.eng.Dispatch(ev)
		}
	}
	return m, nil
}

// translate maps a host key to a device event. Modifier keys only change
// the latch state and produce no event.
func (m *Model) translate(msg tea.KeyMsg) (keyboard.Event, bool) {
	switch {
	case key.Matches(msg, m.keys.Up):
		return keyboard.ArrowEvent(ui.Up), true
	case key.Matches(msg, m.keys.Down):
		return keyboard.ArrowEvent(ui.Down), true
	case key.Matches(msg, m.keys.Left):
		return keyboard.ArrowEvent(ui.Left), true
	case key.Matches(msg, m.keys.Right):
		return keyboard.ArrowEvent(ui.Right), true
	case key.Matches(msg, m.keys.Escape):
		m.kb.Reset()
		return keyboard.Event{Kind: keyboard.Escape}, true
	case key.Matches(msg, m.keys.Enter):
		return m.kb.Press(keyboard.KeyEnter)
	case key.Matches(msg, m.keys.Backspace):
		return m.kb.Press(keyboard.KeyBackspace)
	case key.Matches(msg, m.keys.Tab):
		return m.kb.Press(keyboard.KeyTab)
	case key.Matches(msg, m.keys.Fn):
		return m.kb.Press(keyboard.KeyFn)
	case key.Matches(msg, m.keys.Shift):
		return m.kb.Press(keyboard.KeyShift)
	}

	if msg.Type != tea.KeyRunes && msg.Type != tea.KeySpace {
		logging.Debug("simulator: unmapped key %q", msg.String())
		return keyboard.Event{}, false
	}
	if len(msg.Runes) != 1 {
		// Pasted text arrives as one message; deliver it key by key.
		for _, r := range msg.Runes {
			if ev, ok := m.kb.Press(keyboard.Key(r)); ok {
				m.eng.Dispatch(ev)
			}
		}
		return keyboard.Event{}, false
	}
	return m.kb.Press(keyboard.Key(msg.Runes[0]))
}

// View renders the panel and a footer.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	footer := m.help.View(m.keys)
	var latches []string
	if m.kb.Fn() {
		latches = append(latches, "FN")
	}
	if m.kb.CapsLock() {
		latches = append(latches, "CAPS")
	} else if m.kb.Shift() {
		latches = append(latches, "SHIFT")
	}
	if len(latches) > 0 {
		footer = latchStyle.Render(strings.Join(latches, " ")) + "  " + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, frameStyle.Render(m.canvas.View()), footer)
}

// Run starts the simulator in the alternate screen and blocks until quit.
func Run(m *Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}
