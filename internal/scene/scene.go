// Package scene implements the screens of the device: the start menu, the
// file browser, the code editor and the settings page. Each scene composes
// the document viewport, focus navigation and the stage machine.
package scene

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/stlalpha/pocketscene/internal/storage"
	"github.com/stlalpha/pocketscene/internal/ui"
)

// Kind selects a scene variant.
type Kind int

const (
	KindStart Kind = iota
	KindFiles
	KindCode
	KindSettings
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindFiles:
		return "files"
	case KindCode:
		return "code"
	case KindSettings:
		return "settings"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Scene is the active screen. The engine delivers one event at a time and
// every method runs on the UI goroutine.
type Scene interface {
	Init()
	Arrow(dir ui.Direction)
	Enter()
	Escape()
	Delete()
	Value(r rune)
	// Focus moves focus within the active item list and reports whether a
	// target was found.
	Focus(dir ui.Direction) bool
	RenderAll()
}

// Drainer is implemented by scenes that queue work from other goroutines.
// The engine calls Drain between events.
type Drainer interface {
	Drain()
}

// Closer is implemented by scenes holding resources past their lifetime.
type Closer interface {
	Close()
}

// Saver is implemented by scenes with unsaved content.
type Saver interface {
	Autosave()
}

// CodeSink receives the results of a script run. The methods may be called
// from any goroutine.
type CodeSink interface {
	SendCodeOutput(text string)
	SendCodeError(traceback string)
	SendCodeSuccess()
}

// Preferences is the settings store.
type Preferences interface {
	Theme() ui.Theme
	ThemeID() int
	SetTheme(id int) error
	Themes() []ui.Theme
	SortMode() int
	SetSortMode(id int) error
}

// Storage is the script file store.
type Storage interface {
	List(path string, mode storage.SortMode) ([]string, error)
	ReadFile(path string) (string, error)
	WriteFile(path, text string) error
	NewScriptName(dir, language string) string
}

// CodeRunner executes scripts.
type CodeRunner interface {
	RunCodeString(ctx context.Context, code, language string) (uuid.UUID, error)
	Send(input string) error
	Cancel()
	Running() bool
	WaitingInput() bool
}

// Switcher replaces the active scene.
type Switcher interface {
	Switch(kind Kind, arg string)
}

// Layout holds the text geometry of content areas.
type Layout struct {
	MaxLineLength   int
	MaxLinesPerPage int
	// ScrollBudget is the number of lines one key event may scroll.
	ScrollBudget int
}

// Env carries the collaborators shared by every scene.
type Env struct {
	Context  context.Context
	Display  ui.Display
	Settings Preferences
	Storage  Storage
	Runner   CodeRunner
	Switcher Switcher
	Layout   Layout
	// Wake is called from any goroutine when a scene has queued work.
	Wake func()
}

func (e *Env) context() context.Context {
	if e.Context == nil {
		return context.Background()
	}
	return e.Context
}

func (e *Env) wake() {
	if e.Wake != nil {
		e.Wake()
	}
}

func (e *Env) switchTo(kind Kind, arg string) {
	if e.Switcher != nil {
		e.Switcher.Switch(kind, arg)
	}
}

// New creates an uninitialized scene of the given kind. arg is the
// directory of a files scene or the script path of a code scene.
func New(kind Kind, env *Env, arg string) Scene {
	switch kind {
	case KindFiles:
		return NewFiles(env, arg)
	case KindCode:
		return NewCode(env, arg)
	case KindSettings:
		return NewSettings(env)
	}
	return NewStart(env)
}
