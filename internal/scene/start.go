package scene

import (
	"github.com/stlalpha/pocketscene/internal/stage"
	"github.com/stlalpha/pocketscene/internal/ui"
)

const languageStage stage.ID = 1

var languages = []struct {
	name, id string
}{
	{"Lua", "lua"},
	{"Python", "python"},
}

// Start is the main menu.
type Start struct {
	Base
	items []*ui.Item
}

// NewStart creates the main menu scene.
func NewStart(env *Env) *Start {
	s := &Start{}
	s.init(env, "PocketScene", s.renderBody)
	return s
}

func (s *Start) Init() {
	s.items = []*ui.Item{
		s.button("Files", 2, 1),
		s.button("New script", 2, 2),
		s.button("Settings", 2, 3),
	}
	s.stages.SetMain(s.items)
	s.navFor(false).FocusFirst(s.items)
	s.status.Text = "Enter: open"
}

func (s *Start) renderBody() {
	for _, it := range s.items {
		s.disp.DrawItem(it)
	}
}

func (s *Start) Arrow(dir ui.Direction) {
	if s.modalArrow(dir) {
		return
	}
	s.Focus(dir)
}

func (s *Start) Enter() {
	if s.modalEnter() {
		return
	}
	switch ui.Focused(s.items) {
	case s.items[0]:
		s.env.switchTo(KindFiles, ".")
	case s.items[1]:
		s.newScript()
	case s.items[2]:
		s.env.switchTo(KindSettings, "")
	}
}

func (s *Start) newScript() {
	names := make([]string, len(languages))
	for i, l := range languages {
		names[i] = l.name
	}
	s.openMenu(languageStage, "Language", names, 0, func(i int) {
		path := s.env.Storage.NewScriptName(".", languages[i].id)
		s.env.switchTo(KindCode, path)
	})
}

func (s *Start) Escape() {
	s.modalEscape()
}

func (s *Start) Delete() {
	s.modalDelete()
}

func (s *Start) Value(r rune) {
	if s.modalValue(r) {
		return
	}
	switch r {
	case 'f':
		s.env.switchTo(KindFiles, ".")
	case 'n':
		s.newScript()
	case 's':
		s.env.switchTo(KindSettings, "")
	}
}
