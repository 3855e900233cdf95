package scene

import (
	"github.com/stlalpha/pocketscene/internal/logging"
	"github.com/stlalpha/pocketscene/internal/stage"
	"github.com/stlalpha/pocketscene/internal/storage"
	"github.com/stlalpha/pocketscene/internal/ui"
)

const themeStage stage.ID = 1

// Settings edits the persisted preferences.
type Settings struct {
	Base
	items []*ui.Item
}

// NewSettings creates the settings scene.
func NewSettings(env *Env) *Settings {
	s := &Settings{}
	s.init(env, "Settings", s.renderBody)
	return s
}

func (s *Settings) Init() {
	s.build()
	s.status.Text = "Esc: back"
}

func (s *Settings) build() {
	st := s.env.Settings
	s.items = []*ui.Item{
		s.button("Theme: "+st.Theme().Name, 2, 1),
		s.button("Sort: "+storage.SortMode(st.SortMode()).String(), 2, 2),
		s.button("Back", 2, 4),
	}
	s.stages.SetMain(s.items)
	s.navFor(false).FocusFirst(s.items)
}

func (s *Settings) renderBody() {
	for _, it := range s.items {
		s.disp.DrawItem(it)
	}
}

func (s *Settings) Arrow(dir ui.Direction) {
	if s.modalArrow(dir) {
		return
	}
	s.Focus(dir)
}

func (s *Settings) Enter() {
	if s.modalEnter() {
		return
	}
	switch ui.Focused(s.items) {
	case s.items[0]:
		s.themeMenu()
	case s.items[1]:
		s.sortMenu(func(storage.SortMode) { s.refresh(1) })
	case s.items[2]:
		s.env.switchTo(KindStart, "")
	}
}

func (s *Settings) themeMenu() {
	themes := s.env.Settings.Themes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	s.openMenu(themeStage, "Theme", names, s.env.Settings.ThemeID(), func(i int) {
		if err := s.env.Settings.SetTheme(themes[i].ID); err != nil {
			logging.Warn("Failed to store theme: %v", err)
			s.notice("Cannot save theme: " + err.Error())
			return
		}
		s.stages.LeaveModalControlling(homeStage, false)
		s.applyTheme()
		s.refresh(0)
	})
}

// refresh rebuilds the items with the current values and keeps focus on
// item i.
func (s *Settings) refresh(i int) {
	s.build()
	s.navFor(false).Select(s.items, s.items[i])
	s.RenderAll()
}

func (s *Settings) Escape() {
	if s.modalEscape() {
		return
	}
	s.env.switchTo(KindStart, "")
}

func (s *Settings) Delete() {
	s.modalDelete()
}

func (s *Settings) Value(r rune) {
	s.modalValue(r)
}
