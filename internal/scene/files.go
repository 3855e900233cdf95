package scene

import (
	"github.com/stlalpha/pocketscene/internal/logging"
	"github.com/stlalpha/pocketscene/internal/storage"
	"github.com/stlalpha/pocketscene/internal/ui"
	"github.com/stlalpha/pocketscene/internal/viewport"
)

const parentEntry = ".." + storage.Separator

// Files browses the script directory. Entries scroll through a window of
// the content area; focus moving past its edge scrolls one line and
// retries.
type Files struct {
	Base
	dir     string
	entries []*ui.Item
	win     viewport.Window
}

// NewFiles creates a file browser showing dir.
func NewFiles(env *Env, dir string) *Files {
	if dir == "" {
		dir = "."
	}
	f := &Files{dir: dir}
	f.init(env, "", f.renderBody)
	return f
}

// Dir returns the directory shown.
func (f *Files) Dir() string { return f.dir }

func (f *Files) Init() {
	f.status.Text = "s: sort  n: new  Esc: back"
	f.load()
}

// load lists the current directory and rebuilds the entries.
func (f *Files) load() {
	f.title.Text = "Files: " + f.dir
	mode := storage.SortMode(f.env.Settings.SortMode())
	names, err := f.env.Storage.List(f.dir, mode)
	if err != nil {
		logging.Warn("Failed to list %s: %v", f.dir, err)
		names = nil
	}
	if f.dir != "." {
		names = append([]string{parentEntry}, names...)
	}

	f.entries = make([]*ui.Item, len(names))
	for i, name := range names {
		it := ui.NewButton(name, f.glyphW, 0, f.theme.Foreground, ui.FontDefault)
		if storage.IsDir(name) {
			it.Fg = f.theme.Accent
		}
		f.entries[i] = it
	}
	f.win = viewport.NewWindow(f.env.Layout.MaxLinesPerPage)
	f.win.Reset(len(f.entries))
	f.layout()
	f.stages.SetMain(f.entries)
	f.navFor(false).FocusFirst(f.entries)

	if err != nil {
		f.notice("Cannot open " + f.dir + ": " + err.Error())
	}
}

func (f *Files) layout() {
	viewport.Layout(f.entries, f.win, f.glyphW, f.contentY(), f.glyphH)
}

func (f *Files) renderBody() {
	if len(f.entries) == 0 {
		f.disp.DrawItem(ui.NewItem("(empty)", f.glyphW, f.contentY(), f.theme.Foreground, ui.FontDefault))
		return
	}
	f.disp.DrawItems(f.entries[f.win.Start():f.win.End()], f.glyphW, f.contentY(), f.win.Page())
	right := f.disp.Width() - f.glyphW
	if f.win.Start() > 0 {
		f.disp.DrawItem(ui.NewItem("^", right, f.contentY(), f.theme.Accent, ui.FontDefault))
	}
	if f.win.End() < len(f.entries) {
		f.disp.DrawItem(ui.NewItem("v", right, f.contentY()+(f.win.Page()-1)*f.glyphH, f.theme.Accent, ui.FontDefault))
	}
}

// Focus moves focus among the entries, scrolling the list by one line
// when the focused entry sits at the edge of the window.
func (f *Files) Focus(dir ui.Direction) bool {
	if f.stages.InModal() || !dir.Vertical() {
		return f.Base.Focus(dir)
	}
	nav := f.navFor(false)
	if nav.Focus(f.entries, dir) {
		return true
	}
	if f.win.Scroll(dir, 1, len(f.entries)) == 0 {
		return false
	}
	f.layout()
	found := nav.Focus(f.entries, dir)
	f.RenderAll()
	return found
}

func (f *Files) Arrow(dir ui.Direction) {
	if f.modalArrow(dir) {
		return
	}
	f.Focus(dir)
}

func (f *Files) Enter() {
	if f.modalEnter() {
		return
	}
	it := ui.Focused(f.entries)
	if it == nil {
		return
	}
	switch {
	case it.Text == parentEntry:
		f.chdir(storage.Parent(f.dir))
	case storage.IsDir(it.Text):
		f.chdir(storage.Join(f.dir, it.Text))
	default:
		f.env.switchTo(KindCode, storage.Join(f.dir, it.Text))
	}
}

func (f *Files) chdir(dir string) {
	logging.Debug("files: %s -> %s", f.dir, dir)
	f.dir = dir
	f.load()
	f.RenderAll()
}

// Escape and Delete go up one directory, leaving for the start menu from
// the root.
func (f *Files) Escape() {
	if f.modalEscape() {
		return
	}
	f.back()
}

func (f *Files) Delete() {
	if f.modalDelete() {
		return
	}
	f.back()
}

func (f *Files) back() {
	if f.dir == "." {
		f.env.switchTo(KindStart, "")
		return
	}
	f.chdir(storage.Parent(f.dir))
}

func (f *Files) Value(r rune) {
	if f.modalValue(r) {
		return
	}
	switch r {
	case 's':
		f.sortMenu(func(storage.SortMode) {
			f.load()
			f.RenderAll()
		})
	case 'n':
		f.env.switchTo(KindCode, f.env.Storage.NewScriptName(f.dir, "lua"))
	}
}
