package scene

import (
	"strings"

	"github.com/stlalpha/pocketscene/internal/focus"
	"github.com/stlalpha/pocketscene/internal/logging"
	"github.com/stlalpha/pocketscene/internal/stage"
	"github.com/stlalpha/pocketscene/internal/storage"
	"github.com/stlalpha/pocketscene/internal/ui"
)

// Stage ids shared by every scene. Variants number their own modals
// from 1.
const (
	homeStage   stage.ID = 0
	noticeStage stage.ID = 100
	sortStage   stage.ID = 101
)

// Optional modal handler methods on top of the stage hooks.
type (
	// selectHandler picks the focused item of a menu on Enter.
	selectHandler interface {
		OnSelect(m *stage.Modal, index int)
	}
	// enterHandler takes Enter itself.
	enterHandler interface {
		OnEnter(m *stage.Modal)
	}
	// escapeHandler may keep Escape from closing the modal.
	escapeHandler interface {
		OnEscape(m *stage.Modal) bool
	}
	deleteHandler interface {
		OnDelete(m *stage.Modal)
	}
	// contentRenderer paints modal content that is not an item list.
	contentRenderer interface {
		RenderContent(m *stage.Modal, panel ui.Rect)
	}
)

// Base is the part every scene variant shares: the title and status rows,
// the stage machine and focus navigation.
type Base struct {
	env    *Env
	disp   ui.Display
	theme  ui.Theme
	title  *ui.Item
	status *ui.Item
	stages *stage.Machine
	nav    *focus.Navigator

	glyphW, glyphH int
	renderBody     func()
}

func (b *Base) init(env *Env, title string, renderBody func()) {
	b.env = env
	b.disp = env.Display
	b.glyphW, b.glyphH = b.disp.GlyphMetrics(ui.FontDefault)
	b.theme = env.Settings.Theme()
	b.stages = stage.NewMachine(homeStage, b)
	b.nav = focus.New(b.disp, b.theme.Background, b.theme.Highlight)
	b.title = ui.NewItem(title, 0, 0, b.theme.Title, ui.FontDefault)
	b.status = ui.NewItem("", 0, b.disp.Height()-b.glyphH, b.theme.Accent, ui.FontDefault)
	b.renderBody = renderBody
}

// contentY is the top of the content area, below the title row.
func (b *Base) contentY() int { return b.glyphH }

// columns is the number of glyphs across the panel.
func (b *Base) columns() int { return b.disp.Width() / b.glyphW }

// navFor returns the navigator painting with the backgrounds of the main
// list or of a modal panel.
func (b *Base) navFor(modal bool) *focus.Navigator {
	if modal {
		b.nav.SetColors(b.theme.Modal, b.theme.Highlight)
	} else {
		b.nav.SetColors(b.theme.Background, b.theme.Highlight)
	}
	return b.nav
}

func (b *Base) applyTheme() {
	b.theme = b.env.Settings.Theme()
	b.title.Fg = b.theme.Title
	b.status.Fg = b.theme.Accent
	b.navFor(b.stages.InModal())
}

// button creates a main-list button.
func (b *Base) button(text string, col, row int) *ui.Item {
	return ui.NewButton(text, col*b.glyphW, b.contentY()+row*b.glyphH, b.theme.Foreground, ui.FontDefault)
}

// Focus moves focus within the active list.
func (b *Base) Focus(dir ui.Direction) bool {
	return b.navFor(b.stages.InModal()).Focus(b.stages.Active(), dir)
}

// RenderAll repaints the whole scene, the active modal on top.
func (b *Base) RenderAll() {
	b.disp.Clear(b.theme.Background, ui.NewRect(0, 0, b.disp.Width(), b.disp.Height()))
	b.disp.DrawItem(b.title)
	if b.renderBody != nil {
		b.renderBody()
	}
	b.drawStatus()
	if m := b.stages.ActiveModal(); m != nil {
		b.RenderModal(b.stages.Current(), m)
	}
}

// RenderModal paints the panel of a modal and its items.
func (b *Base) RenderModal(id stage.ID, m *stage.Modal) {
	panel := b.panel(m)
	b.disp.Clear(b.theme.Modal, panel)
	for _, it := range m.Items {
		if it.Displayable {
			b.disp.DrawItem(it)
		}
	}
	if r, ok := m.Handler.(contentRenderer); ok {
		r.RenderContent(m, panel)
	}
}

// panel returns the rectangle behind a modal: the bounds of its items with
// a one glyph margin, or the whole content area for content modals.
func (b *Base) panel(m *stage.Modal) ui.Rect {
	if _, ok := m.Handler.(contentRenderer); ok {
		return ui.NewRect(0, b.contentY(), b.disp.Width(), b.disp.Height()-2*b.glyphH)
	}
	minX, minY, maxX, maxY := b.disp.Width(), b.disp.Height(), 0, 0
	for _, it := range m.Items {
		minX = min(minX, it.X)
		minY = min(minY, it.Y)
		maxX = max(maxX, it.X+ui.TextWidth(b.disp, it))
		maxY = max(maxY, it.Y+b.glyphH)
	}
	if maxX <= minX {
		return ui.Rect{}
	}
	return ui.NewRect(minX-b.glyphW, minY-b.glyphH/2, maxX-minX+2*b.glyphW, maxY-minY+b.glyphH)
}

func (b *Base) setStatus(text string) {
	b.status.Text = text
	b.drawStatus()
}

func (b *Base) drawStatus() {
	b.disp.Clear(b.theme.Background, ui.NewRect(0, b.status.Y, b.disp.Width(), b.glyphH))
	if b.status.Text != "" {
		b.disp.DrawItem(b.status)
	}
}

func (b *Base) setTitle(text string) {
	b.title.Text = text
	b.disp.Clear(b.theme.Background, ui.NewRect(0, 0, b.disp.Width(), b.glyphH))
	b.disp.DrawItem(b.title)
}

// menuModal lays out a title and a column of options centered on the
// panel.
func (b *Base) menuModal(title string, options []string, handler any) *stage.Modal {
	width := len([]rune(title))
	for _, o := range options {
		width = max(width, len([]rune(o)))
	}
	rows := len(options) + 1
	x := (b.columns() - width) / 2 * b.glyphW
	y := b.contentY() + max(0, (b.disp.Height()-2*b.glyphH-rows*b.glyphH)/2)

	items := make([]*ui.Item, 0, rows)
	items = append(items, ui.NewItem(title, x, y, b.theme.Title, ui.FontDefault))
	for i, o := range options {
		items = append(items, ui.NewButton(o, x, y+(i+1)*b.glyphH, b.theme.Foreground, ui.FontDefault))
	}
	return &stage.Modal{Items: items, Handler: handler}
}

// register installs a modal, logging the programming error of a clash with
// the home stage.
func (b *Base) register(id stage.ID, m *stage.Modal) {
	if err := b.stages.Register(id, m); err != nil {
		logging.Error("register modal %d: %v", id, err)
	}
}

// menu is the handler of option menus.
type menu struct {
	b       *Base
	initial int
	pick    func(index int)
}

func (h *menu) PreEnter(m *stage.Modal) {
	nav := h.b.navFor(true)
	nav.Clear(m.Items)
	i := 0
	for _, it := range m.Items {
		if !it.Focusable {
			continue
		}
		if i == h.initial {
			nav.Select(m.Items, it)
			return
		}
		i++
	}
	nav.FocusFirst(m.Items)
}

func (h *menu) PreLeave(m *stage.Modal) {
	h.b.navFor(false)
}

func (h *menu) OnSelect(m *stage.Modal, index int) {
	h.pick(index)
}

// openMenu registers and enters an option menu under id.
func (b *Base) openMenu(id stage.ID, title string, options []string, initial int, pick func(int)) {
	b.register(id, b.menuModal(title, options, &menu{b: b, initial: initial, pick: pick}))
	b.stages.OpenStageModal(id)
}

// closeModal returns to the main list and repaints the scene.
func (b *Base) closeModal() {
	b.stages.LeaveModalControlling(homeStage, true)
}

// notice shows a message with an OK button. Collaborator failures are
// reported this way.
func (b *Base) notice(msg string) {
	lines := wrap(msg, max(8, b.columns()-6))
	options := append(lines[1:len(lines):len(lines)], "OK")
	m := b.menuModal(lines[0], options, &menu{
		b:    b,
		pick: func(int) { b.closeModal() },
	})
	// Message lines are labels, only OK takes focus.
	for _, it := range m.Items[1 : len(m.Items)-1] {
		it.Focusable = false
	}
	b.register(noticeStage, m)
	b.stages.OpenStageModal(noticeStage)
}

// sortMenu opens the sort mode picker.
func (b *Base) sortMenu(apply func(storage.SortMode)) {
	options := make([]string, len(storage.SortModes))
	for i, m := range storage.SortModes {
		options[i] = m.String()
	}
	b.openMenu(sortStage, "Sort by", options, b.env.Settings.SortMode(), func(i int) {
		mode := storage.SortModes[i]
		if err := b.env.Settings.SetSortMode(int(mode)); err != nil {
			logging.Warn("Failed to store sort mode: %v", err)
		}
		b.closeModal()
		apply(mode)
	})
}

// Modal key routing. Each returns false when no modal is active.

func (b *Base) modalArrow(dir ui.Direction) bool {
	if !b.stages.InModal() {
		return false
	}
	if !b.stages.Direction(dir) {
		b.Focus(dir)
	}
	return true
}

func (b *Base) modalEnter() bool {
	m := b.stages.ActiveModal()
	if m == nil {
		return false
	}
	switch h := m.Handler.(type) {
	case enterHandler:
		h.OnEnter(m)
	case selectHandler:
		i := 0
		for _, it := range m.Items {
			if !it.Focusable {
				continue
			}
			if it.Focused {
				h.OnSelect(m, i)
				break
			}
			i++
		}
	}
	return true
}

func (b *Base) modalEscape() bool {
	m := b.stages.ActiveModal()
	if m == nil {
		return false
	}
	if h, ok := m.Handler.(escapeHandler); ok && h.OnEscape(m) {
		return true
	}
	b.closeModal()
	return true
}

func (b *Base) modalDelete() bool {
	m := b.stages.ActiveModal()
	if m == nil {
		return false
	}
	if h, ok := m.Handler.(deleteHandler); ok {
		h.OnDelete(m)
	}
	return true
}

func (b *Base) modalValue(r rune) bool {
	if !b.stages.InModal() {
		return false
	}
	b.stages.Character(r)
	return true
}

// wrap splits text into lines of at most width runes, breaking at spaces
// where possible.
func wrap(text string, width int) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		var cur []rune
		for _, word := range strings.Fields(para) {
			w := []rune(word)
			for len(w) > width {
				if len(cur) > 0 {
					lines = append(lines, string(cur))
					cur = nil
				}
				lines = append(lines, string(w[:width]))
				w = w[width:]
			}
			switch {
			case len(cur) == 0:
				cur = append(cur, w...)
			case len(cur)+1+len(w) <= width:
				cur = append(append(cur, ' '), w...)
			default:
				lines = append(lines, string(cur))
				cur = append([]rune(nil), w...)
			}
		}
		if len(cur) > 0 {
			lines = append(lines, string(cur))
		}
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}
