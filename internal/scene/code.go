package scene

import (
	"errors"
	"io/fs"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/stlalpha/pocketscene/internal/logging"
	"github.com/stlalpha/pocketscene/internal/stage"
	"github.com/stlalpha/pocketscene/internal/storage"
	"github.com/stlalpha/pocketscene/internal/ui"
	"github.com/stlalpha/pocketscene/internal/viewport"
)

const (
	menuStage stage.ID = iota + 1
	outputStage
	confirmStage
)

// maxOutput bounds the output kept for the output modal.
const maxOutput = 8 << 10

// Code edits a script and runs it.
type Code struct {
	Base
	path     string
	language string
	modified bool

	vp *viewport.Viewport

	out     outbox
	outText string
	output  *viewport.Viewport
	// input collects a line typed for the running script.
	input []rune
}

// NewCode creates an editor for the script at path.
func NewCode(env *Env, path string) *Code {
	c := &Code{path: path, language: storage.Language(path)}
	c.init(env, "", c.renderBody)
	return c
}

// Path returns the script path.
func (c *Code) Path() string { return c.path }

// Text returns the edited script.
func (c *Code) Text() string { return c.vp.Text() }

// Modified reports whether the script has unsaved changes.
func (c *Code) Modified() bool { return c.modified }

// Viewport returns the editing surface.
func (c *Code) Viewport() *viewport.Viewport { return c.vp }

func (c *Code) Init() {
	l := c.env.Layout
	c.vp = viewport.New(c.disp, viewport.Options{
		MaxLineLength:   l.MaxLineLength,
		MaxLinesPerPage: l.MaxLinesPerPage,
		OriginY:         c.contentY(),
		Foreground:      c.theme.Foreground,
		Background:      c.theme.Background,
		CursorColor:     c.theme.Cursor,
	})
	c.output = viewport.New(c.disp, viewport.Options{
		MaxLineLength:   max(1, c.columns()-2),
		MaxLinesPerPage: max(1, l.MaxLinesPerPage-2),
		OriginX:         c.glyphW,
		OriginY:         c.contentY() + c.glyphH,
		Foreground:      c.theme.Foreground,
		Background:      c.theme.Modal,
		CursorColor:     c.theme.Cursor,
	})

	text, err := c.env.Storage.ReadFile(c.path)
	switch {
	case err == nil:
		c.vp.Load(text)
	case errors.Is(err, fs.ErrNotExist):
		logging.Debug("code: new script %s", c.path)
	default:
		logging.Warn("Failed to read %s: %v", c.path, err)
		defer c.notice("Cannot read " + c.path + ": " + err.Error())
	}
	c.vp.SetCursorMode(true)
	c.stages.SetMain([]*ui.Item{c.title})
	c.register(outputStage, &stage.Modal{
		Items:   []*ui.Item{ui.NewItem("Output", c.glyphW, c.contentY(), c.theme.Title, ui.FontDefault)},
		Handler: &outputView{c: c},
	})
	c.title.Text = c.titleText()
	c.status.Text = "Esc: menu"
}

func (c *Code) titleText() string {
	t := path.Base(c.path)
	if c.modified {
		t += " *"
	}
	return t
}

func (c *Code) renderBody() {
	c.vp.Render()
	if !c.stages.InModal() {
		c.vp.RedrawCursor()
	}
}

func (c *Code) scrollBudget() int { return c.env.Layout.ScrollBudget }

func (c *Code) Arrow(dir ui.Direction) {
	if c.modalArrow(dir) {
		return
	}
	if c.vp.MoveCursor(dir, c.scrollBudget()) > 0 {
		c.vp.Render()
	}
	c.vp.RedrawCursor()
}

func (c *Code) Focus(dir ui.Direction) bool {
	if c.stages.InModal() {
		return c.Base.Focus(dir)
	}
	return false
}

func (c *Code) Value(r rune) {
	if c.modalValue(r) {
		return
	}
	cur := c.vp.Cursor()
	c.edit(c.vp.InsertChars(string(r), cur.X, cur.Y, c.scrollBudget()))
}

func (c *Code) Enter() {
	if c.modalEnter() {
		return
	}
	cur := c.vp.Cursor()
	c.edit(c.vp.InsertChars("\n", cur.X, cur.Y, c.scrollBudget()))
}

func (c *Code) Delete() {
	if c.modalDelete() {
		return
	}
	cur := c.vp.Cursor()
	c.edit(c.vp.DeleteChars(1, cur.X, cur.Y, c.scrollBudget()))
}

func (c *Code) edit(ch viewport.Change) {
	if !ch.Applied {
		return
	}
	c.vp.Apply(ch)
	if !c.modified {
		c.modified = true
		c.setTitle(c.titleText())
	}
}

// Escape cancels a running script, otherwise opens the menu.
func (c *Code) Escape() {
	if c.modalEscape() {
		return
	}
	if c.env.Runner != nil && c.env.Runner.Running() {
		c.env.Runner.Cancel()
		return
	}
	c.openMenu(menuStage, "Script", []string{"Run", "Save", "Close"}, 0, c.menuPick)
}

func (c *Code) menuPick(i int) {
	switch i {
	case 0:
		c.run()
	case 1:
		c.save()
		c.closeModal()
	case 2:
		if c.modified {
			c.register(confirmStage, c.menuModal("Discard changes?", []string{"No", "Yes"}, &menu{
				b: &c.Base,
				pick: func(i int) {
					if i == 1 {
						c.leave()
						return
					}
					c.closeModal()
				},
			}))
			c.stages.LeaveModalControlling(confirmStage, false)
			c.stages.EnterModalControlling()
			c.RenderAll()
			return
		}
		c.leave()
	}
}

// run starts the script and switches from the menu to the output modal.
func (c *Code) run() {
	c.outText = ""
	c.output.Load("")
	c.input = nil
	c.stages.LeaveModalControlling(outputStage, false)
	c.stages.EnterModalControlling()

	if c.env.Runner == nil {
		c.SendCodeError("no interpreter available")
		return
	}
	id, err := c.env.Runner.RunCodeString(c.env.context(), c.vp.Text(), c.language)
	if err != nil {
		logging.Warn("Failed to run %s: %v", c.path, err)
		c.SendCodeError(err.Error())
		return
	}
	logging.Debug("code: run %s started for %s", id, c.path)
	c.setStatus("running")
}

func (c *Code) save() bool {
	if err := c.env.Storage.WriteFile(c.path, c.vp.Text()); err != nil {
		logging.Warn("Failed to save %s: %v", c.path, err)
		c.status.Text = "save failed"
		return false
	}
	c.modified = false
	c.title.Text = c.titleText()
	c.status.Text = "saved"
	return true
}

// Autosave writes unsaved changes.
func (c *Code) Autosave() {
	if !c.modified {
		return
	}
	if c.save() {
		logging.Info("Autosaved %s", c.path)
		c.setTitle(c.titleText())
		c.drawStatus()
	}
}

func (c *Code) leave() {
	c.env.switchTo(KindFiles, storage.Parent(c.path))
}

// Close stops a script left running.
func (c *Code) Close() {
	if c.env.Runner != nil && c.env.Runner.Running() {
		c.env.Runner.Cancel()
	}
}

// SendCodeOutput queues script output. Safe for concurrent use.
func (c *Code) SendCodeOutput(text string) {
	c.out.push(codeMsg{kind: msgOutput, text: text})
	c.env.wake()
}

// SendCodeError queues a failed run's traceback. Safe for concurrent use.
func (c *Code) SendCodeError(traceback string) {
	c.out.push(codeMsg{kind: msgError, text: traceback})
	c.env.wake()
}

// SendCodeSuccess queues a successful completion. Safe for concurrent use.
func (c *Code) SendCodeSuccess() {
	c.out.push(codeMsg{kind: msgSuccess})
	c.env.wake()
}

// Drain applies queued script results on the UI goroutine.
func (c *Code) Drain() {
	msgs := c.out.take()
	if len(msgs) == 0 {
		return
	}
	for _, m := range msgs {
		switch m.kind {
		case msgOutput:
			c.appendOutput(m.text)
		case msgError:
			if c.outText != "" && !strings.HasSuffix(c.outText, "\n") {
				c.appendOutput("\n")
			}
			c.appendOutput("Error: " + m.text + "\n")
			c.status.Text = "failed"
		case msgSuccess:
			c.status.Text = "finished"
		}
	}
	c.output.Load(c.outText)
	c.output.Scroll(ui.Down, c.output.Document().Len())
	if c.stages.Current() == outputStage && c.stages.InModal() {
		c.RenderModal(outputStage, c.stages.ActiveModal())
	}
	c.drawStatus()
}

func (c *Code) appendOutput(text string) {
	c.outText += text
	if over := len(c.outText) - maxOutput; over > 0 {
		for over < len(c.outText) && !utf8.RuneStart(c.outText[over]) {
			over++
		}
		cut := c.outText[over:]
		if i := strings.IndexByte(cut, '\n'); i >= 0 {
			cut = cut[i+1:]
		}
		c.outText = cut
	}
}

// Output returns the text shown by the output modal.
func (c *Code) Output() string { return c.outText }

// outputView is the handler of the output modal: it shows what the script
// printed and forwards typed lines to it.
type outputView struct {
	c *Code
}

func (o *outputView) running() bool {
	return o.c.env.Runner != nil && o.c.env.Runner.Running()
}

func (o *outputView) RenderContent(m *stage.Modal, panel ui.Rect) {
	o.c.output.Render()
	o.drawInput()
}

func (o *outputView) drawInput() {
	c := o.c
	y := c.contentY() + (c.env.Layout.MaxLinesPerPage-1)*c.glyphH
	c.disp.Clear(c.theme.Modal, ui.NewRect(0, y, c.disp.Width(), c.glyphH))
	prompt := "Esc: close"
	if o.running() {
		prompt = "> " + string(o.c.input)
	}
	c.disp.DrawItem(ui.NewItem(prompt, c.glyphW, y, c.theme.Accent, ui.FontDefault))
}

func (o *outputView) OnDirection(m *stage.Modal, dir ui.Direction) bool {
	if dir.Vertical() && o.c.output.Scroll(dir, 1) > 0 {
		o.c.output.Render()
	}
	return true
}

func (o *outputView) OnCharacter(m *stage.Modal, r rune) bool {
	if !o.running() {
		return false
	}
	o.c.input = append(o.c.input, r)
	o.drawInput()
	return true
}

func (o *outputView) OnDelete(m *stage.Modal) {
	if n := len(o.c.input); n > 0 {
		o.c.input = o.c.input[:n-1]
		o.drawInput()
	}
}

func (o *outputView) OnEnter(m *stage.Modal) {
	if !o.running() {
		o.c.closeModal()
		return
	}
	line := string(o.c.input) + "\n"
	o.c.input = nil
	if err := o.c.env.Runner.Send(line); err != nil {
		logging.Warn("Failed to send input: %v", err)
	}
	o.drawInput()
}

// OnEscape cancels a running script and keeps the modal open to show the
// result.
func (o *outputView) OnEscape(m *stage.Modal) bool {
	if o.running() {
		o.c.env.Runner.Cancel()
		return true
	}
	return false
}
