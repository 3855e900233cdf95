package viewport

import (
	"unicode/utf8"

	"github.com/stlalpha/pocketscene/internal/ui"
)

// Options configures a Viewport.
type Options struct {
	MaxLineLength   int
	MaxLinesPerPage int
	// OriginX and OriginY locate the first content row on the panel.
	OriginX, OriginY int
	Font             ui.Font
	Foreground       ui.Color
	Background       ui.Color
	CursorColor      ui.Color
}

// Change describes what an edit did to the visible page.
type Change struct {
	// Rows lists the window rows whose content changed.
	Rows []int
	// Scrolled is the number of lines the window moved.
	Scrolled int
	// Applied is false when the edit was rejected as a no-op.
	Applied bool
}

// FullRepaint reports whether the caller must repaint every content row
// instead of only Rows.
func (c Change) FullRepaint() bool {
	return c.Scrolled > 0
}

// Viewport binds a Document, its scroll Window and the Cursor to a display.
// It is owned by a single scene and must only be used from the UI goroutine.
type Viewport struct {
	doc  *Document
	win  Window
	cur  Cursor
	disp ui.Display
	opts Options

	drawn   bool
	drawnAt [2]int
}

// New creates a viewport over an empty document.
func New(disp ui.Display, opts Options) *Viewport {
	if opts.MaxLineLength <= 0 {
		opts.MaxLineLength = DefaultMaxLineLength
	}
	if opts.MaxLinesPerPage <= 0 {
		opts.MaxLinesPerPage = DefaultMaxLinesPerPage
	}
	w, h := disp.GlyphMetrics(opts.Font)
	v := &Viewport{
		doc:  NewDocument(opts.MaxLineLength, opts.Foreground, opts.Font),
		win:  NewWindow(opts.MaxLinesPerPage),
		cur:  Cursor{W: w, H: h},
		disp: disp,
		opts: opts,
	}
	v.win.Reset(v.doc.Len())
	v.sync()
	return v
}

// Document returns the underlying document.
func (v *Viewport) Document() *Document { return v.doc }

// Window returns a copy of the scroll window.
func (v *Viewport) Window() Window { return v.win }

// Cursor returns a copy of the cursor.
func (v *Viewport) Cursor() Cursor { return v.cur }

// Text returns the document text.
func (v *Viewport) Text() string { return v.doc.Text() }

// Load replaces the document, scrolls to the top and homes the cursor.
func (v *Viewport) Load(text string) {
	v.doc.Load(text)
	v.win.Reset(v.doc.Len())
	v.cur.X, v.cur.Y = 0, 0
	v.drawn = false
	v.sync()
}

// SetCursorMode enters or leaves cursor-controlling mode.
func (v *Viewport) SetCursorMode(on bool) {
	v.cur.Active = on
	if !on {
		v.drawn = false
	}
}

// SetColors changes the palette used for content lines and the cursor.
func (v *Viewport) SetColors(fg, bg, cursor ui.Color) {
	v.opts.Foreground, v.opts.Background, v.opts.CursorColor = fg, bg, cursor
	v.doc.fg = fg
	for _, ln := range v.doc.lines {
		ln.Fg = fg
	}
}

// CurrentLine returns the line under the cursor.
func (v *Viewport) CurrentLine() *ui.Item {
	return v.doc.Line(v.win.Line(v.cur.Y))
}

// Scroll shifts the window by up to n lines and keeps the cursor on a
// valid cell. It returns the number of lines scrolled.
func (v *Viewport) Scroll(dir ui.Direction, n int) int {
	k := v.win.Scroll(dir, n, v.doc.Len())
	if k > 0 {
		v.clampCursor()
		v.sync()
	}
	return k
}

// InsertChars inserts text at cell (x, y) of the window, reflows the
// paragraph and advances the cursor past the inserted text, scrolling down
// by at most budget lines to keep it visible.
func (v *Viewport) InsertChars(text string, x, y, budget int) Change {
	text = sanitize(text)
	if text == "" {
		return Change{}
	}
	line := v.win.Line(clamp(y, 0, v.win.Count()-1))
	off := v.doc.Offset(line, x)
	top := v.win.Start()

	e := v.doc.replace(off, off, text)
	v.win.Fit(v.doc.Len())

	nl, nc := v.doc.Position(off + utf8.RuneCountInString(text))
	v.follow(nl, budget)
	v.place(nl, nc)
	v.sync()
	return v.change(e, top)
}

// DeleteChars removes count characters ending at cell (x, y), walking back
// across line boundaries. A delete at column 0 of the first visible line is
// a no-op whatever the budget: the line above it is not enterable. So is a
// delete that would cross above the first content line, or above the window
// by more than budget lines. Lines below the edit are pulled forward to
// refill it.
func (v *Viewport) DeleteChars(count, x, y, budget int) Change {
	if count <= 0 || (x <= 0 && y <= 0) {
		return Change{}
	}
	line := v.win.Line(clamp(y, 0, v.win.Count()-1))
	off := v.doc.Offset(line, x)
	if off < count {
		return Change{}
	}
	from := off - count
	if fl, _ := v.doc.Position(from); fl < v.win.Start() && v.win.Start()-fl > budget {
		return Change{}
	}

	top := v.win.Start()
	e := v.doc.replace(from, off, "")
	v.win.Fit(v.doc.Len())

	nl, nc := v.doc.Position(from)
	v.follow(nl, budget)
	v.place(nl, nc)
	v.sync()
	return v.change(e, top)
}

// MoveCursor moves the cursor one cell in dir, wrapping across lines and
// scrolling by at most budget lines at the window edges. It returns the
// number of lines scrolled; 0 means an in-place move.
func (v *Viewport) MoveCursor(dir ui.Direction, budget int) int {
	if !v.cur.Active {
		return 0
	}
	line := v.win.Line(v.cur.Y)
	last := v.doc.Len() - 1
	scrolled := 0

	switch dir {
	case ui.Right:
		if v.cur.X < v.doc.Line(line).Len() {
			v.cur.X++
			return 0
		}
		if line >= last {
			return 0
		}
		if scrolled = v.follow(line+1, budget); v.win.Contains(line + 1) {
			v.place(line+1, 0)
		}
	case ui.Left:
		if v.cur.X > 0 {
			v.cur.X--
			return 0
		}
		if line == 0 {
			return 0
		}
		if scrolled = v.follow(line-1, budget); v.win.Contains(line - 1) {
			v.place(line-1, v.doc.Line(line-1).Len())
		}
	case ui.Down:
		if line >= last {
			return 0
		}
		if scrolled = v.follow(line+1, budget); v.win.Contains(line + 1) {
			v.place(line+1, v.cur.X)
		}
	case ui.Up:
		if line == 0 {
			return 0
		}
		if scrolled = v.follow(line-1, budget); v.win.Contains(line - 1) {
			v.place(line-1, v.cur.X)
		}
	}
	if scrolled > 0 {
		v.sync()
	}
	return scrolled
}

// SpawnCursor places the cursor at cell (x, y), clamped to the window and
// the target line, enters cursor-controlling mode and draws the cursor
// glyph. With clearPrevious set the glyph under the previous cursor cell is
// restored first.
func (v *Viewport) SpawnCursor(x, y int, clearPrevious bool) {
	// A position one row past a trailing hard break addresses the terminal
	// line; make sure it exists.
	if n := v.doc.Len(); v.doc.lines[n-1].HardBreak() {
		v.doc.normalizeTail()
		v.win.Fit(v.doc.Len())
		v.sync()
	}
	y = clamp(y, 0, v.win.Count()-1)
	ln := v.doc.Line(v.win.Line(y))
	x = clamp(x, 0, ln.Len())

	if clearPrevious && v.drawn {
		v.restoreCell(v.drawnAt[0], v.drawnAt[1])
	}
	v.cur.Active = true
	v.cur.X, v.cur.Y = x, y
	px, py := v.cur.Pixel(v.opts.OriginX, v.opts.OriginY)
	v.disp.DrawCursorGlyph(px, py, v.cur.W, v.cur.H, v.opts.CursorColor)
	v.drawn = true
	v.drawnAt = [2]int{x, y}
}

// RedrawCursor repaints the cursor at its current cell, restoring the
// glyph under its previous cell.
func (v *Viewport) RedrawCursor() {
	if !v.cur.Active {
		return
	}
	v.SpawnCursor(v.cur.X, v.cur.Y, true)
}

// Render repaints every content row.
func (v *Viewport) Render() {
	v.disp.Clear(v.opts.Background, ui.NewRect(v.opts.OriginX, v.opts.OriginY,
		v.disp.Width()-v.opts.OriginX, v.win.Page()*v.cur.H))
	v.disp.DrawItems(v.doc.lines[v.win.Start():v.win.End()], v.opts.OriginX, v.opts.OriginY, v.win.Page())
	v.drawn = false
}

// RenderRows repaints the given window rows only.
func (v *Viewport) RenderRows(rows []int) {
	for _, row := range rows {
		if row < 0 || row >= v.win.Page() {
			continue
		}
		v.disp.Clear(v.opts.Background, ui.NewRect(v.opts.OriginX, v.opts.OriginY+row*v.cur.H,
			v.disp.Width()-v.opts.OriginX, v.cur.H))
		if ln := v.doc.Line(v.win.Line(row)); ln != nil && v.win.Contains(v.win.Line(row)) {
			v.disp.DrawItem(ln)
		}
		if v.drawn && v.drawnAt[1] == row {
			v.drawn = false
		}
	}
}

// Apply repaints what an edit changed and redraws the cursor.
func (v *Viewport) Apply(c Change) {
	if c.FullRepaint() {
		v.Render()
	} else {
		v.RenderRows(c.Rows)
	}
	if v.cur.Active {
		v.SpawnCursor(v.cur.X, v.cur.Y, true)
	}
}

// follow scrolls by at most budget lines so that line becomes displayable.
func (v *Viewport) follow(line, budget int) int {
	switch {
	case line >= v.win.End():
		return v.win.Scroll(ui.Down, min(line-v.win.End()+1, budget), v.doc.Len())
	case line < v.win.Start():
		return v.win.Scroll(ui.Up, min(v.win.Start()-line, budget), v.doc.Len())
	}
	return 0
}

// place moves the cursor to (line, col), falling back to the nearest
// window edge when the line could not be scrolled into view.
func (v *Viewport) place(line, col int) {
	switch {
	case line >= v.win.End():
		line = v.win.End() - 1
		col = v.doc.Line(line).Len()
	case line < v.win.Start():
		line = v.win.Start()
		col = 0
	}
	v.cur.Y = v.win.Row(line)
	v.cur.X = clamp(col, 0, v.doc.Line(line).Len())
}

func (v *Viewport) clampCursor() {
	v.cur.Y = clamp(v.cur.Y, 0, v.win.Count()-1)
	v.cur.X = clamp(v.cur.X, 0, v.doc.Line(v.win.Line(v.cur.Y)).Len())
}

func (v *Viewport) sync() {
	Layout(v.doc.lines, v.win, v.opts.OriginX, v.opts.OriginY, v.cur.H)
}

// change reports the rows touched by e. top is the window start before the
// edit; any movement of the window, refits included, counts as a scroll.
func (v *Viewport) change(e edit, top int) Change {
	scrolled := v.win.Start() - top
	if scrolled < 0 {
		scrolled = -scrolled
	}
	c := Change{Scrolled: scrolled, Applied: true}
	if scrolled > 0 {
		return c
	}
	first := v.win.Row(e.first)
	last := v.win.Row(e.first + e.newLines - 1)
	if e.reshaped(v.doc.Len()) {
		// Everything below the edit shifted.
		last = v.win.Page() - 1
	}
	for row := max(first, 0); row <= last && row < v.win.Page(); row++ {
		c.Rows = append(c.Rows, row)
	}
	return c
}

func (v *Viewport) restoreCell(x, y int) {
	px, py := v.opts.OriginX+x*v.cur.W, v.opts.OriginY+y*v.cur.H
	v.disp.Clear(v.opts.Background, ui.NewRect(px, py, v.cur.W, v.cur.H))
	ln := v.doc.Line(v.win.Line(y))
	if ln == nil || !v.win.Contains(v.win.Line(y)) {
		return
	}
	runes := []rune(ln.Visible())
	if x >= len(runes) {
		return
	}
	v.disp.DrawItem(&ui.Item{
		Text:        string(runes[x]),
		X:           px,
		Y:           py,
		Fg:          ln.Fg,
		Bg:          ln.Bg,
		Font:        ln.Font,
		Displayable: true,
	})
}

// sanitize drops carriage returns and other control characters except the
// newline.
func sanitize(text string) string {
	clean := make([]rune, 0, len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || r >= ' ' {
			if r == '\t' {
				r = ' '
			}
			clean = append(clean, r)
		}
	}
	return string(clean)
}
