// Package display renders the pixel-addressed panel API onto a grid of
// terminal cells. One glyph of the panel font maps to one cell.
package display

import (
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/text/encoding/charmap"

	"github.com/stlalpha/pocketscene/internal/ui"
)

// cell is a single character cell with its colors.
type cell struct {
	ch rune
	fg ui.Color
	bg ui.Color
}

// Canvas is an in-memory panel. It implements ui.Display.
type Canvas struct {
	mu     sync.Mutex
	cols   int
	rows   int
	cellW  int
	cellH  int
	cells  [][]cell
	fg     ui.Color
	bg     ui.Color
	cursor struct {
		col, row int
		shown    bool
	}

	renderer *lipgloss.Renderer
	dirty    bool
	view     string
}

var _ ui.Display = (*Canvas)(nil)

// NewCanvas creates a panel of width x height pixels drawn with glyphs of
// glyphW x glyphH pixels. profile selects the color depth of View.
func NewCanvas(width, height, glyphW, glyphH int, profile termenv.Profile) *Canvas {
	if glyphW <= 0 {
		glyphW = 1
	}
	if glyphH <= 0 {
		glyphH = 1
	}
	r := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(profile))
	r.SetColorProfile(profile)
	c := &Canvas{
		cellW:    glyphW,
		cellH:    glyphH,
		fg:       ui.White,
		bg:       ui.Black,
		renderer: r,
	}
	c.resize(width/glyphW, height/glyphH)
	return c
}

func (c *Canvas) resize(cols, rows int) {
	cells := make([][]cell, rows)
	for y := range cells {
		cells[y] = make([]cell, cols)
		for x := range cells[y] {
			if y < c.rows && x < c.cols {
				cells[y][x] = c.cells[y][x]
			} else {
				cells[y][x] = cell{ch: ' ', fg: c.fg, bg: c.bg}
			}
		}
	}
	c.cols, c.rows, c.cells = cols, rows, cells
	c.dirty = true
}

// Resize changes the panel size in pixels, keeping existing content.
func (c *Canvas) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if width/c.cellW == c.cols && height/c.cellH == c.rows {
		return
	}
	c.resize(width/c.cellW, height/c.cellH)
}

// Width returns the panel width in pixels.
func (c *Canvas) Width() int { return c.cols * c.cellW }

// Height returns the panel height in pixels.
func (c *Canvas) Height() int { return c.rows * c.cellH }

// GlyphMetrics returns the cell size. Every font occupies one cell per glyph.
func (c *Canvas) GlyphMetrics(ui.Font) (w, h int) { return c.cellW, c.cellH }

// set writes one cell. A NoColor background keeps the cell's current one.
func (c *Canvas) set(col, row int, ch rune, fg, bg ui.Color) {
	if col < 0 || col >= c.cols || row < 0 || row >= c.rows {
		return
	}
	cur := &c.cells[row][col]
	cur.ch = ch
	if fg.IsSet() {
		cur.fg = fg
	}
	if bg.IsSet() {
		cur.bg = bg
	}
	c.dirty = true
}

func (c *Canvas) text(col, row int, s string, fg, bg ui.Color) {
	if row < 0 || row >= c.rows {
		return
	}
	for _, r := range s {
		if col >= c.cols {
			break
		}
		c.set(col, row, glyph(r), fg, bg)
		col++
	}
}

// DrawItem renders the item's visible text at its position.
func (c *Canvas) DrawItem(it *ui.Item) {
	if it == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text(it.X/c.cellW, it.Y/c.cellH, it.Visible(), it.Fg, it.Bg)
}

// DrawItems renders the displayable items one row each from the origin.
func (c *Canvas) DrawItems(items []*ui.Item, originX, originY, maxVisible int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	row := originY / c.cellH
	n := 0
	for _, it := range items {
		if n >= maxVisible {
			break
		}
		if !it.Displayable {
			continue
		}
		c.text(originX/c.cellW, row+n, it.Visible(), it.Fg, it.Bg)
		n++
	}
}

// Clear fills rect with blanks of color col. A rect covering partial cells
// clears every cell it touches.
func (c *Canvas) Clear(col ui.Color, rect ui.Rect) {
	if !col.IsSet() {
		col = c.bg
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	x0, y0 := rect.X/c.cellW, rect.Y/c.cellH
	x1 := (rect.X + rect.W + c.cellW - 1) / c.cellW
	y1 := (rect.Y + rect.H + c.cellH - 1) / c.cellH
	for y := max(y0, 0); y < min(y1, c.rows); y++ {
		for x := max(x0, 0); x < min(x1, c.cols); x++ {
			c.cells[y][x] = cell{ch: ' ', fg: c.fg, bg: col}
		}
	}
	if c.cursor.shown && c.cursor.col >= x0 && c.cursor.col < x1 && c.cursor.row >= y0 && c.cursor.row < y1 {
		c.cursor.shown = false
	}
	c.dirty = true
}

// DrawCursorGlyph paints the cell under the cursor in color col.
func (c *Canvas) DrawCursorGlyph(x, y, w, h int, col ui.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cx, cy := x/c.cellW, y/c.cellH
	if cx < 0 || cx >= c.cols || cy < 0 || cy >= c.rows {
		return
	}
	c.cells[cy][cx].bg = col
	c.cursor.col, c.cursor.row, c.cursor.shown = cx, cy, true
	c.dirty = true
}

// Cursor returns the cell of the last drawn cursor.
func (c *Canvas) Cursor() (col, row int, shown bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor.col, c.cursor.row, c.cursor.shown
}

// Text returns the panel characters without colors, one line per row with
// trailing blanks trimmed.
func (c *Canvas) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]string, c.rows)
	var b strings.Builder
	for y, row := range c.cells {
		b.Reset()
		for _, cl := range row {
			b.WriteRune(cl.ch)
		}
		lines[y] = strings.TrimRight(b.String(), " ")
	}
	return strings.Join(lines, "\n")
}

// Row returns the characters of one row.
func (c *Canvas) Row(row int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if row < 0 || row >= c.rows {
		return ""
	}
	var b strings.Builder
	for _, cl := range c.cells[row] {
		b.WriteRune(cl.ch)
	}
	return b.String()
}

// Background returns the background color of a cell.
func (c *Canvas) Background(col, row int) ui.Color {
	c.mu.Lock()
	defer c.mu.Unlock()
	if col < 0 || col >= c.cols || row < 0 || row >= c.rows {
		return ui.NoColor
	}
	return c.cells[row][col].bg
}

// View renders the panel as styled terminal text. Runs of cells with the
// same colors share one style. The result is cached until the next draw.
func (c *Canvas) View() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return c.view
	}

	var out strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			out.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].fg == row[start].fg && row[x].bg == row[start].bg {
				continue
			}
			out.WriteString(c.style(row[start]).Render(runs(row[start:x])))
			start = x
		}
	}
	c.view = out.String()
	c.dirty = false
	return c.view
}

func (c *Canvas) style(cl cell) lipgloss.Style {
	s := c.renderer.NewStyle()
	if hex := cl.fg.Hex(); hex != "" {
		s = s.Foreground(lipgloss.Color(hex))
	}
	if hex := cl.bg.Hex(); hex != "" {
		s = s.Background(lipgloss.Color(hex))
	}
	return s
}

func runs(cells []cell) string {
	b := make([]byte, 0, len(cells))
	for _, cl := range cells {
		b = utf8.AppendRune(b, cl.ch)
	}
	return string(b)
}

// glyph maps r to a character the panel font can draw. The font carries
// the code page 437 repertoire; anything else becomes '?'.
func glyph(r rune) rune {
	switch {
	case r == '\t':
		return ' '
	case r < 0x20 || r == 0x7f:
		return ' '
	case r < 0x7f:
		return r
	}
	if _, ok := charmap.CodePage437.EncodeRune(r); ok {
		return r
	}
	return '?'
}
