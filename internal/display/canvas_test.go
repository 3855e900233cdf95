package display

import (
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"github.com/stlalpha/pocketscene/internal/ui"
)

func newTestCanvas() *Canvas {
	// 10 x 4 cells of 6 x 12 pixels.
	return NewCanvas(60, 48, 6, 12, termenv.Ascii)
}

func TestCanvasGeometry(t *testing.T) {
	c := newTestCanvas()
	if c.Width() != 60 || c.Height() != 48 {
		t.Errorf("size = %dx%d, want 60x48", c.Width(), c.Height())
	}
	if w, h := c.GlyphMetrics(ui.FontLarge); w != 6 || h != 12 {
		t.Errorf("glyph = %dx%d, want 6x12", w, h)
	}

	// Partial cells are dropped.
	c = NewCanvas(65, 50, 6, 12, termenv.Ascii)
	if c.Width() != 60 || c.Height() != 48 {
		t.Errorf("size = %dx%d, want 60x48", c.Width(), c.Height())
	}
}

func TestDrawItemMapsPixelsToCells(t *testing.T) {
	c := newTestCanvas()
	it := ui.NewItem("Hi\n", 12, 24, ui.White, ui.FontDefault)
	c.DrawItem(it)

	if got := c.Row(2); got != "  Hi      " {
		t.Errorf("row 2 = %q", got)
	}
}

func TestDrawItemClipsAtEdge(t *testing.T) {
	c := newTestCanvas()
	c.DrawItem(ui.NewItem("abcdefghijkl", 48, 0, ui.White, ui.FontDefault))
	if got := c.Row(0); got != "        ab" {
		t.Errorf("row 0 = %q", got)
	}
}

func TestDrawItemsSkipsHidden(t *testing.T) {
	c := newTestCanvas()
	a := ui.NewItem("a", 0, 0, ui.White, ui.FontDefault)
	b := ui.NewItem("b", 0, 0, ui.White, ui.FontDefault)
	b.Displayable = false
	d := ui.NewItem("d", 0, 0, ui.White, ui.FontDefault)
	e := ui.NewItem("e", 0, 0, ui.White, ui.FontDefault)

	c.DrawItems([]*ui.Item{a, b, d, e}, 6, 12, 2)

	want := "\n a\n d\n"
	if got := c.Text(); got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestClearAndBackground(t *testing.T) {
	c := newTestCanvas()
	c.DrawItem(ui.NewItem("xxxxxxxxxx", 0, 12, ui.White, ui.FontDefault))
	c.Clear(ui.Blue, ui.NewRect(6, 12, 13, 12))

	if got := c.Row(1); got != "x   xxxxxx" {
		t.Errorf("row 1 = %q", got)
	}
	if c.Background(1, 1) != ui.Blue || c.Background(3, 1) != ui.Blue {
		t.Error("cleared cells should be blue")
	}
	if c.Background(4, 1) != ui.Black {
		t.Error("cell outside the rect should keep its background")
	}
}

func TestTransparentBackgroundKeepsCell(t *testing.T) {
	c := newTestCanvas()
	c.Clear(ui.Navy, ui.NewRect(0, 0, 60, 12))
	c.DrawItem(ui.NewItem("ok", 0, 0, ui.White, ui.FontDefault))
	if c.Background(0, 0) != ui.Navy {
		t.Errorf("background = %#x, want navy", c.Background(0, 0))
	}

	hl := ui.NewItem("ok", 0, 0, ui.White, ui.FontDefault)
	hl.Bg = ui.Yellow
	c.DrawItem(hl)
	if c.Background(1, 0) != ui.Yellow {
		t.Error("explicit background should be painted")
	}
}

func TestCursorGlyph(t *testing.T) {
	c := newTestCanvas()
	c.DrawCursorGlyph(18, 36, 6, 12, ui.Orange)
	col, row, shown := c.Cursor()
	if !shown || col != 3 || row != 3 {
		t.Errorf("cursor = (%d,%d,%v)", col, row, shown)
	}
	if c.Background(3, 3) != ui.Orange {
		t.Error("cursor cell not painted")
	}

	c.Clear(ui.Black, ui.NewRect(0, 36, 60, 12))
	if _, _, shown := c.Cursor(); shown {
		t.Error("clearing under the cursor should hide it")
	}
}

func TestGlyphSanitizes(t *testing.T) {
	tests := []struct {
		in, want rune
	}{
		{'a', 'a'},
		{'\t', ' '},
		{0x07, ' '},
		{'é', 'é'},
		{'░', '░'},
		{'€', '?'},
		{'界', '?'},
	}
	for _, tt := range tests {
		if got := glyph(tt.in); got != tt.want {
			t.Errorf("glyph(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestViewCachesUntilDraw(t *testing.T) {
	c := newTestCanvas()
	v1 := c.View()
	if strings.Count(v1, "\n") != 3 {
		t.Fatalf("expected 4 rows, got %q", v1)
	}
	if c.View() != v1 {
		t.Error("view changed without a draw")
	}
	c.DrawItem(ui.NewItem("z", 0, 0, ui.White, ui.FontDefault))
	if v2 := c.View(); !strings.HasPrefix(v2, "z") {
		t.Errorf("view = %q", v2)
	}
}

func TestViewEmitsColors(t *testing.T) {
	c := NewCanvas(12, 12, 6, 12, termenv.TrueColor)
	it := ui.NewItem("ab", 0, 0, ui.Red, ui.FontDefault)
	c.DrawItem(it)
	v := c.View()
	if !strings.Contains(v, "\x1b[") {
		t.Errorf("expected escape sequences in %q", v)
	}
	if !strings.Contains(v, "ab") {
		t.Errorf("expected text in %q", v)
	}
}

func TestResizeKeepsContent(t *testing.T) {
	c := newTestCanvas()
	c.DrawItem(ui.NewItem("keep", 0, 0, ui.White, ui.FontDefault))
	c.Resize(120, 24)
	if c.Width() != 120 || c.Height() != 24 {
		t.Fatalf("size = %dx%d", c.Width(), c.Height())
	}
	if got := strings.TrimRight(c.Row(0), " "); got != "keep" {
		t.Errorf("row 0 = %q", got)
	}
}
