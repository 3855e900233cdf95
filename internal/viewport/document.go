// Package viewport implements the editable text surface of a scene: a
// document of reflowed content lines, the bounded scroll window over it and
// the text cursor.
package viewport

import (
	"strings"
	"unicode/utf8"

	"github.com/stlalpha/pocketscene/internal/ui"
)

// DefaultMaxLineLength is the number of glyphs that fit across the panel
// with the default font.
const DefaultMaxLineLength = 37

// Document is the ordered sequence of content lines holding wrapped text.
//
// Concatenating the text of every line yields the document text exactly:
// soft wraps add nothing, hard breaks are kept as a trailing '\n' on the line
// that ends the paragraph. Every line holds at most maxLen visible glyphs,
// every soft-wrapped line except the last is full, and the last line is
// always growable (the terminal line).
type Document struct {
	lines  []*ui.Item
	maxLen int
	fg     ui.Color
	font   ui.Font
}

// NewDocument creates a document holding a single empty terminal line.
func NewDocument(maxLen int, fg ui.Color, font ui.Font) *Document {
	if maxLen <= 0 {
		maxLen = DefaultMaxLineLength
	}
	d := &Document{maxLen: maxLen, fg: fg, font: font}
	d.lines = []*ui.Item{d.newLine("")}
	return d
}

func (d *Document) newLine(text string) *ui.Item {
	it := ui.NewItem(text, 0, 0, d.fg, d.font)
	it.Displayable = false
	return it
}

// Lines returns the content lines. The slice must not be modified.
func (d *Document) Lines() []*ui.Item {
	return d.lines
}

// Len returns the number of content lines.
func (d *Document) Len() int {
	return len(d.lines)
}

// Line returns content line i, or nil if out of range.
func (d *Document) Line(i int) *ui.Item {
	if i < 0 || i >= len(d.lines) {
		return nil
	}
	return d.lines[i]
}

// MaxLineLength returns the wrap width in glyphs.
func (d *Document) MaxLineLength() int {
	return d.maxLen
}

// Text returns the full document text.
func (d *Document) Text() string {
	var b strings.Builder
	for _, ln := range d.lines {
		b.WriteString(ln.Text)
	}
	return b.String()
}

// RuneCount returns the document length in characters, hard breaks included.
func (d *Document) RuneCount() int {
	n := 0
	for _, ln := range d.lines {
		n += utf8.RuneCountInString(ln.Text)
	}
	return n
}

// Load replaces the whole content with text.
func (d *Document) Load(text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	d.splice(0, len(d.lines), split([]rune(text), d.maxLen))
	d.normalizeTail()
}

// LineStart returns the character offset at which line i begins.
func (d *Document) LineStart(i int) int {
	off := 0
	for j := 0; j < i && j < len(d.lines); j++ {
		off += utf8.RuneCountInString(d.lines[j].Text)
	}
	return off
}

// Offset converts a (line, column) position into a character offset. The
// column is clamped to the visible length of the line.
func (d *Document) Offset(line, col int) int {
	if line < 0 {
		return 0
	}
	if line >= len(d.lines) {
		return d.RuneCount()
	}
	if col < 0 {
		col = 0
	}
	if n := d.lines[line].Len(); col > n {
		col = n
	}
	return d.LineStart(line) + col
}

// Position converts a character offset into a (line, column) position.
// An offset sitting exactly at the end of a full soft-wrapped line belongs
// to the start of the following line, where the next glyph would land.
func (d *Document) Position(off int) (line, col int) {
	last := len(d.lines) - 1
	start := 0
	for i, ln := range d.lines {
		n := ln.Len()
		if off < start+n {
			if off < start {
				return i, 0
			}
			return i, off - start
		}
		if off == start+n && (ln.HardBreak() || i == last || n < d.maxLen) {
			return i, n
		}
		start += utf8.RuneCountInString(ln.Text)
	}
	return last, d.lines[last].Len()
}

// lineAt returns the index of the line holding the character at off.
func (d *Document) lineAt(off int) int {
	start := 0
	for i, ln := range d.lines {
		n := utf8.RuneCountInString(ln.Text)
		if off < start+n {
			return i
		}
		start += n
	}
	return len(d.lines) - 1
}

// edit describes the lines touched by a replace.
type edit struct {
	first    int // first line rewritten
	oldLines int // lines in the rewritten range before the edit
	newLines int // lines in the rewritten range after the edit
	before   int // document line count before the edit
}

func (e edit) reshaped(after int) bool {
	return e.oldLines != e.newLines || e.before != after
}

// replace substitutes the characters in [from, to) with text and reflows
// the affected paragraph. The rewritten range starts at the line holding
// from and runs to the end of the paragraph holding to, so overflow is
// pushed down and underfull lines pull glyphs forward up to the next hard
// break.
func (d *Document) replace(from, to int, text string) edit {
	total := d.RuneCount()
	from = clamp(from, 0, total)
	to = clamp(to, from, total)

	a := d.lineAt(from)
	for a > 0 && !d.lines[a-1].HardBreak() && d.lines[a-1].Len() < d.maxLen {
		a--
	}
	b := d.lineAt(to)
	for b < len(d.lines)-1 && !d.lines[b].HardBreak() {
		b++
	}

	start := d.LineStart(a)
	var seg []rune
	for i := a; i <= b; i++ {
		seg = append(seg, []rune(d.lines[i].Text)...)
	}
	lf, lt := from-start, to-start
	if lt > len(seg) {
		lt = len(seg)
	}

	out := make([]rune, 0, len(seg)-(lt-lf)+len(text))
	out = append(out, seg[:lf]...)
	out = append(out, []rune(text)...)
	out = append(out, seg[lt:]...)

	chunks := split(out, d.maxLen)
	e := edit{first: a, oldLines: b - a + 1, newLines: len(chunks), before: len(d.lines)}
	d.splice(a, b+1, chunks)
	d.normalizeTail()
	return e
}

// splice rewrites lines [a, b) with chunks, relabelling existing items in
// place so their ids survive the reflow.
func (d *Document) splice(a, b int, chunks []string) {
	reuse := b - a
	if len(chunks) < reuse {
		reuse = len(chunks)
	}
	for i := 0; i < reuse; i++ {
		d.lines[a+i].Text = chunks[i]
	}

	switch {
	case len(chunks) > b-a:
		extra := make([]*ui.Item, 0, len(chunks)-reuse)
		for _, c := range chunks[reuse:] {
			extra = append(extra, d.newLine(c))
		}
		tail := append(extra, d.lines[b:]...)
		d.lines = append(d.lines[:a+reuse], tail...)
	case len(chunks) < b-a:
		d.lines = append(d.lines[:a+reuse], d.lines[b:]...)
	}
}

// normalizeTail prunes trailing empty lines and guarantees exactly one
// growable terminal line.
func (d *Document) normalizeTail() {
	n := len(d.lines)
	for n > 1 && d.lines[n-1].Text == "" && d.lines[n-2].Text == "" {
		n--
	}
	if n > 1 && d.lines[n-1].Text == "" && d.growable(d.lines[n-2]) {
		n--
	}
	d.lines = d.lines[:n]
	if n == 0 {
		d.lines = append(d.lines, d.newLine(""))
		return
	}
	last := d.lines[n-1]
	if last.Text != "" && !d.growable(last) {
		d.lines = append(d.lines, d.newLine(""))
	}
}

func (d *Document) growable(ln *ui.Item) bool {
	return !ln.HardBreak() && ln.Len() < d.maxLen
}

// split cuts text into line chunks of at most maxLen visible glyphs. A
// newline always ends its chunk, and a newline directly following a full
// chunk is attached to it rather than producing an empty line.
func split(text []rune, maxLen int) []string {
	var out []string
	cur := make([]rune, 0, maxLen+1)
	n := 0
	for _, r := range text {
		if r == '\n' {
			cur = append(cur, r)
			out = append(out, string(cur))
			cur = cur[:0]
			n = 0
			continue
		}
		if n == maxLen {
			out = append(out, string(cur))
			cur = cur[:0]
			n = 0
		}
		cur = append(cur, r)
		n++
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
