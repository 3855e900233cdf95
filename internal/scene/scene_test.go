package scene

import (
	"context"
	"errors"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/stlalpha/pocketscene/internal/storage"
	"github.com/stlalpha/pocketscene/internal/ui"
	"github.com/stlalpha/pocketscene/internal/ui/uitest"
)

var testThemes = []ui.Theme{
	{ID: 0, Name: "Dark", Background: ui.Black, Foreground: ui.White, Title: ui.Cyan, Highlight: ui.Navy, Cursor: ui.Green, Modal: ui.DarkGray, Accent: ui.Yellow},
	{ID: 1, Name: "Light", Background: ui.White, Foreground: ui.Black, Title: ui.Blue, Highlight: ui.Cyan, Cursor: ui.Blue, Modal: ui.LightGray, Accent: ui.Magenta},
}

type fakePrefs struct {
	theme, sort int
}

func (p *fakePrefs) Theme() ui.Theme          { return testThemes[p.theme] }
func (p *fakePrefs) ThemeID() int             { return p.theme }
func (p *fakePrefs) Themes() []ui.Theme       { return testThemes }
func (p *fakePrefs) SortMode() int            { return p.sort }
func (p *fakePrefs) SetSortMode(id int) error { p.sort = id; return nil }

func (p *fakePrefs) SetTheme(id int) error {
	if id < 0 || id >= len(testThemes) {
		return errors.New("unknown theme")
	}
	p.theme = id
	return nil
}

type fakeStorage struct {
	dirs  map[string][]string
	files map[string]string
}

func (s *fakeStorage) List(path string, mode storage.SortMode) ([]string, error) {
	names, ok := s.dirs[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	out := append([]string(nil), names...)
	if mode == storage.SortNameDesc {
		sort.Sort(sort.Reverse(sort.StringSlice(out)))
	}
	return out, nil
}

func (s *fakeStorage) ReadFile(path string) (string, error) {
	text, ok := s.files[path]
	if !ok {
		return "", fs.ErrNotExist
	}
	return text, nil
}

func (s *fakeStorage) WriteFile(path, text string) error {
	s.files[path] = text
	return nil
}

func (s *fakeStorage) NewScriptName(dir, language string) string {
	return storage.Join(dir, "script1"+storage.Extension(language))
}

type fakeRunner struct {
	mu       sync.Mutex
	running  bool
	err      error
	code     string
	language string
	sent     []string
	cancels  int
}

func (r *fakeRunner) RunCodeString(ctx context.Context, code, language string) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return uuid.Nil, r.err
	}
	r.code, r.language = code, language
	r.running = true
	return uuid.New(), nil
}

func (r *fakeRunner) Send(input string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, input)
	return nil
}

func (r *fakeRunner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels++
}

func (r *fakeRunner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *fakeRunner) WaitingInput() bool { return false }

func (r *fakeRunner) setRunning(v bool) {
	r.mu.Lock()
	r.running = v
	r.mu.Unlock()
}

type switchCall struct {
	kind Kind
	arg  string
}

type fakeSwitcher struct {
	calls []switchCall
}

func (s *fakeSwitcher) Switch(kind Kind, arg string) {
	s.calls = append(s.calls, switchCall{kind, arg})
}

func (s *fakeSwitcher) last(t *testing.T) switchCall {
	t.Helper()
	if len(s.calls) == 0 {
		t.Fatal("expected a scene switch")
	}
	return s.calls[len(s.calls)-1]
}

type fixture struct {
	env      *Env
	disp     *uitest.Display
	prefs    *fakePrefs
	store    *fakeStorage
	runner   *fakeRunner
	switcher *fakeSwitcher
}

func setupEnv(maxLen int) *fixture {
	f := &fixture{
		disp:  uitest.New(240, 135),
		prefs: &fakePrefs{},
		store: &fakeStorage{
			dirs:  map[string][]string{".": {"blink.lua", "games/"}, "games": {"snake.lua"}},
			files: map[string]string{"blink.lua": "print(1)"},
		},
		runner:   &fakeRunner{},
		switcher: &fakeSwitcher{},
	}
	f.env = &Env{
		Display:  f.disp,
		Settings: f.prefs,
		Storage:  f.store,
		Runner:   f.runner,
		Switcher: f.switcher,
		Layout:   Layout{MaxLineLength: maxLen, MaxLinesPerPage: 9, ScrollBudget: 1},
	}
	return f
}

func focusedText(items []*ui.Item) string {
	if it := ui.Focused(items); it != nil {
		return it.Text
	}
	return ""
}

func TestStartMenu(t *testing.T) {
	fx := setupEnv(37)
	s := NewStart(fx.env)
	s.Init()
	s.RenderAll()

	if focusedText(s.items) != "Files" {
		t.Fatalf("expected Files focused, got %q", focusedText(s.items))
	}
	s.Arrow(ui.Down)
	s.Arrow(ui.Down)
	if focusedText(s.items) != "Settings" {
		t.Fatalf("expected Settings focused, got %q", focusedText(s.items))
	}
	s.Enter()
	if c := fx.switcher.last(t); c.kind != KindSettings {
		t.Errorf("expected a switch to settings, got %v", c.kind)
	}
}

func TestStartNewScript(t *testing.T) {
	fx := setupEnv(37)
	s := NewStart(fx.env)
	s.Init()

	s.Arrow(ui.Down)
	s.Enter()
	if !s.stages.InModal() || s.stages.Current() != languageStage {
		t.Fatal("expected the language menu")
	}
	s.Arrow(ui.Down)
	s.Enter()
	c := fx.switcher.last(t)
	if c.kind != KindCode || c.arg != "script1.py" {
		t.Errorf("expected a python script, got %v %q", c.kind, c.arg)
	}
}

func TestStartEscapeClosesModal(t *testing.T) {
	fx := setupEnv(37)
	s := NewStart(fx.env)
	s.Init()
	s.Value('n')
	s.Escape()
	if s.stages.InModal() || len(fx.switcher.calls) != 0 {
		t.Error("expected Escape to close the menu only")
	}
}

func TestFilesScrollThenRetry(t *testing.T) {
	fx := setupEnv(37)
	var names []string
	for i := 0; i < 12; i++ {
		names = append(names, string(rune('a'+i))+".lua")
	}
	fx.store.dirs["."] = names

	f := NewFiles(fx.env, ".")
	f.Init()
	for i := 0; i < 8; i++ {
		f.Arrow(ui.Down)
	}
	if focusedText(f.entries) != "i.lua" {
		t.Fatalf("expected the last visible entry, got %q", focusedText(f.entries))
	}
	if f.win.Start() != 0 {
		t.Fatal("expected no scroll yet")
	}

	f.Arrow(ui.Down)
	if focusedText(f.entries) != "j.lua" {
		t.Errorf("expected focus to follow the scroll, got %q", focusedText(f.entries))
	}
	if f.win.Start() != 1 || f.entries[0].Displayable {
		t.Errorf("expected the window to move one line, start %d", f.win.Start())
	}

	for i := 0; i < 5; i++ {
		f.Arrow(ui.Down)
	}
	if focusedText(f.entries) != "l.lua" || f.win.End() != 12 {
		t.Errorf("expected to stop at the last entry, got %q", focusedText(f.entries))
	}
	if f.Focus(ui.Down) {
		t.Error("expected a miss at the end of the list")
	}
}

func TestFilesNavigateDirectories(t *testing.T) {
	fx := setupEnv(37)
	f := NewFiles(fx.env, ".")
	f.Init()

	f.Arrow(ui.Down)
	f.Enter()
	if f.Dir() != "games" {
		t.Fatalf("expected to enter games, got %q", f.Dir())
	}
	if f.entries[0].Text != parentEntry || focusedText(f.entries) != parentEntry {
		t.Fatal("expected the parent entry first")
	}

	f.Arrow(ui.Down)
	f.Enter()
	if c := fx.switcher.last(t); c.kind != KindCode || c.arg != "games/snake.lua" {
		t.Errorf("expected to open games/snake.lua, got %v %q", c.kind, c.arg)
	}

	f.Escape()
	if f.Dir() != "." {
		t.Fatalf("expected to return to the root, got %q", f.Dir())
	}
	f.Escape()
	if c := fx.switcher.last(t); c.kind != KindStart {
		t.Errorf("expected to leave for the start menu, got %v", c.kind)
	}
}

func TestFilesSortMenu(t *testing.T) {
	fx := setupEnv(37)
	f := NewFiles(fx.env, ".")
	f.Init()

	f.Value('s')
	if f.stages.Current() != sortStage {
		t.Fatal("expected the sort menu")
	}
	f.Arrow(ui.Down)
	f.Enter()
	if fx.prefs.sort != int(storage.SortNameDesc) {
		t.Errorf("expected sort mode %d stored, got %d", storage.SortNameDesc, fx.prefs.sort)
	}
	if f.stages.InModal() || f.entries[0].Text != "games/" {
		t.Errorf("expected a reversed listing, got %q first", f.entries[0].Text)
	}
}

func TestFilesMissingDirectoryShowsNotice(t *testing.T) {
	fx := setupEnv(37)
	f := NewFiles(fx.env, "gone")
	f.Init()
	if f.stages.Current() != noticeStage {
		t.Fatal("expected a notice")
	}
	f.Enter()
	if f.stages.InModal() {
		t.Error("expected OK to close the notice")
	}
}

func setupCode(t *testing.T, maxLen int, path string) (*Code, *fixture) {
	t.Helper()
	fx := setupEnv(maxLen)
	c := NewCode(fx.env, path)
	c.Init()
	c.RenderAll()
	return c, fx
}

func typeText(c *Code, text string) {
	for _, r := range text {
		if r == '\n' {
			c.Enter()
			continue
		}
		c.Value(r)
	}
}

func TestCodeTypingWraps(t *testing.T) {
	c, _ := setupCode(t, 10, "new.lua")
	typeText(c, "HelloWorld!")

	lines := c.Viewport().Document().Lines()
	if len(lines) != 2 || lines[0].Text != "HelloWorld" || lines[1].Text != "!" {
		t.Fatalf("unexpected lines %q %q", lines[0].Text, lines[1].Text)
	}
	if cur := c.Viewport().Cursor(); cur.X != 1 || cur.Y != 1 {
		t.Errorf("expected cursor at (1,1), got (%d,%d)", cur.X, cur.Y)
	}
	if !c.Modified() || !strings.HasSuffix(c.title.Text, "*") {
		t.Error("expected the script to be marked modified")
	}

	c.Delete()
	if c.Text() != "HelloWorld" {
		t.Errorf("expected the last character deleted, got %q", c.Text())
	}
}

func TestCodeLoadsAndSaves(t *testing.T) {
	c, fx := setupCode(t, 37, "blink.lua")
	if c.Text() != "print(1)" {
		t.Fatalf("expected the file content, got %q", c.Text())
	}
	c.Arrow(ui.Right)
	typeText(c, "-")

	c.Escape()
	if c.stages.Current() != menuStage {
		t.Fatal("expected the menu")
	}
	c.Arrow(ui.Down)
	c.Enter()
	if fx.store.files["blink.lua"] != "p-rint(1)" {
		t.Errorf("unexpected saved content %q", fx.store.files["blink.lua"])
	}
	if c.Modified() || c.stages.InModal() {
		t.Error("expected a clean buffer and the menu closed")
	}
}

func TestCodeRunStreamsOutput(t *testing.T) {
	c, fx := setupCode(t, 37, "blink.lua")
	c.Escape()
	c.Enter()

	if fx.runner.code != "print(1)" || fx.runner.language != "lua" {
		t.Fatalf("unexpected run %q %q", fx.runner.code, fx.runner.language)
	}
	if c.stages.Current() != outputStage || !c.stages.InModal() {
		t.Fatal("expected the output modal")
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.SendCodeOutput("x\n")
		}()
	}
	wg.Wait()
	c.Drain()
	if got := strings.Count(c.Output(), "x\n"); got != 10 {
		t.Errorf("expected 10 output lines, got %d", got)
	}

	fx.runner.setRunning(false)
	c.SendCodeSuccess()
	c.Drain()
	if c.status.Text != "finished" {
		t.Errorf("expected finished status, got %q", c.status.Text)
	}

	c.Escape()
	if c.stages.InModal() {
		t.Error("expected Escape to close the output")
	}
}

func TestCodeRunFailureShowsError(t *testing.T) {
	c, fx := setupCode(t, 37, "blink.lua")
	fx.runner.err = errors.New("runner: no interpreter for language")
	c.Escape()
	c.Enter()
	c.Drain()
	if !strings.Contains(c.Output(), "Error: runner: no interpreter") {
		t.Errorf("expected the error in the output, got %q", c.Output())
	}
	if c.status.Text != "failed" {
		t.Errorf("expected failed status, got %q", c.status.Text)
	}
}

func TestCodeForwardsInputAndCancels(t *testing.T) {
	c, fx := setupCode(t, 37, "blink.lua")
	c.Escape()
	c.Enter()

	c.Value('4')
	c.Value('3')
	c.Delete()
	c.Value('2')
	c.Enter()
	if len(fx.runner.sent) != 1 || fx.runner.sent[0] != "42\n" {
		t.Errorf("expected 42 sent, got %q", fx.runner.sent)
	}

	c.Escape()
	if fx.runner.cancels != 1 {
		t.Errorf("expected a cancel, got %d", fx.runner.cancels)
	}
	if !c.stages.InModal() {
		t.Error("expected the output to stay open while cancelling")
	}
	if c.Text() != "print(1)" {
		t.Error("typing into the output must not edit the script")
	}
}

func TestCodeCloseAsksBeforeDiscarding(t *testing.T) {
	c, fx := setupCode(t, 37, "blink.lua")
	typeText(c, "x")

	c.Escape()
	c.Arrow(ui.Down)
	c.Arrow(ui.Down)
	c.Enter()
	if c.stages.Current() != confirmStage {
		t.Fatal("expected the discard confirmation")
	}
	if len(fx.switcher.calls) != 0 {
		t.Fatal("expected no switch before confirming")
	}
	c.Arrow(ui.Down)
	c.Enter()
	if sc := fx.switcher.last(t); sc.kind != KindFiles || sc.arg != "." {
		t.Errorf("expected to return to the files scene, got %v %q", sc.kind, sc.arg)
	}
}

func TestCodeAutosave(t *testing.T) {
	c, fx := setupCode(t, 37, "new.lua")
	c.Autosave()
	if _, ok := fx.store.files["new.lua"]; ok {
		t.Fatal("expected no save without changes")
	}
	typeText(c, "a\nb")
	c.Autosave()
	if fx.store.files["new.lua"] != "a\nb" || c.Modified() {
		t.Errorf("unexpected autosave result %q", fx.store.files["new.lua"])
	}
}

func TestSettingsTheme(t *testing.T) {
	fx := setupEnv(37)
	s := NewSettings(fx.env)
	s.Init()

	s.Enter()
	if s.stages.Current() != themeStage {
		t.Fatal("expected the theme menu")
	}
	s.Arrow(ui.Down)
	s.Enter()
	if fx.prefs.theme != 1 {
		t.Fatalf("expected theme 1 stored, got %d", fx.prefs.theme)
	}
	if s.items[0].Text != "Theme: Light" || s.theme.Name != "Light" {
		t.Errorf("expected the Light theme applied, got %q", s.items[0].Text)
	}
	if s.stages.InModal() {
		t.Error("expected the menu closed")
	}

	s.Escape()
	if c := fx.switcher.last(t); c.kind != KindStart {
		t.Errorf("expected to leave for the start menu, got %v", c.kind)
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"", 10, []string{""}},
		{"cannot open games", 10, []string{"cannot", "open games"}},
		{"abcdefghijkl", 5, []string{"abcde", "fghij", "kl"}},
		{"a\nb", 5, []string{"a", "b"}},
	}
	for _, tt := range tests {
		got := wrap(tt.text, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestCodeOutputTrimKeepsWholeCharacters(t *testing.T) {
	c, _ := setupCode(t, 37, "blink.lua")

	// The odd prefix puts every two-byte rune at an odd offset, so the
	// byte budget lands inside one.
	c.appendOutput("a" + strings.Repeat("é", maxOutput/2+1) + "b")

	out := c.Output()
	if !utf8.ValidString(out) {
		t.Fatalf("trimmed output is not valid UTF-8: % x", out[:4])
	}
	if len(out) > maxOutput {
		t.Errorf("output is %d bytes, want at most %d", len(out), maxOutput)
	}
	if !strings.HasPrefix(out, "é") || !strings.HasSuffix(out, "b") {
		t.Errorf("unexpected trim: prefix %q suffix %q", out[:2], out[len(out)-1:])
	}
}
