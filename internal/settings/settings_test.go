package settings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func setupStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDefaults(t *testing.T) {
	s := setupStore(t, filepath.Join(t.TempDir(), "settings.db"))
	if s.ThemeID() != 0 || s.SortMode() != 0 {
		t.Errorf("expected zero defaults, got theme %d sort %d", s.ThemeID(), s.SortMode())
	}
	if s.Theme().Name != "Classic" {
		t.Errorf("expected Classic, got %s", s.Theme().Name)
	}
}

func TestSettingsPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.db")
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SetTheme(2); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}
	if err := s.SetSortMode(1); err != nil {
		t.Fatalf("SetSortMode: %v", err)
	}
	if err := s.SetSortMode(3); err != nil {
		t.Fatalf("SetSortMode: %v", err)
	}
	s.Close()

	s = setupStore(t, path)
	if s.Theme().Name != "Amber" {
		t.Errorf("expected Amber after reopen, got %s", s.Theme().Name)
	}
	if s.SortMode() != 3 {
		t.Errorf("expected sort mode 3 after reopen, got %d", s.SortMode())
	}
}

func TestSetThemeRejectsUnknown(t *testing.T) {
	s := setupStore(t, filepath.Join(t.TempDir(), "settings.db"))
	if err := s.SetTheme(len(Themes)); !errors.Is(err, ErrUnknownTheme) {
		t.Errorf("expected ErrUnknownTheme, got %v", err)
	}
	if s.ThemeID() != 0 {
		t.Error("a rejected theme must not be stored")
	}
}

func TestThemeFallback(t *testing.T) {
	if Theme(-1).ID != 0 || Theme(99).ID != 0 {
		t.Error("expected out of range ids to fall back to the first theme")
	}
	for i, th := range Themes {
		if th.ID != i {
			t.Errorf("theme %s has id %d at index %d", th.Name, th.ID, i)
		}
		if th.Highlight == th.Background || th.Highlight == th.Modal {
			t.Errorf("theme %s highlight is invisible", th.Name)
		}
	}
}
