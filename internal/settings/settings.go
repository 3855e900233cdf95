// Package settings persists the user's theme and file sort preferences.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/stlalpha/pocketscene/internal/logging"
	"github.com/stlalpha/pocketscene/internal/ui"

	_ "modernc.org/sqlite"
)

// Keys of the persisted values.
const (
	KeyTheme    = "theme"
	KeySortMode = "sort_mode"
)

// Store keeps small integer settings in a SQLite table and caches them in
// memory. It is safe for concurrent use.
type Store struct {
	db *sql.DB

	mu    sync.RWMutex
	cache map[string]int
}

// Open opens or creates the settings database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create settings dir: %w", err)
		}
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open settings db %s: %w", path, err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("settings pragma: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create settings table: %w", err)
	}

	s := &Store{db: db, cache: make(map[string]int)}
	if err := s.load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scan setting: %w", err)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			logging.Warn("Ignoring setting %s with non-numeric value %q", key, value)
			continue
		}
		s.cache[key] = n
	}
	return rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the value stored under key, or def.
func (s *Store) Get(key string, def int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.cache[key]; ok {
		return v
	}
	return def
}

// Set stores value under key.
func (s *Store) Set(ctx context.Context, key string, value int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settings tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO settings(key, value) VALUES(?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, strconv.Itoa(value)); err != nil {
		return fmt.Errorf("store setting %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit setting %s: %w", key, err)
	}

	s.mu.Lock()
	s.cache[key] = value
	s.mu.Unlock()
	logging.Debug("setting %s = %d", key, value)
	return nil
}

// ThemeID returns the selected theme id.
func (s *Store) ThemeID() int {
	return s.Get(KeyTheme, 0)
}

// Theme returns the selected palette.
func (s *Store) Theme() ui.Theme {
	return Theme(s.ThemeID())
}

// SetTheme selects the palette with the given id.
func (s *Store) SetTheme(id int) error {
	if id < 0 || id >= len(Themes) {
		return fmt.Errorf("theme %d: %w", id, ErrUnknownTheme)
	}
	return s.Set(context.Background(), KeyTheme, id)
}

// Themes returns the selectable palettes.
func (s *Store) Themes() []ui.Theme {
	return Themes
}

// SortMode returns the file list sort mode.
func (s *Store) SortMode() int {
	return s.Get(KeySortMode, 0)
}

// SetSortMode stores the file list sort mode.
func (s *Store) SetSortMode(id int) error {
	return s.Set(context.Background(), KeySortMode, id)
}

// ErrUnknownTheme is returned for a theme id outside Themes.
var ErrUnknownTheme = errors.New("unknown theme")
