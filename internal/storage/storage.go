// Package storage reads and writes script files on the local file system.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNotDirectory is returned when a listing is requested for a file.
var ErrNotDirectory = errors.New("not a directory")

// ErrOutsideRoot is returned for paths that escape the storage root.
var ErrOutsideRoot = errors.New("path outside storage root")

// SortMode orders directory listings.
type SortMode int

const (
	SortName SortMode = iota
	SortNameDesc
	SortDirsFirst
	SortNewest
)

// SortModes lists every mode in menu order.
var SortModes = []SortMode{SortName, SortNameDesc, SortDirsFirst, SortNewest}

func (m SortMode) String() string {
	switch m {
	case SortName:
		return "Name A-Z"
	case SortNameDesc:
		return "Name Z-A"
	case SortDirsFirst:
		return "Folders first"
	case SortNewest:
		return "Newest first"
	}
	return fmt.Sprintf("SortMode(%d)", int(m))
}

// Separator marks directory entries in listings.
const Separator = "/"

// FS is the script storage rooted at a directory.
type FS struct {
	root string
}

// New creates storage rooted at root.
func New(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root %s: %w", root, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage root: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("storage root %s: %w", abs, ErrNotDirectory)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute storage root.
func (s *FS) Root() string { return s.root }

// resolve maps a root-relative path onto the file system.
func (s *FS) resolve(path string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", path, ErrOutsideRoot)
	}
	return full, nil
}

type entry struct {
	name    string
	dir     bool
	modTime time.Time
}

// ListDirectory returns the entries of the root-relative directory path
// in name order. Directory names end in Separator.
func (s *FS) ListDirectory(path string) ([]string, error) {
	return s.List(path, SortName)
}

// List returns the entries of path ordered by mode.
func (s *FS) List(path string, mode SortMode) ([]string, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("list %s: %w", path, ErrNotDirectory)
	}
	des, err := os.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}

	entries := make([]entry, 0, len(des))
	for _, de := range des {
		if strings.HasPrefix(de.Name(), ".") {
			continue
		}
		e := entry{name: de.Name(), dir: de.IsDir()}
		if info, err := de.Info(); err == nil {
			e.modTime = info.ModTime()
		}
		entries = append(entries, e)
	}
	sortEntries(entries, mode)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
		if e.dir {
			names[i] += Separator
		}
	}
	return names, nil
}

func sortEntries(entries []entry, mode SortMode) {
	byName := func(a, b entry) bool {
		la, lb := strings.ToLower(a.name), strings.ToLower(b.name)
		if la != lb {
			return la < lb
		}
		return a.name < b.name
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch mode {
		case SortNameDesc:
			return byName(b, a)
		case SortDirsFirst:
			if a.dir != b.dir {
				return a.dir
			}
		case SortNewest:
			if !a.modTime.Equal(b.modTime) {
				return a.modTime.After(b.modTime)
			}
		}
		return byName(a, b)
	})
}

// IsDir reports whether a listing name denotes a directory.
func IsDir(name string) bool {
	return strings.HasSuffix(name, Separator)
}

// Join appends a listing name to a root-relative directory.
func Join(dir, name string) string {
	return filepath.ToSlash(filepath.Join(dir, strings.TrimSuffix(name, Separator)))
}

// Parent returns the parent of a root-relative directory. The root is its
// own parent.
func Parent(dir string) string {
	p := filepath.ToSlash(filepath.Dir(filepath.Clean(dir)))
	if p == "" || p == "/" {
		return "."
	}
	return p
}

// ReadFile returns the content of a root-relative file.
func (s *FS) ReadFile(path string) (string, error) {
	full, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// WriteFile replaces a root-relative file with text. The content is written
// to a temporary file first so a failed write leaves the old file intact.
func (s *FS) WriteFile(path, text string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".save-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// NewScriptName returns an unused file name in dir for a new script of
// the given language.
func (s *FS) NewScriptName(dir, language string) string {
	ext := Extension(language)
	for i := 1; ; i++ {
		name := Join(dir, fmt.Sprintf("script%d%s", i, ext))
		full, err := s.resolve(name)
		if err != nil {
			return name
		}
		if _, err := os.Stat(full); os.IsNotExist(err) {
			return name
		}
	}
}

var extensions = map[string]string{
	".lua": "lua",
	".py":  "python",
}

// Language returns the script language of a file name, or "".
func Language(name string) string {
	return extensions[strings.ToLower(filepath.Ext(name))]
}

// Extension returns the file extension of a script language.
func Extension(language string) string {
	for ext, lang := range extensions {
		if lang == language {
			return ext
		}
	}
	return ".txt"
}
