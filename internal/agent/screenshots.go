package agent

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"aura-bridge/internal/logging"
)

// Screenshots manages the shared directory where the agent drops captures
// during automated sessions. The directory is advisory: every failure here
// degrades to an empty listing, never to a request failure.
type Screenshots struct {
	dir string
}

// NewScreenshots ensures the directory exists and returns the store.
func NewScreenshots(dir string) *Screenshots {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logging.S().Warnw("failed to create screenshot directory", "dir", dir, "error", err)
	}
	return &Screenshots{dir: dir}
}

// Dir returns the directory path.
func (s *Screenshots) Dir() string {
	return s.dir
}

// List returns the image filenames currently in the directory, sorted.
func (s *Screenshots) List() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		logging.S().Debugw("failed to read screenshot directory", "dir", s.dir, "error", err)
		return []string{}
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg", ".gif", ".webp":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Clear removes every file in the directory and reports how many went.
func (s *Screenshots) Clear() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			logging.S().Warnw("failed to remove screenshot", "file", e.Name(), "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
