package stationfs

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store finds and reads station files under a directory tree.
// It implements pipeline.StationLocator and pipeline.StationReader.
type Store struct {
	logger *slog.Logger
}

// NewStore creates a filesystem station store.
func NewStore(logger *slog.Logger) *Store {
	return &Store{logger: logger}
}

// Locate returns every file under root whose base name starts with one of
// codes. Matches are grouped by code in the order given, and within a code
// sorted by full path. A missing root yields no matches.
func (s *Store) Locate(codes []string, root string) []string {
	files := s.walk(root)

	var matches []string
	for _, code := range codes {
		for _, path := range files {
			if strings.HasPrefix(filepath.Base(path), code) {
				matches = append(matches, path)
			}
		}
	}
	return matches
}

// ReadStation returns the raw bytes of a station file.
func (s *Store) ReadStation(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// walk lists regular files under root in lexicographic path order.
// Unreadable entries are skipped.
func (s *Store) walk(root string) []string {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != root {
				s.logger.Debug("skipping unreadable path", "path", path, "error", err)
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		s.logger.Debug("station walk aborted", "root", root, "error", err)
	}

	sort.Strings(files)
	return files
}
