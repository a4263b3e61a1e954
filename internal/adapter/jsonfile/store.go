package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// ErrNotFound is returned by Load when no artifact has been written yet.
var ErrNotFound = errors.New("report artifact not found")

// Store persists the percentile artifact at a fixed path.
// It implements pipeline.ReportSink and httpadapter.ReportSource.
type Store struct {
	path string
}

// NewStore creates a store for the artifact at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the artifact location.
func (s *Store) Path() string {
	return s.path
}

// Save atomically replaces the artifact with data. The parent directory must
// exist. On failure the previous artifact, if any, is left untouched.
func (s *Store) Save(_ context.Context, data []byte) error {
	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(s.path), err)
	}
	return nil
}

// Load returns the artifact bytes, or ErrNotFound if it does not exist.
func (s *Store) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(s.path), err)
	}
	return data, nil
}
