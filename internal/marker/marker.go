// Package marker reads and writes the per-trial sentinel files. A marker's
// mere existence encodes a boolean state flag; the files are always empty.
package marker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store manages the finished/submitted markers inside trial directories.
// Every call re-queries the filesystem; nothing is cached, so callers must
// order operations intentionally.
type Store struct {
	finishedName  string
	submittedName string
}

// NewStore creates a Store using the given marker file names.
func NewStore(finishedName, submittedName string) *Store {
	return &Store{finishedName: finishedName, submittedName: submittedName}
}

// IsFinished reports whether dir carries the finished marker.
func (s *Store) IsFinished(dir string) bool {
	return exists(filepath.Join(dir, s.finishedName))
}

// IsSubmitted reports whether dir carries the submitted marker.
func (s *Store) IsSubmitted(dir string) bool {
	return exists(filepath.Join(dir, s.submittedName))
}

// MarkFinished creates the finished marker. No-op if it already exists.
func (s *Store) MarkFinished(dir string) error {
	return touch(filepath.Join(dir, s.finishedName))
}

// MarkSubmitted creates the submitted marker. No-op if it already exists.
func (s *Store) MarkSubmitted(dir string) error {
	return touch(filepath.Join(dir, s.submittedName))
}

// UnmarkSubmitted removes the submitted marker. Absence is not an error.
func (s *Store) UnmarkSubmitted(dir string) error {
	return remove(filepath.Join(dir, s.submittedName))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// touch creates an empty file. It never truncates or updates timestamps on
// an existing file.
func touch(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("create marker %s: %w", path, err)
	}
	return f.Close()
}

func remove(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove marker %s: %w", path, err)
	}
	return nil
}
