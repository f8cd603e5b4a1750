// Package storage persists decoded clips to the fixed local output path.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/book-expert/speak/internal/audio"
	"github.com/book-expert/speak/internal/config"
	"github.com/book-expert/speak/internal/fsutil"
)

var (
	// ErrCreateDirectory marks a failure while ensuring the output directory exists.
	ErrCreateDirectory = errors.New("failed to create output directory")
	// ErrWriteFile marks a failure while writing the output file.
	ErrWriteFile = errors.New("failed to write output file")
)

// FileStore writes every clip to the same path, replacing the previous one.
type FileStore struct {
	dir  string
	file string
}

// NewFileStore creates a store writing to dir/file.
func NewFileStore(output config.OutputConfig) *FileStore {
	return &FileStore{dir: output.Dir, file: output.File}
}

// Path returns the file every Save writes to.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, s.file)
}

// Save implements core.AudioStore. The returned error wraps both the failure
// site (ErrCreateDirectory or ErrWriteFile) and the underlying filesystem error.
func (s *FileStore) Save(clip *audio.Clip) (string, error) {
	dirErr := fsutil.EnsureDir(s.dir)
	if dirErr != nil {
		return "", fmt.Errorf("%w: %w", ErrCreateDirectory, dirErr)
	}

	path := s.Path()

	exportErr := clip.Export(path)
	if exportErr != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteFile, exportErr)
	}

	return path, nil
}

// FailureSite names which step of Save an error came from, or "" if it did not
// come from Save.
func FailureSite(err error) string {
	switch {
	case errors.Is(err, ErrCreateDirectory):
		return "directory creation"
	case errors.Is(err, ErrWriteFile):
		return "file write"
	default:
		return ""
	}
}
