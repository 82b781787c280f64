package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Store writes rendered artifacts. A write either replaces the target in
// full or leaves it untouched.
type Store struct {
	fs    afero.Fs
	mkdir bool
}

// NewStore returns a Store on top of fs. With mkdir set, missing parent
// directories are created instead of failing the write.
func NewStore(fs afero.Fs, mkdir bool) *Store {
	return &Store{fs: fs, mkdir: mkdir}
}

// NewOsStore is NewStore on the real filesystem.
func NewOsStore(mkdir bool) *Store {
	return NewStore(afero.NewOsFs(), mkdir)
}

// Fs exposes the underlying filesystem, mostly for tests and readers.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// WriteFile writes data to a temp file next to path, then renames it over path.
func (s *Store) WriteFile(path string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("refusing to write empty artifact %s", path)
	}

	dir := filepath.Dir(path)
	if s.mkdir {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		s.fs.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := s.fs.Chmod(tmpName, 0644); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	if err := s.fs.Rename(tmpName, path); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}

	return nil
}

// Verify checks that path exists and is non-empty, returning its size.
// An empty file is removed.
func (s *Store) Verify(path string) (int64, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat artifact: %w", err)
	}
	if info.Size() == 0 {
		s.fs.Remove(path)
		return 0, fmt.Errorf("artifact %s is empty: %w", path, os.ErrInvalid)
	}
	return info.Size(), nil
}

// ReadFile returns the artifact bytes.
func (s *Store) ReadFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}
