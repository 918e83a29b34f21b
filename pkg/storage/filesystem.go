package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage persists files on disk under a base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./public/feeds"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Save writes data to filename under the base dir.
func (s *LocalStorage) Save(filename string, data []byte) (string, error) {
	w, err := s.Create(filename)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Abort()
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return filename, nil
}

// AtomicFile is a temp file renamed into place on Close.
type AtomicFile struct {
	file   *os.File
	target string
}

func (f *AtomicFile) Write(p []byte) (int, error) { return f.file.Write(p) }

// Close flushes the temp file and moves it over the target.
func (f *AtomicFile) Close() error {
	if err := f.file.Close(); err != nil {
		_ = os.Remove(f.file.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(f.file.Name(), f.target); err != nil {
		_ = os.Remove(f.file.Name())
		return fmt.Errorf("publish file: %w", err)
	}
	return nil
}

// Abort discards the temp file.
func (f *AtomicFile) Abort() error {
	_ = f.file.Close()
	return os.Remove(f.file.Name())
}

var _ io.WriteCloser = (*AtomicFile)(nil)

// Create opens filename for writing. Readers keep seeing the previous version until Close.
func (s *LocalStorage) Create(filename string) (*AtomicFile, error) {
	path, err := s.resolve(filename)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("prepare directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("chmod temp file: %w", err)
	}
	return &AtomicFile{file: tmp, target: path}, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(filename string) error {
	path, err := s.resolve(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// CleanupOlderThan removes files last written before cutoff and returns the deleted names.
func (s *LocalStorage) CleanupOlderThan(cutoff time.Time, suffix string) ([]string, error) {
	deleted := make([]string, 0)
	err := filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), suffix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			rel = path
		}
		deleted = append(deleted, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup storage: %w", err)
	}
	return deleted, nil
}

// Path exposes the resolved path of filename.
func (s *LocalStorage) Path(filename string) string {
	path, err := s.resolve(filename)
	if err != nil {
		return ""
	}
	return path
}

func (s *LocalStorage) resolve(filename string) (string, error) {
	cleaned := filepath.Clean(filename)
	if cleaned == "." || filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage path %q", filename)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}
