package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
)

// ============================================================
// File Storage
// ============================================================

// Files хранит каждый ключ в отдельном файле внутри root.
type Files struct {
	root string
}

func NewFiles(root string) *Files {
	return &Files{root: root}
}

func (s *Files) KeyPath(key string) string {
	return filepath.Join(s.root, url.PathEscape(key)+".json")
}

func (s *Files) EnsureDir() error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir cache dir: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Files) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.KeyPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: read %q: %v", ErrUnavailable, key, err)
	}
	return data, true, nil
}

// Set пишет во временный файл и переименовывает его, чтобы читатель не увидел
// наполовину записанное значение.
func (s *Files) Set(_ context.Context, key string, value []byte) error {
	if err := s.EnsureDir(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: write %q: %v", ErrUnavailable, key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %q: %v", ErrUnavailable, key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: write %q: %v", ErrUnavailable, key, err)
	}
	if err := os.Rename(tmpName, s.KeyPath(key)); err != nil {
		return fmt.Errorf("%w: write %q: %v", ErrUnavailable, key, err)
	}
	return nil
}

func (s *Files) Remove(_ context.Context, key string) error {
	if err := os.Remove(s.KeyPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove %q: %v", ErrUnavailable, key, err)
	}
	return nil
}
