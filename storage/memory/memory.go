// Package memory provides a map-backed storage.Storage, mainly for tests.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Storage keeps file contents in a map keyed by cleaned path. Writes become
// visible on Close of the returned writer.
type Storage struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func New() *Storage {
	return &Storage{files: make(map[string][]byte)}
}

func (s *Storage) Create(_ context.Context, path string) (io.WriteCloser, error) {
	return &writer{storage: s, path: filepath.Clean(path)}, nil
}

func (s *Storage) Open(_ context.Context, path string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.files[filepath.Clean(path)]
	if !ok {
		return nil, fmt.Errorf("failed to open file %s: %w", path, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (s *Storage) Remove(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := filepath.Clean(path)
	if _, ok := s.files[key]; !ok {
		return fmt.Errorf("failed to delete file %s: %w", path, os.ErrNotExist)
	}
	delete(s.files, key)
	return nil
}

func (s *Storage) List(_ context.Context, dir string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cleaned := filepath.Clean(dir)
	var files []string
	for path := range s.files {
		if filepath.Dir(path) == cleaned {
			files = append(files, filepath.Base(path))
		}
	}
	return files, nil
}

// Content returns the current bytes stored at path.
func (s *Storage) Content(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.files[filepath.Clean(path)]
	return content, ok
}

type writer struct {
	storage *Storage
	path    string
	buf     bytes.Buffer
	closed  bool
}

func (w *writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	return w.buf.Write(p)
}

func (w *writer) Close() error {
	if w.closed {
		return os.ErrClosed
	}
	w.closed = true

	w.storage.mu.Lock()
	defer w.storage.mu.Unlock()
	w.storage.files[w.path] = w.buf.Bytes()
	return nil
}
