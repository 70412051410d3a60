// Package pebble implements storage.Storage on a Pebble key-value store.
// Paths become keys and file contents become values, so spill and merge can
// run against a KV store instead of a directory of plain files.
package pebble

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/cockroachdb/pebble"
)

// Options configures the underlying Pebble database.
type Options struct {
	// Path is the database directory.
	Path string
	// CacheSize is the block cache size in bytes; 0 keeps Pebble's default.
	CacheSize int64
	// MaxOpenFiles bounds file descriptors; 0 keeps Pebble's default.
	MaxOpenFiles int
}

// Storage stores each path as one blob. Writers buffer in memory and commit
// the blob on Close, matching the write-once partition lifecycle.
type Storage struct {
	db *pebble.DB
}

func Open(opts Options) (*Storage, error) {
	pebbleOpts := &pebble.Options{}
	if opts.MaxOpenFiles > 0 {
		pebbleOpts.MaxOpenFiles = opts.MaxOpenFiles
	}
	if opts.CacheSize > 0 {
		pebbleOpts.Cache = pebble.NewCache(opts.CacheSize)
		defer pebbleOpts.Cache.Unref()
	}

	db, err := pebble.Open(opts.Path, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble database at %s: %w", opts.Path, err)
	}
	return &Storage{db: db}, nil
}

// Close releases the underlying database.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Create(_ context.Context, path string) (io.WriteCloser, error) {
	return &blobWriter{db: s.db, key: filepath.Clean(path)}, nil
}

func (s *Storage) Open(_ context.Context, path string) (io.ReadCloser, error) {
	value, closer, err := s.db.Get([]byte(filepath.Clean(path)))
	if err != nil {
		return nil, fmt.Errorf("failed to open blob %s: %w", path, err)
	}

	// The value is only valid until the closer is released; copy it out.
	content := append([]byte(nil), value...)
	if err := closer.Close(); err != nil {
		return nil, fmt.Errorf("failed to release blob %s: %w", path, err)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (s *Storage) Remove(_ context.Context, path string) error {
	key := []byte(filepath.Clean(path))

	// Delete is a no-op on absent keys, but Remove must surface a missing
	// blob rather than silently succeed.
	_, closer, err := s.db.Get(key)
	if err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", path, err)
	}
	if err := closer.Close(); err != nil {
		return fmt.Errorf("failed to release blob %s: %w", path, err)
	}

	if err := s.db.Delete(key, pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", path, err)
	}
	return nil
}

func (s *Storage) List(_ context.Context, dir string) ([]string, error) {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs under %s: %w", dir, err)
	}

	cleaned := filepath.Clean(dir)
	var files []string
	for valid := iter.First(); valid; valid = iter.Next() {
		path := string(iter.Key())
		if filepath.Dir(path) == cleaned {
			files = append(files, filepath.Base(path))
		}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list blobs under %s: %w", dir, err)
	}
	return files, nil
}

type blobWriter struct {
	db  *pebble.DB
	key string
	buf bytes.Buffer
}

func (w *blobWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *blobWriter) Close() error {
	if err := w.db.Set([]byte(w.key), w.buf.Bytes(), pebble.Sync); err != nil {
		return fmt.Errorf("failed to commit blob %s: %w", w.key, err)
	}
	return nil
}
