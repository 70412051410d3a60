// Package storage abstracts where the input, partitions and the sorted
// output live, so the spill and merge phases can run against the local
// filesystem, a key-value store or an in-memory fake interchangeably.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for the underlying byte-stream store.
type Storage interface {
	// Create opens path for writing, truncating any previous content.
	Create(ctx context.Context, path string) (io.WriteCloser, error)
	// Open opens path for reading.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Remove deletes path. Removing a path that does not exist is an error.
	Remove(ctx context.Context, path string) error
	// List returns the names (not paths) of the entries directly under dir.
	List(ctx context.Context, dir string) ([]string, error)
}
