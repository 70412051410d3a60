// Package spill implements the batching phase of the sort: records stream
// in, accumulate into fixed-size batches, and each full batch is written out
// as one sorted partition file.
package spill

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/btree"

	"github.com/bartossh/sorter/partition"
	"github.com/bartossh/sorter/recordio"
	"github.com/bartossh/sorter/storage"
)

var (
	ErrInvalidBatchSize = errors.New("spill: batch size must be greater than 0")
	ErrWriterClosed     = errors.New("spill: writer is closed")
)

// entry orders the in-memory segment by value. The insertion sequence keeps
// equal values distinct so the btree retains duplicates.
type entry struct {
	value partition.Record
	seq   uint64
}

func lessEntry(a, b entry) bool {
	if a.value != b.value {
		return a.value < b.value
	}
	return a.seq < b.seq
}

// Writer accumulates records into a sorted in-memory segment and spills the
// segment as a partition file whenever it reaches the batch capacity. At
// most one partition write handle is open at a time.
type Writer struct {
	storage   storage.Storage
	dir       string
	batchSize int
	segment   *btree.BTreeG[entry]
	seq       uint64
	count     int
	closed    bool
}

// NewWriter creates a spill writer producing partitions under dir.
func NewWriter(st storage.Storage, dir string, batchSize int) (*Writer, error) {
	if batchSize <= 0 {
		return nil, ErrInvalidBatchSize
	}
	return &Writer{
		storage:   st,
		dir:       dir,
		batchSize: batchSize,
		segment:   newSegment(),
	}, nil
}

func newSegment() *btree.BTreeG[entry] {
	return btree.NewG(2, lessEntry)
}

// Write buffers one record, spilling the batch when it reaches capacity.
func (w *Writer) Write(ctx context.Context, rec partition.Record) error {
	if w.closed {
		return ErrWriterClosed
	}

	w.segment.ReplaceOrInsert(entry{value: rec, seq: w.seq})
	w.seq++

	if w.segment.Len() >= w.batchSize {
		return w.flush(ctx)
	}
	return nil
}

// Close spills any leftover records as one final, possibly smaller,
// partition. A batch already spilled for reaching capacity is never
// spilled again, so an input that is an exact multiple of the batch size
// produces no empty trailing partition.
func (w *Writer) Close(ctx context.Context) error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.segment.Len() == 0 {
		return nil
	}
	return w.flush(ctx)
}

// Partitions returns how many partition files have been written so far.
func (w *Writer) Partitions() int {
	return w.count
}

// Records returns how many records have been accepted so far.
func (w *Writer) Records() uint64 {
	return w.seq
}

func (w *Writer) flush(ctx context.Context) error {
	path := partition.Path(w.dir, w.count)
	file, err := w.storage.Create(ctx, path)
	if err != nil {
		return fmt.Errorf("spill: failed to create partition %s: %w", path, err)
	}

	enc := recordio.NewWriter(file)
	var writeErr error
	w.segment.Ascend(func(e entry) bool {
		writeErr = enc.Write(e.value)
		return writeErr == nil
	})
	if writeErr == nil {
		writeErr = enc.Flush()
	}
	if err := file.Close(); err != nil && writeErr == nil {
		writeErr = err
	}
	if writeErr != nil {
		return fmt.Errorf("spill: failed to write partition %s: %w", path, writeErr)
	}

	w.count++
	w.segment = newSegment()
	return nil
}

// SpillAll streams newline-delimited records from r through w and closes w.
// The first malformed line aborts the run; partitions spilled before the
// failure are left in place.
func SpillAll(ctx context.Context, w *Writer, r io.Reader) error {
	dec := recordio.NewReader(r)
	for rec, ok := dec.Next(); ok; rec, ok = dec.Next() {
		if err := w.Write(ctx, rec); err != nil {
			return err
		}
	}
	if err := dec.Err(); err != nil {
		return fmt.Errorf("spill: failed to read input: %w", err)
	}
	return w.Close(ctx)
}
