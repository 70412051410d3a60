// Package merge implements the second phase of the sort: the sorted
// partition files spilled by the first phase are merged through a priority
// queue into one fully ordered output, then deleted.
package merge

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bartossh/sorter/monitoring"
	"github.com/bartossh/sorter/partition"
	"github.com/bartossh/sorter/priority"
	"github.com/bartossh/sorter/recordio"
	"github.com/bartossh/sorter/storage"
)

// frontier is the next unconsumed record of one partition stream. The
// source index identifies which reader to advance after a pop; it is not a
// semantic ordering, only a deterministic tie-break between equal values.
type frontier struct {
	value  partition.Record
	source int
}

func lessFrontier(a, b frontier) bool {
	if a.value != b.value {
		return a.value < b.value
	}
	return a.source < b.source
}

// Merger combines sorted partitions into a single output file and removes
// them once fully consumed.
type Merger struct {
	storage storage.Storage
	logger  *monitoring.Logger
}

func New(st storage.Storage, logger *monitoring.Logger) *Merger {
	return &Merger{
		storage: st,
		logger:  logger,
	}
}

// Merge merges partitions 0..n under dir into outputPath and deletes them.
// With n == 0 it creates an empty output and returns immediately. It
// returns the number of records written.
func (m *Merger) Merge(ctx context.Context, dir string, n int, outputPath string) (merged uint64, err error) {
	m.sweepStale(ctx, dir, n)

	out, err := m.storage.Create(ctx, outputPath)
	if err != nil {
		return 0, fmt.Errorf("merge: failed to create output %s: %w", outputPath, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("merge: failed to close output %s: %w", outputPath, cerr)
		}
	}()

	if n == 0 {
		return 0, nil
	}

	readers := make([]*streamReader, 0, n)
	defer func() {
		for _, r := range readers {
			if cerr := r.close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}()

	for i := range n {
		r, err := m.openPartition(ctx, dir, i)
		if err != nil {
			return 0, err
		}
		readers = append(readers, r)
	}

	queue := priority.NewQueue(lessFrontier)
	for i, r := range readers {
		rec, ok, err := r.next()
		if err != nil {
			return 0, err
		}
		if ok {
			queue.Push(frontier{value: rec, source: i})
		}
	}

	enc := recordio.NewWriter(out)
	for {
		head, ok := queue.Pop()
		if !ok {
			break
		}
		if err := enc.Write(head.value); err != nil {
			return merged, err
		}
		merged++

		rec, ok, err := readers[head.source].next()
		if err != nil {
			return merged, err
		}
		if ok {
			queue.Push(frontier{value: rec, source: head.source})
		}
	}
	if err := enc.Flush(); err != nil {
		return merged, err
	}

	for _, r := range readers {
		if err := r.close(); err != nil {
			return merged, err
		}
	}
	readers = nil

	for i := range n {
		path := partition.Path(dir, i)
		if err := m.storage.Remove(ctx, path); err != nil {
			return merged, fmt.Errorf("merge: failed to delete partition %s: %w", path, err)
		}
	}

	return merged, nil
}

func (m *Merger) openPartition(ctx context.Context, dir string, index int) (*streamReader, error) {
	path := partition.Path(dir, index)
	file, err := m.storage.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("merge: failed to open partition %s: %w", path, err)
	}
	return &streamReader{path: path, rc: file, dec: recordio.NewReader(file)}, nil
}

// sweepStale removes partition files with an index at or beyond the current
// run's count, stragglers from a previously aborted run. Best effort only:
// failures are logged and never abort the merge.
func (m *Merger) sweepStale(ctx context.Context, dir string, n int) {
	files, err := m.storage.List(ctx, dir)
	if err != nil {
		m.logger.Log(ctx, monitoring.WARN, "sweep_failed", "failed to list stale partitions", map[string]any{
			"dir":   dir,
			"error": err.Error(),
		})
		return
	}

	for _, name := range files {
		index, ok := partition.Index(name)
		if !ok || index < n {
			continue
		}
		path := partition.Path(dir, index)
		if err := m.storage.Remove(ctx, path); err != nil {
			m.logger.Log(ctx, monitoring.WARN, "sweep_failed", "failed to remove stale partition", map[string]any{
				"path":  path,
				"error": err.Error(),
			})
		}
	}
}

// streamReader owns one open partition stream. An unparsable line exhausts
// the stream — the spiller only writes valid lines, so that path fires on
// corrupted partitions only. A read failure is fatal, never exhaustion.
type streamReader struct {
	path   string
	rc     io.ReadCloser
	dec    *recordio.Reader
	closed bool
}

func (r *streamReader) next() (partition.Record, bool, error) {
	rec, ok := r.dec.Next()
	if ok {
		return rec, true, nil
	}
	if err := r.dec.Err(); err != nil && !errors.Is(err, partition.ErrMalformedRecord) {
		return 0, false, fmt.Errorf("merge: failed to read partition %s: %w", r.path, err)
	}
	return 0, false, nil
}

func (r *streamReader) close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.rc.Close(); err != nil {
		return fmt.Errorf("merge: failed to close partition reader: %w", err)
	}
	return nil
}
