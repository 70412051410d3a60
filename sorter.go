// Package sorter sorts numeric datasets too large to fit in memory. The
// input is a file of newline-delimited unsigned 64-bit integers; records
// are spilled to sorted partition files in fixed-size batches, then the
// partitions are merged into one fully ordered output file and deleted.
package sorter

import (
	"context"
	"fmt"
	"time"

	"github.com/bartossh/sorter/merge"
	"github.com/bartossh/sorter/monitoring"
	"github.com/bartossh/sorter/partition"
	"github.com/bartossh/sorter/spill"
	"github.com/bartossh/sorter/storage"
)

// Sorter runs the two sort phases back to back. The phases share nothing
// but the partition count and the deterministic partition naming.
type Sorter struct {
	batchSize int
	storage   storage.Storage
	logger    *monitoring.Logger
	merger    *merge.Merger
}

// New creates a Sorter with the given options.
func New(opts ...Option) (*Sorter, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.batchSize <= 0 {
		return nil, spill.ErrInvalidBatchSize
	}

	return &Sorter{
		batchSize: o.batchSize,
		storage:   o.storage,
		logger:    o.logger,
		merger:    merge.New(o.storage, o.logger),
	}, nil
}

// Sort reads inputPath and writes its records in ascending order to
// outputPath. Partitions are written next to the output file and are all
// removed again on success.
func (s *Sorter) Sort(ctx context.Context, inputPath, outputPath string) error {
	input, err := s.storage.Open(ctx, inputPath)
	if err != nil {
		return fmt.Errorf("sorter: failed to open input %s: %w", inputPath, err)
	}

	dir := partition.Dir(outputPath)
	stats := monitoring.Stats{}

	start := time.Now()
	w, err := spill.NewWriter(s.storage, dir, s.batchSize)
	if err != nil {
		_ = input.Close()
		return err
	}
	if err := spill.SpillAll(ctx, w, input); err != nil {
		_ = input.Close()
		return err
	}
	if err := input.Close(); err != nil {
		return fmt.Errorf("sorter: failed to close input %s: %w", inputPath, err)
	}
	stats.Records = w.Records()
	stats.Partitions = w.Partitions()
	stats.SpillDuration = time.Since(start)

	start = time.Now()
	merged, err := s.merger.Merge(ctx, dir, w.Partitions(), outputPath)
	if err != nil {
		return err
	}
	stats.MergeDuration = time.Since(start)

	if merged != stats.Records {
		return fmt.Errorf("sorter: merged %d records, expected %d", merged, stats.Records)
	}

	s.logger.Log(ctx, monitoring.INFO, "sort_complete", "dataset sorted", stats.Details())
	return nil
}
