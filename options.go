package sorter

import (
	"os"

	"github.com/bartossh/sorter/monitoring"
	"github.com/bartossh/sorter/storage"
	"github.com/bartossh/sorter/storage/local"
)

// DefaultBatchSize is the number of records held in memory per batch when
// no explicit batch size is configured.
const DefaultBatchSize = 1024

// options defines all configuration options for the sorter.
type options struct {
	batchSize int
	storage   storage.Storage
	logger    *monitoring.Logger
}

// Option is a function that configures the sorter options.
type Option func(*options)

// WithBatchSize sets how many records each spilled partition holds.
func WithBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithStorage sets the backend the partitions and output are written to.
func WithStorage(s storage.Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *monitoring.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		batchSize: DefaultBatchSize,
		storage:   local.New(),
		logger:    monitoring.NewLogger("sorter", os.Stderr),
	}
}
