package monitoring

import "time"

// Stats summarizes one sort run.
type Stats struct {
	Records       uint64
	Partitions    int
	SpillDuration time.Duration
	MergeDuration time.Duration
}

// Details renders the stats as structured log details.
func (s Stats) Details() map[string]any {
	return map[string]any{
		"records":           s.Records,
		"partitions":        s.Partitions,
		"spill_duration_ms": s.SpillDuration.Milliseconds(),
		"merge_duration_ms": s.MergeDuration.Milliseconds(),
	}
}
