package executor

import "sync/atomic"

// Metrics tracks the pool's operational counters. CompletedJobs counts jobs
// whose tool exited with any code; FailedJobs counts execution errors.
type Metrics struct {
	ActiveWorkers  atomic.Int64
	PendingJobs    atomic.Int64
	CompletedJobs  atomic.Int64
	FailedJobs     atomic.Int64
	SkippedJobs    atomic.Int64
	ProcessingTime atomic.Int64 // nanoseconds
}

// Snapshot is a point-in-time copy of Metrics.
type Snapshot struct {
	ActiveWorkers  int64 `json:"active_workers"`
	PendingJobs    int64 `json:"pending"`
	CompletedJobs  int64 `json:"completed"`
	FailedJobs     int64 `json:"failed"`
	SkippedJobs    int64 `json:"skipped"`
	ProcessingTime int64 `json:"processing_time_ns"`
}

func (m *Metrics) snapshot() Snapshot {
	return Snapshot{
		ActiveWorkers:  m.ActiveWorkers.Load(),
		PendingJobs:    m.PendingJobs.Load(),
		CompletedJobs:  m.CompletedJobs.Load(),
		FailedJobs:     m.FailedJobs.Load(),
		SkippedJobs:    m.SkippedJobs.Load(),
		ProcessingTime: m.ProcessingTime.Load(),
	}
}
