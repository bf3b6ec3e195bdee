package executor

import (
	"sync"
	"time"
)

// Result is the terminal state of a dispatched job.
type Result struct {
	// ExitCode is the tool's exit status. It is meaningful only when Err is nil.
	ExitCode int
	// Err is set when the tool could not be run to completion.
	Err error
	// Duration is how long the worker spent running the tool.
	Duration time.Duration
}

// Handle tracks a single dispatched job.
type Handle struct {
	JobID string

	start  time.Time
	done   chan struct{}
	once   sync.Once
	result Result
}

// NewHandle creates an unsettled handle whose start time is now.
func NewHandle(jobID string) *Handle {
	return &Handle{
		JobID: jobID,
		start: time.Now(),
		done:  make(chan struct{}),
	}
}

// Start returns when the job was submitted.
func (h *Handle) Start() time.Time {
	return h.start
}

// Done returns a channel that is closed once the job has settled.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Poll returns the job's result without blocking. The boolean is false while
// the job has not settled.
func (h *Handle) Poll() (Result, bool) {
	select {
	case <-h.done:
		return h.result, true
	default:
		return Result{}, false
	}
}

// settle records the result. Only the first call has any effect.
func (h *Handle) settle(r Result) {
	h.once.Do(func() {
		h.result = r
		close(h.done)
	})
}
