// Package report classifies the outcome of every job of a run and summarizes
// the run.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/specialistvlad/syncfan/internal/ctxlog"
	"github.com/specialistvlad/syncfan/internal/executor"
	"github.com/specialistvlad/syncfan/internal/job"
)

// Outcome is the classification of a single job.
type Outcome int

const (
	// Succeeded means the tool exited with an allowed code.
	Succeeded Outcome = iota
	// FailedExitCode means the tool ran to completion with a code that is not allowed.
	FailedExitCode
	// FailedError means the tool could not be run to completion.
	FailedError
	// NeverCompleted means the job's handle never settled.
	NeverCompleted
)

// String returns the outcome's reason text.
func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case FailedExitCode:
		return "exit code not allowed"
	case FailedError:
		return "execution error"
	case NeverCompleted:
		return "never completed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Failed reports whether the outcome counts as a failure.
func (o Outcome) Failed() bool {
	return o != Succeeded
}

// Handle is the read side of an executor.Handle.
type Handle interface {
	Start() time.Time
	Poll() (executor.Result, bool)
}

// Entry pairs a registered job with its dispatch handle.
type Entry struct {
	Job    *job.Job
	Handle Handle
}

// Record is the per-job line of a run report.
type Record struct {
	ID          string        `json:"id"`
	Name        string        `json:"name,omitempty"`
	Source      string        `json:"source"`
	Destination string        `json:"destination"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Elapsed     time.Duration `json:"elapsed"`
	Outcome     Outcome       `json:"outcome"`
	ExitCode    int           `json:"exit_code"`
	Error       string        `json:"error,omitempty"`
	RunTime     time.Duration `json:"run_time"`
}

// Summary is the run-level part of a report.
type Summary struct {
	TotalJobs       int           `json:"total_jobs"`
	Succeeded       int           `json:"succeeded"`
	Failed          int           `json:"failed"`
	TotalElapsed    time.Duration `json:"total_elapsed"`
	ProcessExitCode int           `json:"process_exit_code"`
}

// Report is the outcome of a whole run.
type Report struct {
	Records []Record `json:"records"`
	Summary Summary  `json:"summary"`
}

// DefaultAllowed is used when neither the job nor the run sets allowed exit codes.
var DefaultAllowed = []int{0}

// Aggregator classifies job outcomes.
type Aggregator struct {
	// Allowed is the run-level set of allowed exit codes.
	Allowed []int
	// Now returns the current time. It defaults to time.Now.
	Now func() time.Time
}

func (a *Aggregator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// allowedFor returns the allowed exit codes of j.
func (a *Aggregator) allowedFor(j *job.Job) []int {
	switch {
	case len(j.AllowedReturnCodes) > 0:
		return j.AllowedReturnCodes
	case len(a.Allowed) > 0:
		return a.Allowed
	default:
		return DefaultAllowed
	}
}

// Aggregate builds the report for entries, which must be in registration
// order and should all have settled. End timestamps are taken for all jobs
// in one pass before any classification.
func (a *Aggregator) Aggregate(ctx context.Context, runStart time.Time, entries []Entry) *Report {
	logger := ctxlog.FromContext(ctx)

	ends := make([]time.Time, len(entries))
	for i := range entries {
		ends[i] = a.now()
	}

	rep := &Report{Records: make([]Record, 0, len(entries))}
	for i, e := range entries {
		rec := Record{
			ID:          e.Job.ID,
			Name:        e.Job.Name,
			Source:      e.Job.Source,
			Destination: e.Job.Destination,
			Start:       e.Handle.Start(),
			End:         ends[i],
		}
		rec.Elapsed = rec.End.Sub(rec.Start)
		mins, secs := minsSecs(rec.Elapsed)

		res, settled := e.Handle.Poll()
		switch {
		case !settled:
			rec.Outcome = NeverCompleted
			logger.Error(fmt.Sprintf("job %s was never completed due to unknown error (%d mins or %d secs)", rec.ID, mins, secs))
		case res.Err != nil:
			rec.Outcome = FailedError
			rec.ExitCode = res.ExitCode
			rec.Error = res.Err.Error()
			rec.RunTime = res.Duration
			logger.Error(fmt.Sprintf("job %s was not completed due to error: %s (%d mins or %d secs)", rec.ID, rec.Error, mins, secs))
		default:
			rec.ExitCode = res.ExitCode
			rec.RunTime = res.Duration
			level, verb := slog.LevelInfo, "was successful"
			rec.Outcome = Succeeded
			if !slices.Contains(a.allowedFor(e.Job), res.ExitCode) {
				rec.Outcome = FailedExitCode
				level, verb = slog.LevelError, "failed"
			}
			logger.Log(ctx, level, fmt.Sprintf("job %s %s with return code: %d (%d mins or %d secs)", rec.ID, verb, res.ExitCode, mins, secs))
		}

		if rec.Outcome.Failed() {
			rep.Summary.Failed++
		} else {
			rep.Summary.Succeeded++
		}
		rep.Records = append(rep.Records, rec)
	}

	rep.Summary.TotalJobs = len(entries)
	rep.Summary.TotalElapsed = a.now().Sub(runStart)
	if rep.Summary.Failed > 0 {
		rep.Summary.ProcessExitCode = 1
	}

	totalMins, totalSecs := minsSecs(rep.Summary.TotalElapsed)
	logger.Info(fmt.Sprintf("total job: %d successful: %d failed: %d", rep.Summary.TotalJobs, rep.Summary.Succeeded, rep.Summary.Failed))
	logger.Info(fmt.Sprintf("run exited with return value: %d (%d mins or %d secs)", rep.Summary.ProcessExitCode, totalMins, totalSecs))
	return rep
}

// minsSecs renders d as whole minutes and whole seconds, both of the full duration.
func minsSecs(d time.Duration) (int, int) {
	return int(d / time.Minute), int(d / time.Second)
}
