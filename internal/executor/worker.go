package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/syncfan/internal/ctxlog"
)

// worker is the core processing loop for a single concurrent worker.
func (p *Pool) worker(ctx context.Context, workerID int) {
	defer p.wg.Done()
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for t := range p.queue {
		workerLogger := logger.With("workerID", workerID, "job_id", t.job.ID)
		p.metrics.PendingJobs.Add(-1)

		if ctx.Err() != nil {
			workerLogger.Warn("Context canceled, skipping job.")
			p.metrics.SkippedJobs.Add(1)
			continue
		}

		workerLogger.Debug("Worker picked up job for execution.", "source", t.job.Source, "destination", t.job.Destination)
		res := p.run(ctx, t)
		if res.Err != nil {
			workerLogger.Error("Job execution failed.", "error", res.Err)
		} else {
			workerLogger.Debug("Job execution finished.", "exit_code", res.ExitCode, "duration", res.Duration)
		}
		t.handle.settle(res)
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// run invokes the tool for one job. A panicking runner is turned into an
// execution error so it never takes the worker down.
func (p *Pool) run(ctx context.Context, t task) (res Result) {
	start := time.Now()
	p.metrics.ActiveWorkers.Add(1)

	defer func() {
		if r := recover(); r != nil {
			res = Result{ExitCode: -1, Err: fmt.Errorf("worker panicked: %v", r)}
		}
		res.Duration = time.Since(start)

		p.metrics.ActiveWorkers.Add(-1)
		p.metrics.ProcessingTime.Add(res.Duration.Nanoseconds())
		if res.Err != nil {
			p.metrics.FailedJobs.Add(1)
		} else {
			p.metrics.CompletedJobs.Add(1)
		}
	}()

	code, err := p.runner.Run(ctx, t.job.Command)
	return Result{ExitCode: code, Err: err}
}
