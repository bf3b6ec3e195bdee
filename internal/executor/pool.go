package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/specialistvlad/syncfan/internal/ctxlog"
	"github.com/specialistvlad/syncfan/internal/job"
)

// ErrPoolClosed is returned when submitting to a pool that no longer accepts work.
var ErrPoolClosed = errors.New("pool is closed")

// Config represents pool configuration.
type Config struct {
	Workers   int // number of concurrent workers
	QueueSize int // jobs that can wait for a worker before Submit blocks
}

// Validate validates configuration.
func (cfg Config) Validate() error {
	if cfg.Workers < 1 {
		return errors.New("workers must be greater than 0")
	}
	if cfg.QueueSize < 0 {
		return errors.New("queue size must be greater than or equal to 0")
	}
	return nil
}

type task struct {
	job    *job.Job
	handle *Handle
}

// Pool is a fixed-size pool of workers. Jobs on one worker run strictly one
// after another; there is no ordering between workers.
type Pool struct {
	workers int
	runner  Runner
	queue   chan task
	wg      sync.WaitGroup
	metrics Metrics

	mu      sync.Mutex
	started bool
	closed  bool
}

// NewPool creates a pool. Workers are not started until Start or Dispatch.
func NewPool(cfg Config, runner Runner) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if runner == nil {
		return nil, errors.New("runner is required")
	}
	return &Pool{
		workers: cfg.Workers,
		runner:  runner,
		queue:   make(chan task, cfg.QueueSize),
	}, nil
}

// Start launches the workers. Calls after the first are no-ops. Cancelling
// ctx makes workers skip queued jobs they have not started; running jobs are
// never interrupted.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	ctxlog.FromContext(ctx).Debug("Starting worker pool.", "workers", p.workers)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Submit queues a job and returns its handle. It blocks only while the queue
// is full.
func (p *Pool) Submit(j *job.Job) (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}

	h := NewHandle(j.ID)
	p.metrics.PendingJobs.Add(1)
	p.queue <- task{job: j, handle: h}
	return h, nil
}

// Close stops the pool from accepting new jobs. Queued jobs still run.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
}

// Wait blocks until every worker has drained the queue and exited. It must
// be called after Close.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Dispatch starts the pool if needed, submits every job, and closes the pool
// for new work. The returned handles are keyed by job id.
func (p *Pool) Dispatch(ctx context.Context, jobs []*job.Job) (map[string]*Handle, error) {
	logger := ctxlog.FromContext(ctx)
	p.Start(ctx)
	defer p.Close()

	handles := make(map[string]*Handle, len(jobs))
	for _, j := range jobs {
		h, err := p.Submit(j)
		if err != nil {
			return handles, fmt.Errorf("failed to dispatch job %s: %w", j.ID, err)
		}
		handles[j.ID] = h
		logger.Debug("Job dispatched.", "job_id", j.ID)
	}
	logger.Info("All jobs dispatched.", "count", len(handles))
	return handles, nil
}

// Metrics returns the current pool counters.
func (p *Pool) Metrics() Snapshot {
	return p.metrics.snapshot()
}
