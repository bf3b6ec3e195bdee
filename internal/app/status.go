package app

import (
	"sync/atomic"

	"github.com/specialistvlad/syncfan/internal/executor"
)

// Run phases reported on the status endpoint.
const (
	phaseStarting  = "starting"
	phaseLoading   = "loading"
	phaseRegister  = "registering"
	phasePreparing = "preparing"
	phaseRunning   = "running"
	phaseReporting = "reporting"
	phaseDone      = "done"
)

// status is the live view of a run shared with the status endpoint.
type status struct {
	runID atomic.Uint32
	phase atomic.Value // string
	jobs  atomic.Int64
	pool  atomic.Pointer[executor.Pool]
}

func newStatus() *status {
	s := &status{}
	s.phase.Store(phaseStarting)
	return s
}

func (s *status) setPhase(phase string) {
	s.phase.Store(phase)
}

// statusView is the JSON body of GET /status.
type statusView struct {
	RunID         uint32 `json:"run_id"`
	Phase         string `json:"phase"`
	Jobs          int64  `json:"jobs"`
	ActiveWorkers int64  `json:"active_workers"`
	Pending       int64  `json:"pending"`
	Completed     int64  `json:"completed"`
	Failed        int64  `json:"failed"`
}

func (s *status) view() statusView {
	v := statusView{
		RunID: s.runID.Load(),
		Phase: s.phase.Load().(string),
		Jobs:  s.jobs.Load(),
	}
	if p := s.pool.Load(); p != nil {
		m := p.Metrics()
		v.ActiveWorkers = m.ActiveWorkers
		v.Pending = m.PendingJobs
		v.Completed = m.CompletedJobs
		v.Failed = m.FailedJobs
	}
	return v
}
