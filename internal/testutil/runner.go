package testutil

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

// MockRsync is a shared runner for integration tests. It records every
// invocation keyed by the destination's base name, sleeps for a fixed time
// and exits with the code configured for that name (0 otherwise).
type MockRsync struct {
	ExecutionTimes map[string]*ExecutionRecord
	ExitCodes      map[string]int

	mu             sync.Mutex
	running        int
	maxRunning     int
	sleepDuration  time.Duration
	completionChan chan<- string
}

// NewMockRsync creates a new mock runner. completionChan may be nil.
func NewMockRsync(completionChan chan<- string, sleep time.Duration) *MockRsync {
	return &MockRsync{
		ExecutionTimes: make(map[string]*ExecutionRecord),
		ExitCodes:      make(map[string]int),
		sleepDuration:  sleep,
		completionChan: completionChan,
	}
}

// Run implements executor.Runner.
func (m *MockRsync) Run(_ context.Context, argv []string) (int, error) {
	name := filepath.Base(argv[len(argv)-1])

	m.mu.Lock()
	m.running++
	m.maxRunning = max(m.maxRunning, m.running)
	m.mu.Unlock()

	startTime := time.Now()
	time.Sleep(m.sleepDuration)
	endTime := time.Now()

	m.mu.Lock()
	m.running--
	m.ExecutionTimes[name] = &ExecutionRecord{Start: startTime, End: endTime, Argv: slices.Clone(argv)}
	code := m.ExitCodes[name]
	m.mu.Unlock()

	if m.completionChan != nil {
		m.completionChan <- name
	}
	return code, nil
}

// MaxConcurrent returns the highest number of invocations seen running at once.
func (m *MockRsync) MaxConcurrent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxRunning
}

// Record returns the invocation for the destination base name, if any.
func (m *MockRsync) Record(name string) (*ExecutionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.ExecutionTimes[name]
	return r, ok
}
