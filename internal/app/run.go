package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/specialistvlad/syncfan/internal/config"
	"github.com/specialistvlad/syncfan/internal/ctxlog"
	"github.com/specialistvlad/syncfan/internal/executor"
	"github.com/specialistvlad/syncfan/internal/explode"
	"github.com/specialistvlad/syncfan/internal/hcl_adapter"
	"github.com/specialistvlad/syncfan/internal/job"
	"github.com/specialistvlad/syncfan/internal/report"
	"github.com/specialistvlad/syncfan/internal/yaml_adapter"
)

// defaultTool is looked up in PATH when no tool path is configured.
const defaultTool = "rsync"

// loaderFor picks the configuration loader from the path's extension.
func loaderFor(path string) config.Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml_adapter.NewLoader()
	default:
		return hcl_adapter.NewLoader()
	}
}

// toolPath returns the configured tool, or the default one found in PATH.
func (a *App) toolPath() (string, error) {
	if a.config.RsyncPath != "" {
		return a.config.RsyncPath, nil
	}
	path, err := exec.LookPath(defaultTool)
	if err != nil {
		return "", fmt.Errorf("failed to find %s: %w", defaultTool, err)
	}
	return path, nil
}

// Run executes one full run. A non-nil error is a fatal condition that
// stopped the run before or during dispatch; job failures are reported in the
// returned report instead. In noop mode the report is empty.
func (a *App) Run(ctx context.Context) (*report.Report, error) {
	runStart := time.Now()
	runID := rand.Uint32()
	a.status.runID.Store(runID)

	ctx = ctxlog.WithRunID(ctxlog.WithLogger(ctx, a.logger), runID)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Run method started.")
	logger.Info(fmt.Sprintf("starting run %d", runID))

	a.healthCheckServer(ctx)
	defer a.closeHealthCheckServer(ctx)
	defer a.status.setPhase(phaseDone)

	a.status.setPhase(phaseLoading)
	model, err := loaderFor(a.config.ConfigPath).Load(ctx, a.config.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.", "jobs", len(model.Jobs))

	workers := model.Workers
	if a.config.Workers > 0 {
		logger.Debug("using given workers instead of config")
		workers = a.config.Workers
	}
	logger.Debug(fmt.Sprintf("amount of workers is %d", workers))

	allowed := model.AllowedReturnCodes
	if len(a.config.AllowedReturnCodes) > 0 {
		logger.Debug("using given allowed return codes instead of config")
		allowed = a.config.AllowedReturnCodes
	}

	tool, err := a.toolPath()
	if err != nil {
		return nil, err
	}
	logger.Debug("Tool located.", "path", tool)

	a.status.setPhase(phaseRegister)
	specs, err := explode.All(ctx, model.Jobs)
	if err != nil {
		return nil, err
	}

	registry := job.NewRegistry(tool)
	if err := registry.Register(ctx, specs...); err != nil {
		return nil, fmt.Errorf("failed to register jobs: %w", err)
	}
	a.status.jobs.Store(int64(registry.Len()))
	logger.Info("Jobs registered.", "count", registry.Len())

	if a.config.Noop {
		logger.Info("noop mode, exiting without running jobs")
		return &report.Report{}, nil
	}

	a.status.setPhase(phasePreparing)
	if err := registry.PrepareAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare destinations: %w", err)
	}

	jobs := registry.Jobs()
	pool, err := executor.NewPool(executor.Config{Workers: workers, QueueSize: len(jobs)}, a.runner)
	if err != nil {
		return nil, err
	}
	a.status.pool.Store(pool)

	a.status.setPhase(phaseRunning)
	logger.Info("Starting concurrent execution...", "workers", workers, "jobs", len(jobs))
	handles, err := pool.Dispatch(ctx, jobs)
	if err != nil {
		return nil, err
	}
	pool.Wait()
	logger.Info("Execution finished.")

	a.status.setPhase(phaseReporting)
	entries := make([]report.Entry, 0, len(jobs))
	for _, j := range jobs {
		entries = append(entries, report.Entry{Job: j, Handle: handles[j.ID]})
	}
	agg := &report.Aggregator{Allowed: allowed}
	rep := agg.Aggregate(ctx, runStart, entries)

	logger.Debug("App.Run method finished.")
	return rep, nil
}
