package app

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/specialistvlad/syncfan/internal/executor"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logFile    *os.File
	logger     *slog.Logger
	config     *Config
	runner     executor.Runner
	status     *status
	httpServer *http.Server
}

// Option customizes an App.
type Option func(*App)

// WithRunner replaces the runner that executes tool commands.
func WithRunner(r executor.Runner) Option {
	return func(a *App) {
		a.runner = r
	}
}

// NewApp is the constructor for the main application. Logs go to outW unless
// the config names a log file, which is opened for appending.
func NewApp(outW io.Writer, cfg *Config, opts ...Option) (*App, error) {
	a := &App{
		outW:   outW,
		config: cfg,
		status: newStatus(),
	}

	logW := outW
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		logW = f
	}
	a.logger = newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	a.logger.Debug("Logger configured successfully.")

	for _, opt := range opts {
		opt(a)
	}
	if a.runner == nil {
		a.runner = executor.NewCommandRunner()
	}
	return a, nil
}

// Close releases the log file, if any.
func (a *App) Close() error {
	if a.logFile == nil {
		return nil
	}
	err := a.logFile.Close()
	a.logFile = nil
	return err
}
