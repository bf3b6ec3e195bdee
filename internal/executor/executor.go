// Package executor runs prepared jobs on a fixed-size pool of workers. Each
// worker invokes the synchronization tool once per job and settles the job's
// Handle with the tool's exit code or execution error.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Runner invokes the synchronization tool for a single job. It returns the
// tool's exit code, or an error when the tool could not be run to completion.
type Runner interface {
	Run(ctx context.Context, argv []string) (int, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, argv []string) (int, error)

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, argv []string) (int, error) {
	return f(ctx, argv)
}

// CommandRunner runs the tool as a child process. Stdout is discarded and
// stderr is forwarded to Stderr.
type CommandRunner struct {
	Stderr io.Writer
}

// NewCommandRunner creates a CommandRunner that forwards stderr to the
// process's own stderr.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{Stderr: os.Stderr}
}

// Run starts argv[0] and waits for it to exit. There is no timeout: a tool
// that never exits holds its worker forever.
func (r *CommandRunner) Run(ctx context.Context, argv []string) (int, error) {
	if len(argv) == 0 {
		return -1, errors.New("empty command")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = nil
	cmd.Stderr = r.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("command execution failed: %w", err)
}
