package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/syncfan/internal/app"
	"github.com/specialistvlad/syncfan/internal/cli"
)

// main is the entrypoint for the syncfan application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stderr, os.Args[1:]); err != nil {
		stop()
		if exitErr, ok := err.(*cli.ExitError); ok {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. A run with failed jobs is reported as an ExitError without message.
func run(ctx context.Context, outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	syncApp, err := app.NewApp(outW, appConfig)
	if err != nil {
		return err
	}
	defer syncApp.Close()

	rep, err := syncApp.Run(ctx)
	if err != nil {
		return err
	}
	if rep.Summary.ProcessExitCode != 0 {
		return &cli.ExitError{Code: rep.Summary.ProcessExitCode}
	}
	return nil
}
