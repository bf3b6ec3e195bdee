package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/syncfan/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("syncfan", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
syncfan - Fans a directory synchronization out into parallel rsync jobs.

Usage:
  syncfan [options] [CONFIG_PATH]

Arguments:
  CONFIG_PATH
    Path to a .yaml/.yml file, a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the configuration file or directory.")
	cFlag := flagSet.String("c", "", "Path to the configuration file or directory (shorthand).")
	workersFlag := flagSet.Int("workers", 0, "Override the number of concurrent workers. 0 keeps the configured value.")
	wFlag := flagSet.Int("w", 0, "Override the number of concurrent workers (shorthand).")
	var allowed intList
	flagSet.Var(&allowed, "allowed-returncodes", "Override the allowed rsync exit codes, comma separated. May be repeated.")
	flagSet.Var(&allowed, "a", "Override the allowed rsync exit codes (shorthand).")
	noopFlag := flagSet.Bool("noop", false, "Explode and register jobs, then exit without running them.")
	nFlag := flagSet.Bool("n", false, "Noop mode (shorthand).")
	debugFlag := flagSet.Bool("debug", false, "Shorthand for -log-level=debug.")
	dFlag := flagSet.Bool("d", false, "Debug logging (shorthand).")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logFileFlag := flagSet.String("logfile", "", "Append logs to this file instead of stderr.")
	lFlag := flagSet.String("l", "", "Log file (shorthand).")
	rsyncPathFlag := flagSet.String("rsync-path", "", "Path to rsync. Defaults to rsync found in PATH.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health and status server. 0 is disabled.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := firstNonEmpty(*configFlag, *cFlag)
	if path == "" && flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(flagSet.Args()[1:], " "))}
	}
	slog.Debug("Config path determined.", "path", path)

	if path == "" {
		flagSet.Usage()
		return nil, false, &ExitError{Code: 2, Message: "a configuration path is required"}
	}

	workers := *workersFlag
	if workers == 0 {
		workers = *wFlag
	}
	if workers < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid workers: must be above 0"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	if *debugFlag || *dFlag {
		logLevel = "debug"
	}
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ConfigPath:         path,
		Workers:            workers,
		AllowedReturnCodes: []int(allowed),
		Noop:               *noopFlag || *nFlag,
		RsyncPath:          *rsyncPathFlag,
		LogFormat:          logFormat,
		LogLevel:           logLevel,
		LogFile:            firstNonEmpty(*logFileFlag, *lFlag),
		HealthcheckPort:    *healthPortFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
