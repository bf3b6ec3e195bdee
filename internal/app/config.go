package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // .hcl file or directory, or a .yaml/.yml file

	// Workers overrides the configured worker count when above 0.
	Workers int
	// AllowedReturnCodes overrides the configured run-level allowed exit codes when set.
	AllowedReturnCodes []int
	// Noop stops the run after jobs are registered.
	Noop bool
	// RsyncPath is the tool to invoke. Empty means rsync looked up in PATH.
	RsyncPath string

	LogFormat       string
	LogLevel        string
	LogFile         string
	HealthcheckPort int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must be above 0, got %d", cfg.Workers)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}

	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}

	return &cfg, nil
}
