package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/syncfan/internal/cli"
	"github.com/stretchr/testify/require"
)

// writeTool writes a stand-in for rsync that exits with code.
func writeTool(t *testing.T, code int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rsync")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("#!/bin/sh\nexit %d\n", code)), 0o755))
	return path
}

func writeConfig(t *testing.T) string {
	t.Helper()
	body := fmt.Sprintf("workers = 1\njob \"only\" {\n  source = %q\n  destination = %q\n}\n", t.TempDir(), t.TempDir())
	path := filepath.Join(t.TempDir(), "backup.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun_ShouldExit(t *testing.T) {
	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"--this-is-not-a-valid-flag"})

	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_ConfigError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.hcl")
	require.NoError(t, os.WriteFile(path, []byte("job \"x\" {\n"), 0o600))
	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"-rsync-path=rsync", path})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse")
	var exitErr *cli.ExitError
	require.False(t, errors.As(err, &exitErr), "fatal errors map to exit code 1 in main")
}

func TestRun_ExitCodes(t *testing.T) {
	t.Run("all jobs succeed", func(t *testing.T) {
		out := &bytes.Buffer{}
		err := run(context.Background(), out, []string{"-rsync-path", writeTool(t, 0), writeConfig(t)})
		require.NoError(t, err)
		require.Contains(t, out.String(), "successful: 1 failed: 0")
	})

	t.Run("job fails", func(t *testing.T) {
		out := &bytes.Buffer{}
		err := run(context.Background(), out, []string{"-rsync-path", writeTool(t, 23), writeConfig(t)})
		var exitErr *cli.ExitError
		require.True(t, errors.As(err, &exitErr))
		require.Equal(t, 1, exitErr.Code)
	})

	t.Run("allowed return code flag", func(t *testing.T) {
		out := &bytes.Buffer{}
		err := run(context.Background(), out, []string{"-a", "0,23", "-rsync-path", writeTool(t, 23), writeConfig(t)})
		require.NoError(t, err)
	})
}
