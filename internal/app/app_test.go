package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/specialistvlad/syncfan/internal/executor"
	"github.com/specialistvlad/syncfan/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRsync writes a shell script that appends its arguments to a log and
// exits 23 when the destination ends with "bad".
func fakeRsync(t *testing.T) (script, callLog string) {
	t.Helper()
	dir := t.TempDir()
	script = filepath.Join(dir, "rsync")
	callLog = filepath.Join(dir, "calls.log")

	body := fmt.Sprintf(`#!/bin/sh
for last; do :; done
echo "$@" >> %q
case "$last" in
  *bad) exit 23 ;;
esac
exit 0
`, callLog)
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))
	return script, callLog
}

// recordingRunner collects every command it is asked to run.
type recordingRunner struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recordingRunner) Run(_ context.Context, argv []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, slices.Clone(argv))
	return 0, nil
}

func (r *recordingRunner) sortedCalls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := slices.Clone(r.calls)
	slices.SortFunc(out, func(a, b []string) int {
		return strings.Compare(strings.Join(a, " "), strings.Join(b, " "))
	})
	return out
}

func mkdirs(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.MkdirAll(filepath.Join(root, n), 0o755))
	}
}

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun_ThreeJobsOneFailure(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	mkdirs(t, src, "a", "b", "bad")
	mkdirs(t, dst, "a", "b", "bad")
	script, callLog := fakeRsync(t)

	var hcl strings.Builder
	hcl.WriteString("workers = 2\n")
	for _, n := range []string{"a", "b", "bad"} {
		fmt.Fprintf(&hcl, "job %q {\n  source = %q\n  destination = %q\n  options = [\"-a\"]\n}\n",
			n, filepath.Join(src, n), filepath.Join(dst, n))
	}
	cfgPath := writeConfig(t, "backup.hcl", hcl.String())

	a, logs := SetupAppTest(t, &Config{ConfigPath: cfgPath, RsyncPath: script})
	rep, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, report.Summary{TotalJobs: 3, Succeeded: 2, Failed: 1, TotalElapsed: rep.Summary.TotalElapsed, ProcessExitCode: 1}, rep.Summary)
	require.Len(t, rep.Records, 3)
	assert.Equal(t, filepath.Join(dst, "a"), rep.Records[0].Destination)
	assert.Equal(t, report.FailedExitCode, rep.Records[2].Outcome)
	assert.Equal(t, 23, rep.Records[2].ExitCode)

	calls, err := os.ReadFile(callLog)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(calls)), "\n"), 3)
	assert.Contains(t, string(calls), fmt.Sprintf("-a %s/ %s", filepath.Join(src, "a"), filepath.Join(dst, "a")))

	assert.Contains(t, logs.String(), "run_id=")
	assert.Contains(t, logs.String(), "failed with return code: 23")
}

func TestRun_AllowedReturnCodesOverride(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	mkdirs(t, src, "bad")
	mkdirs(t, dst, "bad")
	script, _ := fakeRsync(t)

	cfgPath := writeConfig(t, "backup.hcl", fmt.Sprintf(`
workers = 1
allowed_returncodes = [0]
job "bad" {
  source      = %q
  destination = %q
}
`, filepath.Join(src, "bad"), filepath.Join(dst, "bad")))

	a, _ := SetupAppTest(t, &Config{ConfigPath: cfgPath, RsyncPath: script, AllowedReturnCodes: []int{0, 23}})
	rep, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Summary.ProcessExitCode)
	assert.Equal(t, report.Succeeded, rep.Records[0].Outcome)
}

func TestRun_ExplodedJobsCreateDestinations(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	mkdirs(t, src, "x", "y")
	require.NoError(t, os.WriteFile(filepath.Join(src, "f"), []byte("data"), 0o600))
	require.NoError(t, os.Chmod(filepath.Join(src, "x"), 0o750))

	cfgPath := writeConfig(t, "backup.yaml", fmt.Sprintf(`
workers: 4
jobs:
  - name: tree
    source: %s
    destination: %s
    exclusions: ["*.tmp"]
    steps: 1
`, src, dst))

	runner := &recordingRunner{}
	a, _ := SetupAppTest(t, &Config{ConfigPath: cfgPath, RsyncPath: "rsync"}, WithRunner(runner))
	rep, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Summary.TotalJobs)
	assert.Equal(t, 0, rep.Summary.ProcessExitCode)

	info, err := os.Stat(filepath.Join(dst, "x"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())
	assert.DirExists(t, filepath.Join(dst, "y"))
	assert.NoFileExists(t, filepath.Join(dst, "f"))

	assert.Equal(t, [][]string{
		{"rsync", "--exclude=*.tmp", filepath.Join(src, "x") + "/", filepath.Join(dst, "x")},
		{"rsync", "--exclude=*.tmp", filepath.Join(src, "y") + "/", filepath.Join(dst, "y")},
	}, runner.sortedCalls())
}

func TestRun_NoopRunsNothing(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	mkdirs(t, src, "x", "y")

	cfgPath := writeConfig(t, "backup.hcl", fmt.Sprintf(`
workers = 1
job "tree" {
  source      = %q
  destination = %q
  steps       = 1
}
`, src, dst))

	runner := executor.RunnerFunc(func(context.Context, []string) (int, error) {
		t.Error("runner must not be called in noop mode")
		return 0, nil
	})
	a, logs := SetupAppTest(t, &Config{ConfigPath: cfgPath, RsyncPath: "rsync", Noop: true}, WithRunner(runner))
	rep, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Summary.ProcessExitCode)
	assert.NoDirExists(t, filepath.Join(dst, "x"))
	assert.NoDirExists(t, filepath.Join(dst, "y"))
	assert.Contains(t, logs.String(), "noop mode")
}

func TestRun_WorkersOverride(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	cfgPath := writeConfig(t, "backup.hcl", fmt.Sprintf(`
workers = 1
job "only" {
  source      = %q
  destination = %q
}
`, src, dst))

	a, logs := SetupAppTest(t, &Config{ConfigPath: cfgPath, RsyncPath: "rsync", Workers: 3}, WithRunner(&recordingRunner{}))
	_, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "amount of workers is 3")
}

func TestRun_FatalErrors(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		cfgPath := writeConfig(t, "backup.hcl", `
workers = 0
job "x" {
  source      = "relative"
  destination = "/tmp"
}
`)
		a, _ := SetupAppTest(t, &Config{ConfigPath: cfgPath, RsyncPath: "rsync"})
		_, err := a.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load configuration")
	})

	t.Run("missing tool", func(t *testing.T) {
		cfgPath := writeConfig(t, "backup.hcl", fmt.Sprintf(`
workers = 1
job "x" {
  source      = %q
  destination = %q
}
`, t.TempDir(), t.TempDir()))
		t.Setenv("PATH", "")

		a, _ := SetupAppTest(t, &Config{ConfigPath: cfgPath})
		_, err := a.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to find rsync")
	})
}

func TestRouter(t *testing.T) {
	a, _ := SetupAppTest(t, &Config{ConfigPath: "unused.hcl"})
	a.status.runID.Store(7)
	a.status.jobs.Store(3)
	a.status.setPhase(phaseRunning)
	srv := httptest.NewServer(a.router(context.Background()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got statusView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, statusView{RunID: 7, Phase: phaseRunning, Jobs: 3}, got)

	resp, err = http.Post(srv.URL+"/status", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "valid", cfg: Config{ConfigPath: "a.hcl", LogLevel: "debug", LogFormat: "json"}},
		{name: "missing path", cfg: Config{}, wantErr: "ConfigPath is a required"},
		{name: "negative workers", cfg: Config{ConfigPath: "a.hcl", Workers: -1}, wantErr: "workers must be above 0"},
		{name: "bad level", cfg: Config{ConfigPath: "a.hcl", LogLevel: "loud"}, wantErr: "invalid log level"},
		{name: "bad format", cfg: Config{ConfigPath: "a.hcl", LogFormat: "xml"}, wantErr: "invalid log format"},
		{name: "bad port", cfg: Config{ConfigPath: "a.hcl", HealthcheckPort: 70000}, wantErr: "invalid healthcheck port"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.cfg, *cfg)
		})
	}
}

func TestNewApp_LogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "syncfan.log")
	require.NoError(t, os.WriteFile(logPath, []byte("previous\n"), 0o600))

	out := &SafeBuffer{}
	a, err := NewApp(out, &Config{ConfigPath: "x.hcl", LogLevel: "debug", LogFile: logPath})
	require.NoError(t, err)
	a.logger.Info("hello from the app")
	require.NoError(t, a.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "previous\n"))
	assert.Contains(t, string(data), "hello from the app")
	assert.Empty(t, out.String())
}
