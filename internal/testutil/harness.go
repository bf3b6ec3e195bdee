package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/syncfan/internal/app"
	"github.com/specialistvlad/syncfan/internal/executor"
	"github.com/specialistvlad/syncfan/internal/report"
	"github.com/stretchr/testify/require"
)

// RootPlaceholder is replaced with the scenario's root directory in file
// contents, so configurations can reference the trees they sync.
const RootPlaceholder = "{{root}}"

// Scenario describes one integration run.
type Scenario struct {
	// Files maps paths relative to the root to their contents. A path ending
	// in "/" creates a directory instead.
	Files map[string]string
	// ConfigPath is the configuration file or directory, relative to the root.
	ConfigPath string
	// Config carries the CLI-level overrides; its ConfigPath is ignored.
	Config app.Config
	// Runner replaces the tool. Defaults to a MockRsync without delay.
	Runner executor.Runner
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Root      string
	LogOutput string
	Err       error
	Report    *report.Report
	Runner    executor.Runner
}

// Path resolves a path relative to the scenario root.
func (r *HarnessResult) Path(rel string) string {
	return filepath.Join(r.Root, rel)
}

// RunIntegrationTest provides a standardized harness for running integration
// tests using a default background context.
func RunIntegrationTest(t *testing.T, sc Scenario) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, sc)
}

// RunIntegrationTestWithContext lays out the scenario's files under a fresh
// root and runs the app against it with the given context.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, sc Scenario) *HarnessResult {
	t.Helper()

	root := t.TempDir()
	for name, content := range sc.Files {
		path := filepath.Join(root, name)
		if strings.HasSuffix(name, "/") {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		content = strings.ReplaceAll(content, RootPlaceholder, root)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	if sc.Runner == nil {
		sc.Runner = NewMockRsync(nil, 0)
	}
	cfg := sc.Config
	cfg.ConfigPath = filepath.Join(root, sc.ConfigPath)
	if cfg.RsyncPath == "" {
		cfg.RsyncPath = "rsync"
	}

	testApp, logBuffer := app.SetupAppTest(t, &cfg, app.WithRunner(sc.Runner))
	rep, err := testApp.Run(ctx)

	return &HarnessResult{
		Root:      root,
		LogOutput: logBuffer.String(),
		Err:       err,
		Report:    rep,
		Runner:    sc.Runner,
	}
}
