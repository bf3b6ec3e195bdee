package testutil

import (
	"testing"

	"github.com/specialistvlad/syncfan/internal/report"
	"github.com/stretchr/testify/require"
)

// AssertOutcomes checks the run completed and maps every job destination to
// its expected outcome.
func AssertOutcomes(t *testing.T, result *HarnessResult, want map[string]report.Outcome) {
	t.Helper()
	require.NoError(t, result.Err, "run failed unexpectedly")
	require.NotNil(t, result.Report)

	got := make(map[string]report.Outcome, len(result.Report.Records))
	for _, rec := range result.Report.Records {
		got[rec.Destination] = rec.Outcome
	}

	expected := make(map[string]report.Outcome, len(want))
	for rel, outcome := range want {
		expected[result.Path(rel)] = outcome
	}
	require.Equal(t, expected, got)
}
