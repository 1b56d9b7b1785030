package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundranker/pkg/config"
	"github.com/wonny/fundranker/pkg/logger"
)

func testRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()

	cfg := &config.Config{
		Env:      "test",
		LogLevel: "error",
	}
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"), logger.New(cfg))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder(t *testing.T) {
	r := testRecorder(t)

	started := time.Date(2026, 8, 22, 2, 0, 0, 0, time.UTC)
	run := &RunRecord{
		RunID:      "run-1",
		Date:       time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC),
		ConfigID:   "fund-ranking-default",
		ConfigHash: "abc123",
		TopN:       5,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Minute),
		Stages:     6,
		Status:     StatusCompleted,
	}
	require.NoError(t, r.RecordRun(run))

	require.NoError(t, r.RecordCohort(&CohortOutcome{
		RunID:      "run-1",
		Category:   "smallcap",
		Strategy:   "returns-based",
		CohortSize: 42,
		Ranked:     40,
		TopScheme:  "120503",
		TopScore:   0.91,
		Errors:     2,
	}))
	require.NoError(t, r.RecordError(&RunError{
		RunID:      "run-1",
		SchemeCode: "100027",
		Stage:      "scoring",
		Message:    "insufficient history",
	}))

	runs, err := r.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].RunID)
	assert.Equal(t, StatusCompleted, runs[0].Status)
	assert.Equal(t, 6, runs[0].Stages)
	assert.False(t, runs[0].DryRun)
	assert.True(t, runs[0].StartedAt.Equal(started))
}

func TestRecordRunReplaces(t *testing.T) {
	r := testRecorder(t)

	run := &RunRecord{
		RunID:     "run-1",
		Date:      time.Now(),
		StartedAt: time.Now(),
		Status:    StatusFailed,
	}
	require.NoError(t, r.RecordRun(run))

	run.Status = StatusCompleted
	run.DryRun = true
	require.NoError(t, r.RecordRun(run))

	runs, err := r.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusCompleted, runs[0].Status)
	assert.True(t, runs[0].DryRun)
}

func TestRecentRunsOrder(t *testing.T) {
	r := testRecorder(t)

	base := time.Date(2026, 8, 20, 2, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-1", "run-2", "run-3"} {
		require.NoError(t, r.RecordRun(&RunRecord{
			RunID:     id,
			Date:      base.AddDate(0, 0, i),
			StartedAt: base.AddDate(0, 0, i),
			Status:    StatusCompleted,
		}))
	}

	runs, err := r.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-3", runs[0].RunID)
	assert.Equal(t, "run-2", runs[1].RunID)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()

	assert.NoError(t, r.RecordRun(&RunRecord{RunID: "run-1"}))
	assert.NoError(t, r.RecordCohort(&CohortOutcome{}))
	assert.NoError(t, r.RecordError(&RunError{}))

	runs, err := r.RecentRuns(5)
	assert.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, r.Close())
}
