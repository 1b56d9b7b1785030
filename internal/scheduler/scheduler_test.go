package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundranker/pkg/config"
	"github.com/wonny/fundranker/pkg/logger"
)

// fakeJob counts its runs and fails the first failures calls.
type fakeJob struct {
	name     string
	schedule string

	mu       sync.Mutex
	calls    int
	failures int
}

func (f *fakeJob) Name() string     { return f.name }
func (f *fakeJob) Schedule() string { return f.schedule }

func (f *fakeJob) Run(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return fmt.Errorf("attempt %d failed", f.calls)
	}
	return nil
}

func (f *fakeJob) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testScheduler(t *testing.T) *Scheduler {
	t.Helper()
	log := logger.New(&config.Config{Env: "test", LogLevel: "error"})
	s := New(log)
	s.retryDelay = time.Millisecond
	return s
}

// farSchedule never fires during a test run.
const farSchedule = "0 0 5 1 1 *"

func TestJobHistory(t *testing.T) {
	h := NewJobHistory(3)
	assert.Zero(t, h.GetSuccessRate())
	assert.Empty(t, h.GetLatestResults(5))

	for i := 0; i < 4; i++ {
		h.AddResult(JobResult{
			JobName: "test",
			EndTime: time.Date(2026, 8, 1, 0, 0, i, 0, time.UTC),
			Success: i%2 == 0,
		})
	}

	latest := h.GetLatestResults(3)
	require.Len(t, latest, 3)
	// Newest first; the first of the four results was evicted.
	assert.Equal(t, 3, latest[0].EndTime.Second())
	assert.Equal(t, 1, latest[2].EndTime.Second())

	failed := h.GetFailedResults()
	require.Len(t, failed, 2)
	assert.False(t, failed[0].Success)

	assert.InDelta(t, 1.0/3.0, h.GetSuccessRate(), 1e-9)
}

func TestAddJob(t *testing.T) {
	s := testScheduler(t)
	job := &fakeJob{name: "refresh", schedule: farSchedule}

	require.NoError(t, s.AddJob(job))
	assert.Equal(t, []string{"refresh"}, s.GetAllJobs())

	err := s.AddJob(&fakeJob{name: "refresh", schedule: farSchedule})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	err = s.AddJob(&fakeJob{name: "broken", schedule: "not a cron expression"})
	require.Error(t, err)
	assert.NotContains(t, s.GetAllJobs(), "broken")
}

func TestRunJob(t *testing.T) {
	s := testScheduler(t)
	job := &fakeJob{name: "refresh", schedule: farSchedule}
	require.NoError(t, s.AddJob(job))

	require.Error(t, s.RunJob("missing"))

	require.NoError(t, s.RunJob("refresh"))
	assert.Eventually(t, func() bool {
		return job.callCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	history, err := s.GetJobHistory("refresh")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		results := history.GetLatestResults(1)
		return len(results) == 1 && results[0].Success
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunJobRetries(t *testing.T) {
	s := testScheduler(t)
	job := &fakeJob{name: "flaky", schedule: farSchedule, failures: 2}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("flaky"))
	assert.Eventually(t, func() bool {
		return job.callCount() == 3
	}, 2*time.Second, 10*time.Millisecond)

	history, err := s.GetJobHistory("flaky")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		results := history.GetLatestResults(1)
		return len(results) == 1 && results[0].Success
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunJobExhaustsRetries(t *testing.T) {
	s := testScheduler(t)
	s.maxRetries = 1
	job := &fakeJob{name: "doomed", schedule: farSchedule, failures: 10}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("doomed"))
	assert.Eventually(t, func() bool {
		history, err := s.GetJobHistory("doomed")
		if err != nil {
			return false
		}
		results := history.GetLatestResults(1)
		return len(results) == 1 && !results[0].Success
	}, 2*time.Second, 10*time.Millisecond)

	// Initial attempt plus one retry.
	assert.Equal(t, 2, job.callCount())

	history, err := s.GetJobHistory("doomed")
	require.NoError(t, err)
	results := history.GetLatestResults(1)
	assert.Contains(t, results[0].Error, "failed")
}

func TestGetJobStats(t *testing.T) {
	s := testScheduler(t)
	s.maxRetries = 0
	ok := &fakeJob{name: "steady", schedule: farSchedule}
	bad := &fakeJob{name: "broken", schedule: farSchedule, failures: 10}
	require.NoError(t, s.AddJob(ok))
	require.NoError(t, s.AddJob(bad))

	require.NoError(t, s.RunJob("steady"))
	require.NoError(t, s.RunJob("broken"))
	assert.Eventually(t, func() bool {
		return ok.callCount() == 1 && bad.callCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	var stats map[string]JobStats
	assert.Eventually(t, func() bool {
		stats = s.GetJobStats()
		return stats["steady"].TotalRuns == 1 && stats["broken"].TotalRuns == 1
	}, 2*time.Second, 10*time.Millisecond)

	steady := stats["steady"]
	assert.Equal(t, farSchedule, steady.Schedule)
	assert.Equal(t, 1, steady.SuccessCount)
	assert.Zero(t, steady.FailureCount)
	assert.Equal(t, 1.0, steady.SuccessRate)
	assert.NotNil(t, steady.LastRun)
	assert.NotNil(t, steady.LastSuccess)
	assert.Nil(t, steady.LastFailure)

	broken := stats["broken"]
	assert.Zero(t, broken.SuccessCount)
	assert.Equal(t, 1, broken.FailureCount)
	assert.Zero(t, broken.SuccessRate)
	assert.NotNil(t, broken.LastFailure)
	assert.Nil(t, broken.LastSuccess)
}

func TestStartStop(t *testing.T) {
	s := testScheduler(t)
	require.NoError(t, s.AddJob(&fakeJob{name: "refresh", schedule: farSchedule}))

	s.Start()
	s.Stop()
}

func TestGetJobHistoryUnknown(t *testing.T) {
	s := testScheduler(t)
	_, err := s.GetJobHistory("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
