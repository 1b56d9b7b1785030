package scheduler

import (
	"context"
	"sync"
	"time"
)

// Job is a unit of scheduled work.
type Job interface {
	// Name returns a unique identifier for the job.
	Name() string

	// Run executes the job.
	Run(ctx context.Context) error

	// Schedule returns the cron expression (with seconds field).
	Schedule() string
}

// JobResult records the outcome of a single job execution.
type JobResult struct {
	JobName   string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Success   bool
	Error     string
}

// JobHistory keeps recent execution results for one job.
type JobHistory struct {
	mu      sync.RWMutex
	results []JobResult
	maxSize int
}

// NewJobHistory creates a history buffer holding up to maxSize results.
func NewJobHistory(maxSize int) *JobHistory {
	return &JobHistory{
		results: make([]JobResult, 0, maxSize),
		maxSize: maxSize,
	}
}

// AddResult appends a result, evicting the oldest entry when full.
func (h *JobHistory) AddResult(result JobResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.results = append(h.results, result)
	if len(h.results) > h.maxSize {
		h.results = h.results[1:]
	}
}

// GetLatestResults returns the most recent n results, newest first.
func (h *JobHistory) GetLatestResults(n int) []JobResult {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n > len(h.results) {
		n = len(h.results)
	}

	latest := make([]JobResult, n)
	for i := 0; i < n; i++ {
		latest[i] = h.results[len(h.results)-1-i]
	}
	return latest
}

// GetFailedResults returns every failed result still in the buffer.
func (h *JobHistory) GetFailedResults() []JobResult {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var failed []JobResult
	for _, r := range h.results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}

// GetSuccessRate returns the fraction of successful runs, 0 when empty.
func (h *JobHistory) GetSuccessRate() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.results) == 0 {
		return 0
	}

	success := 0
	for _, r := range h.results {
		if r.Success {
			success++
		}
	}
	return float64(success) / float64(len(h.results))
}
