// Package scheduler runs recurring fund data jobs on cron schedules
// with retries and an in-memory execution history.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/fundranker/pkg/logger"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 1 * time.Minute
	defaultJobTimeout = 30 * time.Minute
	historySize       = 100
)

// Scheduler manages cron jobs and tracks their execution history.
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]Job
	history map[string]*JobHistory
	logger  *logger.Logger
	mu      sync.RWMutex

	maxRetries int
	retryDelay time.Duration
	jobTimeout time.Duration
}

// New creates a scheduler. Jobs use six-field cron
// expressions (seconds included).
func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		jobs:       make(map[string]Job),
		history:    make(map[string]*JobHistory),
		logger:     log.WithField("module", "scheduler"),
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		jobTimeout: defaultJobTimeout,
	}
}

// AddJob registers a job with the scheduler.
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	_, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("add job %s: %w", name, err)
	}

	s.jobs[name] = job
	s.history[name] = NewJobHistory(historySize)

	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": job.Schedule(),
	}).Info("Job registered")

	return nil
}

// Start begins executing jobs on their schedules.
func (s *Scheduler) Start() {
	s.logger.WithField("jobs", len(s.jobs)).Info("Scheduler started")
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// RunJob triggers a job immediately, outside its schedule.
func (s *Scheduler) RunJob(name string) error {
	s.mu.RLock()
	job, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	go s.runJob(job)
	return nil
}

// runJob executes a job with retries and records the result.
func (s *Scheduler) runJob(job Job) {
	name := job.Name()
	start := time.Now()

	s.logger.WithField("job", name).Info("Job starting")

	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			s.logger.WithFields(map[string]interface{}{
				"job":     name,
				"attempt": attempt,
			}).Warn("Retrying job")
			time.Sleep(s.retryDelay)
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		err = job.Run(ctx)
		cancel()

		if err == nil {
			break
		}

		s.logger.WithFields(map[string]interface{}{
			"job":     name,
			"attempt": attempt,
			"error":   err.Error(),
		}).Error("Job attempt failed")
	}

	end := time.Now()
	result := JobResult{
		JobName:   name,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
		Success:   err == nil,
	}
	if err != nil {
		result.Error = err.Error()
	}

	s.mu.RLock()
	history := s.history[name]
	s.mu.RUnlock()
	if history != nil {
		history.AddResult(result)
	}

	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"job":      name,
			"duration": result.Duration.Seconds(),
			"error":    err.Error(),
		}).Error("Job failed")
		return
	}

	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"duration": result.Duration.Seconds(),
	}).Info("Job completed")
}

// GetJobHistory returns the execution history for a job.
func (s *Scheduler) GetJobHistory(name string) (*JobHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, exists := s.history[name]
	if !exists {
		return nil, fmt.Errorf("job %s not found", name)
	}
	return history, nil
}

// GetAllJobs returns the names of every registered job.
func (s *Scheduler) GetAllJobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// JobStats summarizes the execution history of one job.
type JobStats struct {
	JobName      string
	Schedule     string
	TotalRuns    int
	SuccessCount int
	FailureCount int
	SuccessRate  float64
	LastRun      *time.Time
	LastSuccess  *time.Time
	LastFailure  *time.Time
}

// GetJobStats computes summary statistics for every registered job.
func (s *Scheduler) GetJobStats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]JobStats, len(s.jobs))
	for name, job := range s.jobs {
		history := s.history[name]
		results := history.GetLatestResults(historySize)

		st := JobStats{
			JobName:     name,
			Schedule:    job.Schedule(),
			TotalRuns:   len(results),
			SuccessRate: history.GetSuccessRate(),
		}

		for i := range results {
			r := results[i]
			if r.Success {
				st.SuccessCount++
				if st.LastSuccess == nil {
					t := r.EndTime
					st.LastSuccess = &t
				}
			} else {
				st.FailureCount++
				if st.LastFailure == nil {
					t := r.EndTime
					st.LastFailure = &t
				}
			}
			if st.LastRun == nil {
				t := r.EndTime
				st.LastRun = &t
			}
		}

		stats[name] = st
	}
	return stats
}
