// Package recorder keeps the run history: which ranking runs happened,
// how each cohort came out, and which funds failed along the way.
package recorder

import "time"

// RunRecord summarizes one pipeline run.
type RunRecord struct {
	RunID      string
	Date       time.Time
	ConfigID   string
	ConfigHash string
	TopN       int
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Stages     int // completed stage count
	Status     string
}

// Run status values.
const (
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// CohortOutcome records one category and strategy ranking inside a run.
type CohortOutcome struct {
	RunID      string
	Category   string
	Strategy   string
	CohortSize int
	Ranked     int
	TopScheme  string
	TopScore   float64
	Errors     int
}

// RunError records a per-fund failure inside a run.
type RunError struct {
	RunID      string
	SchemeCode string
	Stage      string
	Message    string
}

// Recorder persists run history for later inspection.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	RecordCohort(out *CohortOutcome) error
	RecordError(e *RunError) error
	RecentRuns(limit int) ([]RunRecord, error)
	Close() error
}
