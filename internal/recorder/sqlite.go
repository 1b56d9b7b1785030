package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wonny/fundranker/pkg/logger"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *logger.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs
// the migrations.
func NewSQLiteRecorder(dbPath string, log *logger.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so status reads do not block a running pipeline write.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{
		db:     db,
		logger: log.WithField("module", "recorder"),
	}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.WithField("path", dbPath).Info("Run history recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id      TEXT PRIMARY KEY,
			run_date    INTEGER NOT NULL,
			config_id   TEXT,
			config_hash TEXT,
			top_n       INTEGER,
			dry_run     INTEGER,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER,
			stages      INTEGER,
			status      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_date ON runs(run_date)`,

		`CREATE TABLE IF NOT EXISTS cohort_outcomes (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			category    TEXT NOT NULL,
			strategy    TEXT NOT NULL,
			cohort_size INTEGER,
			ranked      INTEGER,
			top_scheme  TEXT,
			top_score   REAL,
			errors      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cohort_run ON cohort_outcomes(run_id)`,

		`CREATE TABLE IF NOT EXISTS run_errors (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			scheme_code TEXT,
			stage       TEXT,
			message     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_errors_run ON run_errors(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the summary row for a run, replacing any earlier
// record with the same run id.
func (r *SQLiteRecorder) RecordRun(rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT OR REPLACE INTO runs
		(run_id, run_date, config_id, config_hash, top_n, dry_run,
		 started_at, finished_at, stages, status)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		rec.RunID, rec.Date.Unix(), rec.ConfigID, rec.ConfigHash,
		rec.TopN, boolInt(rec.DryRun),
		rec.StartedAt.Unix(), rec.FinishedAt.Unix(), rec.Stages, rec.Status,
	)
	return err
}

func (r *SQLiteRecorder) RecordCohort(out *CohortOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO cohort_outcomes
		(run_id, category, strategy, cohort_size, ranked, top_scheme, top_score, errors)
		VALUES (?,?,?,?,?,?,?,?)`,
		out.RunID, out.Category, out.Strategy,
		out.CohortSize, out.Ranked, out.TopScheme, out.TopScore, out.Errors,
	)
	return err
}

func (r *SQLiteRecorder) RecordError(e *RunError) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO run_errors
		(run_id, scheme_code, stage, message)
		VALUES (?,?,?,?)`,
		e.RunID, e.SchemeCode, e.Stage, e.Message,
	)
	return err
}

// RecentRuns returns the newest runs, most recent first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit < 1 {
		limit = 10
	}

	rows, err := r.db.Query(`SELECT
		run_id, run_date, config_id, config_hash, top_n, dry_run,
		started_at, finished_at, stages, status
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var date, started, finished int64
		var dryRun int
		if err := rows.Scan(
			&rec.RunID, &date, &rec.ConfigID, &rec.ConfigHash, &rec.TopN, &dryRun,
			&started, &finished, &rec.Stages, &rec.Status,
		); err != nil {
			return nil, err
		}
		rec.Date = time.Unix(date, 0).UTC()
		rec.StartedAt = time.Unix(started, 0).UTC()
		rec.FinishedAt = time.Unix(finished, 0).UTC()
		rec.DryRun = dryRun != 0
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Debug("Closing run history recorder")
	return r.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
