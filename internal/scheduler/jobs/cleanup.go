package jobs

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/wonny/fundranker/pkg/logger"
)

// ExportCleanupJob deletes report files older than the retention
// window so the export directory does not grow without bound.
type ExportCleanupJob struct {
	dir    string
	maxAge time.Duration
	logger *logger.Logger
}

// NewExportCleanupJob creates the cleanup job. A maxAge of zero or
// less defaults to 30 days.
func NewExportCleanupJob(dir string, maxAge time.Duration, log *logger.Logger) *ExportCleanupJob {
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}
	return &ExportCleanupJob{
		dir:    dir,
		maxAge: maxAge,
		logger: log.WithField("job", "export_cleanup"),
	}
}

// Name returns the job identifier.
func (j *ExportCleanupJob) Name() string {
	return "export_cleanup"
}

// Schedule returns the cron expression.
func (j *ExportCleanupJob) Schedule() string {
	return "0 0 4 * * *" // Every day at 4:00 AM
}

// Run removes expired export files. A missing directory is not an
// error, nothing has been exported yet.
func (j *ExportCleanupJob) Run(ctx context.Context) error {
	entries, err := os.ReadDir(j.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-j.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(j.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			j.logger.WithFields(map[string]interface{}{
				"file":  path,
				"error": err.Error(),
			}).Warn("Failed to remove expired export")
			continue
		}
		removed++
	}

	if removed > 0 {
		j.logger.WithFields(map[string]interface{}{
			"removed": removed,
			"max_age": j.maxAge.String(),
		}).Info("Expired exports removed")
	}

	return nil
}
