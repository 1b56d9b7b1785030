package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/fundranker/internal/recorder"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent pipeline runs",
	Long: `Shows the most recent pipeline runs from the run history.

Example:
  go run ./cmd/fundranker status
  go run ./cmd/fundranker status --limit 20`,
	RunE: runStatus,
}

var (
	statusLimit int
)

func init() {
	rootCmd.AddCommand(statusCmd)

	// Flags
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "number of runs to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	comps, err := initComponents()
	if err != nil {
		return fmt.Errorf("init components: %w", err)
	}
	defer comps.close()

	history, err := comps.newHistory()
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer history.Close()

	runs, err := history.RecentRuns(statusLimit)
	if err != nil {
		return fmt.Errorf("load run history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No run history.")
		if comps.cfg.Recorder.Path == "" {
			fmt.Println("Set RECORDER_DB_PATH to enable run recording.")
		}
		return nil
	}

	fmt.Println("📊 Recent Runs:")
	fmt.Printf("%-20s %-12s %-10s %8s %7s %7s  %s\n",
		"Run ID", "Date", "Status", "Duration", "Stages", "DryRun", "Config")

	for _, run := range runs {
		status := run.Status
		switch status {
		case recorder.StatusCompleted:
			status = "✅ " + status
		case recorder.StatusFailed:
			status = "⚠ " + status
		}

		fmt.Printf("%-20s %-12s %-10s %7.1fs %7d %7v  %s\n",
			run.RunID,
			run.Date.Format("2006-01-02"),
			status,
			run.FinishedAt.Sub(run.StartedAt).Seconds(),
			run.Stages,
			run.DryRun,
			run.ConfigID,
		)
	}

	return nil
}
