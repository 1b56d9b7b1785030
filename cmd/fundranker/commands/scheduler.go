package commands

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundranker/internal/scheduler"
	"github.com/wonny/fundranker/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the job scheduler",
	Long: `Starts the scheduler daemon or manages its jobs.

Subcommands:
  start   - Start the scheduler daemon
  list    - List registered jobs
  run     - Run a job immediately and wait for it
  status  - Show job execution statistics

Example:
  go run ./cmd/fundranker scheduler start
  go run ./cmd/fundranker scheduler list
  go run ./cmd/fundranker scheduler run nav_refresh`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		Long: `Starts the scheduler and schedules all registered jobs.

Registered jobs:
- nav_refresh: daily at 11:30 PM (NAV cache warm-up)
- weekly_ranking: Saturday at 2:00 AM (full pipeline run)
- export_cleanup: daily at 4:00 AM (expired report removal)

Stop the scheduler with Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately and wait for it",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show job execution statistics",
		RunE:  showJobStats,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Fund Ranker Scheduler ===")

	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Printf("Running job: %s\n", jobName)

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	// RunJob returns immediately, so poll until the result lands.
	history, err := sched.GetJobHistory(jobName)
	if err != nil {
		return err
	}
	for {
		time.Sleep(time.Second)
		results := history.GetLatestResults(1)
		if len(results) == 0 {
			continue
		}
		result := results[0]
		if !result.Success {
			return fmt.Errorf("job failed after %.1fs: %s", result.Duration.Seconds(), result.Error)
		}
		fmt.Printf("\n✅ Job completed in %.1fs\n", result.Duration.Seconds())
		return nil
	}
}

func showJobStats(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	stats := sched.GetJobStats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Job Statistics:")
	fmt.Println()

	for _, name := range names {
		stat := stats[name]

		fmt.Printf("📊 %s\n", name)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}

		if stat.LastSuccess != nil {
			fmt.Printf("   Last Success: %s\n", stat.LastSuccess.Format("2006-01-02 15:04:05"))
		}

		if stat.LastFailure != nil {
			fmt.Printf("   Last Failure: %s\n", stat.LastFailure.Format("2006-01-02 15:04:05"))
		}

		fmt.Println()
	}

	return nil
}

func initScheduler() (*scheduler.Scheduler, func(), error) {
	// 1. Build shared components
	comps, err := initComponents()
	if err != nil {
		return nil, nil, fmt.Errorf("init components: %w", err)
	}

	// 2. Open run history
	history, err := comps.newHistory()
	if err != nil {
		comps.close()
		return nil, nil, fmt.Errorf("open run history: %w", err)
	}
	cleanup := func() {
		history.Close()
		comps.close()
	}

	// 3. Create orchestrator
	orchestrator := comps.newOrchestrator(history)

	// 4. Create scheduler
	sched := scheduler.New(comps.log)

	// 5. Register jobs
	jobList := []scheduler.Job{
		jobs.NewNAVRefreshJob(comps.fetcher, comps.builder, comps.log),
		jobs.NewRankingJob(orchestrator, comps.runTemplate(), comps.log),
		jobs.NewExportCleanupJob(comps.cfg.Export.Dir, 0, comps.log),
	}
	for _, job := range jobList {
		if err := sched.AddJob(job); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("register job: %w", err)
		}
	}

	return sched, cleanup, nil
}
