package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundranker/internal/pipeline"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full ranking pipeline",
	Long: `Executes every pipeline stage in order: scheme master refresh,
universe classification, NAV collection, metrics, ranking and publish.

Example:
  go run ./cmd/fundranker run
  go run ./cmd/fundranker run --categories smallcap,midcap
  go run ./cmd/fundranker run --date 2025-08-22 --dry-run`,
	RunE: runPipeline,
}

var (
	runDate       string
	runCategories []string
	runDryRun     bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	// Flags
	runCmd.Flags().StringVar(&runDate, "date", "", "run date (YYYY-MM-DD, default today)")
	runCmd.Flags().StringSliceVar(&runCategories, "categories", nil, "categories to rank (default all)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "skip the publish stage")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Fund Ranker Pipeline ===")

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

	orchestrator := comps.newOrchestrator(history)

	config := comps.runTemplate()
	config.Categories = runCategories
	config.DryRun = runDryRun
	if runDate != "" {
		date, err := time.Parse("2006-01-02", runDate)
		if err != nil {
			return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", runDate)
		}
		config.Date = date
	}

	fmt.Println("\nStarting pipeline run...")

	result, runErr := orchestrator.Run(cmd.Context(), config)
	printRunResult(result)
	if runErr != nil {
		return fmt.Errorf("pipeline run: %w", runErr)
	}
	return nil
}

func printRunResult(result *pipeline.RunResult) {
	if result == nil {
		return
	}

	fmt.Println("\n📊 Run Result:")
	fmt.Printf("  Run ID:   %s\n", result.RunID)
	fmt.Printf("  Date:     %s\n", result.Date.Format("2006-01-02"))
	fmt.Printf("  Duration: %.1fs\n", result.Duration.Seconds())
	fmt.Printf("  Success:  %v\n", result.Success)

	fmt.Println("\nCompleted Stages:")
	for _, stage := range result.CompletedStages {
		fmt.Printf("  ✅ %s\n", stage)
	}

	fmt.Printf("\n  Funds:    %d in master list\n", result.FundTotal)
	categories := make([]string, 0, len(result.CohortSizes))
	for category := range result.CohortSizes {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		fmt.Printf("  Cohort:   %s (%d funds)\n", category, result.CohortSizes[category])
	}
	if result.FetchReport != nil {
		fmt.Printf("  NAV:      %d fetched, %d from cache, %d failed\n",
			result.FetchReport.Fetched, result.FetchReport.FromCache, len(result.FetchReport.Failed))
	}
	fmt.Printf("  Rankings: %d\n", len(result.Results))
	if len(result.Errors) > 0 {
		fmt.Printf("  ⚠ Errors: %d funds\n", len(result.Errors))
	}
	for _, path := range result.ExportPaths {
		fmt.Printf("  Export:   %s\n", path)
	}

	if result.Error != nil {
		fmt.Printf("\n⚠ Run failed: %v\n", result.Error)
	}
}
