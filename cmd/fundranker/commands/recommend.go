package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/internal/pipeline"
)

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend [category]",
	Short: "Rank funds in a category",
	Long: `Collects NAV histories for a category, computes metrics and prints
the top ranked funds per scoring strategy. Nothing is published unless
--export is set.

Example:
  go run ./cmd/fundranker recommend smallcap
  go run ./cmd/fundranker recommend midcap --strategy returns-based
  go run ./cmd/fundranker recommend smallcap --export`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

var (
	recommendStrategy string
	recommendExport   bool
)

func init() {
	rootCmd.AddCommand(recommendCmd)

	// Flags
	recommendCmd.Flags().StringVar(&recommendStrategy, "strategy", "", "print only this scoring strategy")
	recommendCmd.Flags().BoolVar(&recommendExport, "export", false, "write CSV and XLSX reports")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	category := args[0]

	fmt.Println("=== Fund Ranker Recommend ===")

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
	config.RunID = pipeline.GenerateRunID()
	config.Categories = []string{category}
	config.DryRun = true

	fmt.Printf("\nRanking %s funds (run %s)...\n", category, config.RunID)

	result, err := orchestrator.Run(cmd.Context(), config)
	if err != nil {
		return fmt.Errorf("ranking run: %w", err)
	}

	printed := 0
	for _, res := range result.Results {
		if recommendStrategy != "" && res.Strategy != recommendStrategy {
			continue
		}
		printRanking(res, result.Bundles)
		printed++
	}
	if printed == 0 {
		if recommendStrategy == "" {
			return fmt.Errorf("no rankings produced for category %q", category)
		}
		available := make([]string, 0, len(result.Results))
		for _, res := range result.Results {
			available = append(available, res.Strategy)
		}
		return fmt.Errorf("no ranking for strategy %q (available: %s)",
			recommendStrategy, strings.Join(available, ", "))
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\n⚠ %d funds had errors during the run\n", len(result.Errors))
	}

	if recommendExport {
		csvPath, err := comps.exporter.WriteCSV(result.Results, result.Bundles, result.Date)
		if err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		xlsxPath, err := comps.exporter.WriteXLSX(result.Results, result.Bundles, result.Date)
		if err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		fmt.Printf("\n✅ Reports written:\n  %s\n  %s\n", csvPath, xlsxPath)
	}

	return nil
}

func printRanking(res *contracts.RankingResult, bundles map[string]*contracts.MetricsBundle) {
	fmt.Printf("\n📊 %s / %s\n", res.Category, res.Strategy)
	fmt.Printf("%-4s %-10s %-44s %7s %8s %8s %8s\n",
		"Rank", "Scheme", "Fund", "Score", "1Y%", "3Y%", "Sharpe")

	for _, fund := range res.Funds {
		name := fund.Name
		if len(name) > 44 {
			name = name[:41] + "..."
		}

		ret1y, ret3y, sharpe := "n/a", "n/a", "n/a"
		if b, ok := bundles[fund.SchemeCode]; ok {
			ret1y = fmtMetric(b.Return1Y)
			ret3y = fmtMetric(b.Return3Y)
			sharpe = fmtMetric(b.Sharpe)
		}

		fmt.Printf("%-4d %-10s %-44s %7.1f %8s %8s %8s\n",
			fund.Rank, fund.SchemeCode, name, fund.TotalScore, ret1y, ret3y, sharpe)
	}

	if len(res.Errors) > 0 {
		fmt.Printf("  (%d funds unscorable)\n", len(res.Errors))
	}
}
