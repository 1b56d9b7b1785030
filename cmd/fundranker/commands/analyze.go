package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/fundranker/internal/contracts"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [schemeCode]",
	Short: "Compute metrics for one fund",
	Long: `Fetches the NAV history for a scheme and prints its full
performance and risk metrics.

Example:
  go run ./cmd/fundranker analyze 119551`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	schemeCode := args[0]

	fmt.Println("=== Fund Ranker Analyze ===")

	comps, err := initComponents()
	if err != nil {
		return fmt.Errorf("init components: %w", err)
	}
	defer comps.close()

	ctx := cmd.Context()

	fund := contracts.Fund{SchemeCode: schemeCode}
	if funds, err := comps.fetcher.Funds(ctx); err == nil {
		for _, f := range funds {
			if f.SchemeCode == schemeCode {
				fund = f
				break
			}
		}
	}
	if fund.Category == "" && fund.Name != "" {
		fund.Category = comps.builder.Classify(fund.Name)
	}

	entry, err := comps.fetcher.Series(ctx, schemeCode)
	if err != nil {
		return fmt.Errorf("fetch series: %w", err)
	}

	bundle, err := comps.engine.Compute(ctx, fund, entry.Series)
	if err != nil {
		return fmt.Errorf("compute metrics: %w", err)
	}

	printBundle(bundle)
	return nil
}

func printBundle(b *contracts.MetricsBundle) {
	fmt.Println()
	if b.Name != "" {
		fmt.Printf("📊 %s\n", b.Name)
	} else {
		fmt.Printf("📊 Scheme %s\n", b.SchemeCode)
	}
	if b.Category != "" {
		fmt.Printf("   Category: %s\n", b.Category)
	}
	fmt.Printf("   As of: %s | %d points over %d days (%s)\n",
		b.AsOf.Format("2006-01-02"), b.Points, b.SpanDays, b.Frequency)

	fmt.Println("\nReturns (%):")
	fmt.Printf("  %-14s %s\n", "1 year:", fmtMetric(b.Return1Y))
	fmt.Printf("  %-14s %s\n", "3 years:", fmtMetric(b.Return3Y))
	fmt.Printf("  %-14s %s\n", "5 years:", fmtMetric(b.Return5Y))
	fmt.Printf("  %-14s %s\n", "10 years:", fmtMetric(b.Return10Y))

	fmt.Println("\nRisk:")
	fmt.Printf("  %-14s %s\n", "Volatility:", fmtMetric(b.Volatility))
	fmt.Printf("  %-14s %s\n", "Sharpe:", fmtMetric(b.Sharpe))
	fmt.Printf("  %-14s %.2f\n", "Max drawdown:", b.MaxDrawdown)
	fmt.Printf("  %-14s %s\n", "Risk score:", fmtMetric(b.RiskScore))

	fmt.Println("\nConsistency:")
	fmt.Printf("  %-14s %s\n", "Consistency:", fmtMetric(b.Consistency))
	fmt.Printf("  %-14s %s\n", "CV:", fmtMetric(b.CV))

	if b.Benchmark != "" {
		fmt.Printf("\nVersus %s:\n", b.Benchmark)
		fmt.Printf("  %-14s %s\n", "Alpha:", fmtMetric(b.Alpha))
		fmt.Printf("  %-14s %s\n", "Tracking err:", fmtMetric(b.TrackingError))
	}
}

// fmtMetric renders an optional metric, n/a when it could not be
// computed from the available history.
func fmtMetric(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
