package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fundranker",
	Short: "Mutual fund NAV collection, analysis and ranking",
	Long: `Fund Ranker CLI

Collects NAV histories for Indian mutual funds, computes performance
and risk metrics, and ranks funds per category under configurable
scoring strategies.

Usage:
  go run ./cmd/fundranker [command]

Examples:
  go run ./cmd/fundranker fetch
  go run ./cmd/fundranker analyze 119551
  go run ./cmd/fundranker recommend smallcap
  go run ./cmd/fundranker run --dry-run
  go run ./cmd/fundranker api`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}
