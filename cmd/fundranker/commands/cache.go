package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the NAV cache",
	Long: `Inspects or clears the local NAV series cache.

Subcommands:
  stats   - Show cache statistics
  clear   - Drop every cached NAV series

Example:
  go run ./cmd/fundranker cache stats
  go run ./cmd/fundranker cache clear`,
}

var (
	cacheStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE:  showCacheStats,
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached NAV series",
		RunE:  clearCache,
	}
)

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func showCacheStats(cmd *cobra.Command, args []string) error {
	comps, err := initComponents()
	if err != nil {
		return fmt.Errorf("init components: %w", err)
	}
	defer comps.close()

	stats, err := comps.store.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("cache stats: %w", err)
	}

	fmt.Println("📊 NAV Cache:")
	fmt.Printf("   Entries:  %d (%d fresh, %d stale)\n", stats.Entries, stats.Fresh, stats.Stale)
	fmt.Printf("   Size:     %.1f KB\n", float64(stats.SizeBytes)/1024)
	if !stats.OldestFetch.IsZero() {
		fmt.Printf("   Oldest:   %s\n", stats.OldestFetch.Format("2006-01-02 15:04:05"))
	}
	if !stats.NewestFetch.IsZero() {
		fmt.Printf("   Newest:   %s\n", stats.NewestFetch.Format("2006-01-02 15:04:05"))
	}

	return nil
}

func clearCache(cmd *cobra.Command, args []string) error {
	comps, err := initComponents()
	if err != nil {
		return fmt.Errorf("init components: %w", err)
	}
	defer comps.close()

	stats, err := comps.store.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("cache stats: %w", err)
	}

	if err := comps.store.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}

	fmt.Printf("✅ Cache cleared (%d entries dropped)\n", stats.Entries)
	return nil
}
