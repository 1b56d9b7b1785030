package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/internal/fetch/scrape"
	"github.com/wonny/fundranker/pkg/httputil"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [schemeCode...]",
	Short: "Refresh NAV histories",
	Long: `Refreshes cached NAV histories from the upstream API.

Without arguments every fund that passes universe classification is
refreshed. With scheme codes only those funds are fetched.

Example:
  go run ./cmd/fundranker fetch
  go run ./cmd/fundranker fetch 119551 120505`,
	Args: cobra.ArbitraryArgs,
	RunE: runFetch,
}

// fetchDiscoverCmd represents the fetch discover subcommand
var fetchDiscoverCmd = &cobra.Command{
	Use:   "discover [category]",
	Short: "Discover funds from the HTML tracker",
	Long: `Scrapes a category performance page and matches the fund names
against the API master list. Requires SCRAPE_ENABLED=true.

Example:
  go run ./cmd/fundranker fetch discover smallcap`,
	Args: cobra.ExactArgs(1),
	RunE: runFetchDiscover,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.AddCommand(fetchDiscoverCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Fund Ranker Fetch ===")

	comps, err := initComponents()
	if err != nil {
		return fmt.Errorf("init components: %w", err)
	}
	defer comps.close()

	ctx := cmd.Context()

	if len(args) > 0 {
		return fetchSchemes(cmd, comps, args)
	}

	fmt.Println("\nRefreshing fund universe...")

	funds, err := comps.fetcher.Funds(ctx)
	if err != nil {
		return fmt.Errorf("fund list: %w", err)
	}

	var members []contracts.Fund
	cohorts := comps.builder.Build(funds)
	categories := make([]string, 0, len(cohorts))
	for category, cohort := range cohorts {
		if cohort.Count() == 0 {
			continue
		}
		categories = append(categories, category)
		members = append(members, cohort.Funds...)
	}
	sort.Strings(categories)

	fmt.Printf("Eligible: %d funds in %d categories (%s)\n\n",
		len(members), len(categories), strings.Join(categories, ", "))

	_, report, _ := comps.fetcher.FetchAll(ctx, members)

	fmt.Println("✅ Fetch complete")
	fmt.Printf("  %-12s %d\n", "Fetched:", report.Fetched)
	fmt.Printf("  %-12s %d\n", "From cache:", report.FromCache)
	fmt.Printf("  %-12s %d\n", "Stale:", len(report.Stale))
	fmt.Printf("  %-12s %d\n", "Failed:", len(report.Failed))

	if len(report.Failed) > 0 {
		fmt.Println("\nFailed schemes:")
		codes := make([]string, 0, len(report.Failed))
		for code := range report.Failed {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			fmt.Printf("  ⚠ %s: %s\n", code, report.Failed[code])
		}
	}

	return nil
}

func fetchSchemes(cmd *cobra.Command, comps *components, codes []string) error {
	ctx := cmd.Context()
	failed := 0

	fmt.Println()
	for _, code := range codes {
		entry, err := comps.fetcher.Series(ctx, code)
		if err != nil {
			fmt.Printf("  ⚠ %s: %v\n", code, err)
			failed++
			continue
		}
		fmt.Printf("  ✅ %s: %d rows (%s to %s)\n",
			code,
			entry.Rows,
			entry.From.Format("2006-01-02"),
			entry.To.Format("2006-01-02"))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d schemes failed", failed, len(codes))
	}
	return nil
}

func runFetchDiscover(cmd *cobra.Command, args []string) error {
	category := args[0]

	fmt.Println("=== Fund Ranker Discover ===")

	comps, err := initComponents()
	if err != nil {
		return fmt.Errorf("init components: %w", err)
	}
	defer comps.close()

	if !comps.cfg.Scrape.Enabled {
		return fmt.Errorf("scraping is disabled, set SCRAPE_ENABLED=true")
	}

	ctx := cmd.Context()

	// Tracker pages get a harder throttle than the JSON API.
	httpClient := httputil.New(comps.cfg, comps.log).
		WithUserAgent(userAgent).
		WithLocalRateLimit(0.5, 1)
	scraper := scrape.NewScraper(httpClient, comps.log, comps.cfg.Scrape.BaseURL)

	fmt.Printf("\nScraping %s tracker page...\n", category)

	names, err := scraper.DiscoverFunds(ctx, category)
	if err != nil {
		return fmt.Errorf("discover funds: %w", err)
	}

	funds, err := comps.fetcher.Funds(ctx)
	if err != nil {
		return fmt.Errorf("fund list: %w", err)
	}

	matched, unmatched := matchFundNames(names, funds)

	fmt.Printf("\n✅ Found %d funds, %d matched to scheme codes\n\n", len(names), len(matched))
	for _, fund := range matched {
		fmt.Printf("  %s  %s\n", fund.SchemeCode, fund.Name)
	}
	if len(unmatched) > 0 {
		fmt.Println("\nUnmatched names:")
		for _, name := range unmatched {
			fmt.Printf("  ? %s\n", name)
		}
	}

	return nil
}

// matchFundNames resolves scraped display names against the API
// master list by case-insensitive prefix.
func matchFundNames(names []string, funds []contracts.Fund) ([]contracts.Fund, []string) {
	var matched []contracts.Fund
	var unmatched []string

	for _, name := range names {
		needle := strings.ToLower(name)
		found := false
		for _, fund := range funds {
			if strings.HasPrefix(strings.ToLower(fund.Name), needle) {
				matched = append(matched, fund)
				found = true
				break
			}
		}
		if !found {
			unmatched = append(unmatched, name)
		}
	}

	return matched, unmatched
}
