// Package scrape discovers fund names from HTML performance-tracker
// pages. It is the fallback discovery path for categories the JSON
// API cannot enumerate; names found here still have to be matched
// against the fund master list before they are usable.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/fundranker/pkg/httputil"
	"github.com/wonny/fundranker/pkg/logger"
)

// categorySlugs maps cohort categories to performance-tracker page slugs.
var categorySlugs = map[string]string{
	"smallcap": "small-cap-funds",
	"midcap":   "mid-cap-funds",
	"largecap": "large-cap-funds",
	"index":    "index-fundsetfs",
	"elss":     "elss-funds",
	"hybrid":   "hybrid-funds",
	"debt":     "debt-funds",
	"sectoral": "sectoral-funds",
}

// fundLinkPattern matches hrefs that point at individual fund pages.
var fundLinkPattern = regexp.MustCompile(`/mutual-funds/.*fund`)

// headerNames are table header cells that look like fund names but aren't.
var headerNames = map[string]bool{
	"FUND NAME":   true,
	"SCHEME NAME": true,
	"NAV":         true,
}

// Scraper extracts fund names from performance-tracker HTML pages.
type Scraper struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewScraper creates a new performance-tracker scraper
func NewScraper(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Scraper {
	return &Scraper{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
	}
}

// Categories returns the categories this scraper can discover.
func (s *Scraper) Categories() []string {
	out := make([]string, 0, len(categorySlugs))
	for category := range categorySlugs {
		out = append(out, category)
	}
	return out
}

// DiscoverFunds fetches the performance-tracker page for a category and
// returns the fund names listed on it, in page order, deduplicated.
func (s *Scraper) DiscoverFunds(ctx context.Context, category string) ([]string, error) {
	slug, ok := categorySlugs[category]
	if !ok {
		return nil, fmt.Errorf("no tracker page for category %q", category)
	}

	url := fmt.Sprintf("%s/mutual-funds/performance-tracker/returns/%s.html", s.baseURL, slug)
	html, err := s.fetchHTML(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch tracker page for %s: %w", category, err)
	}

	names, err := parseFundNames(html)
	if err != nil {
		return nil, fmt.Errorf("parse tracker page for %s: %w", category, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"category": category,
		"count":    len(names),
	}).Debug("Discovered funds from tracker page")
	return names, nil
}

// fetchHTML fetches a tracker page body as a string
func (s *Scraper) fetchHTML(ctx context.Context, url string) (string, error) {
	resp, err := s.httpClient.Get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), nil
}

// parseFundNames pulls fund names out of a tracker page. The primary
// source is the performance tables; if none of them yield names the
// page layout has changed, so fall back to scanning fund-page links.
func parseFundNames(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string
	record := func(name string) {
		name = strings.TrimSpace(name)
		if !plausibleFundName(name) || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}
		rows.Each(func(j int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() == 0 {
				return
			}
			record(cells.Eq(0).Text())
		})
	})

	if len(names) > 0 {
		return names, nil
	}

	doc.Find("a[href]").Each(func(i int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if !fundLinkPattern.MatchString(href) {
			return
		}
		record(link.Text())
	})

	return names, nil
}

// plausibleFundName filters out header cells and layout fragments.
func plausibleFundName(name string) bool {
	if len(name) < 3 {
		return false
	}
	return !headerNames[strings.ToUpper(name)]
}
