package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wonny/fundranker/pkg/config"
	"github.com/wonny/fundranker/pkg/httputil"
	"github.com/wonny/fundranker/pkg/logger"
)

func TestParseFundNames(t *testing.T) {
	// Sample HTML in the tracker page shape: one summary table too
	// small to carry data, one performance table with names in the
	// first cell.
	sampleHTML := `
		<html>
		<body>
		<table>
			<tr><td>As on 21 Aug 2026</td></tr>
		</table>
		<table>
			<tr><th>Scheme Name</th><th>1Y</th><th>3Y</th></tr>
			<tr><td>FUND NAME</td><td>-</td><td>-</td></tr>
			<tr><td><a href="/mutual-funds/nav/axis-small-cap/MAA617">Axis Small Cap Fund - Direct Plan - Growth</a></td><td>38.2</td><td>24.1</td></tr>
			<tr><td>Nippon India Small Cap Fund - Direct Plan - Growth</td><td>42.0</td><td>29.9</td></tr>
			<tr><td>Axis Small Cap Fund - Direct Plan - Growth</td><td>38.2</td><td>24.1</td></tr>
			<tr><td>--</td><td>-</td><td>-</td></tr>
		</table>
		</body>
		</html>
	`

	names, err := parseFundNames(sampleHTML)
	if err != nil {
		t.Fatalf("parseFundNames() error = %v", err)
	}

	// Header text, the duplicate and the placeholder row are dropped
	if len(names) != 2 {
		t.Fatalf("parseFundNames() got %d names, want 2: %v", len(names), names)
	}
	if names[0] != "Axis Small Cap Fund - Direct Plan - Growth" {
		t.Errorf("names[0] = %q", names[0])
	}
	if names[1] != "Nippon India Small Cap Fund - Direct Plan - Growth" {
		t.Errorf("names[1] = %q", names[1])
	}
}

func TestParseFundNamesLinkFallback(t *testing.T) {
	// No usable tables: the parser should fall back to fund-page links
	sampleHTML := `
		<html>
		<body>
		<table>
			<tr><td>Axis Small Cap Fund - hidden in a one-row table</td></tr>
		</table>
		<div>
			<a href="/mutual-funds/nav/axis-small-cap-fund-direct-plan/MAA617">Axis Small Cap Fund</a>
			<a href="/news/markets/today">Market news today</a>
			<a href="/mutual-funds/sbi-bluechip-fund/M123">SBI Bluechip Fund</a>
			<a href="/mutual-funds/performance-tracker/returns/small-cap-funds.html">NAV</a>
		</div>
		</body>
		</html>
	`

	names, err := parseFundNames(sampleHTML)
	if err != nil {
		t.Fatalf("parseFundNames() error = %v", err)
	}

	if len(names) != 2 {
		t.Fatalf("parseFundNames() got %d names, want 2: %v", len(names), names)
	}
	if names[0] != "Axis Small Cap Fund" {
		t.Errorf("names[0] = %q", names[0])
	}
	if names[1] != "SBI Bluechip Fund" {
		t.Errorf("names[1] = %q", names[1])
	}
}

func TestParseFundNamesEmptyPage(t *testing.T) {
	names, err := parseFundNames("<html><body></body></html>")
	if err != nil {
		t.Fatalf("parseFundNames() error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("parseFundNames() got %d names, want 0", len(names))
	}
}

func TestPlausibleFundName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Axis Small Cap Fund", true},
		{"AB", false},
		{"", false},
		{"FUND NAME", false},
		{"Scheme Name", false},
		{"NAV", false},
		{"nav", false},
	}

	for _, tt := range tests {
		if got := plausibleFundName(tt.name); got != tt.want {
			t.Errorf("plausibleFundName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDiscoverFunds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mutual-funds/performance-tracker/returns/small-cap-funds.html" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`
			<html><body>
			<table>
				<tr><th>Scheme Name</th></tr>
				<tr><td>Axis Small Cap Fund - Direct Plan - Growth</td></tr>
				<tr><td>Quant Small Cap Fund - Direct Plan - Growth</td></tr>
			</table>
			</body></html>
		`))
	}))
	defer server.Close()

	cfg := &config.Config{
		Env:      "test",
		LogLevel: "error",
	}
	log := logger.New(cfg)
	s := NewScraper(httputil.New(cfg, log).DisableRetry(), log, server.URL)

	names, err := s.DiscoverFunds(context.Background(), "smallcap")
	if err != nil {
		t.Fatalf("DiscoverFunds() error = %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("DiscoverFunds() got %d names, want 2: %v", len(names), names)
	}
	if names[0] != "Axis Small Cap Fund - Direct Plan - Growth" {
		t.Errorf("names[0] = %q", names[0])
	}
}

func TestDiscoverFundsUnknownCategory(t *testing.T) {
	s := &Scraper{}
	if _, err := s.DiscoverFunds(context.Background(), "commodity"); err == nil {
		t.Error("DiscoverFunds() with unknown category should fail")
	}
}

func TestDiscoverFundsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := &config.Config{
		Env:      "test",
		LogLevel: "error",
	}
	log := logger.New(cfg)
	s := NewScraper(httputil.New(cfg, log).DisableRetry(), log, server.URL)

	if _, err := s.DiscoverFunds(context.Background(), "midcap"); err == nil {
		t.Error("DiscoverFunds() should surface non-200 responses")
	}
}

func TestCategories(t *testing.T) {
	s := &Scraper{}
	categories := s.Categories()
	if len(categories) != 8 {
		t.Errorf("Categories() returned %d entries, want 8", len(categories))
	}

	found := make(map[string]bool, len(categories))
	for _, c := range categories {
		found[c] = true
	}
	for _, want := range []string{"smallcap", "midcap", "largecap", "index", "elss", "hybrid", "debt", "sectoral"} {
		if !found[want] {
			t.Errorf("Categories() missing %q", want)
		}
	}
}
