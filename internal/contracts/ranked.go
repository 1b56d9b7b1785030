package contracts

import "time"

// CohortScore is one fund's normalized score within a category cohort.
type CohortScore struct {
	SchemeCode string             `json:"scheme_code"`
	Name       string             `json:"name"`
	TotalScore float64            `json:"total_score"`
	Components map[string]float64 `json:"components"` // metric key: normalized value
	Missing    []string           `json:"missing,omitempty"`
	SpanDays   int                `json:"span_days"`
}

// RankedFund is a scored fund with its 1-based rank.
type RankedFund struct {
	CohortScore
	Rank int `json:"rank"`
}

// IsTopRanked checks if the fund is in the top N ranks.
func (r *RankedFund) IsTopRanked(n int) bool {
	return r.Rank <= n && r.Rank > 0
}

// FundError records a per-fund failure that did not abort the cohort.
type FundError struct {
	SchemeCode string `json:"scheme_code"`
	Stage      Stage  `json:"stage"`
	Message    string `json:"message"`
}

// RankingResult is the ordered outcome for one category and strategy.
type RankingResult struct {
	Category    string       `json:"category"`
	Strategy    string       `json:"strategy"`
	GeneratedAt time.Time    `json:"generated_at"`
	TopN        int          `json:"top_n"`
	Funds       []RankedFund `json:"funds"`
	Errors      []FundError  `json:"errors,omitempty"`
}

// Top returns the first TopN funds (fewer when the cohort is smaller).
func (r *RankingResult) Top() []RankedFund {
	n := r.TopN
	if n <= 0 || n > len(r.Funds) {
		n = len(r.Funds)
	}
	return r.Funds[:n]
}
