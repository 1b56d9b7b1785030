package contracts

import "time"

// FetchReport summarizes a NAV collection pass over a fund list.
type FetchReport struct {
	Date      time.Time         `json:"date"`
	Total     int               `json:"total"`
	Fetched   int               `json:"fetched"`    // fetched upstream this pass
	FromCache int               `json:"from_cache"` // served by a fresh cache entry
	Stale     []string          `json:"stale,omitempty"`  // served from a stale entry
	Failed    map[string]string `json:"failed,omitempty"` // scheme code: reason
}

// Complete reports whether every fund was served.
func (r *FetchReport) Complete() bool {
	return len(r.Failed) == 0
}

// CacheHitRate returns the fraction of funds served from cache.
func (r *FetchReport) CacheHitRate() float64 {
	if r.Total == 0 {
		return 0.0
	}
	return float64(r.FromCache) / float64(r.Total)
}
