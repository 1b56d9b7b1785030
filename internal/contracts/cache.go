package contracts

import (
	"errors"
	"time"
)

// ErrNotCached is returned by a SeriesStore when no entry exists for
// a scheme code. A corrupt entry is reported the same way.
var ErrNotCached = errors.New("series not cached")

// CacheEntry is a cached NAV series with fetch metadata.
type CacheEntry struct {
	SchemeCode string       `json:"scheme_code"`
	Series     *PriceSeries `json:"-"`
	FetchedAt  time.Time    `json:"fetched_at"`
	Rows       int          `json:"rows"`
	From       time.Time    `json:"from"`
	To         time.Time    `json:"to"`
}

// Fresh reports whether the entry was fetched within the window.
func (e *CacheEntry) Fresh(now time.Time, window time.Duration) bool {
	return now.Sub(e.FetchedAt) <= window
}

// Age returns how long ago the entry was fetched.
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// CacheStats summarizes the state of a series store.
type CacheStats struct {
	Entries     int       `json:"entries"`
	SizeBytes   int64     `json:"size_bytes"`
	OldestFetch time.Time `json:"oldest_fetch,omitempty"`
	NewestFetch time.Time `json:"newest_fetch,omitempty"`
	Fresh       int       `json:"fresh"`
	Stale       int       `json:"stale"`
}
