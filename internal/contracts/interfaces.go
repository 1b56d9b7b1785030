package contracts

import (
	"context"
	"time"
)

// NAVSource provides fund discovery and NAV history.
type NAVSource interface {
	ListFunds(ctx context.Context) ([]Fund, error)
	FetchSeries(ctx context.Context, schemeCode string) (*PriceSeries, error)
}

// SeriesStore caches NAV series between runs. Get returns ErrNotCached
// for a missing or corrupt entry.
type SeriesStore interface {
	Get(ctx context.Context, schemeCode string) (*CacheEntry, error)
	Put(ctx context.Context, schemeCode string, series *PriceSeries) error
	Delete(ctx context.Context, schemeCode string) error
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (*CacheStats, error)
}

// MetricsEngine computes a metric bundle from a NAV series.
type MetricsEngine interface {
	Compute(ctx context.Context, fund Fund, series *PriceSeries) (*MetricsBundle, error)
}

// Ranker scores a cohort's bundles and produces an ordered result for
// one strategy.
type Ranker interface {
	Rank(ctx context.Context, category, strategy string, bundles []*MetricsBundle) (*RankingResult, error)
}

// NAVRepository persists NAV points when database persistence is on.
type NAVRepository interface {
	SaveSeries(ctx context.Context, schemeCode string, series *PriceSeries) error
	GetSeries(ctx context.Context, schemeCode string, from, to time.Time) (*PriceSeries, error)
	LatestDate(ctx context.Context, schemeCode string) (time.Time, error)
}

// RankingRepository persists ranking results.
type RankingRepository interface {
	SaveResult(ctx context.Context, result *RankingResult) error
	GetLatest(ctx context.Context, category, strategy string) (*RankingResult, error)
}
