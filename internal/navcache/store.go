// Package navcache stores fetched NAV series between runs so a full
// analysis does not hammer the upstream API. Backends share one
// contract: Get returns whatever is cached with its fetch time, and
// the caller decides whether that is fresh enough.
package navcache

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/pkg/config"
	"github.com/wonny/fundranker/pkg/logger"
	"github.com/wonny/fundranker/pkg/redis"
)

// Store is a SeriesStore that also caches the fund master list.
type Store interface {
	contracts.SeriesStore

	FundList(ctx context.Context) ([]contracts.Fund, time.Time, error)
	PutFundList(ctx context.Context, funds []contracts.Fund) error
}

// New returns the cache backend selected by CACHE_BACKEND.
func New(cfg *config.Config, redisClient *redis.Client, log *logger.Logger) (Store, error) {
	window := time.Duration(cfg.Cache.FreshnessDays) * 24 * time.Hour

	switch cfg.Cache.Backend {
	case "fs":
		return NewFSStore(cfg.Cache.Dir, window, log)
	case "redis":
		return NewRedisStore(redisClient, "fundranker", window, log), nil
	case "memory":
		return NewMemoryStore(window), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
	}
}
