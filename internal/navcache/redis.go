package navcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/pkg/logger"
	"github.com/wonny/fundranker/pkg/redis"
)

// RedisStore keeps each series as a JSON blob with a TTL equal to the
// freshness window, so stale entries age out on their own.
type RedisStore struct {
	client *redis.Client
	prefix string
	window time.Duration
	log    *logger.Logger
}

// seriesBlob is the wire form of a cache entry.
type seriesBlob struct {
	contracts.CacheEntry
	Points []contracts.PricePoint `json:"points"`
}

// fundListBlob is the wire form of the fund master list.
type fundListBlob struct {
	FetchedAt time.Time        `json:"fetched_at"`
	Funds     []contracts.Fund `json:"funds"`
}

// NewRedisStore creates a Redis-backed series store.
func NewRedisStore(client *redis.Client, prefix string, window time.Duration, log *logger.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		window: window,
		log:    log,
	}
}

func (s *RedisStore) seriesKey(schemeCode string) string {
	return fmt.Sprintf("%s:series:%s", s.prefix, schemeCode)
}

func (s *RedisStore) seriesPattern() string {
	return fmt.Sprintf("%s:series:*", s.prefix)
}

func (s *RedisStore) fundListKey() string {
	return fmt.Sprintf("%s:funds", s.prefix)
}

// Get loads a cached series. Expired keys look like misses.
func (s *RedisStore) Get(ctx context.Context, schemeCode string) (*contracts.CacheEntry, error) {
	data, err := s.client.Redis().Get(ctx, s.seriesKey(schemeCode)).Bytes()
	if err != nil {
		return nil, contracts.ErrNotCached
	}

	var blob seriesBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		s.corrupt(schemeCode, err)
		return nil, contracts.ErrNotCached
	}

	series, err := contracts.NewPriceSeries(blob.Points)
	if err != nil {
		s.corrupt(schemeCode, err)
		return nil, contracts.ErrNotCached
	}

	entry := blob.CacheEntry
	entry.Series = series
	return &entry, nil
}

// Put stores the series with the freshness window as TTL.
func (s *RedisStore) Put(ctx context.Context, schemeCode string, series *contracts.PriceSeries) error {
	blob := seriesBlob{
		CacheEntry: contracts.CacheEntry{
			SchemeCode: schemeCode,
			FetchedAt:  time.Now(),
			Rows:       series.Len(),
			From:       series.First().Date,
			To:         series.Latest().Date,
		},
		Points: series.Points(),
	}

	data, err := json.Marshal(&blob)
	if err != nil {
		return fmt.Errorf("marshal series: %w", err)
	}

	if err := s.client.Redis().Set(ctx, s.seriesKey(schemeCode), data, s.window).Err(); err != nil {
		return fmt.Errorf("store series: %w", err)
	}
	return nil
}

// Delete removes a cached series.
func (s *RedisStore) Delete(ctx context.Context, schemeCode string) error {
	return s.client.Redis().Del(ctx, s.seriesKey(schemeCode)).Err()
}

// Clear removes every cached series and the fund list.
func (s *RedisStore) Clear(ctx context.Context) error {
	rdb := s.client.Redis()

	var cursor uint64
	for {
		keys, next, err := rdb.Scan(ctx, cursor, s.seriesPattern(), 100).Result()
		if err != nil {
			return fmt.Errorf("scan series keys: %w", err)
		}
		if len(keys) > 0 {
			if err := rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete series keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	return rdb.Del(ctx, s.fundListKey()).Err()
}

// Stats scans the series keys and summarizes the cache. Entries past
// the freshness window have already expired, so Stale stays 0 unless
// the window was shortened between runs.
func (s *RedisStore) Stats(ctx context.Context) (*contracts.CacheStats, error) {
	rdb := s.client.Redis()
	stats := &contracts.CacheStats{}
	now := time.Now()

	var cursor uint64
	for {
		keys, next, err := rdb.Scan(ctx, cursor, s.seriesPattern(), 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan series keys: %w", err)
		}

		for _, key := range keys {
			data, err := rdb.Get(ctx, key).Bytes()
			if err != nil {
				continue // expired between scan and get
			}
			var blob seriesBlob
			if err := json.Unmarshal(data, &blob); err != nil {
				continue
			}

			stats.Entries++
			stats.SizeBytes += int64(len(data))
			if blob.Fresh(now, s.window) {
				stats.Fresh++
			} else {
				stats.Stale++
			}
			if stats.OldestFetch.IsZero() || blob.FetchedAt.Before(stats.OldestFetch) {
				stats.OldestFetch = blob.FetchedAt
			}
			if blob.FetchedAt.After(stats.NewestFetch) {
				stats.NewestFetch = blob.FetchedAt
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return stats, nil
}

// FundList loads the cached fund master list and its fetch time.
func (s *RedisStore) FundList(ctx context.Context) ([]contracts.Fund, time.Time, error) {
	data, err := s.client.Redis().Get(ctx, s.fundListKey()).Bytes()
	if err != nil {
		return nil, time.Time{}, contracts.ErrNotCached
	}

	var blob fundListBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		s.corrupt("all_funds", err)
		return nil, time.Time{}, contracts.ErrNotCached
	}
	return blob.Funds, blob.FetchedAt, nil
}

// PutFundList stores the fund master list with the freshness window
// as TTL.
func (s *RedisStore) PutFundList(ctx context.Context, funds []contracts.Fund) error {
	data, err := json.Marshal(&fundListBlob{FetchedAt: time.Now(), Funds: funds})
	if err != nil {
		return fmt.Errorf("marshal fund list: %w", err)
	}
	if err := s.client.Redis().Set(ctx, s.fundListKey(), data, s.window).Err(); err != nil {
		return fmt.Errorf("store fund list: %w", err)
	}
	return nil
}

func (s *RedisStore) corrupt(schemeCode string, err error) {
	s.log.WithField("scheme_code", schemeCode).WithError(err).Warn("Corrupt cache entry, treating as miss")
}
