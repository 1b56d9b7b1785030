package navcache

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/fundranker/internal/contracts"
)

// MemoryStore holds entries in process memory. Used in tests and for
// one-shot CLI runs where nothing should touch disk.
type MemoryStore struct {
	mu     sync.RWMutex
	window time.Duration

	entries   map[string]contracts.CacheEntry
	funds     []contracts.Fund
	fundsTime time.Time
}

// NewMemoryStore creates an in-memory series store.
func NewMemoryStore(window time.Duration) *MemoryStore {
	return &MemoryStore{
		window:  window,
		entries: make(map[string]contracts.CacheEntry),
	}
}

// Get returns the cached entry for a scheme.
func (s *MemoryStore) Get(ctx context.Context, schemeCode string) (*contracts.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[schemeCode]
	if !ok {
		return nil, contracts.ErrNotCached
	}
	return &entry, nil
}

// Put stores the series.
func (s *MemoryStore) Put(ctx context.Context, schemeCode string, series *contracts.PriceSeries) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[schemeCode] = contracts.CacheEntry{
		SchemeCode: schemeCode,
		Series:     series,
		FetchedAt:  time.Now(),
		Rows:       series.Len(),
		From:       series.First().Date,
		To:         series.Latest().Date,
	}
	return nil
}

// Delete removes an entry.
func (s *MemoryStore) Delete(ctx context.Context, schemeCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, schemeCode)
	return nil
}

// Clear removes all entries and the fund list.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]contracts.CacheEntry)
	s.funds = nil
	s.fundsTime = time.Time{}
	return nil
}

// Stats summarizes the cache. SizeBytes approximates each point as
// 16 bytes since nothing is serialized.
func (s *MemoryStore) Stats(ctx context.Context) (*contracts.CacheStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &contracts.CacheStats{}
	now := time.Now()

	for _, entry := range s.entries {
		stats.Entries++
		stats.SizeBytes += int64(entry.Rows) * 16
		if entry.Fresh(now, s.window) {
			stats.Fresh++
		} else {
			stats.Stale++
		}
		if stats.OldestFetch.IsZero() || entry.FetchedAt.Before(stats.OldestFetch) {
			stats.OldestFetch = entry.FetchedAt
		}
		if entry.FetchedAt.After(stats.NewestFetch) {
			stats.NewestFetch = entry.FetchedAt
		}
	}

	return stats, nil
}

// FundList returns the cached fund master list.
func (s *MemoryStore) FundList(ctx context.Context) ([]contracts.Fund, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.funds == nil {
		return nil, time.Time{}, contracts.ErrNotCached
	}
	funds := make([]contracts.Fund, len(s.funds))
	copy(funds, s.funds)
	return funds, s.fundsTime, nil
}

// PutFundList stores the fund master list.
func (s *MemoryStore) PutFundList(ctx context.Context, funds []contracts.Fund) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.funds = make([]contracts.Fund, len(funds))
	copy(s.funds, funds)
	s.fundsTime = time.Now()
	return nil
}
