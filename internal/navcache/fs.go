package navcache

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/pkg/logger"
)

const (
	navDataDir  = "nav_data"
	metadataDir = "metadata"
	dateLayout  = "2006-01-02"
)

// FSStore keeps one CSV per scheme under nav_data/ and a JSON sidecar
// with fetch metadata under metadata/. Writes go through a temp file
// and rename so a crashed run never leaves a half-written entry.
type FSStore struct {
	dir    string
	window time.Duration
	log    *logger.Logger
}

// NewFSStore creates the cache directories and returns the store.
func NewFSStore(dir string, window time.Duration, log *logger.Logger) (*FSStore, error) {
	for _, sub := range []string{navDataDir, metadataDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	return &FSStore{dir: dir, window: window, log: log}, nil
}

func (s *FSStore) navPath(schemeCode string) string {
	return filepath.Join(s.dir, navDataDir, schemeCode+".csv")
}

func (s *FSStore) metaPath(schemeCode string) string {
	return filepath.Join(s.dir, metadataDir, "nav_"+schemeCode+"_metadata.json")
}

func (s *FSStore) fundListPath() string {
	return filepath.Join(s.dir, "all_funds.csv")
}

func (s *FSStore) fundListMetaPath() string {
	return filepath.Join(s.dir, metadataDir, "all_funds_metadata.json")
}

// Get loads a cached series. A missing or unreadable entry reports
// ErrNotCached; corruption is logged, not surfaced.
func (s *FSStore) Get(ctx context.Context, schemeCode string) (*contracts.CacheEntry, error) {
	meta, err := os.ReadFile(s.metaPath(schemeCode))
	if err != nil {
		return nil, contracts.ErrNotCached
	}

	var entry contracts.CacheEntry
	if err := json.Unmarshal(meta, &entry); err != nil {
		s.corrupt(schemeCode, "metadata", err)
		return nil, contracts.ErrNotCached
	}

	series, err := s.readSeries(schemeCode)
	if err != nil {
		s.corrupt(schemeCode, "nav data", err)
		return nil, contracts.ErrNotCached
	}

	entry.Series = series
	return &entry, nil
}

// Put writes the series and its metadata.
func (s *FSStore) Put(ctx context.Context, schemeCode string, series *contracts.PriceSeries) error {
	if err := s.writeSeries(schemeCode, series); err != nil {
		return fmt.Errorf("write nav data: %w", err)
	}

	entry := contracts.CacheEntry{
		SchemeCode: schemeCode,
		FetchedAt:  time.Now(),
		Rows:       series.Len(),
		From:       series.First().Date,
		To:         series.Latest().Date,
	}
	meta, err := json.MarshalIndent(&entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := atomicWrite(s.metaPath(schemeCode), meta); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	return nil
}

// Delete removes a cached entry. Deleting a missing entry is not an
// error.
func (s *FSStore) Delete(ctx context.Context, schemeCode string) error {
	for _, path := range []string{s.navPath(schemeCode), s.metaPath(schemeCode)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	return nil
}

// Clear removes every cached series and the fund list.
func (s *FSStore) Clear(ctx context.Context) error {
	navFiles, err := filepath.Glob(filepath.Join(s.dir, navDataDir, "*.csv"))
	if err != nil {
		return err
	}
	metaFiles, err := filepath.Glob(filepath.Join(s.dir, metadataDir, "nav_*_metadata.json"))
	if err != nil {
		return err
	}

	paths := append(navFiles, metaFiles...)
	paths = append(paths, s.fundListPath(), s.fundListMetaPath())
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	return nil
}

// Stats walks the metadata directory and summarizes the cache.
func (s *FSStore) Stats(ctx context.Context) (*contracts.CacheStats, error) {
	metaFiles, err := filepath.Glob(filepath.Join(s.dir, metadataDir, "nav_*_metadata.json"))
	if err != nil {
		return nil, err
	}

	stats := &contracts.CacheStats{}
	now := time.Now()

	for _, path := range metaFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var entry contracts.CacheEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}

		stats.Entries++
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

		if info, err := os.Stat(s.navPath(entry.SchemeCode)); err == nil {
			stats.SizeBytes += info.Size()
		}
	}

	return stats, nil
}

// fundListMeta mirrors the sidecar written next to the fund list.
type fundListMeta struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
}

// FundList loads the cached fund master list and its fetch time.
func (s *FSStore) FundList(ctx context.Context) ([]contracts.Fund, time.Time, error) {
	meta, err := os.ReadFile(s.fundListMetaPath())
	if err != nil {
		return nil, time.Time{}, contracts.ErrNotCached
	}
	var fm fundListMeta
	if err := json.Unmarshal(meta, &fm); err != nil {
		s.corrupt("all_funds", "metadata", err)
		return nil, time.Time{}, contracts.ErrNotCached
	}

	f, err := os.Open(s.fundListPath())
	if err != nil {
		return nil, time.Time{}, contracts.ErrNotCached
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil || len(records) < 1 {
		s.corrupt("all_funds", "csv", err)
		return nil, time.Time{}, contracts.ErrNotCached
	}

	funds := make([]contracts.Fund, 0, len(records)-1)
	for _, rec := range records[1:] { // skip header
		if len(rec) < 4 {
			continue
		}
		funds = append(funds, contracts.Fund{
			SchemeCode: rec[0],
			Name:       rec[1],
			FundHouse:  rec[2],
			Category:   rec[3],
		})
	}
	return funds, fm.Timestamp, nil
}

// PutFundList writes the fund master list with a timestamp sidecar.
func (s *FSStore) PutFundList(ctx context.Context, funds []contracts.Fund) error {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write([]string{"scheme_code", "name", "fund_house", "category"})
	for _, fund := range funds {
		_ = w.Write([]string{fund.SchemeCode, fund.Name, fund.FundHouse, fund.Category})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode fund list: %w", err)
	}
	if err := atomicWrite(s.fundListPath(), []byte(sb.String())); err != nil {
		return fmt.Errorf("write fund list: %w", err)
	}

	meta, err := json.MarshalIndent(&fundListMeta{Timestamp: time.Now(), Count: len(funds)}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fund list metadata: %w", err)
	}
	if err := atomicWrite(s.fundListMetaPath(), meta); err != nil {
		return fmt.Errorf("write fund list metadata: %w", err)
	}
	return nil
}

func (s *FSStore) readSeries(schemeCode string) (*contracts.PriceSeries, error) {
	f, err := os.Open(s.navPath(schemeCode))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("nav file has no rows")
	}

	points := make([]contracts.PricePoint, 0, len(records)-1)
	for _, rec := range records[1:] { // skip header
		if len(rec) < 2 {
			return nil, fmt.Errorf("nav row has %d columns", len(rec))
		}
		date, err := time.Parse(dateLayout, rec[0])
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", rec[0], err)
		}
		nav, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse nav %q: %w", rec[1], err)
		}
		points = append(points, contracts.PricePoint{Date: date, NAV: nav})
	}

	return contracts.NewPriceSeries(points)
}

func (s *FSStore) writeSeries(schemeCode string, series *contracts.PriceSeries) error {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write([]string{"date", "nav"})
	for _, p := range series.Points() {
		_ = w.Write([]string{
			p.Date.Format(dateLayout),
			strconv.FormatFloat(p.NAV, 'f', -1, 64),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return atomicWrite(s.navPath(schemeCode), []byte(sb.String()))
}

func (s *FSStore) corrupt(schemeCode, what string, err error) {
	s.log.WithFields(map[string]interface{}{
		"scheme_code": schemeCode,
		"what":        what,
	}).WithError(err).Warn("Corrupt cache entry, treating as miss")
}

// atomicWrite writes to a temp file in the target directory and
// renames it over the destination.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
