package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/internal/export"
	"github.com/wonny/fundranker/internal/fetch"
	"github.com/wonny/fundranker/internal/metrics"
	"github.com/wonny/fundranker/internal/navcache"
	"github.com/wonny/fundranker/internal/pipeline"
	"github.com/wonny/fundranker/internal/recorder"
	"github.com/wonny/fundranker/internal/scoring"
	"github.com/wonny/fundranker/internal/selection"
	"github.com/wonny/fundranker/internal/strategyconfig"
	"github.com/wonny/fundranker/internal/universe"
	"github.com/wonny/fundranker/pkg/config"
	"github.com/wonny/fundranker/pkg/database"
	"github.com/wonny/fundranker/pkg/httputil"
	"github.com/wonny/fundranker/pkg/logger"
	"github.com/wonny/fundranker/pkg/redis"
)

// userAgent matches a desktop browser; the NAV API rejects bare
// default agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// components is the service graph shared by the commands. db and
// redis stay nil/disabled when not configured.
type components struct {
	cfg      *config.Config
	log      *logger.Logger
	redis    *redis.Client
	db       *database.DB
	store    navcache.Store
	fetcher  *fetch.Service
	builder  *universe.Builder
	engine   *metrics.Engine
	ranker   *selection.Ranker
	exporter *export.Exporter
	strategy *strategyconfig.Config
	snapshot *strategyconfig.Snapshot
}

// initComponents builds the shared service graph from config.
func initComponents() (*components, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Strategy config (weights, categories, benchmarks)
	strategy, raw, err := strategyconfig.Load(cfg.StrategyFile)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load strategy config: %w", err)
		}
		strategy = strategyconfig.Default()
		raw = nil
		log.WithField("path", cfg.StrategyFile).Debug("Strategy file not found, using built-in defaults")
	}
	snapshot, err := strategyconfig.NewSnapshot(strategy, raw)
	if err != nil {
		return nil, fmt.Errorf("hash strategy config: %w", err)
	}

	// 4. Connect to Redis (optional)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 5. Connect to Postgres (optional)
	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
	}

	// 6. NAV series cache
	store, err := navcache.New(cfg, redisClient, log)
	if err != nil {
		return nil, fmt.Errorf("init nav cache: %w", err)
	}

	// 7. Upstream NAV API client behind a local rate limit
	httpClient := httputil.NewWithTimeout(cfg, log, cfg.MFAPI.Timeout).
		WithUserAgent(userAgent).
		WithLocalRateLimit(cfg.MFAPI.RateLimit, cfg.MFAPI.Burst)
	source := fetch.NewClient(httpClient, log, cfg.MFAPI.BaseURL)

	var navRepo contracts.NAVRepository
	if db != nil {
		navRepo = fetch.NewRepository(db.Pool)
	}

	fetcher := fetch.NewService(source, store, navRepo, fetch.Config{
		Freshness: time.Duration(cfg.Cache.FreshnessDays) * 24 * time.Hour,
	}, log)

	// 8. Analysis components from the strategy config
	builder := universe.NewBuilder(pipeline.UniverseConfig(strategy), log)

	rules, defaults := pipeline.BenchmarkRules(strategy)
	resolver := metrics.NewBenchmarkResolver(rules, defaults, pipeline.NewCacheProvider(fetcher), log)
	engine := metrics.NewEngine(metrics.DefaultConfig(), resolver, log)

	scorer, err := scoring.NewScorer(pipeline.Strategies(strategy), log)
	if err != nil {
		return nil, fmt.Errorf("init scorer: %w", err)
	}
	ranker := selection.NewRanker(scorer, strategy.Ranking.TopN, log)

	exporter := export.NewExporter(cfg.Export.Dir, log)

	return &components{
		cfg:      cfg,
		log:      log,
		redis:    redisClient,
		db:       db,
		store:    store,
		fetcher:  fetcher,
		builder:  builder,
		engine:   engine,
		ranker:   ranker,
		exporter: exporter,
		strategy: strategy,
		snapshot: snapshot,
	}, nil
}

// close releases the external connections.
func (c *components) close() {
	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		c.redis.Close()
	}
}

// runTemplate carries the strategy config provenance into run records.
func (c *components) runTemplate() pipeline.RunConfig {
	return pipeline.RunConfig{
		ConfigID:   c.snapshot.ConfigID,
		ConfigHash: c.snapshot.ConfigHash,
	}
}

// rankingRepo returns the Postgres ranking repository, nil without a
// database.
func (c *components) rankingRepo() contracts.RankingRepository {
	if c.db == nil {
		return nil
	}
	return selection.NewRepository(c.db.Pool)
}

// rankingCache returns the Redis response cache, nil when Redis is
// disabled.
func (c *components) rankingCache() *redis.Cache {
	if !c.redis.Enabled() {
		return nil
	}
	return redis.NewCache(c.redis, "fundranker")
}

// newHistory opens the run history recorder. An empty path means runs
// are not recorded.
func (c *components) newHistory() (recorder.Recorder, error) {
	if c.cfg.Recorder.Path == "" {
		return recorder.NewNoopRecorder(), nil
	}
	return recorder.NewSQLiteRecorder(c.cfg.Recorder.Path, c.log)
}

// newOrchestrator assembles the full pipeline around the shared
// components.
func (c *components) newOrchestrator(history recorder.Recorder) *pipeline.Orchestrator {
	return pipeline.NewOrchestrator(
		c.fetcher,
		c.builder,
		c.engine,
		c.ranker,
		c.exporter,
		history,
		c.rankingRepo(),
		c.rankingCache(),
		c.log,
	)
}
