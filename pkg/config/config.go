package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External APIs
	MFAPI  MFAPIConfig
	Scrape ScrapeConfig

	// Local storage
	Cache    CacheConfig
	Export   ExportConfig
	Recorder RecorderConfig

	// Strategy file (YAML) with weights, categories and benchmarks
	StrategyFile string

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string
	Enabled  bool

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// MFAPIConfig holds the NAV history API configuration
type MFAPIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second
	Burst     int
}

// ScrapeConfig holds the HTML fallback source configuration
type ScrapeConfig struct {
	BaseURL string
	Enabled bool
}

// CacheConfig holds the NAV series cache configuration
type CacheConfig struct {
	Dir           string
	Backend       string // fs, redis, memory
	FreshnessDays int
}

// ExportConfig holds report output configuration
type ExportConfig struct {
	Dir string
}

// RecorderConfig holds the run history recorder configuration.
// An empty Path disables recording.
type RecorderConfig struct {
	Path string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8087"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "fundranker"),
			User:            getEnv("DB_USER", "fundranker"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			Enabled:         getEnvAsBool("DB_ENABLED", false),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External APIs
		MFAPI: MFAPIConfig{
			BaseURL:   getEnv("MFAPI_BASE_URL", "https://api.mfapi.in"),
			Timeout:   getEnvAsDuration("MFAPI_TIMEOUT", "30s"),
			RateLimit: getEnvAsFloat("MFAPI_RATE_LIMIT", 2.0),
			Burst:     getEnvAsInt("MFAPI_BURST", 1),
		},

		Scrape: ScrapeConfig{
			BaseURL: getEnv("SCRAPE_BASE_URL", "https://www.moneycontrol.com"),
			Enabled: getEnvAsBool("SCRAPE_ENABLED", false),
		},

		// Local storage
		Cache: CacheConfig{
			Dir:           getEnv("CACHE_DIR", "data/cache"),
			Backend:       getEnv("CACHE_BACKEND", "fs"),
			FreshnessDays: getEnvAsInt("CACHE_FRESHNESS_DAYS", 30),
		},

		Export: ExportConfig{
			Dir: getEnv("EXPORT_DIR", "data/reports"),
		},

		Recorder: RecorderConfig{
			Path: getEnv("RECORDER_DB_PATH", ""),
		},

		StrategyFile: getEnv("STRATEGY_FILE", "config/strategy.yaml"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Cache.Dir == "" {
		return fmt.Errorf("CACHE_DIR is required")
	}

	switch c.Cache.Backend {
	case "fs", "redis", "memory":
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of: fs, redis, memory")
	}

	if c.Cache.Backend == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("CACHE_BACKEND=redis requires REDIS_ENABLED=true")
	}

	// Database URL is required only when persistence is on
	if c.Database.Enabled && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when DB_ENABLED=true")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
