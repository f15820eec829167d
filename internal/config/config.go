// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

// Package config loads triprec configuration from defaults, an optional YAML
// file and environment variables, in that order of precedence.
//
// Environment Variables:
//   - CONFIG_PATH: explicit config file path
//   - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, SHUTDOWN_TIMEOUT, ENVIRONMENT
//   - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
//   - TRIPS_CSV_PATH, TRIPS_CSV_DELIMITER
//   - DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS
//   - SNAPSHOT_ENABLED, SNAPSHOT_PATH
//   - RECOMMEND_* (metric, default_k, max_k, rebuild_interval, ...)
//   - API_DEFAULT_PAGE_SIZE, API_MAX_PAGE_SIZE
//   - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT, CORS_ORIGINS
package config

import (
	"time"

	"github.com/tomtom215/triprec/internal/recommend"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Database  DatabaseConfig  `koanf:"database"`
	Snapshot  SnapshotConfig  `koanf:"snapshot"`
	Recommend RecommendConfig `koanf:"recommend"`
	API       APIConfig       `koanf:"api"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// DatasetConfig locates the trip CSV.
type DatasetConfig struct {
	CSVPath   string `koanf:"csv_path"`
	Delimiter string `koanf:"delimiter"`
}

// DatabaseConfig holds DuckDB settings for dataset ingestion.
type DatabaseConfig struct {
	Path      string `koanf:"path"` // empty for an in-memory database
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = DuckDB default
}

// SnapshotConfig controls the last-good dataset snapshot.
type SnapshotConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	Metric            string        `koanf:"metric"`
	DefaultK          int           `koanf:"default_k"`
	MaxK              int           `koanf:"max_k"`
	ParallelThreshold int           `koanf:"parallel_threshold"`
	Workers           int           `koanf:"workers"`
	RebuildInterval   time.Duration `koanf:"rebuild_interval"` // 0 disables periodic rebuilds
	RebuildOnStartup  bool          `koanf:"rebuild_on_startup"`
	RebuildTimeout    time.Duration `koanf:"rebuild_timeout"`
	CacheTTL          time.Duration `koanf:"cache_ttl"` // 0 disables the result cache
	CacheEntries      int           `koanf:"cache_entries"`

	Classifier ClassifierConfig `koanf:"classifier"`
	Breaker    BreakerConfig    `koanf:"breaker"`
}

// ClassifierConfig holds fullness classifier settings.
type ClassifierConfig struct {
	Enabled      bool    `koanf:"enabled"`
	K            int     `koanf:"k"`
	TestFraction float64 `koanf:"test_fraction"`
	Seed         int64   `koanf:"seed"`
}

// BreakerConfig tunes the circuit breaker around dataset loads.
type BreakerConfig struct {
	FailureThreshold uint32        `koanf:"failure_threshold"`
	OpenTimeout      time.Duration `koanf:"open_timeout"`
}

// APIConfig holds API pagination settings
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds HTTP edge protection settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// Load reads configuration from defaults, file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// EngineConfig converts the recommend section into an engine configuration.
func (r *RecommendConfig) EngineConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.Metric = r.Metric
	cfg.Limits.DefaultK = r.DefaultK
	cfg.Limits.MaxK = r.MaxK
	cfg.Search.ParallelThreshold = r.ParallelThreshold
	cfg.Search.Workers = r.Workers
	cfg.Classifier = recommend.ClassifierConfig{
		Enabled:      r.Classifier.Enabled,
		K:            r.Classifier.K,
		TestFraction: r.Classifier.TestFraction,
		Seed:         r.Classifier.Seed,
	}
	return cfg
}

// IsProduction reports whether the server runs in production mode.
func (s *ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}
