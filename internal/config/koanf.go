// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/triprec/config.yaml",
	"/etc/triprec/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Dataset: DatasetConfig{
			CSVPath:   "data/trips.csv",
			Delimiter: ",",
		},
		Database: DatabaseConfig{
			MaxMemory: "512MB",
		},
		Snapshot: SnapshotConfig{
			Enabled: true,
			Path:    "data/snapshot",
		},
		Recommend: RecommendConfig{
			Metric:            "cosine",
			DefaultK:          5,
			MaxK:              50,
			ParallelThreshold: 1 << 20,
			RebuildInterval:   15 * time.Minute,
			RebuildOnStartup:  true,
			RebuildTimeout:    2 * time.Minute,
			CacheTTL:          5 * time.Minute,
			CacheEntries:      1024,
			Classifier: ClassifierConfig{
				Enabled:      true,
				K:            5,
				TestFraction: 0.2,
				Seed:         42,
			},
			Breaker: BreakerConfig{
				FailureThreshold: 3,
				OpenTimeout:      5 * time.Minute,
			},
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Security: SecurityConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
	}
}

// LoadWithKoanf loads configuration in three layers:
//  1. struct defaults
//  2. YAML file (CONFIG_PATH or DefaultConfigPaths), optional
//  3. environment variables, mapped through envTransformFunc
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// LOG_LEVEL -> logging.level, TRIPS_CSV_PATH -> dataset.csv_path
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are split on commas when they arrive as strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

var envMappings = map[string]string{
	// Server
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Dataset and storage
	"trips_csv_path":      "dataset.csv_path",
	"trips_csv_delimiter": "dataset.delimiter",
	"duckdb_path":         "database.path",
	"duckdb_max_memory":   "database.max_memory",
	"duckdb_threads":      "database.threads",
	"snapshot_enabled":    "snapshot.enabled",
	"snapshot_path":       "snapshot.path",

	// Recommendation engine
	"recommend_metric":                    "recommend.metric",
	"recommend_default_k":                 "recommend.default_k",
	"recommend_max_k":                     "recommend.max_k",
	"recommend_parallel_threshold":        "recommend.parallel_threshold",
	"recommend_workers":                   "recommend.workers",
	"recommend_rebuild_interval":          "recommend.rebuild_interval",
	"recommend_rebuild_on_startup":        "recommend.rebuild_on_startup",
	"recommend_rebuild_timeout":           "recommend.rebuild_timeout",
	"recommend_cache_ttl":                 "recommend.cache_ttl",
	"recommend_cache_entries":             "recommend.cache_entries",
	"recommend_classifier_enabled":        "recommend.classifier.enabled",
	"recommend_classifier_k":              "recommend.classifier.k",
	"recommend_classifier_test_fraction":  "recommend.classifier.test_fraction",
	"recommend_classifier_seed":           "recommend.classifier.seed",
	"recommend_breaker_failure_threshold": "recommend.breaker.failure_threshold",
	"recommend_breaker_open_timeout":      "recommend.breaker.open_timeout",

	// API
	"api_default_page_size": "api.default_page_size",
	"api_max_page_size":     "api.max_page_size",

	// Security
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
}

// envTransformFunc maps known environment variables to koanf paths. Unknown
// variables map to "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
