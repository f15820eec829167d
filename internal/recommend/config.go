// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package recommend

import (
	"fmt"

	"github.com/tomtom215/triprec/internal/recommend/neighbors"
)

// Config contains all configuration for building and querying an Engine.
type Config struct {
	// Metric is the neighbor distance: "cosine" or "euclidean".
	// Default: cosine.
	Metric string `json:"metric"`

	// Limits bounds the number of recommendations per query.
	Limits LimitsConfig `json:"limits"`

	// Search tunes the brute-force scan.
	Search SearchConfig `json:"search"`

	// Classifier configures the fullness classifier trained with each build.
	Classifier ClassifierConfig `json:"classifier"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultK is used when a request does not name K. Default: 5.
	DefaultK int `json:"default_k"`

	// MaxK is the largest K a query may ask for. Default: 50.
	MaxK int `json:"max_k"`
}

// SearchConfig tunes neighbor search.
type SearchConfig struct {
	// ParallelThreshold is the N·D product above which a query scan is split
	// across goroutines. Negative disables parallel scans.
	ParallelThreshold int `json:"parallel_threshold"`

	// Workers bounds scan goroutines. Zero uses GOMAXPROCS.
	Workers int `json:"workers"`
}

// ClassifierConfig configures the "Penuh" / "Tidak Penuh" classifier.
type ClassifierConfig struct {
	// Enabled trains and evaluates the classifier on every build.
	Enabled bool `json:"enabled"`

	// K is the number of voting neighbors. Default: 5.
	K int `json:"k"`

	// TestFraction is the share of each class held out for evaluation.
	// Default: 0.2.
	TestFraction float64 `json:"test_fraction"`

	// Seed makes the train/test split reproducible. Default: 42.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Metric: neighbors.MetricCosine.String(),
		Limits: LimitsConfig{
			DefaultK: 5,
			MaxK:     50,
		},
		Search: SearchConfig{
			ParallelThreshold: neighbors.DefaultParallelThreshold,
		},
		Classifier: ClassifierConfig{
			Enabled:      true,
			K:            5,
			TestFraction: 0.2,
			Seed:         42,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, err := neighbors.ParseMetric(c.Metric); err != nil {
		return fmt.Errorf("metric: %w", err)
	}
	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k (%d) must be >= limits.default_k (%d)", c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Search.Workers < 0 {
		return fmt.Errorf("search.workers must be non-negative, got %d", c.Search.Workers)
	}
	if c.Classifier.Enabled {
		if c.Classifier.K < 1 {
			return fmt.Errorf("classifier.k must be positive, got %d", c.Classifier.K)
		}
		if c.Classifier.TestFraction <= 0 || c.Classifier.TestFraction >= 1 {
			return fmt.Errorf("classifier.test_fraction must be in (0, 1), got %f", c.Classifier.TestFraction)
		}
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
