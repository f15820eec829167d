// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/triprec/internal/api"
	"github.com/tomtom215/triprec/internal/cache"
	"github.com/tomtom215/triprec/internal/config"
	"github.com/tomtom215/triprec/internal/database"
	"github.com/tomtom215/triprec/internal/recommend"
	"github.com/tomtom215/triprec/internal/snapshot"
	"github.com/tomtom215/triprec/internal/supervisor"
	"github.com/tomtom215/triprec/internal/supervisor/services"
)

// snapshotGCInterval is how often the snapshot value log is compacted.
const snapshotGCInterval = 30 * time.Minute

// RecommendComponents holds the model lifecycle components.
type RecommendComponents struct {
	Holder   *recommend.Holder
	Results  *cache.Cache[*api.RecommendResponse]
	Rebuild  *services.RebuildService
	Snapshot *snapshot.Store
}

// Close releases the snapshot store.
func (c *RecommendComponents) Close() error {
	if c.Snapshot == nil {
		return nil
	}
	return c.Snapshot.Close()
}

// initRecommend creates the Holder, result cache, snapshot store and
// rebuild service, and registers the data-layer services with tree.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(cfg *config.Config, db *database.DB, logger zerolog.Logger, tree *supervisor.SupervisorTree) (*RecommendComponents, error) {
	rc := &cfg.Recommend

	holder, err := recommend.NewHolder(rc.EngineConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("create model holder: %w", err)
	}
	comps := &RecommendComponents{Holder: holder}

	if rc.CacheTTL > 0 {
		comps.Results = cache.New[*api.RecommendResponse](rc.CacheEntries, rc.CacheTTL)
		tree.AddDataService(services.NewCacheCleanupService(comps.Results, rc.CacheTTL))
	}

	var snap services.Snapshotter
	if cfg.Snapshot.Enabled {
		store, err := snapshot.Open(cfg.Snapshot.Path)
		if err != nil {
			return nil, fmt.Errorf("open snapshot store: %w", err)
		}
		comps.Snapshot = store
		snap = store

		tree.AddDataService(services.NewPeriodicService("snapshot-gc", snapshotGCInterval,
			func(context.Context) error { return store.CollectGarbage() }, logger))

		if meta, err := store.Meta(context.Background()); err == nil {
			logger.Info().
				Int64("model_version", meta.ModelVersion).
				Int("rows", meta.Rows).
				Time("saved_at", meta.SavedAt).
				Msg("snapshot available for warm start")
		}
	}

	source := database.NewCSVSource(db, cfg.Dataset.CSVPath, cfg.Dataset.Delimiter)
	comps.Rebuild = services.NewRebuildService(holder, source, snap, services.RebuildServiceConfig{
		RebuildOnStartup:        rc.RebuildOnStartup,
		Interval:                rc.RebuildInterval,
		Timeout:                 rc.RebuildTimeout,
		BreakerFailureThreshold: rc.Breaker.FailureThreshold,
		BreakerOpenTimeout:      rc.Breaker.OpenTimeout,
	}, logger)
	tree.AddDataService(comps.Rebuild)

	logger.Info().
		Str("csv_path", cfg.Dataset.CSVPath).
		Str("metric", rc.Metric).
		Int("default_k", rc.DefaultK).
		Int("max_k", rc.MaxK).
		Dur("rebuild_interval", rc.RebuildInterval).
		Bool("classifier", rc.Classifier.Enabled).
		Bool("snapshot", cfg.Snapshot.Enabled).
		Msg("recommendation engine configured")

	return comps, nil
}
