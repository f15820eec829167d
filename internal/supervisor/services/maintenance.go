// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CacheCleaner evicts expired entries on an interval until ctx ends.
type CacheCleaner interface {
	RunCleanup(ctx context.Context, interval time.Duration)
}

// CacheCleanupService runs a cache's cleanup loop under supervision.
type CacheCleanupService struct {
	cache    CacheCleaner
	interval time.Duration
}

// NewCacheCleanupService creates a cleanup service. A non-positive interval
// becomes one minute.
func NewCacheCleanupService(cache CacheCleaner, interval time.Duration) *CacheCleanupService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheCleanupService{cache: cache, interval: interval}
}

// Serve implements suture.Service.
func (s *CacheCleanupService) Serve(ctx context.Context) error {
	s.cache.RunCleanup(ctx, s.interval)
	return ctx.Err()
}

func (s *CacheCleanupService) String() string {
	return "result-cache-cleanup"
}

// PeriodicService runs task every interval. A failing task is logged and
// retried on the next tick; it never restarts the service.
type PeriodicService struct {
	name     string
	interval time.Duration
	task     func(ctx context.Context) error
	logger   zerolog.Logger
}

// NewPeriodicService creates a PeriodicService. A non-positive interval
// becomes ten minutes.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPeriodicService(name string, interval time.Duration, task func(ctx context.Context) error, logger zerolog.Logger) *PeriodicService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &PeriodicService{
		name:     name,
		interval: interval,
		task:     task,
		logger:   logger.With().Str("service", name).Logger(),
	}
}

// Serve implements suture.Service.
func (s *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.task(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("periodic task failed")
			}
		}
	}
}

func (s *PeriodicService) String() string {
	return s.name
}
