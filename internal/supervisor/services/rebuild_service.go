// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/triprec/internal/logging"
	"github.com/tomtom215/triprec/internal/metrics"
	"github.com/tomtom215/triprec/internal/recommend"
	"github.com/tomtom215/triprec/internal/snapshot"
)

// Snapshotter stores the rows of the last good build and serves them back
// as a fallback source.
type Snapshotter interface {
	recommend.Source
	Save(ctx context.Context, version int64, source string, rows []recommend.RawTrip) error
}

// RebuildServiceConfig configures the rebuild loop.
type RebuildServiceConfig struct {
	// RebuildOnStartup builds from the primary source when the service starts.
	RebuildOnStartup bool

	// Interval between scheduled rebuilds. Zero disables scheduled rebuilds.
	Interval time.Duration

	// Timeout bounds one rebuild. Default: 2m.
	Timeout time.Duration

	// BreakerFailureThreshold is the number of consecutive load failures
	// that opens the breaker. Default: 3.
	BreakerFailureThreshold uint32

	// BreakerOpenTimeout is how long the breaker stays open. Default: 1m.
	BreakerOpenTimeout time.Duration
}

// RebuildService keeps the Holder's Engine fresh. Dataset loads go through a
// circuit breaker; a failed build never replaces the serving Engine.
type RebuildService struct {
	holder   *recommend.Holder
	source   recommend.Source
	snapshot Snapshotter
	breaker  *gobreaker.CircuitBreaker[[]recommend.RawTrip]
	config   RebuildServiceConfig
	logger   zerolog.Logger
	name     string

	// loadMu serializes source loads; the CSV source reimports into one
	// shared table.
	loadMu sync.Mutex

	// saveMu orders snapshot writes with the builds that produced them.
	saveMu sync.Mutex
}

// NewRebuildService creates a rebuild service. snap may be nil to disable
// snapshots.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRebuildService(holder *recommend.Holder, source recommend.Source, snap Snapshotter, cfg RebuildServiceConfig, logger zerolog.Logger) *RebuildService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.BreakerFailureThreshold == 0 {
		cfg.BreakerFailureThreshold = 3
	}
	if cfg.BreakerOpenTimeout <= 0 {
		cfg.BreakerOpenTimeout = time.Minute
	}

	s := &RebuildService{
		holder:   holder,
		source:   source,
		snapshot: snap,
		config:   cfg,
		logger:   logger.With().Str("service", "rebuild").Logger(),
		name:     "rebuild-service",
	}
	s.breaker = newLoadBreaker(source.Name()+"-source", cfg, s.logger)

	holder.OnSwap(publishModelMetrics)
	return s
}

func newLoadBreaker(name string, cfg RebuildServiceConfig, logger zerolog.Logger) *gobreaker.CircuitBreaker[[]recommend.RawTrip] {
	metrics.SetCircuitBreakerState(name, stateToInt(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker[[]recommend.RawTrip](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailureThreshold
		},
		// Shutdown is not a source failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("dataset source breaker state changed")
			metrics.SetCircuitBreakerState(name, stateToInt(to))
		},
	})
}

// Serve implements suture.Service.
func (s *RebuildService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("rebuild_on_startup", s.config.RebuildOnStartup).
		Dur("interval", s.config.Interval).
		Str("source", s.source.Name()).
		Msg("rebuild service starting")

	if s.config.RebuildOnStartup && !s.holder.Ready() {
		if _, err := s.RebuildNow(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("startup build failed")
		}
	}
	if !s.holder.Ready() {
		s.warmStart(ctx)
	}

	if s.config.Interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("rebuild service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if _, err := s.RebuildNow(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled rebuild failed, previous model keeps serving")
			}
		}
	}
}

// RebuildNow loads the primary source and swaps in a new Engine. On success
// the loaded rows replace the snapshot.
func (s *RebuildService) RebuildNow(ctx context.Context) (*recommend.Engine, error) {
	if logging.RebuildIDFromContext(ctx) == "" {
		ctx = logging.ContextWithRebuildID(ctx, logging.GenerateRebuildID())
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	name := s.source.Name()

	rows, err := s.load(ctx)
	if err != nil {
		metrics.RecordModelBuild(name, time.Since(start), err)
		return nil, fmt.Errorf("load trips from %s: %w", name, err)
	}

	engine, err := s.holder.BuildFrom(ctx, rows, name)
	metrics.RecordModelBuild(name, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Int64("model_version", engine.Version()).
		Int("trips", engine.Len()).
		Dur("duration", time.Since(start)).
		Msg("model rebuilt")

	s.saveSnapshot(ctx, engine, rows)
	return engine, nil
}

func (s *RebuildService) load(ctx context.Context) ([]recommend.RawTrip, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	return s.breaker.Execute(func() ([]recommend.RawTrip, error) {
		return s.source.LoadTrips(ctx)
	})
}

// warmStart serves the last good snapshot until the primary source recovers.
func (s *RebuildService) warmStart(ctx context.Context) {
	if s.snapshot == nil {
		s.logger.Warn().Msg("no model loaded and snapshots are disabled")
		return
	}

	start := time.Now()
	rows, err := s.snapshot.LoadTrips(ctx)
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		s.logger.Warn().Msg("no model loaded and no snapshot stored yet")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("snapshot load failed")
		return
	}

	engine, err := s.holder.BuildFrom(ctx, rows, s.snapshot.Name())
	metrics.RecordModelBuild(s.snapshot.Name(), time.Since(start), err)
	if err != nil {
		s.logger.Error().Err(err).Msg("snapshot build failed")
		return
	}
	s.logger.Info().
		Int64("model_version", engine.Version()).
		Int("trips", engine.Len()).
		Msg("serving model from snapshot")
}

func (s *RebuildService) saveSnapshot(ctx context.Context, engine *recommend.Engine, rows []recommend.RawTrip) {
	if s.snapshot == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	// A newer build already replaced the snapshot.
	if cur := s.holder.Current(); cur != nil && cur.Version() != engine.Version() {
		return
	}
	if err := s.snapshot.Save(ctx, engine.Version(), s.source.Name(), rows); err != nil {
		s.logger.Warn().Err(err).Msg("snapshot save failed")
	}
}

// String identifies the service in supervisor events.
func (s *RebuildService) String() string {
	return s.name
}

func publishModelMetrics(e *recommend.Engine) {
	status := e.Status()
	accuracy := 0.0
	if status.Evaluation != nil {
		accuracy = status.Evaluation.Accuracy
	}
	metrics.SetServingModel(status.Version, status.Trips, status.Dropped, status.Dimensions, accuracy)
}

func stateToInt(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
