// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/triprec/internal/recommend/neighbors"
)

// Engine answers recommendation queries over one immutable corpus. Every
// field is written during Build and only read afterwards, so an Engine is
// safe for concurrent use without locks.
type Engine struct {
	config *Config
	logger zerolog.Logger

	trips    []Trip
	pipeline *FeaturePipeline
	scaler   *ScalerState
	index    *neighbors.Index

	classifier *Classifier
	evaluation *Evaluation

	version       int64
	source        string
	builtAt       time.Time
	buildDuration time.Duration
	dropped       int
}

// BuildOptions carries build metadata that is not part of the configuration.
type BuildOptions struct {
	// Version is stamped on the Engine. Default: 1.
	Version int64

	// Source names where the rows came from, for status reporting.
	Source string
}

// Build derives, encodes, scales and indexes raws into a new Engine. Any
// malformed row fails the whole build with a *DataError.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Build(ctx context.Context, raws []RawTrip, cfg *Config, opts BuildOptions, logger zerolog.Logger) (*Engine, error) {
	start := time.Now()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	metric, err := neighbors.ParseMetric(cfg.Metric)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if opts.Version == 0 {
		opts.Version = 1
	}

	logger = logger.With().Str("component", "recommend").Int64("version", opts.Version).Logger()

	trips, dropped, err := DeriveCorpus(raws)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pipeline := FitPipeline(trips)
	raw := make([][]float64, len(trips))
	ids := make([]string, len(trips))
	for i := range trips {
		raw[i] = pipeline.Vector(FeaturesOf(trips[i]))
		ids[i] = trips[i].ID
	}

	scaler, err := FitScaler(raw)
	if err != nil {
		return nil, &DataError{Err: err}
	}
	scaled := make([][]float64, len(raw))
	for i := range raw {
		if scaled[i], err = scaler.Transform(raw[i]); err != nil {
			return nil, &DataError{Row: i + 1, TripID: ids[i], Err: err}
		}
	}

	index, err := neighbors.New(ids, scaled, neighbors.Options{
		Metric:            metric,
		ParallelThreshold: cfg.Search.ParallelThreshold,
		Workers:           cfg.Search.Workers,
	})
	if err != nil {
		return nil, &DataError{Err: err}
	}

	e := &Engine{
		config:   cfg.Clone(),
		logger:   logger,
		trips:    trips,
		pipeline: pipeline,
		scaler:   scaler,
		index:    index,
		version:  opts.Version,
		source:   opts.Source,
		dropped:  dropped,
	}

	if cfg.Classifier.Enabled {
		labels := make([]string, len(trips))
		for i := range trips {
			labels[i] = FullnessLabel(trips[i].Occupancy)
		}
		e.classifier, e.evaluation, err = trainClassifier(ctx, ids, scaled, labels, cfg, metric)
		if err != nil {
			return nil, fmt.Errorf("train classifier: %w", err)
		}
	}

	e.builtAt = time.Now()
	e.buildDuration = e.builtAt.Sub(start)

	ev := logger.Info().
		Int("trips", len(trips)).
		Int("dropped", dropped).
		Int("dimensions", pipeline.Dim()).
		Str("metric", metric.String()).
		Dur("duration", e.buildDuration)
	if e.evaluation != nil {
		ev = ev.Float64("classifier_accuracy", e.evaluation.Accuracy)
	}
	ev.Msg("engine built")

	return e, nil
}

// Version returns the engine's model version.
func (e *Engine) Version() int64 { return e.version }

// Len returns the corpus size N.
func (e *Engine) Len() int { return len(e.trips) }

// Config returns a copy of the build configuration.
func (e *Engine) Config() *Config { return e.config.Clone() }

// Trip returns the corpus trip with the given ID.
func (e *Engine) Trip(id string) (Trip, bool) {
	pos, ok := e.index.Position(id)
	if !ok {
		return Trip{}, false
	}
	return e.trips[pos], true
}

// Trips returns a window of the corpus in corpus order.
func (e *Engine) Trips(offset, limit int) []Trip {
	if offset >= len(e.trips) || limit <= 0 {
		return []Trip{}
	}
	end := min(offset+limit, len(e.trips))
	return slices.Clone(e.trips[max(offset, 0):end])
}

// Status describes the built model.
func (e *Engine) Status() ModelStatus {
	return ModelStatus{
		Version:         e.version,
		BuiltAt:         e.builtAt,
		BuildDurationMS: e.buildDuration.Milliseconds(),
		Source:          e.source,
		Trips:           len(e.trips),
		Dropped:         e.dropped,
		Dimensions:      e.pipeline.Dim(),
		Columns:         e.pipeline.Columns(),
		Vocabulary:      e.pipeline.Vocabulary(),
		Metric:          e.index.Metric().String(),
		Evaluation:      e.evaluation,
	}
}

// RecommendByReference returns the k trips most similar to the trip with the
// given ID, excluding that trip itself.
func (e *Engine) RecommendByReference(ctx context.Context, tripID string, k int) ([]Recommendation, error) {
	pos, ok := e.index.Position(tripID)
	if !ok {
		return nil, &NotFoundError{TripID: tripID}
	}
	if err := e.checkK(k, len(e.trips)-1); err != nil {
		return nil, err
	}

	found, err := e.index.Query(ctx, e.index.Vector(pos), k+1)
	if err != nil {
		return nil, e.queryErr(err)
	}

	recs := make([]Recommendation, 0, k)
	for _, n := range found {
		if n.Position == pos {
			continue
		}
		if len(recs) == k {
			break
		}
		recs = append(recs, e.recommendation(n))
	}

	e.logger.Debug().
		Str("trip_id", tripID).
		Int("k", k).
		Int("results", len(recs)).
		Msg("recommend by reference")
	return recs, nil
}

// RecommendByPreference returns the k trips nearest to a vector built from
// the stated preferences.
//
//nolint:gocritic // Preference holds pointers and strings only
func (e *Engine) RecommendByPreference(ctx context.Context, pref Preference, k int) ([]Recommendation, error) {
	q, err := e.preferenceVector(pref)
	if err != nil {
		return nil, err
	}
	if err := e.checkK(k, len(e.trips)); err != nil {
		return nil, err
	}

	found, err := e.index.Query(ctx, q, k)
	if err != nil {
		return nil, e.queryErr(err)
	}

	recs := make([]Recommendation, len(found))
	for i, n := range found {
		recs[i] = e.recommendation(n)
	}

	e.logger.Debug().
		Int("k", k).
		Int("results", len(recs)).
		Msg("recommend by preference")
	return recs, nil
}

// ClassifyPreference predicts whether a trip matching pref would be full.
//
//nolint:gocritic // Preference holds pointers and strings only
func (e *Engine) ClassifyPreference(ctx context.Context, pref Preference) (Classification, error) {
	if e.classifier == nil {
		return Classification{}, ErrClassifierDisabled
	}
	q, err := e.preferenceVector(pref)
	if err != nil {
		return Classification{}, err
	}
	return e.classifier.Predict(ctx, q)
}

// UnknownCategories lists the categorical values of pref that were not seen
// at build time and therefore encode as zero blocks.
//
//nolint:gocritic // Preference holds pointers and strings only
func (e *Engine) UnknownCategories(pref Preference) []string {
	var out []string
	for _, c := range []struct{ family, value string }{
		{FamilyDay, pref.Day},
		{FamilyDayType, pref.DayType},
		{FamilyShift, pref.Shift},
	} {
		if c.value != "" && !e.pipeline.Known(c.family, c.value) {
			out = append(out, c.family+"_"+c.value)
		}
	}
	return out
}

func (e *Engine) preferenceVector(pref Preference) ([]float64, error) {
	f, err := pref.features()
	if err != nil {
		return nil, err
	}
	q, err := e.scaler.Transform(e.pipeline.Vector(f))
	if err != nil {
		return nil, fmt.Errorf("scale query: %w", err)
	}
	// Squared norm overflows before any single component does.
	var sq float64
	for _, x := range q {
		sq += x * x
	}
	if !isFinite(sq) {
		return nil, validationErr("preference", "values are too large to compare")
	}
	return q, nil
}

// checkK validates k against the configured limit and the number of trips
// that can be returned.
func (e *Engine) checkK(k, available int) error {
	if k < 1 {
		return validationErr("n_recommendations", "must be at least 1, got %d", k)
	}
	if k > e.config.Limits.MaxK {
		return validationErr("n_recommendations", "must be at most %d, got %d", e.config.Limits.MaxK, k)
	}
	if k > available {
		return validationErr("n_recommendations", "only %d trips can be recommended, got %d", available, k)
	}
	return nil
}

func (e *Engine) queryErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("neighbor query: %w", err)
}

func (e *Engine) recommendation(n neighbors.Neighbor) Recommendation {
	return Recommendation{
		TripID:     n.ID,
		Similarity: similarity(n.Distance),
		Distance:   n.Distance,
		Display:    DisplayOf(e.trips[n.Position]),
	}
}

// similarity converts a distance into a score in [0, 1] rounded to three
// decimals.
func similarity(distance float64) float64 {
	s := 1 - distance
	switch {
	case math.IsNaN(s), s < 0:
		s = 0
	case s > 1:
		s = 1
	}
	return math.Round(s*1000) / 1000
}
