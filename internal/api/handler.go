// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

// Package api serves the recommendation engine over HTTP with a Chi router.
//
// Every response uses the APIResponse envelope. Engine errors map to status
// codes as follows:
//
//	no model loaded        503 MODEL_NOT_LOADED
//	unknown trip_id        404 TRIP_NOT_FOUND
//	invalid request        400 VALIDATION_ERROR
//	malformed data (rebuild) 422 DATA_ERROR
package api

import (
	"context"
	"time"

	"github.com/tomtom215/triprec/internal/cache"
	"github.com/tomtom215/triprec/internal/recommend"
)

// Rebuilder rebuilds the serving model on demand.
type Rebuilder interface {
	RebuildNow(ctx context.Context) (*recommend.Engine, error)
}

// HandlerConfig tunes handler behavior.
type HandlerConfig struct {
	// Version is the service version reported by the health endpoint.
	Version string

	// QueryTimeout bounds a single recommendation query. Default: 10s.
	QueryTimeout time.Duration

	// RebuildTimeout bounds an on-demand rebuild. Default: 2m.
	RebuildTimeout time.Duration

	// DefaultPageSize and MaxPageSize bound GET /trips pages.
	DefaultPageSize int
	MaxPageSize     int
}

// Handler holds the dependencies of every API endpoint.
type Handler struct {
	holder    *recommend.Holder
	rebuilder Rebuilder
	results   *cache.Cache[*RecommendResponse]
	cfg       HandlerConfig
	startTime time.Time
}

// NewHandler creates a Handler. rebuilder and results may be nil, which
// disables on-demand rebuilds and result caching respectively.
func NewHandler(holder *recommend.Holder, rebuilder Rebuilder, results *cache.Cache[*RecommendResponse], cfg HandlerConfig) *Handler {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 10 * time.Second
	}
	if cfg.RebuildTimeout <= 0 {
		cfg.RebuildTimeout = 2 * time.Minute
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}
	return &Handler{
		holder:    holder,
		rebuilder: rebuilder,
		results:   results,
		cfg:       cfg,
		startTime: time.Now(),
	}
}

// InvalidateResults drops every cached recommendation. It is registered as
// a Holder swap hook; version-keyed entries are already unreachable, so this
// only releases memory early.
func (h *Handler) InvalidateResults(*recommend.Engine) {
	if h.results != nil {
		h.results.Clear()
	}
}
