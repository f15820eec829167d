// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package recommend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Source supplies raw trip rows for a build.
type Source interface {
	// LoadTrips returns every row in source order.
	LoadTrips(ctx context.Context) ([]RawTrip, error)

	// Name identifies the source in logs and status output.
	Name() string
}

// SwapFunc is called after a new Engine is published.
type SwapFunc func(e *Engine)

// Holder owns the Engine currently serving queries. Readers call Current or
// Engine; rebuilds publish a new Engine with a single atomic store.
type Holder struct {
	config *Config
	logger zerolog.Logger

	current atomic.Pointer[Engine]

	// rebuildMu serializes builds so versions are assigned in order.
	rebuildMu sync.Mutex
	version   int64

	hooksMu sync.RWMutex
	hooks   []SwapFunc
}

// NewHolder creates an empty Holder. Engine returns ErrNotReady until the
// first successful Rebuild.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHolder(cfg *Config, logger zerolog.Logger) (*Holder, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Holder{
		config: cfg.Clone(),
		logger: logger,
	}, nil
}

// OnSwap registers fn to run after each successful swap.
func (h *Holder) OnSwap(fn SwapFunc) {
	h.hooksMu.Lock()
	defer h.hooksMu.Unlock()
	h.hooks = append(h.hooks, fn)
}

// Current returns the serving Engine, or nil before the first build.
func (h *Holder) Current() *Engine {
	return h.current.Load()
}

// Engine returns the serving Engine or ErrNotReady.
func (h *Holder) Engine() (*Engine, error) {
	if e := h.current.Load(); e != nil {
		return e, nil
	}
	return nil, ErrNotReady
}

// Ready reports whether an Engine is serving.
func (h *Holder) Ready() bool {
	return h.current.Load() != nil
}

// Config returns a copy of the build configuration.
func (h *Holder) Config() *Config {
	return h.config.Clone()
}

// Rebuild loads rows from src and swaps in a new Engine. On any error the
// previous Engine keeps serving.
func (h *Holder) Rebuild(ctx context.Context, src Source) (*Engine, error) {
	raws, err := src.LoadTrips(ctx)
	if err != nil {
		return nil, fmt.Errorf("load trips from %s: %w", src.Name(), err)
	}
	return h.BuildFrom(ctx, raws, src.Name())
}

// BuildFrom builds a new Engine from raws and swaps it in on success.
func (h *Holder) BuildFrom(ctx context.Context, raws []RawTrip, source string) (*Engine, error) {
	h.rebuildMu.Lock()
	defer h.rebuildMu.Unlock()

	e, err := Build(ctx, raws, h.config, BuildOptions{Version: h.version + 1, Source: source}, h.logger)
	if err != nil {
		h.logger.Warn().Err(err).Str("source", source).Msg("engine build failed, keeping previous engine")
		return nil, err
	}

	h.version = e.version
	h.current.Store(e)

	h.hooksMu.RLock()
	hooks := h.hooks
	h.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn(e)
	}
	return e, nil
}
