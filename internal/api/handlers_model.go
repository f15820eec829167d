// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/triprec/internal/logging"
	"github.com/tomtom215/triprec/internal/recommend"
)

// ModelStatus handles GET /api/v1/model.
func (h *Handler) ModelStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	engine, err := h.holder.Engine()
	if err != nil {
		respondEngineError(rw, r, err)
		return
	}
	rw.Success(engine.Status())
}

// RebuildModel handles POST /api/v1/model/rebuild. It reloads the dataset
// and swaps in a new model; on failure the previous model keeps serving.
func (h *Handler) RebuildModel(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.rebuilder == nil {
		rw.Error(http.StatusNotImplemented, ErrCodeServiceUnavailable, "on-demand rebuilds are disabled")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RebuildTimeout)
	defer cancel()
	ctx = logging.ContextWithRebuildID(ctx, logging.GenerateRebuildID())

	engine, err := h.rebuilder.RebuildNow(ctx)
	if err != nil {
		respondRebuildError(rw, r, err)
		return
	}

	logging.Ctx(ctx).Info().
		Int64("model_version", engine.Version()).
		Int("trips", engine.Len()).
		Msg("Model rebuilt on request")
	rw.Success(engine.Status())
}

// ListTrips handles GET /api/v1/trips?offset=&limit=.
func (h *Handler) ListTrips(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	offset, err := intParam(r, "offset", 0)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	limit, err := intParam(r, "limit", h.cfg.DefaultPageSize)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	req := TripsRequest{Offset: offset, Limit: min(limit, h.cfg.MaxPageSize)}
	if !validateRequest(rw, &req) {
		return
	}

	engine, err := h.holder.Engine()
	if err != nil {
		respondEngineError(rw, r, err)
		return
	}

	trips := engine.Trips(req.Offset, req.Limit)
	views := make([]TripView, len(trips))
	for i := range trips {
		views[i] = tripView(trips[i])
	}

	total := engine.Len()
	rw.SuccessWithPagination(views, &PaginationMeta{
		Total:   total,
		Count:   len(views),
		Offset:  req.Offset,
		Limit:   req.Limit,
		HasMore: req.Offset+len(views) < total,
	})
}

// GetTrip handles GET /api/v1/trips/{id}.
func (h *Handler) GetTrip(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	engine, err := h.holder.Engine()
	if err != nil {
		respondEngineError(rw, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	trip, ok := engine.Trip(id)
	if !ok {
		respondEngineError(rw, r, &recommend.NotFoundError{TripID: id})
		return
	}
	rw.Success(tripView(trip))
}
