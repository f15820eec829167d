// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/triprec/internal/cache"
	"github.com/tomtom215/triprec/internal/logging"
	"github.com/tomtom215/triprec/internal/metrics"
	"github.com/tomtom215/triprec/internal/recommend"
)

// Recommendation modes used as metric labels and cache namespaces.
const (
	modeReference  = "reference"
	modePreference = "preference"
	modeClassify   = "classify"
)

// TripView is a trip with its presentation attributes.
type TripView struct {
	TripID string `json:"trip_id"`
	recommend.TripDisplay
}

func tripView(t recommend.Trip) TripView {
	return TripView{TripID: t.ID, TripDisplay: recommend.DisplayOf(t)}
}

// RecommendResponse is the payload of both recommendation endpoints.
type RecommendResponse struct {
	ModelVersion      int64                      `json:"model_version"`
	K                 int                        `json:"n_recommendations"`
	Reference         *TripView                  `json:"reference,omitempty"`
	Query             *recommend.Preference      `json:"query,omitempty"`
	UnknownCategories []string                   `json:"unknown_categories,omitempty"`
	Recommendations   []recommend.Recommendation `json:"recommendations"`
}

// ClassifyResponse is the payload of POST /api/v1/recommend/classify.
type ClassifyResponse struct {
	ModelVersion int64 `json:"model_version"`
	recommend.Classification
	UnknownCategories []string `json:"unknown_categories,omitempty"`
}

// RecommendByID handles POST /api/v1/recommend/by-id.
func (h *Handler) RecommendByID(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req RecommendByIDRequest
	if !decodeJSON(rw, r, &req) {
		metrics.RecordRecommendation(modeReference, outcomeInvalid, 0)
		return
	}

	h.serveRecommendation(rw, r, modeReference, req.NRecommendations, req,
		func(ctx context.Context, e *recommend.Engine, k int) (*RecommendResponse, error) {
			recs, err := e.RecommendByReference(ctx, req.TripID, k)
			if err != nil {
				return nil, err
			}
			ref, _ := e.Trip(req.TripID)
			view := tripView(ref)
			return &RecommendResponse{Reference: &view, Recommendations: recs}, nil
		})
}

// RecommendByPreference handles POST /api/v1/recommend/by-preference.
func (h *Handler) RecommendByPreference(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req PreferenceRequest
	if !decodeJSON(rw, r, &req) {
		metrics.RecordRecommendation(modePreference, outcomeInvalid, 0)
		return
	}

	h.serveRecommendation(rw, r, modePreference, req.NRecommendations, req,
		func(ctx context.Context, e *recommend.Engine, k int) (*RecommendResponse, error) {
			pref := req.Preference()
			recs, err := e.RecommendByPreference(ctx, pref, k)
			if err != nil {
				return nil, err
			}
			return &RecommendResponse{
				Query:             &pref,
				UnknownCategories: e.UnknownCategories(pref),
				Recommendations:   recs,
			}, nil
		})
}

type recommendFunc func(ctx context.Context, e *recommend.Engine, k int) (*RecommendResponse, error)

// serveRecommendation resolves K, consults the result cache, runs query
// against the serving engine and writes the response.
func (h *Handler) serveRecommendation(rw *ResponseWriter, r *http.Request, mode string, requestedK *int, cacheParams interface{}, query recommendFunc) {
	start := time.Now()

	engine, err := h.holder.Engine()
	if err != nil {
		metrics.RecordRecommendation(mode, respondEngineError(rw, r, err), time.Since(start))
		return
	}

	k := engine.Config().Limits.DefaultK
	if requestedK != nil {
		k = *requestedK
	}

	key := cache.GenerateKey(engine.Version(), mode, struct {
		K      int         `json:"k"`
		Params interface{} `json:"params"`
	}{k, cacheParams})
	if resp, ok := h.cachedResult(key); ok {
		metrics.RecordRecommendation(mode, outcomeOK, time.Since(start))
		rw.Success(resp)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.QueryTimeout)
	defer cancel()

	resp, err := query(ctx, engine, k)
	if err != nil {
		metrics.RecordRecommendation(mode, respondEngineError(rw, r, err), time.Since(start))
		return
	}
	resp.ModelVersion = engine.Version()
	resp.K = k

	if h.results != nil {
		h.results.Set(key, resp)
	}

	metrics.RecordRecommendation(mode, outcomeOK, time.Since(start))
	logging.Ctx(r.Context()).Debug().
		Str("mode", mode).
		Int("k", k).
		Int("results", len(resp.Recommendations)).
		Int64("model_version", resp.ModelVersion).
		Msg("Recommendations served")
	rw.Success(resp)
}

func (h *Handler) cachedResult(key string) (*RecommendResponse, bool) {
	if h.results == nil {
		return nil, false
	}
	resp, ok := h.results.Get(key)
	metrics.RecordCacheLookup(ok)
	return resp, ok
}

// Classify handles POST /api/v1/recommend/classify. It predicts whether a
// trip matching the preference would be full.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	start := time.Now()

	var req PreferenceRequest
	if !decodeJSON(rw, r, &req) {
		metrics.RecordRecommendation(modeClassify, outcomeInvalid, 0)
		return
	}

	engine, err := h.holder.Engine()
	if err != nil {
		metrics.RecordRecommendation(modeClassify, respondEngineError(rw, r, err), time.Since(start))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.QueryTimeout)
	defer cancel()

	pref := req.Preference()
	c, err := engine.ClassifyPreference(ctx, pref)
	if err != nil {
		metrics.RecordRecommendation(modeClassify, respondEngineError(rw, r, err), time.Since(start))
		return
	}

	metrics.RecordRecommendation(modeClassify, outcomeOK, time.Since(start))
	rw.Success(ClassifyResponse{
		ModelVersion:      engine.Version(),
		Classification:    c,
		UnknownCategories: engine.UnknownCategories(pref),
	})
}
