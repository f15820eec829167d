// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the payload of GET /api/v1/health.
type HealthStatus struct {
	Status       string     `json:"status"`
	Version      string     `json:"version,omitempty"`
	ModelLoaded  bool       `json:"model_loaded"`
	ModelVersion int64      `json:"model_version,omitempty"`
	Trips        int        `json:"trips,omitempty"`
	BuiltAt      *time.Time `json:"built_at,omitempty"`
	Uptime       float64    `json:"uptime_seconds"`
}

// Health reports whether a model is serving. It returns 503 until the first
// successful build.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	engine := h.holder.Current()
	if engine == nil {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeModelNotLoaded, "model not loaded", HealthStatus{
			Status:  "unavailable",
			Version: h.cfg.Version,
			Uptime:  time.Since(h.startTime).Seconds(),
		})
		return
	}

	status := engine.Status()
	rw.Success(HealthStatus{
		Status:       "healthy",
		Version:      h.cfg.Version,
		ModelLoaded:  true,
		ModelVersion: status.Version,
		Trips:        status.Trips,
		BuiltAt:      &status.BuiltAt,
		Uptime:       time.Since(h.startTime).Seconds(),
	})
}

// HealthLive returns 200 while the process is alive, regardless of model
// state.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":          true,
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	})
}
