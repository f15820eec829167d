// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/triprec/internal/recommend"
	"github.com/tomtom215/triprec/internal/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// RecommendByIDRequest is the body of POST /api/v1/recommend/by-id.
type RecommendByIDRequest struct {
	TripID           string `json:"trip_id" validate:"required,max=128"`
	NRecommendations *int   `json:"n_recommendations,omitempty" validate:"omitempty,min=1"`
}

// PreferenceRequest is the body of the by-preference and classify
// endpoints. The numeric fields are required; categorical fields are
// optional and must match the model vocabulary exactly to contribute.
type PreferenceRequest struct {
	DurasiMenit      *float64 `json:"durasi_menit" validate:"required,gte=0"`
	TotalPenumpang   *float64 `json:"total_penumpang" validate:"required,gte=0"`
	KapasitasKursi   *float64 `json:"kapasitas_kursi" validate:"required,gt=0"`
	Hari             string   `json:"hari,omitempty" validate:"max=32"`
	JenisHari        string   `json:"jenis_hari,omitempty" validate:"max=32"`
	ShiftWaktu       string   `json:"shift_waktu,omitempty" validate:"max=32"`
	NRecommendations *int     `json:"n_recommendations,omitempty" validate:"omitempty,min=1"`
}

// Preference converts the request to an engine query.
func (p *PreferenceRequest) Preference() recommend.Preference {
	return recommend.Preference{
		DurationMinutes: p.DurasiMenit,
		Passengers:      p.TotalPenumpang,
		Capacity:        p.KapasitasKursi,
		Day:             p.Hari,
		DayType:         p.JenisHari,
		Shift:           p.ShiftWaktu,
	}
}

// TripsRequest holds the query parameters of GET /api/v1/trips.
type TripsRequest struct {
	Offset int `json:"offset" validate:"min=0"`
	Limit  int `json:"limit" validate:"min=1"`
}

// decodeJSON reads a JSON body into dst and validates it. It writes the
// error response itself and reports whether the handler may continue.
func decodeJSON(rw *ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(rw.w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		msg := "Invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "Request body is empty"
		}
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeInvalidJSON, msg, map[string]string{"error": err.Error()})
		return false
	}
	return validateRequest(rw, dst)
}

// validateRequest runs struct validation and writes a 400 on failure.
func validateRequest(rw *ResponseWriter, v interface{}) bool {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return true
	}
	apiErr := verr.ToAPIError()
	rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
	return false
}

// intParam parses an optional integer query parameter.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
