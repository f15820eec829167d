// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/triprec/internal/logging"
	"github.com/tomtom215/triprec/internal/recommend"
)

// Query outcomes used as metric labels.
const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeInvalid  = "invalid"
	outcomeNotReady = "not_ready"
	outcomeError    = "error"
)

// respondEngineError maps a recommendation error to its HTTP response and
// returns the metric outcome label.
func respondEngineError(rw *ResponseWriter, r *http.Request, err error) string {
	var (
		verr  *recommend.ValidationError
		nferr *recommend.NotFoundError
	)

	switch {
	case errors.Is(err, recommend.ErrNotReady):
		rw.ServiceUnavailable(ErrCodeModelNotLoaded, "model not loaded")
		return outcomeNotReady

	case errors.As(err, &nferr):
		rw.ErrorWithDetails(http.StatusNotFound, ErrCodeTripNotFound, err.Error(),
			map[string]string{"trip_id": nferr.TripID})
		return outcomeNotFound

	case errors.Is(err, recommend.ErrNotFound):
		rw.Error(http.StatusNotFound, ErrCodeTripNotFound, err.Error())
		return outcomeNotFound

	case errors.As(err, &verr):
		rw.ValidationError(err.Error(), map[string]string{"field": verr.Field, "reason": verr.Reason})
		return outcomeInvalid

	case errors.Is(err, recommend.ErrValidation):
		rw.ValidationError(err.Error(), nil)
		return outcomeInvalid

	case errors.Is(err, recommend.ErrClassifierDisabled):
		rw.Error(http.StatusNotImplemented, ErrCodeClassifierDisabled, err.Error())
		return outcomeError

	case errors.Is(err, context.DeadlineExceeded):
		rw.Error(http.StatusGatewayTimeout, ErrCodeTimeout, "query timed out")
		return outcomeError

	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Recommendation query failed")
		rw.InternalError("Failed to generate recommendations")
		return outcomeError
	}
}

// respondRebuildError maps a rebuild failure to its HTTP response.
func respondRebuildError(rw *ResponseWriter, r *http.Request, err error) {
	var derr *recommend.DataError

	switch {
	case errors.As(err, &derr):
		details := map[string]interface{}{"field": derr.Field}
		if derr.Row > 0 {
			details["row"] = derr.Row
		}
		if derr.TripID != "" {
			details["trip_id"] = derr.TripID
		}
		rw.ErrorWithDetails(http.StatusUnprocessableEntity, ErrCodeDataError, err.Error(), details)

	case errors.Is(err, recommend.ErrData):
		rw.Error(http.StatusUnprocessableEntity, ErrCodeDataError, err.Error())

	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		rw.ServiceUnavailable(ErrCodeServiceUnavailable, "dataset source unavailable, retry later")

	case errors.Is(err, context.DeadlineExceeded):
		rw.Error(http.StatusGatewayTimeout, ErrCodeTimeout, "rebuild timed out")

	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Model rebuild failed")
		rw.ErrorWithDetails(http.StatusInternalServerError, ErrCodeRebuildFailed, "Model rebuild failed", map[string]string{"error": err.Error()})
	}
}
