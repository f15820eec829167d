// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrData marks a build failure caused by malformed trip data.
	ErrData = errors.New("invalid trip data")

	// ErrValidation marks a rejected query.
	ErrValidation = errors.New("invalid recommendation request")

	// ErrNotFound is returned when a reference trip ID is not in the corpus.
	ErrNotFound = errors.New("trip not found")

	// ErrNotReady is returned by Holder.Engine before the first successful build.
	ErrNotReady = errors.New("recommendation engine not loaded")

	// ErrClassifierDisabled is returned by ClassifyPreference when the engine
	// was built without a classifier.
	ErrClassifierDisabled = errors.New("fullness classifier disabled")
)

// DataError describes the row and field that failed a build.
type DataError struct {
	// Row is the 1-based input row, or 0 when the failure is not row specific.
	Row int

	// TripID is the row's id_trip value when known.
	TripID string

	// Field is the raw column name.
	Field string

	Err error
}

func (e *DataError) Error() string {
	switch {
	case e.Row == 0 && e.Field == "":
		return fmt.Sprintf("invalid trip data: %v", e.Err)
	case e.Row == 0:
		return fmt.Sprintf("invalid trip data: field %s: %v", e.Field, e.Err)
	case e.TripID != "":
		return fmt.Sprintf("invalid trip data: row %d (%s) field %s: %v", e.Row, e.TripID, e.Field, e.Err)
	default:
		return fmt.Sprintf("invalid trip data: row %d field %s: %v", e.Row, e.Field, e.Err)
	}
}

func (e *DataError) Unwrap() error { return e.Err }

// Is reports ErrData so callers can match without errors.As.
func (e *DataError) Is(target error) bool { return target == ErrData }

// ValidationError describes a rejected request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError names the trip ID that was not found.
type NotFoundError struct {
	TripID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("trip %q not found", e.TripID)
}

// Is reports ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func validationErr(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
