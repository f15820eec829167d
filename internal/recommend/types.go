// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package recommend

import (
	"math"
	"time"
)

// Preference is a by-preference query. The three numeric fields are
// required; the categorical fields are optional and match the build
// vocabulary exactly.
type Preference struct {
	// DurationMinutes is the desired trip length.
	DurationMinutes *float64 `json:"durasi_menit"`

	// Passengers is the expected passenger count.
	Passengers *float64 `json:"total_penumpang"`

	// Capacity is the seat capacity; must be positive.
	Capacity *float64 `json:"kapasitas_kursi"`

	// Day is an English day name, e.g. "Friday".
	Day string `json:"hari,omitempty"`

	// DayType is "Weekday" or "Weekend".
	DayType string `json:"jenis_hari,omitempty"`

	// Shift is "Pagi", "Siang" or "Sore".
	Shift string `json:"shift_waktu,omitempty"`
}

// features validates p and derives the occupancy ratio.
func (p *Preference) features() (Features, error) {
	if p.DurationMinutes == nil {
		return Features{}, validationErr(FeatureDuration, "is required")
	}
	if p.Passengers == nil {
		return Features{}, validationErr(FeaturePassengers, "is required")
	}
	if p.Capacity == nil {
		return Features{}, validationErr(FeatureCapacity, "is required")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{FeatureDuration, *p.DurationMinutes},
		{FeaturePassengers, *p.Passengers},
		{FeatureCapacity, *p.Capacity},
	} {
		if !isFinite(f.v) {
			return Features{}, validationErr(f.name, "must be a finite number")
		}
	}
	if *p.DurationMinutes < 0 {
		return Features{}, validationErr(FeatureDuration, "must not be negative")
	}
	if *p.Passengers < 0 {
		return Features{}, validationErr(FeaturePassengers, "must not be negative")
	}
	if *p.Capacity <= 0 {
		return Features{}, validationErr(FeatureCapacity, "must be positive")
	}
	occupancy := *p.Passengers / *p.Capacity
	if !isFinite(occupancy) {
		return Features{}, validationErr(FeatureOccupancy, "passengers per seat overflows")
	}
	return Features{
		DurationMinutes: *p.DurationMinutes,
		Passengers:      *p.Passengers,
		Capacity:        *p.Capacity,
		Occupancy:       occupancy,
		Day:             p.Day,
		DayType:         p.DayType,
		Shift:           p.Shift,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Float64 returns a pointer to v, for building Preference literals.
func Float64(v float64) *float64 { return &v }

// Recommendation is one ranked result.
type Recommendation struct {
	// TripID identifies the recommended trip.
	TripID string `json:"trip_id"`

	// Similarity is 1 - distance, clamped to [0, 1] and rounded to 3 decimals.
	Similarity float64 `json:"similarity"`

	// Distance is the raw metric distance used for ranking.
	Distance float64 `json:"distance"`

	// Display carries human-readable trip attributes.
	Display TripDisplay `json:"display"`
}

// TripDisplay is the presentation view of a trip.
type TripDisplay struct {
	Date            string  `json:"date"`
	Departure       string  `json:"departure"`
	Arrival         string  `json:"arrival"`
	DurationMinutes int     `json:"duration_minutes"`
	PassengerCount  int     `json:"passenger_count"`
	SeatCapacity    int     `json:"seat_capacity"`
	Occupancy       float64 `json:"occupancy"`
	Day             string  `json:"day"`
	DayType         string  `json:"day_type"`
	Shift           string  `json:"shift"`
}

// DisplayOf returns the presentation view of t.
//
//nolint:gocritic // Trip is read-only here
func DisplayOf(t Trip) TripDisplay {
	return TripDisplay{
		Date:            t.Date.Format("2006-01-02"),
		Departure:       t.Departure,
		Arrival:         t.Arrival,
		DurationMinutes: t.DurationMinutes,
		PassengerCount:  t.Passengers,
		SeatCapacity:    t.Capacity,
		Occupancy:       t.Occupancy,
		Day:             t.Day,
		DayType:         t.DayType,
		Shift:           t.Shift,
	}
}

// ModelStatus describes a built Engine.
type ModelStatus struct {
	// Version increases by one with every successful build in a Holder.
	Version int64 `json:"version"`

	// BuiltAt is when the build finished.
	BuiltAt time.Time `json:"built_at"`

	// BuildDurationMS is how long the build took.
	BuildDurationMS int64 `json:"build_duration_ms"`

	// Source names where the rows came from.
	Source string `json:"source,omitempty"`

	// Trips is the corpus size N.
	Trips int `json:"trips"`

	// Dropped is the number of rows excluded by operational status.
	Dropped int `json:"dropped"`

	// Dimensions is the vector width D.
	Dimensions int `json:"dimensions"`

	// Columns are the feature names in vector order.
	Columns []string `json:"columns"`

	// Vocabulary is the fitted categorical vocabulary.
	Vocabulary Vocabulary `json:"vocabulary"`

	// Metric is the neighbor distance in use.
	Metric string `json:"metric"`

	// Evaluation is the classifier hold-out report, when available.
	Evaluation *Evaluation `json:"evaluation,omitempty"`
}
