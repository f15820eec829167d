// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package recommend

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Raw column names of the trip dataset.
const (
	ColumnTripID     = "id_trip"
	ColumnDate       = "tanggal"
	ColumnDeparture  = "jam_berangkat"
	ColumnArrival    = "jam_tiba"
	ColumnPassengers = "total_penumpang"
	ColumnCapacity   = "kapasitas_kursi"
	ColumnStatus     = "keterangan_operasi"
)

// RequiredColumns lists the raw columns every dataset must provide.
var RequiredColumns = []string{
	ColumnTripID, ColumnDate, ColumnDeparture, ColumnArrival,
	ColumnPassengers, ColumnCapacity, ColumnStatus,
}

// StatusNormal is the operational status of trips that participate in
// recommendations.
const StatusNormal = "Normal"

// Day types.
const (
	DayTypeWeekday = "Weekday"
	DayTypeWeekend = "Weekend"
)

// Departure shifts.
const (
	ShiftMorning   = "Pagi"
	ShiftMidday    = "Siang"
	ShiftAfternoon = "Sore"
)

var (
	errMissing  = errors.New("value is missing")
	dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", "2006-01-02T15:04:05Z07:00", "2006/01/02"}
	timeLayouts = []string{"15:04", "15:04:05"}
)

// RawTrip is one dataset row as read from the source, before any parsing.
// Values are kept as text so a bad cell can be reported by column.
type RawTrip struct {
	TripID     string `json:"id_trip"`
	Date       string `json:"tanggal"`
	Departure  string `json:"jam_berangkat"`
	Arrival    string `json:"jam_tiba"`
	Passengers string `json:"total_penumpang"`
	Capacity   string `json:"kapasitas_kursi"`
	Status     string `json:"keterangan_operasi"`
}

// Trip is a parsed trip with its derived attributes.
type Trip struct {
	ID              string    `json:"id_trip"`
	Date            time.Time `json:"tanggal"`
	Departure       string    `json:"jam_berangkat"`
	Arrival         string    `json:"jam_tiba"`
	DurationMinutes int       `json:"durasi_menit"`
	Passengers      int       `json:"total_penumpang"`
	Capacity        int       `json:"kapasitas_kursi"`
	Occupancy       float64   `json:"persentase_isi"`
	Day             string    `json:"hari"`
	DayType         string    `json:"jenis_hari"`
	Shift           string    `json:"shift_waktu"`
	Status          string    `json:"keterangan_operasi"`
}

// IsOperational reports whether status marks a normally operated trip.
func IsOperational(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), StatusNormal)
}

// ShiftForHour maps a departure hour to its shift: Pagi for 05-10, Siang for
// 11-14 and Sore for everything else.
func ShiftForHour(hour int) string {
	switch {
	case hour >= 5 && hour < 11:
		return ShiftMorning
	case hour >= 11 && hour < 15:
		return ShiftMidday
	default:
		return ShiftAfternoon
	}
}

// DayTypeFor returns Weekend for Saturday and Sunday, Weekday otherwise.
func DayTypeFor(day time.Weekday) string {
	if day == time.Saturday || day == time.Sunday {
		return DayTypeWeekend
	}
	return DayTypeWeekday
}

// DeriveTrip parses raw and computes the derived attributes. The returned
// error is a *DataError without a row number.
//
//nolint:gocritic // RawTrip is small and copied once per row
func DeriveTrip(raw RawTrip) (Trip, error) {
	id := strings.TrimSpace(raw.TripID)
	fail := func(field string, err error) (Trip, error) {
		return Trip{}, &DataError{TripID: id, Field: field, Err: err}
	}

	if id == "" {
		return fail(ColumnTripID, errMissing)
	}
	status := strings.TrimSpace(raw.Status)
	if status == "" {
		return fail(ColumnStatus, errMissing)
	}

	date, err := parseDate(raw.Date)
	if err != nil {
		return fail(ColumnDate, err)
	}
	dep, err := parseClock(raw.Departure)
	if err != nil {
		return fail(ColumnDeparture, err)
	}
	arr, err := parseClock(raw.Arrival)
	if err != nil {
		return fail(ColumnArrival, err)
	}
	passengers, err := parseCount(raw.Passengers)
	if err != nil {
		return fail(ColumnPassengers, err)
	}
	capacity, err := parseCount(raw.Capacity)
	if err != nil {
		return fail(ColumnCapacity, err)
	}
	if capacity <= 0 {
		return fail(ColumnCapacity, errors.New("must be positive"))
	}

	duration := arr - dep
	if duration < 0 {
		// Arrival on the following day.
		duration += 24 * 60
	}

	return Trip{
		ID:              id,
		Date:            date,
		Departure:       formatClock(dep),
		Arrival:         formatClock(arr),
		DurationMinutes: duration,
		Passengers:      passengers,
		Capacity:        capacity,
		Occupancy:       float64(passengers) / float64(capacity),
		Day:             date.Weekday().String(),
		DayType:         DayTypeFor(date.Weekday()),
		Shift:           ShiftForHour(dep / 60),
		Status:          status,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errMissing
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseClock returns minutes after midnight.
func parseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errMissing
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized time %q, want HH:MM", s)
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// maxCount bounds passenger and seat counts.
const maxCount = math.MaxInt32

// parseCount accepts integers in [0, maxCount], including integral floats
// such as "12.0" written by spreadsheet exports.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errMissing
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("must not be negative, got %d", n)
		}
		if n > maxCount {
			return 0, fmt.Errorf("must be at most %d, got %d", maxCount, n)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("not a whole number: %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("must not be negative, got %v", f)
	}
	if f > maxCount {
		return 0, fmt.Errorf("must be at most %d, got %v", maxCount, f)
	}
	return int(f), nil
}

// DeriveCorpus filters raw rows to operational trips and derives each one,
// preserving input order. Any bad row fails the whole corpus; an empty result
// is also an error. dropped counts rows excluded by status.
func DeriveCorpus(raws []RawTrip) (trips []Trip, dropped int, err error) {
	trips = make([]Trip, 0, len(raws))
	seen := make(map[string]int, len(raws))

	for i := range raws {
		row := i + 1
		if strings.TrimSpace(raws[i].Status) != "" && !IsOperational(raws[i].Status) {
			dropped++
			continue
		}

		t, err := DeriveTrip(raws[i])
		if err != nil {
			var de *DataError
			if errors.As(err, &de) {
				de.Row = row
			}
			return nil, 0, err
		}
		if first, dup := seen[t.ID]; dup {
			return nil, 0, &DataError{
				Row:    row,
				TripID: t.ID,
				Field:  ColumnTripID,
				Err:    fmt.Errorf("duplicate of row %d", first),
			}
		}
		seen[t.ID] = row
		trips = append(trips, t)
	}

	if len(trips) == 0 {
		return nil, dropped, &DataError{Err: fmt.Errorf("no %s trips among %d rows", StatusNormal, len(raws))}
	}
	return trips, dropped, nil
}
