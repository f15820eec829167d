// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package recommend

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func raw(id, date, dep, arr, pax, capacity, status string) RawTrip {
	return RawTrip{
		TripID:     id,
		Date:       date,
		Departure:  dep,
		Arrival:    arr,
		Passengers: pax,
		Capacity:   capacity,
		Status:     status,
	}
}

// tenTrips is a ten-trip Normal corpus plus one cancelled row. V.01 and V.02
// have identical features.
func tenTrips() []RawTrip {
	return []RawTrip{
		raw("V.01", "2024-03-01", "16:00", "17:10", "10", "15", "Normal"),
		raw("V.02", "2024-03-01", "16:30", "17:40", "10", "15", "Normal"),
		raw("V.03", "2024-03-02", "08:00", "09:00", "15", "15", "Normal"),
		raw("V.04", "2024-03-03", "12:00", "13:30", "5", "20", "Normal"),
		raw("X.01", "2024-03-03", "12:00", "13:30", "5", "20", "Batal"),
		raw("V.05", "2024-03-04", "09:15", "10:05", "12", "15", "Normal"),
		raw("V.06", "2024-03-05", "13:00", "14:00", "15", "15", "Normal"),
		raw("V.07", "2024-03-06", "17:00", "18:10", "9", "15", "Normal"),
		raw("V.08", "2024-03-07", "06:30", "07:30", "3", "10", "Normal"),
		raw("V.09", "2024-03-08", "15:30", "16:45", "11", "15", "Normal"),
		raw("V.10", "2024-03-09", "10:00", "11:00", "20", "20", "Normal"),
	}
}

func buildEngine(t *testing.T, raws []RawTrip, cfg *Config) *Engine {
	t.Helper()
	e, err := Build(context.Background(), raws, cfg, BuildOptions{Source: "test"}, zerolog.Nop())
	require.NoError(t, err)
	return e
}

type staticSource struct {
	rows []RawTrip
	err  error
}

func (s *staticSource) LoadTrips(context.Context) ([]RawTrip, error) { return s.rows, s.err }
func (s *staticSource) Name() string                                 { return "static" }
