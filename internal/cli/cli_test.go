// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/triprec/internal/config"
	"github.com/tomtom215/triprec/internal/recommend"
)

const tripsCSV = `id_trip,tanggal,jam_berangkat,jam_tiba,total_penumpang,kapasitas_kursi,keterangan_operasi
V.01,2024-03-01,16:00,17:10,10,15,Normal
V.02,2024-03-01,16:30,17:40,10,15,Normal
V.03,2024-03-02,08:00,09:00,15,15,Normal
V.04,2024-03-03,12:00,13:30,5,20,Normal
V.05,2024-03-04,09:15,10:05,12,15,Normal
V.06,2024-03-05,13:00,14:00,15,15,Normal
V.07,2024-03-06,17:00,18:10,9,15,Normal
V.08,2024-03-07,06:30,07:30,3,10,Normal
V.09,2024-03-08,15:30,16:45,11,15,Normal
V.10,2024-03-09,10:00,11:00,20,20,Normal
V.11,2024-03-09,11:00,12:00,20,20,Batal
`

func testRows() []recommend.RawTrip {
	var rows []recommend.RawTrip
	for _, line := range strings.Split(strings.TrimSpace(tripsCSV), "\n")[1:] {
		f := strings.Split(line, ",")
		rows = append(rows, recommend.RawTrip{
			TripID: f[0], Date: f[1], Departure: f[2], Arrival: f[3],
			Passengers: f[4], Capacity: f[5], Status: f[6],
		})
	}
	return rows
}

// staticLoader builds one engine from testRows and counts calls.
func staticLoader(t *testing.T) (EngineLoader, *int) {
	t.Helper()
	engine, err := recommend.Build(context.Background(), testRows(), recommend.DefaultConfig(),
		recommend.BuildOptions{Source: "test"}, zerolog.Nop())
	require.NoError(t, err)

	calls := 0
	return func(context.Context, *Options) (*recommend.Engine, error) {
		calls++
		return engine, nil
	}, &calls
}

func run(t *testing.T, load EngineLoader, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand(load)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSimilar(t *testing.T) {
	load, calls := staticLoader(t)

	out, err := run(t, load, "similar", "V.01", "-k", "3")
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)
	assert.Contains(t, out, "Reference V.01")
	assert.Contains(t, out, "SIMILARITY")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	// reference, blank, header, three rows
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[3], "1"))
	assert.Contains(t, lines[3], "V.02")
	assert.Contains(t, lines[3], "1.000")
	assert.NotContains(t, strings.Join(lines[3:], "\n"), "V.01")
}

func TestSimilarJSON(t *testing.T) {
	load, _ := staticLoader(t)

	out, err := run(t, load, "--json", "similar", "V.01")
	require.NoError(t, err)

	var got recommendationView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotNil(t, got.Reference)
	assert.Equal(t, "V.01", got.Reference.ID)
	assert.Len(t, got.Recommendations, recommend.DefaultConfig().Limits.DefaultK)
	assert.Equal(t, "V.02", got.Recommendations[0].TripID)
}

func TestSimilarErrors(t *testing.T) {
	load, _ := staticLoader(t)

	tests := []struct {
		name   string
		args   []string
		target error
	}{
		{"unknown trip", []string{"similar", "X.99"}, recommend.ErrNotFound},
		{"zero k", []string{"similar", "V.01", "-k", "0"}, recommend.ErrValidation},
		{"k above corpus", []string{"similar", "V.01", "-k", "10"}, recommend.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, load, tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}

	_, err := run(t, load, "similar")
	assert.Error(t, err, "missing trip id")
}

func TestPrefer(t *testing.T) {
	load, _ := staticLoader(t)

	out, err := run(t, load, "--json", "prefer",
		"--duration", "70", "--passengers", "10", "--capacity", "15",
		"--day", "Funday", "--shift", "Sore", "-k", "5")
	require.NoError(t, err)

	var got recommendationView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotNil(t, got.Query)
	assert.Equal(t, 70.0, *got.Query.DurationMinutes)
	assert.Equal(t, []string{"hari_Funday"}, got.UnknownCategories)
	require.Len(t, got.Recommendations, 5)

	again, err := run(t, load, "--json", "prefer",
		"--duration", "70", "--passengers", "10", "--capacity", "15",
		"--day", "Funday", "--shift", "Sore", "-k", "5")
	require.NoError(t, err)
	assert.Equal(t, out, again)

	table, err := run(t, load, "prefer", "--duration", "70", "--passengers", "10", "--capacity", "15", "--day", "Funday")
	require.NoError(t, err)
	assert.Contains(t, table, "warning: hari_Funday was not seen")
}

func TestPreferRequiresNumericFlags(t *testing.T) {
	load, calls := staticLoader(t)

	_, err := run(t, load, "prefer", "--duration", "70", "--passengers", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capacity")
	assert.Zero(t, *calls)

	_, err = run(t, load, "prefer", "--duration", "70", "--passengers", "10", "--capacity", "0")
	assert.ErrorIs(t, err, recommend.ErrValidation)

	_, err = run(t, load, "prefer", "--duration", "NaN", "--passengers", "10", "--capacity", "15")
	assert.ErrorIs(t, err, recommend.ErrValidation)

	_, err = run(t, load, "prefer", "--duration", "70", "--passengers", "1e308", "--capacity", "1e-10")
	assert.ErrorIs(t, err, recommend.ErrValidation)
}

func TestModel(t *testing.T) {
	load, _ := staticLoader(t)

	out, err := run(t, load, "model")
	require.NoError(t, err)
	assert.Contains(t, out, "10 (0 dropped)")
	assert.Contains(t, out, "cosine")
	assert.Contains(t, out, "Pagi, Siang, Sore")

	out, err = run(t, load, "--json", "model")
	require.NoError(t, err)
	var status recommend.ModelStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, 10, status.Trips)
	assert.Equal(t, "test", status.Source)
}

func TestLoadFromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trips.csv")
	require.NoError(t, os.WriteFile(path, []byte(tripsCSV), 0o600))
	t.Setenv(config.ConfigPathEnvVar, "")
	t.Setenv("TRIPS_CSV_PATH", "")

	out, err := run(t, nil, "--json", "--csv", path, "model")
	require.NoError(t, err)

	var status recommend.ModelStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, 10, status.Trips)
	assert.Equal(t, 1, status.Dropped)
	assert.Equal(t, path, status.Source)
}

func TestLoadFromCSVMissingFile(t *testing.T) {
	t.Setenv(config.ConfigPathEnvVar, "")
	t.Setenv("TRIPS_CSV_PATH", "")

	_, err := run(t, nil, "--csv", filepath.Join(t.TempDir(), "missing.csv"), "model")
	assert.Error(t, err)
}
