// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tomtom215/triprec/internal/logging"
	"github.com/tomtom215/triprec/internal/metrics"
	"github.com/tomtom215/triprec/internal/recommend"
)

// TripsTable holds the most recent CSV import.
const TripsTable = "trips_raw"

// ErrMissingColumns is returned when the CSV header lacks a required column.
var ErrMissingColumns = errors.New("missing required columns")

// ImportCSV replaces TripsTable with the contents of the CSV at path and
// returns the number of imported rows.
func (db *DB) ImportCSV(ctx context.Context, path, delimiter string) (int64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if delimiter == "" {
		delimiter = ","
	}

	// read_csv takes its arguments as literals, not bind parameters.
	query := fmt.Sprintf(
		`CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv(%s, header = true, all_varchar = true, delim = %s)`,
		TripsTable, sqlString(path), sqlString(delimiter),
	)
	if _, err := db.conn.ExecContext(ctx, query); err != nil {
		return 0, fmt.Errorf("import %s: %w", path, err)
	}

	var count int64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+TripsTable).Scan(&count); err != nil {
		return 0, fmt.Errorf("count imported rows: %w", err)
	}
	return count, nil
}

// Columns returns the column names of TripsTable in file order.
func (db *DB) Columns(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_name = ? ORDER BY ordinal_position`,
		TripsTable)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer closeQuietly(rows)

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column name: %w", err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// resolveColumns maps every required column to its name as it appears in
// the header. Header names match after trimming and case folding.
func resolveColumns(header []string) (map[string]string, error) {
	byKey := make(map[string]string, len(header))
	for _, h := range header {
		byKey[strings.ToLower(strings.TrimSpace(h))] = h
	}

	resolved := make(map[string]string, len(recommend.RequiredColumns))
	var missing []string
	for _, col := range recommend.RequiredColumns {
		actual, ok := byKey[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		resolved[col] = actual
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return resolved, nil
}

// RawTrips reads TripsTable in import order. NULL cells come back empty.
func (db *DB) RawTrips(ctx context.Context) ([]recommend.RawTrip, error) {
	header, err := db.Columns(ctx)
	if err != nil {
		return nil, err
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	selectList := make([]string, len(recommend.RequiredColumns))
	for i, col := range recommend.RequiredColumns {
		selectList[i] = quoteIdent(cols[col])
	}
	// rowid follows insertion order, which is file order for read_csv.
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", strings.Join(selectList, ", "), TripsTable)

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read trips: %w", err)
	}
	defer closeQuietly(rows)

	var trips []recommend.RawTrip
	for rows.Next() {
		var id, date, dep, arr, pax, capacity, status sql.NullString
		if err := rows.Scan(&id, &date, &dep, &arr, &pax, &capacity, &status); err != nil {
			return nil, fmt.Errorf("scan trip row %d: %w", len(trips)+1, err)
		}
		trips = append(trips, recommend.RawTrip{
			TripID:     id.String,
			Date:       date.String,
			Departure:  dep.String,
			Arrival:    arr.String,
			Passengers: pax.String,
			Capacity:   capacity.String,
			Status:     status.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trips: %w", err)
	}
	return trips, nil
}

// CSVSource loads trips from a CSV file through DuckDB.
type CSVSource struct {
	db        *DB
	path      string
	delimiter string
}

// NewCSVSource returns a source reading path with the given delimiter.
func NewCSVSource(db *DB, path, delimiter string) *CSVSource {
	return &CSVSource{db: db, path: path, delimiter: delimiter}
}

// Name implements recommend.Source.
func (s *CSVSource) Name() string { return "csv" }

// Path returns the CSV path.
func (s *CSVSource) Path() string { return s.path }

// LoadTrips implements recommend.Source.
func (s *CSVSource) LoadTrips(ctx context.Context) (trips []recommend.RawTrip, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDatasetLoad(s.Name(), time.Since(start), err)
	}()

	count, err := s.db.ImportCSV(ctx, s.path, s.delimiter)
	if err != nil {
		return nil, err
	}
	trips, err = s.db.RawTrips(ctx)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Str("path", s.path).
		Int64("rows", count).
		Dur("duration", time.Since(start)).
		Msg("Trip CSV imported")
	return trips, nil
}

func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

var _ recommend.Source = (*CSVSource)(nil)
