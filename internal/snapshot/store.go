// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

// Package snapshot persists the raw rows of the last successful model build
// in BadgerDB so the service can warm start when the CSV source is missing
// or broken.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/triprec/internal/logging"
	"github.com/tomtom215/triprec/internal/metrics"
	"github.com/tomtom215/triprec/internal/recommend"
)

// Key layout.
const (
	metaKey = "snapshot:meta"
	rowsKey = "snapshot:rows"
)

// SourceName is reported by Store when used as a recommend.Source.
const SourceName = "snapshot"

// ErrNoSnapshot is returned by Load before the first Save.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Meta describes a stored snapshot.
type Meta struct {
	ModelVersion int64     `json:"model_version"`
	Source       string    `json:"source"`
	Rows         int       `json:"rows"`
	SavedAt      time.Time `json:"saved_at"`
}

// Store is a BadgerDB-backed snapshot store.
type Store struct {
	db *badger.DB
}

// Open opens or creates a store at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	return open(opts)
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored snapshot with rows from a build of version.
func (s *Store) Save(ctx context.Context, version int64, source string, rows []recommend.RawTrip) (err error) {
	defer func() { metrics.RecordSnapshotWrite(err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal rows: %w", err)
	}
	meta, err := json.Marshal(Meta{
		ModelVersion: version,
		Source:       source,
		Rows:         len(rows),
		SavedAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(rowsKey), data); err != nil {
			return fmt.Errorf("set rows: %w", err)
		}
		if err := txn.Set([]byte(metaKey), meta); err != nil {
			return fmt.Errorf("set meta: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logging.Ctx(ctx).Debug().
		Int64("model_version", version).
		Int("rows", len(rows)).
		Msg("Snapshot saved")
	return nil
}

// Meta returns the metadata of the stored snapshot.
func (s *Store) Meta(ctx context.Context) (Meta, error) {
	var meta Meta
	err := s.get(ctx, metaKey, &meta)
	return meta, err
}

// Load returns the stored rows.
func (s *Store) Load(ctx context.Context) ([]recommend.RawTrip, error) {
	var rows []recommend.RawTrip
	if err := s.get(ctx, rowsKey, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) get(ctx context.Context, key string, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoSnapshot
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dst)
		})
	})
}

// Name implements recommend.Source.
func (s *Store) Name() string { return SourceName }

// LoadTrips implements recommend.Source.
func (s *Store) LoadTrips(ctx context.Context) ([]recommend.RawTrip, error) {
	return s.Load(ctx)
}

// CollectGarbage reclaims value log space left by replaced snapshots.
func (s *Store) CollectGarbage() error {
	err := s.db.RunValueLogGC(0.5)
	if err == nil || errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
		return nil
	}
	return fmt.Errorf("value log GC: %w", err)
}

var _ recommend.Source = (*Store)(nil)
