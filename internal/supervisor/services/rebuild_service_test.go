// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/triprec/internal/recommend"
	"github.com/tomtom215/triprec/internal/snapshot"
)

func trip(id, dep, arr, pax string) recommend.RawTrip {
	return recommend.RawTrip{
		TripID:     id,
		Date:       "2024-03-01",
		Departure:  dep,
		Arrival:    arr,
		Passengers: pax,
		Capacity:   "15",
		Status:     "Normal",
	}
}

func goodRows() []recommend.RawTrip {
	return []recommend.RawTrip{
		trip("V.01", "06:00", "07:00", "10"),
		trip("V.02", "12:00", "13:15", "15"),
		trip("V.03", "16:00", "17:10", "4"),
		trip("V.04", "18:00", "19:00", "9"),
	}
}

type fakeSource struct {
	mu    sync.Mutex
	rows  []recommend.RawTrip
	err   error
	calls atomic.Int32
}

func (f *fakeSource) LoadTrips(context.Context) ([]recommend.RawTrip, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows, f.err
}

func (f *fakeSource) Name() string { return "csv" }

func (f *fakeSource) set(rows []recommend.RawTrip, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows, f.err = rows, err
}

// overlapSource records the highest number of loads in flight at once.
type overlapSource struct {
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (o *overlapSource) LoadTrips(context.Context) ([]recommend.RawTrip, error) {
	n := o.inFlight.Add(1)
	defer o.inFlight.Add(-1)
	for {
		seen := o.maxSeen.Load()
		if n <= seen || o.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	return goodRows(), nil
}

func (o *overlapSource) Name() string { return "csv" }

type memSnapshot struct {
	mu      sync.Mutex
	rows    []recommend.RawTrip
	version int64
	saves   int
}

func (m *memSnapshot) LoadTrips(context.Context) ([]recommend.RawTrip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows == nil {
		return nil, snapshot.ErrNoSnapshot
	}
	return m.rows, nil
}

func (m *memSnapshot) Name() string { return snapshot.SourceName }

func (m *memSnapshot) Save(_ context.Context, version int64, _ string, rows []recommend.RawTrip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows, m.version = rows, version
	m.saves++
	return nil
}

func newHolder(t *testing.T) *recommend.Holder {
	t.Helper()
	cfg := recommend.DefaultConfig()
	cfg.Classifier.Enabled = false
	cfg.Limits.DefaultK = 2
	h, err := recommend.NewHolder(cfg, zerolog.Nop())
	require.NoError(t, err)
	return h
}

func TestRebuildNow_SwapsAndSnapshots(t *testing.T) {
	holder := newHolder(t)
	src := &fakeSource{rows: goodRows()}
	snap := &memSnapshot{}
	svc := NewRebuildService(holder, src, snap, RebuildServiceConfig{}, zerolog.Nop())

	engine, err := svc.RebuildNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), engine.Version())
	assert.Same(t, engine, holder.Current())

	assert.Equal(t, 1, snap.saves)
	assert.Equal(t, int64(1), snap.version)
	assert.Len(t, snap.rows, 4)
}

func TestRebuildNow_SerializesLoads(t *testing.T) {
	holder := newHolder(t)
	src := &overlapSource{}
	svc := NewRebuildService(holder, src, nil, RebuildServiceConfig{}, zerolog.Nop())

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RebuildNow(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.maxSeen.Load())
	assert.Equal(t, int64(4), holder.Current().Version())
}

func TestRebuildNow_DataErrorKeepsServingModel(t *testing.T) {
	holder := newHolder(t)
	src := &fakeSource{rows: goodRows()}
	snap := &memSnapshot{}
	svc := NewRebuildService(holder, src, snap, RebuildServiceConfig{}, zerolog.Nop())

	_, err := svc.RebuildNow(context.Background())
	require.NoError(t, err)

	bad := goodRows()
	bad[2].Arrival = "not a time"
	src.set(bad, nil)

	_, err = svc.RebuildNow(context.Background())
	var derr *recommend.DataError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "V.03", derr.TripID)

	assert.Equal(t, int64(1), holder.Current().Version())
	assert.Equal(t, 1, snap.saves, "a failed build must not replace the snapshot")
}

func TestRebuildNow_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	holder := newHolder(t)
	src := &fakeSource{err: errors.New("csv unreadable")}
	svc := NewRebuildService(holder, src, nil, RebuildServiceConfig{
		BreakerFailureThreshold: 2,
		BreakerOpenTimeout:      time.Hour,
	}, zerolog.Nop())

	for i := 0; i < 2; i++ {
		_, err := svc.RebuildNow(context.Background())
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}

	_, err := svc.RebuildNow(context.Background())
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), src.calls.Load(), "an open breaker must not touch the source")
	assert.False(t, holder.Ready())
}

func runService(t *testing.T, svc *RebuildService) (cancel func() error) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	return func() error {
		stop()
		select {
		case err := <-errCh:
			return err
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return")
			return nil
		}
	}
}

func TestServe_WarmStartFromSnapshot(t *testing.T) {
	holder := newHolder(t)
	src := &fakeSource{err: errors.New("csv missing")}
	snap := &memSnapshot{rows: goodRows(), version: 7}
	svc := NewRebuildService(holder, src, snap, RebuildServiceConfig{RebuildOnStartup: true}, zerolog.Nop())

	stop := runService(t, svc)

	require.Eventually(t, holder.Ready, 2*time.Second, 5*time.Millisecond)
	status := holder.Current().Status()
	assert.Equal(t, snapshot.SourceName, status.Source)
	assert.Equal(t, 4, status.Trips)
	assert.Equal(t, 0, snap.saves, "a snapshot build is not re-saved")

	assert.ErrorIs(t, stop(), context.Canceled)
}

func TestServe_StartupBuildSkipsSnapshot(t *testing.T) {
	holder := newHolder(t)
	src := &fakeSource{rows: goodRows()}
	snap := &memSnapshot{rows: goodRows()[:2]}
	svc := NewRebuildService(holder, src, snap, RebuildServiceConfig{RebuildOnStartup: true}, zerolog.Nop())

	stop := runService(t, svc)

	require.Eventually(t, holder.Ready, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "csv", holder.Current().Status().Source)
	assert.Equal(t, 4, holder.Current().Len())

	assert.ErrorIs(t, stop(), context.Canceled)
}

func TestServe_ScheduledRebuilds(t *testing.T) {
	holder := newHolder(t)
	src := &fakeSource{rows: goodRows()}
	svc := NewRebuildService(holder, src, nil, RebuildServiceConfig{
		RebuildOnStartup: true,
		Interval:         10 * time.Millisecond,
	}, zerolog.Nop())

	stop := runService(t, svc)

	require.Eventually(t, func() bool {
		e := holder.Current()
		return e != nil && e.Version() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, stop(), context.Canceled)
}

func TestServe_NothingToServe(t *testing.T) {
	holder := newHolder(t)
	src := &fakeSource{err: errors.New("csv missing")}
	svc := NewRebuildService(holder, src, &memSnapshot{}, RebuildServiceConfig{RebuildOnStartup: true}, zerolog.Nop())

	stop := runService(t, svc)
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	assert.False(t, holder.Ready())
	assert.ErrorIs(t, stop(), context.Canceled)
	assert.Equal(t, "rebuild-service", svc.String())
}
