// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeCleaner struct {
	interval atomic.Int64
}

func (f *fakeCleaner) RunCleanup(ctx context.Context, interval time.Duration) {
	f.interval.Store(int64(interval))
	<-ctx.Done()
}

func TestCacheCleanupService(t *testing.T) {
	t.Parallel()

	cleaner := &fakeCleaner{}
	svc := NewCacheCleanupService(cleaner, 0)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if got := time.Duration(cleaner.interval.Load()); got != time.Minute {
		t.Errorf("expected default interval 1m, got %v", got)
	}
}

func TestPeriodicService_KeepsRunningAfterFailures(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	svc := NewPeriodicService("gc", 5*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return errors.New("nothing to collect")
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("task ran %d times, want at least 3", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if svc.String() != "gc" {
		t.Errorf("String() = %q", svc.String())
	}
}
