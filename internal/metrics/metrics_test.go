// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/test-metrics", "200"))

	RecordAPIRequest("GET", "/api/v1/test-metrics", "200", 15*time.Millisecond)
	RecordAPIRequest("GET", "/api/v1/test-metrics", "200", 5*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/test-metrics", "200"))
	if after-before != 2 {
		t.Errorf("api_requests_total delta = %v, want 2", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active requests = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active requests = %v, want %v", got, before)
	}
}

func TestRecordRecommendation(t *testing.T) {
	tests := []struct {
		mode    string
		outcome string
	}{
		{"reference", "ok"},
		{"reference", "not_found"},
		{"preference", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.mode+"/"+tt.outcome, func(t *testing.T) {
			counter := RecommendationsTotal.WithLabelValues(tt.mode, tt.outcome)
			before := testutil.ToFloat64(counter)
			RecordRecommendation(tt.mode, tt.outcome, time.Millisecond)
			if got := testutil.ToFloat64(counter); got != before+1 {
				t.Errorf("recommendations_total = %v, want %v", got, before+1)
			}
		})
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(RecommendationCacheHits)
	misses := testutil.ToFloat64(RecommendationCacheMisses)

	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordCacheLookup(false)

	if got := testutil.ToFloat64(RecommendationCacheHits) - hits; got != 1 {
		t.Errorf("cache hits delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(RecommendationCacheMisses) - misses; got != 2 {
		t.Errorf("cache misses delta = %v, want 2", got)
	}
}

func TestRecordModelBuild(t *testing.T) {
	success := ModelBuildsTotal.WithLabelValues("test-source", "success")
	failure := ModelBuildsTotal.WithLabelValues("test-source", "error")
	okBefore, errBefore := testutil.ToFloat64(success), testutil.ToFloat64(failure)

	RecordModelBuild("test-source", 20*time.Millisecond, nil)
	RecordModelBuild("test-source", time.Millisecond, errors.New("bad row"))

	if got := testutil.ToFloat64(success) - okBefore; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(failure) - errBefore; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
	if testutil.ToFloat64(ModelLastSuccess) == 0 {
		t.Error("last success timestamp not set")
	}
}

func TestSetServingModel(t *testing.T) {
	SetServingModel(7, 10, 1, 15, 0.75)

	checks := map[string]float64{
		"version":    testutil.ToFloat64(ModelVersion),
		"trips":      testutil.ToFloat64(ModelCorpusSize),
		"dropped":    testutil.ToFloat64(ModelDroppedRows),
		"dimensions": testutil.ToFloat64(ModelDimensions),
		"accuracy":   testutil.ToFloat64(ClassifierAccuracy),
	}
	want := map[string]float64{"version": 7, "trips": 10, "dropped": 1, "dimensions": 15, "accuracy": 0.75}
	for name, got := range checks {
		if got != want[name] {
			t.Errorf("%s = %v, want %v", name, got, want[name])
		}
	}
}

func TestRecordDatasetLoad(t *testing.T) {
	errs := DatasetLoadErrors.WithLabelValues("test-csv")
	before := testutil.ToFloat64(errs)

	RecordDatasetLoad("test-csv", time.Millisecond, nil)
	RecordDatasetLoad("test-csv", time.Millisecond, errors.New("missing column"))

	if got := testutil.ToFloat64(errs) - before; got != 1 {
		t.Errorf("load errors delta = %v, want 1", got)
	}
}

func TestSetCircuitBreakerState(t *testing.T) {
	SetCircuitBreakerState("test-breaker", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("test-breaker")); got != 2 {
		t.Errorf("breaker state = %v, want 2", got)
	}
}

func TestRecordSnapshotWrite(t *testing.T) {
	ok := SnapshotWritesTotal.WithLabelValues("success")
	bad := SnapshotWritesTotal.WithLabelValues("error")
	okBefore, badBefore := testutil.ToFloat64(ok), testutil.ToFloat64(bad)

	RecordSnapshotWrite(nil)
	RecordSnapshotWrite(errors.New("disk full"))

	if testutil.ToFloat64(ok)-okBefore != 1 || testutil.ToFloat64(bad)-badBefore != 1 {
		t.Error("snapshot write counters did not advance by one each")
	}
}

func TestStatusLabel(t *testing.T) {
	if got := StatusLabel(404); got != "404" {
		t.Errorf("StatusLabel(404) = %q", got)
	}
}
