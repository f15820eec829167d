// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

// Package metrics defines the Prometheus collectors exported on /metrics.
//
// Collectors are registered with the default registry through promauto and
// updated through the Record* helpers so call sites stay one line.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triprec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "triprec_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "triprec_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triprec_recommendations_total",
			Help: "Total number of recommendation queries by mode and outcome",
		},
		[]string{"mode", "outcome"}, // mode: "reference", "preference"; outcome: "ok", "not_found", "invalid", "error"
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "triprec_recommendation_duration_seconds",
			Help:    "Duration of recommendation queries in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"mode"},
	)

	RecommendationCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "triprec_recommendation_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	RecommendationCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "triprec_recommendation_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	// Model Build Metrics
	ModelBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triprec_model_builds_total",
			Help: "Total number of model builds by source and status",
		},
		[]string{"source", "status"}, // status: "success", "error"
	)

	ModelBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "triprec_model_build_duration_seconds",
			Help:    "Duration of successful model builds in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "triprec_model_version",
			Help: "Version of the model currently serving",
		},
	)

	ModelCorpusSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "triprec_model_corpus_trips",
			Help: "Number of trips in the serving corpus",
		},
	)

	ModelDroppedRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "triprec_model_dropped_rows",
			Help: "Rows filtered out of the serving corpus by operational status",
		},
	)

	ModelDimensions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "triprec_model_feature_dimensions",
			Help: "Feature vector width of the serving model",
		},
	)

	ModelLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "triprec_model_last_success_timestamp_seconds",
			Help: "Unix time of the last successful model build",
		},
	)

	ClassifierAccuracy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "triprec_classifier_accuracy",
			Help: "Held-out accuracy of the fullness classifier for the serving model",
		},
	)

	// Dataset Metrics
	DatasetLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "triprec_dataset_load_duration_seconds",
			Help:    "Duration of dataset loads in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	DatasetLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triprec_dataset_load_errors_total",
			Help: "Total number of failed dataset loads",
		},
		[]string{"source"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "triprec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	SnapshotWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triprec_snapshot_writes_total",
			Help: "Total number of snapshot writes by status",
		},
		[]string{"status"},
	)
)

// RecordAPIRequest records an API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records one recommendation query.
func RecordRecommendation(mode, outcome string, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(mode, outcome).Inc()
	RecommendationDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordCacheLookup records a recommendation cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		RecommendationCacheHits.Inc()
	} else {
		RecommendationCacheMisses.Inc()
	}
}

// RecordModelBuild records a build attempt. Failed builds leave the
// serving-model gauges untouched.
func RecordModelBuild(source string, duration time.Duration, err error) {
	if err != nil {
		ModelBuildsTotal.WithLabelValues(source, "error").Inc()
		return
	}
	ModelBuildsTotal.WithLabelValues(source, "success").Inc()
	ModelBuildDuration.Observe(duration.Seconds())
	ModelLastSuccess.SetToCurrentTime()
}

// SetServingModel publishes the shape of the model that is now serving.
func SetServingModel(version int64, trips, dropped, dimensions int, accuracy float64) {
	ModelVersion.Set(float64(version))
	ModelCorpusSize.Set(float64(trips))
	ModelDroppedRows.Set(float64(dropped))
	ModelDimensions.Set(float64(dimensions))
	ClassifierAccuracy.Set(accuracy)
}

// RecordDatasetLoad records a dataset load from source.
func RecordDatasetLoad(source string, duration time.Duration, err error) {
	DatasetLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		DatasetLoadErrors.WithLabelValues(source).Inc()
	}
}

// SetCircuitBreakerState publishes a breaker state (0=closed, 1=half-open, 2=open).
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordSnapshotWrite records a snapshot write.
func RecordSnapshotWrite(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	SnapshotWritesTotal.WithLabelValues(status).Inc()
}

// StatusLabel formats an HTTP status code as a label value.
func StatusLabel(code int) string {
	return strconv.Itoa(code)
}
