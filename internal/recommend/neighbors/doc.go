// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

// Package neighbors provides an exact, brute-force nearest-neighbor index
// over dense float64 vectors.
//
// The index is immutable once built. Queries scan every stored vector, so
// cost is O(N·D) per query; above a configurable N·D threshold the scan is
// split across goroutines. Results are ordered by ascending distance, and
// distances equal within TieTolerance are ordered by ascending corpus
// position, which makes results deterministic and prefix stable: the first
// K entries of a query for K+n are exactly the result of the query for K.
//
// # Metrics
//
//   - MetricCosine: 1 - cosine similarity, in [0, 2]. A zero vector has
//     similarity 0 with everything (distance 1).
//   - MetricEuclidean: L2 distance.
//
// # Thread Safety
//
// An Index is safe for concurrent queries.
package neighbors
