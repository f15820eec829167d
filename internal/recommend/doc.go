// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

// Package recommend implements the content-based trip recommendation engine.
//
// # Architecture
//
// A build turns raw trip rows into an immutable Engine:
//
//	RawTrip rows ──► DeriveTrip ──► FeaturePipeline ──► Scaler ──► neighbors.Index
//	                (status filter,   (continuous +      (z-score)   (cosine KNN)
//	                 derived fields)   one-hot blocks)
//
// Queries run against the Engine without locks:
//
//   - RecommendByReference: the stored vector of a known trip, self excluded
//   - RecommendByPreference: a vector built from stated preferences through
//     the same pipeline and scaler
//
// A fullness classifier ("Penuh" / "Tidak Penuh") is trained and evaluated
// on a seeded stratified split during the same build.
//
// # Feature Layout
//
// Every vector has the same width D:
//
//	[durasi_menit, total_penumpang, kapasitas_kursi, persentase_isi,
//	 hari_<day>..., jenis_hari_<type>..., shift_waktu_<shift>...]
//
// One-hot columns hold the values seen at build time, sorted ascending. A
// query value never seen at build time leaves its block all zero.
//
// # Rebuilds
//
// Holder owns the current Engine behind an atomic pointer. Rebuild builds a
// new Engine off to the side and swaps it in only on success, so a failed
// rebuild leaves the previous Engine serving.
package recommend
