// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package recommend

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// MinStd is the smallest standard deviation used as a divisor. Dimensions
// with a smaller spread are divided by 1 instead.
const MinStd = 1e-12

var errDimension = errors.New("dimension mismatch")

// ScalerState holds per-dimension standardization statistics. It is fitted
// once per build and shared read-only by every query.
type ScalerState struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitScaler computes the mean and population standard deviation of every
// dimension of vectors.
func FitScaler(vectors [][]float64) (*ScalerState, error) {
	if len(vectors) == 0 {
		return nil, errors.New("fit scaler: no vectors")
	}
	dim := len(vectors[0])
	mean := make([]float64, dim)
	std := make([]float64, dim)

	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("fit scaler: vector %d has %d dims, want %d: %w", i, len(v), dim, errDimension)
		}
		for j, x := range v {
			mean[j] += x
		}
	}
	n := float64(len(vectors))
	for j := range mean {
		mean[j] /= n
	}

	for _, v := range vectors {
		for j, x := range v {
			d := x - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] < MinStd {
			std[j] = 1
		}
	}

	return &ScalerState{Mean: mean, Std: std}, nil
}

// Dim returns the fitted vector width.
func (s *ScalerState) Dim() int { return len(s.Mean) }

// Transform returns (v - mean) / std as a new slice.
func (s *ScalerState) Transform(v []float64) ([]float64, error) {
	if len(v) != len(s.Mean) {
		return nil, fmt.Errorf("transform: vector has %d dims, want %d: %w", len(v), len(s.Mean), errDimension)
	}
	out := slices.Clone(v)
	for j := range out {
		out[j] = (out[j] - s.Mean[j]) / s.Std[j]
	}
	return out, nil
}
