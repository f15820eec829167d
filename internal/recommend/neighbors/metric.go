// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package neighbors

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	MetricCosine Metric = iota
	MetricEuclidean
)

func (m Metric) String() string {
	switch m {
	case MetricCosine:
		return "cosine"
	case MetricEuclidean:
		return "euclidean"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// ParseMetric converts a configuration string into a Metric.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cosine":
		return MetricCosine, nil
	case "euclidean", "l2":
		return MetricEuclidean, nil
	default:
		return 0, fmt.Errorf("unsupported metric %q", s)
	}
}

// Dot calculates the dot product of two vectors of equal length.
func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// SquaredL2 calculates the squared Euclidean distance between two vectors of
// equal length.
func SquaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// NormalizeL2Copy returns an L2-normalized copy of src. A zero vector is
// returned as a zero copy with ok=false.
func NormalizeL2Copy(src []float64) (dst []float64, ok bool) {
	dst = slices.Clone(src)
	norm2 := Dot(dst, dst)
	if norm2 == 0 {
		return dst, false
	}
	inv := 1 / math.Sqrt(norm2)
	for i := range dst {
		dst[i] *= inv
	}
	return dst, true
}

// CosineDistance returns 1 - cosine similarity of a and b, clamped to [0, 2].
func CosineDistance(a, b []float64) float64 {
	na, _ := NormalizeL2Copy(a)
	nb, _ := NormalizeL2Copy(b)
	return cosineFromUnit(na, nb)
}

// cosineFromUnit expects L2-normalized (or zero) inputs.
func cosineFromUnit(a, b []float64) float64 {
	d := 1 - Dot(a, b)
	switch {
	case d < 0:
		return 0
	case d > 2:
		return 2
	default:
		return d
	}
}
