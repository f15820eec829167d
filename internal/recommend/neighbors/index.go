// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package neighbors

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// TieTolerance is the distance difference under which two neighbors are
// considered tied and ordered by corpus position.
const TieTolerance = 1e-12

// DefaultParallelThreshold is the N·D product above which a query scan is
// split across goroutines.
const DefaultParallelThreshold = 1 << 20

var (
	// ErrEmptyIndex is returned when building an index with no vectors.
	ErrEmptyIndex = errors.New("neighbors: index has no vectors")

	// ErrDimensionMismatch is returned when vector widths disagree.
	ErrDimensionMismatch = errors.New("neighbors: dimension mismatch")

	// ErrInvalidK is returned for K < 1.
	ErrInvalidK = errors.New("neighbors: k must be at least 1")

	// ErrDuplicateID is returned when two vectors share an ID.
	ErrDuplicateID = errors.New("neighbors: duplicate id")
)

// Options configures an Index.
type Options struct {
	// Metric selects the distance function. Default: MetricCosine.
	Metric Metric

	// ParallelThreshold is the N·D product above which queries scan in
	// parallel. Zero uses DefaultParallelThreshold; negative disables.
	ParallelThreshold int

	// Workers bounds the number of scan goroutines. Zero uses GOMAXPROCS.
	Workers int
}

// Neighbor is one query result.
type Neighbor struct {
	// ID is the stored vector's identifier.
	ID string `json:"id"`

	// Position is the vector's index in corpus order.
	Position int `json:"position"`

	// Distance is the metric distance from the query vector.
	Distance float64 `json:"distance"`
}

// Index is an immutable brute-force nearest-neighbor index.
type Index struct {
	ids       []string
	positions map[string]int
	vectors   [][]float64
	unit      [][]float64
	dim       int
	opts      Options
}

// New builds an index over vectors, keeping corpus order. ids[i] names
// vectors[i]. The input slices are copied.
func New(ids []string, vectors [][]float64, opts Options) (*Index, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyIndex
	}
	if len(ids) != len(vectors) {
		return nil, fmt.Errorf("%d ids for %d vectors: %w", len(ids), len(vectors), ErrDimensionMismatch)
	}
	if opts.Metric != MetricCosine && opts.Metric != MetricEuclidean {
		return nil, fmt.Errorf("neighbors: unsupported metric %v", opts.Metric)
	}
	if opts.ParallelThreshold == 0 {
		opts.ParallelThreshold = DefaultParallelThreshold
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	dim := len(vectors[0])
	ix := &Index{
		ids:       slices.Clone(ids),
		positions: make(map[string]int, len(ids)),
		vectors:   make([][]float64, len(vectors)),
		dim:       dim,
		opts:      opts,
	}
	if opts.Metric == MetricCosine {
		ix.unit = make([][]float64, len(vectors))
	}

	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has %d dims, want %d: %w", i, len(v), dim, ErrDimensionMismatch)
		}
		if _, dup := ix.positions[ids[i]]; dup {
			return nil, fmt.Errorf("%q: %w", ids[i], ErrDuplicateID)
		}
		ix.positions[ids[i]] = i
		ix.vectors[i] = slices.Clone(v)
		if ix.unit != nil {
			ix.unit[i], _ = NormalizeL2Copy(v)
		}
	}

	return ix, nil
}

// Len returns the number of stored vectors.
func (ix *Index) Len() int { return len(ix.vectors) }

// Dim returns the vector width.
func (ix *Index) Dim() int { return ix.dim }

// Metric returns the index metric.
func (ix *Index) Metric() Metric { return ix.opts.Metric }

// Position returns the corpus position of id.
func (ix *Index) Position(id string) (int, bool) {
	pos, ok := ix.positions[id]
	return pos, ok
}

// ID returns the identifier stored at pos.
func (ix *Index) ID(pos int) string { return ix.ids[pos] }

// Vector returns a copy of the stored vector at pos.
func (ix *Index) Vector(pos int) []float64 { return slices.Clone(ix.vectors[pos]) }

// Query returns up to k nearest neighbors of v, nearest first. k larger than
// the corpus returns every vector.
func (ix *Index) Query(ctx context.Context, v []float64, k int) ([]Neighbor, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}
	if len(v) != ix.dim {
		return nil, fmt.Errorf("query has %d dims, want %d: %w", len(v), ix.dim, ErrDimensionMismatch)
	}

	dists, err := ix.scan(ctx, v)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(dists))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		if math.Abs(dists[a]-dists[b]) <= TieTolerance {
			return cmp.Compare(a, b)
		}
		return cmp.Compare(dists[a], dists[b])
	})

	k = min(k, len(order))
	out := make([]Neighbor, k)
	for i := 0; i < k; i++ {
		pos := order[i]
		out[i] = Neighbor{ID: ix.ids[pos], Position: pos, Distance: dists[pos]}
	}
	return out, nil
}

// scan computes the distance from v to every stored vector.
func (ix *Index) scan(ctx context.Context, v []float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var q []float64
	if ix.opts.Metric == MetricCosine {
		q, _ = NormalizeL2Copy(v)
	} else {
		q = v
	}

	n := len(ix.vectors)
	dists := make([]float64, n)

	if ix.opts.ParallelThreshold < 0 || n*ix.dim < ix.opts.ParallelThreshold || ix.opts.Workers < 2 {
		ix.fill(q, dists, 0, n)
		return dists, nil
	}

	chunk := (n + ix.opts.Workers - 1) / ix.opts.Workers
	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ix.fill(q, dists, start, end)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return dists, nil
}

// fill writes distances for positions [start, end). Workers write disjoint
// ranges of dists.
func (ix *Index) fill(q, dists []float64, start, end int) {
	switch ix.opts.Metric {
	case MetricCosine:
		for i := start; i < end; i++ {
			dists[i] = cosineFromUnit(q, ix.unit[i])
		}
	case MetricEuclidean:
		for i := start; i < end; i++ {
			dists[i] = math.Sqrt(SquaredL2(q, ix.vectors[i]))
		}
	}
}
