// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package neighbors

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("T%03d", i)
	}
	return out
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New(nil, nil, Options{})
	require.ErrorIs(t, err, ErrEmptyIndex)

	_, err = New([]string{"a", "b"}, [][]float64{{1, 2}, {1}}, Options{})
	require.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = New([]string{"a"}, [][]float64{{1}, {2}}, Options{})
	require.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = New([]string{"a", "a"}, [][]float64{{1}, {2}}, Options{})
	require.ErrorIs(t, err, ErrDuplicateID)

	_, err = New([]string{"a"}, [][]float64{{1}}, Options{Metric: Metric(9)})
	require.Error(t, err)
}

func TestQueryOrdering(t *testing.T) {
	t.Parallel()

	vectors := [][]float64{
		{1, 0},  // T000
		{0, 1},  // T001
		{1, 1},  // T002
		{2, 0},  // T003, same direction as T000
		{-1, 0}, // T004
	}
	ix, err := New(ids(5), vectors, Options{})
	require.NoError(t, err)

	got, err := ix.Query(context.Background(), []float64{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, got, 5)

	// T000 and T003 tie at distance 0 and keep corpus order.
	assert.Equal(t, "T000", got[0].ID)
	assert.Equal(t, "T003", got[1].ID)
	assert.Equal(t, "T002", got[2].ID)
	assert.Equal(t, "T001", got[3].ID)
	assert.Equal(t, "T004", got[4].ID)
	assert.InDelta(t, 2.0, got[4].Distance, 1e-12)

	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Distance, got[i].Distance+TieTolerance)
	}
}

func TestQueryKBounds(t *testing.T) {
	t.Parallel()

	ix, err := New(ids(3), [][]float64{{1}, {2}, {3}}, Options{Metric: MetricEuclidean})
	require.NoError(t, err)

	_, err = ix.Query(context.Background(), []float64{1}, 0)
	require.ErrorIs(t, err, ErrInvalidK)

	got, err := ix.Query(context.Background(), []float64{1}, 10)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = ix.Query(context.Background(), []float64{1, 2}, 1)
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestQueryEuclidean(t *testing.T) {
	t.Parallel()

	ix, err := New(ids(3), [][]float64{{0, 0}, {3, 4}, {1, 0}}, Options{Metric: MetricEuclidean})
	require.NoError(t, err)

	got, err := ix.Query(context.Background(), []float64{0, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"T000", "T002", "T001"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.InDelta(t, 5.0, got[2].Distance, 1e-12)
}

func TestQueryPrefixStable(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	vectors := make([][]float64, 200)
	for i := range vectors {
		// Small integer grid produces many exact ties.
		vectors[i] = []float64{float64(rng.Intn(3)), float64(rng.Intn(3)), float64(rng.Intn(3))}
	}
	ix, err := New(ids(len(vectors)), vectors, Options{})
	require.NoError(t, err)

	q := []float64{1, 2, 0}
	short, err := ix.Query(context.Background(), q, 10)
	require.NoError(t, err)
	long, err := ix.Query(context.Background(), q, 50)
	require.NoError(t, err)
	assert.Equal(t, short, long[:10])
}

func TestQueryParallelMatchesSerial(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	vectors := make([][]float64, 1000)
	for i := range vectors {
		v := make([]float64, 8)
		for j := range v {
			v[j] = rng.NormFloat64()
		}
		vectors[i] = v
	}

	serial, err := New(ids(len(vectors)), vectors, Options{ParallelThreshold: -1})
	require.NoError(t, err)
	parallel, err := New(ids(len(vectors)), vectors, Options{ParallelThreshold: 1, Workers: 4})
	require.NoError(t, err)

	q := vectors[17]
	want, err := serial.Query(context.Background(), q, 25)
	require.NoError(t, err)
	got, err := parallel.Query(context.Background(), q, 25)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "T017", got[0].ID)
}

func TestQueryCancelled(t *testing.T) {
	t.Parallel()

	ix, err := New(ids(2), [][]float64{{1}, {2}}, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ix.Query(ctx, []float64{1}, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAccessors(t *testing.T) {
	t.Parallel()

	src := [][]float64{{1, 2}, {3, 4}}
	ix, err := New([]string{"a", "b"}, src, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, ix.Len())
	assert.Equal(t, 2, ix.Dim())
	assert.Equal(t, MetricCosine, ix.Metric())
	pos, ok := ix.Position("b")
	assert.True(t, ok)
	assert.Equal(t, 1, pos)
	assert.Equal(t, "b", ix.ID(1))

	v := ix.Vector(0)
	v[0] = 99
	assert.Equal(t, []float64{1, 2}, ix.Vector(0))
	_, ok = ix.Position("zzz")
	assert.False(t, ok)
}
