package engine_test

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/termcluster/aggregate"
	"github.com/hupe1980/termcluster/centroid"
	"github.com/hupe1980/termcluster/codec"
	"github.com/hupe1980/termcluster/engine"
	"github.com/hupe1980/termcluster/resource"
	"github.com/hupe1980/termcluster/testutil"
)

func smallTable(t *testing.T) *centroid.Table {
	t.Helper()
	table, err := centroid.FromMaps([]map[string]float64{
		{"a": 1.0, "b": 2.0},
		{"a": 0.5, "c": 4.0},
	})
	require.NoError(t, err)
	return table
}

func TestRun_Small(t *testing.T) {
	rows := []engine.Row{
		testutil.Observation("x", "b", 1),
		testutil.Observation("x", "a", 1),
		testutil.Observation("y", "c", 1),
		testutil.Observation("y", "a", 2),
		testutil.Observation("z", "unknown", 5),
		{Group: "n", Term: sql.NullString{String: "c", Valid: true}},
		{Group: "n", Weight: sql.NullFloat64{Float64: 9, Valid: true}},
	}

	got, err := engine.Run(context.Background(), smallTable(t), rows, engine.Plan{Partitions: 3})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"x": 0, "y": 1, "z": 0, "n": 0}, got)
}

func TestRun_Empty(t *testing.T) {
	got, err := engine.Run(context.Background(), smallTable(t), nil, engine.Plan{Partitions: 4})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRun_MergeTreeInvariance(t *testing.T) {
	rng := testutil.NewRNG(42)
	table := rng.Table(16, 300, 0.08)
	rows := rng.Rows(20_000, 40, 300, 0.05)

	want, err := testutil.Sequential(table, rows)
	require.NoError(t, err)

	shapes := []engine.MergeShape{engine.LeftDeep, engine.Balanced, engine.Random}
	for _, shape := range shapes {
		for _, partitions := range []int{1, 2, 7, 32} {
			for _, seed := range []int64{0, 1, 99} {
				name := fmt.Sprintf("%s/p%d/s%d", shape, partitions, seed)
				t.Run(name, func(t *testing.T) {
					got, err := engine.Run(context.Background(), table, rows, engine.Plan{
						Partitions: partitions,
						Shape:      shape,
						Seed:       seed,
					})
					require.NoError(t, err)
					assert.Equal(t, want, got)
				})
			}
		}
	}
}

func TestRun_Codecs(t *testing.T) {
	rng := testutil.NewRNG(5)
	table := rng.Table(6, 80, 0.2)
	rows := rng.Rows(3000, 12, 80, 0.1)

	want, err := testutil.Sequential(table, rows)
	require.NoError(t, err)

	for _, name := range []string{"binary", "json", "go-json"} {
		t.Run(name, func(t *testing.T) {
			c, ok := codec.ByName(name)
			require.True(t, ok)

			got, err := engine.Run(context.Background(), table, rows, engine.Plan{
				Partitions: 5,
				Shape:      engine.Balanced,
				Codec:      c,
			})
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestRun_Controller(t *testing.T) {
	rng := testutil.NewRNG(9)
	table := rng.Table(4, 50, 0.3)
	rows := rng.Rows(1000, 10, 50, 0)

	want, err := testutil.Sequential(table, rows)
	require.NoError(t, err)

	rc := resource.NewController(resource.Config{MaxWorkers: 2, MemoryLimitBytes: 1 << 20})
	got, err := engine.Run(context.Background(), table, rows, engine.Plan{
		Partitions: 8,
		Controller: rc,
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int64(0), rc.MemoryUsage(), "all reservations released")
}

func TestRun_PartitionTooLarge(t *testing.T) {
	rng := testutil.NewRNG(9)
	table := rng.Table(64, 50, 0.3)
	rows := rng.Rows(500, 100, 50, 0)

	_, err := engine.Run(context.Background(), table, rows, engine.Plan{
		Partitions: 1,
		Controller: resource.NewController(resource.Config{MemoryLimitBytes: 1024}),
	})
	assert.ErrorIs(t, err, engine.ErrPartitionTooLarge)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := testutil.NewRNG(1).Rows(100, 3, 10, 0)
	_, err := engine.Run(ctx, smallTable(t), rows, engine.Plan{Partitions: 4})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReduce(t *testing.T) {
	table := smallTable(t)

	build := func() []*aggregate.Accumulator {
		var out []*aggregate.Accumulator
		for i := 0; i < 9; i++ {
			acc := aggregate.New(table)
			require.NoError(t, acc.UpdateValue("a", float64(i)))
			out = append(out, acc)
		}
		return out
	}

	for _, shape := range []engine.MergeShape{engine.LeftDeep, engine.Balanced, engine.Random} {
		t.Run(shape.String(), func(t *testing.T) {
			root, err := engine.Reduce(build(), shape, rand.New(rand.NewSource(3)))
			require.NoError(t, err)
			assert.Equal(t, []float64{36, 18}, root.Totals())
		})
	}

	t.Run("RandomNilRNG", func(t *testing.T) {
		root, err := engine.Reduce(build(), engine.Random, nil)
		require.NoError(t, err)
		assert.Equal(t, []float64{36, 18}, root.Totals())
	})

	t.Run("Single", func(t *testing.T) {
		states := build()[:1]
		root, err := engine.Reduce(states, engine.Balanced, nil)
		require.NoError(t, err)
		assert.Same(t, states[0], root)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := engine.Reduce(nil, engine.LeftDeep, nil)
		assert.Error(t, err)
	})

	t.Run("UnknownShape", func(t *testing.T) {
		_, err := engine.Reduce(build(), engine.MergeShape(9), nil)
		assert.Error(t, err)
	})

	t.Run("ShapeMismatch", func(t *testing.T) {
		other, err := centroid.FromMaps([]map[string]float64{{"a": 1}})
		require.NoError(t, err)
		states := []*aggregate.Accumulator{aggregate.New(table), aggregate.New(other)}

		_, err = engine.Reduce(states, engine.LeftDeep, nil)
		var mismatch *aggregate.ShapeMismatchError
		assert.ErrorAs(t, err, &mismatch)
	})
}

func TestParseMergeShape(t *testing.T) {
	for _, shape := range []engine.MergeShape{engine.LeftDeep, engine.Balanced, engine.Random} {
		got, err := engine.ParseMergeShape(shape.String())
		require.NoError(t, err)
		assert.Equal(t, shape, got)
	}

	got, err := engine.ParseMergeShape("")
	require.NoError(t, err)
	assert.Equal(t, engine.LeftDeep, got)

	_, err = engine.ParseMergeShape("bushy")
	assert.Error(t, err)
	assert.Equal(t, "MergeShape(7)", engine.MergeShape(7).String())
}
