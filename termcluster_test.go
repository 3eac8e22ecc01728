package termcluster

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/termcluster/aggregate"
	"github.com/hupe1980/termcluster/blobstore"
	"github.com/hupe1980/termcluster/centroid"
	"github.com/hupe1980/termcluster/codec"
	"github.com/hupe1980/termcluster/engine"
	"github.com/hupe1980/termcluster/resource"
	"github.com/hupe1980/termcluster/source"
	"github.com/hupe1980/termcluster/testutil"
)

func scenarioTable(t *testing.T) *centroid.Table {
	t.Helper()
	table, err := centroid.FromMaps([]map[string]float64{
		{"a": 1.0, "b": 2.0},
		{"a": 0.5, "c": 4.0},
	})
	require.NoError(t, err)
	return table
}

func TestWorker_Assign(t *testing.T) {
	ctx := context.Background()
	w, err := New(centroid.Static(scenarioTable(t)))
	require.NoError(t, err)

	tests := []struct {
		name string
		obs  []Observation
		want int
	}{
		{"Scenario", []Observation{Obs("a", 2), Obs("b", 1), Obs("z", 9)}, 0},
		{"AbsentTerm", []Observation{Obs("q", 3)}, 0},
		{"Empty", nil, 0},
		{"SecondCluster", []Observation{Obs("c", 1)}, 1},
		{"NullsIgnored", []Observation{{Term: Obs("c", 0).Term}, {Weight: Obs("", 5).Weight}}, 0},
		{"Normalized", []Observation{Obs("  C ", 1)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := w.Assign(ctx, tt.obs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWorker_NewAccumulator(t *testing.T) {
	ctx := context.Background()
	w, err := New(centroid.Static(scenarioTable(t)))
	require.NoError(t, err)

	left, err := w.NewAccumulator(ctx)
	require.NoError(t, err)
	right, err := w.NewAccumulator(ctx)
	require.NoError(t, err)

	require.NoError(t, left.UpdateValue("a", 2))
	require.NoError(t, right.UpdateValue("b", 1))
	require.NoError(t, right.UpdateValue("z", 9))
	require.NoError(t, left.Merge(right))

	assert.InDeltaSlice(t, []float64{4, 1}, left.Totals(), 1e-12)
	cluster, err := left.Finalize()
	require.NoError(t, err)
	assert.Equal(t, 0, cluster)
}

func TestWorker_Run(t *testing.T) {
	rng := testutil.NewRNG(11)
	table := rng.Table(8, 120, 0.15)
	rows := rng.Rows(5000, 25, 120, 0.05)

	want, err := testutil.Sequential(table, rows)
	require.NoError(t, err)

	metrics := &BasicMetricsCollector{}
	w, err := New(centroid.Static(table),
		WithCodec(codec.GoJSON{}),
		WithController(resource.NewController(resource.Config{MaxWorkers: 3})),
		WithMetricsCollector(metrics),
	)
	require.NoError(t, err)

	got, err := w.Run(context.Background(), rows, engine.Plan{Partitions: 6, Shape: engine.Random, Seed: 4})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.RunCount)
	assert.Equal(t, int64(5000), stats.RunRows)
	assert.Equal(t, int64(len(want)), stats.RunGroups)
	assert.Equal(t, int64(1), stats.LoadCount)
}

func TestWorker_LoadFailureIsFatal(t *testing.T) {
	ctx := context.Background()

	var calls int
	var mu sync.Mutex
	provider := centroid.NewProvider(func(context.Context) (*centroid.Table, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return nil, errors.New("bucket gone")
	})

	metrics := &BasicMetricsCollector{}
	w, err := New(provider, WithMetricsCollector(metrics))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := w.Assign(ctx, []Observation{Obs("a", 1)})
		assert.ErrorIs(t, err, ErrCentroidLoad)
		assert.ErrorIs(t, err, centroid.ErrLoad)
	}
	_, err = w.Run(ctx, nil, engine.Plan{})
	assert.ErrorIs(t, err, ErrCentroidLoad)

	assert.Equal(t, 1, calls)
	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.LoadCount)
	assert.Equal(t, int64(1), stats.LoadErrors)
	assert.Equal(t, int64(3), stats.AssignErrors)
	assert.Equal(t, int64(1), stats.RunErrors)
}

func TestWorker_MalformedSource(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "c.csv", []byte("0,a,1\n9,b,1\n")))

	w, err := New(source.NewProvider(store, "c.csv", 2))
	require.NoError(t, err)

	_, err = w.Table(ctx)
	require.ErrorIs(t, err, ErrCentroidLoad)

	var ms *ErrMalformedSource
	require.ErrorAs(t, err, &ms)
	assert.Equal(t, 2, ms.Line)
	assert.ErrorIs(t, err, source.ErrMalformed)
}

func TestNew_NilProvider(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilProvider)
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	plain := errors.New("plain")
	assert.Same(t, plain, translateError(plain))

	err := translateError(aggregate.ErrFinalized)
	assert.ErrorIs(t, err, ErrFinalized)
	assert.ErrorIs(t, err, aggregate.ErrFinalized)

	err = translateError(aggregate.ErrCorruptPartial)
	assert.ErrorIs(t, err, ErrCorruptPartial)

	err = translateError(&aggregate.ShapeMismatchError{Field: "clusters", Want: 2, Got: 3})
	var sm *ErrShapeMismatch
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, "clusters", sm.Field)
	assert.Equal(t, "shape mismatch on clusters: expected 2, got 3", sm.Error())
	var inner *aggregate.ShapeMismatchError
	assert.ErrorAs(t, err, &inner)
}

func TestLogger_Run(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	w, err := New(centroid.Static(scenarioTable(t)), WithLogger(logger.WithWorker("w1")))
	require.NoError(t, err)

	_, err = w.Run(context.Background(), []engine.Row{testutil.Observation("g", "a", 1)}, engine.Plan{Shape: engine.Balanced})
	require.NoError(t, err)
	_, err = w.Assign(context.Background(), []Observation{Obs("c", 1)})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"centroid table loaded"`)
	assert.Contains(t, out, `"msg":"run completed"`)
	assert.Contains(t, out, `"shape":"balanced"`)
	assert.Contains(t, out, `"msg":"assign completed"`)
	assert.Contains(t, out, `"worker":"w1"`)
	assert.Equal(t, 1, strings.Count(out, "centroid table loaded"))
}

func TestOptions_Defaults(t *testing.T) {
	o := applyOptions([]Option{nil, WithLogger(nil), WithMetricsCollector(nil), WithCodec(nil)})
	assert.NotNil(t, o.logger)
	assert.Equal(t, NoopMetricsCollector{}, o.metricsCollector)
	assert.Equal(t, codec.Default, o.codec)
	assert.Nil(t, o.controller)

	o = applyOptions([]Option{WithLogLevel(slog.LevelDebug)})
	assert.True(t, o.logger.Enabled(context.Background(), slog.LevelDebug))
}
