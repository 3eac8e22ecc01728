package termcluster

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/hupe1980/termcluster/aggregate"
	"github.com/hupe1980/termcluster/centroid"
	"github.com/hupe1980/termcluster/engine"
)

// Observation is one nullable (term, weight) pair. A null term or null weight
// contributes nothing to its group.
type Observation struct {
	Term   sql.NullString
	Weight sql.NullFloat64
}

// Obs builds a non-null Observation.
func Obs(term string, weight float64) Observation {
	return Observation{
		Term:   sql.NullString{String: term, Valid: true},
		Weight: sql.NullFloat64{Float64: weight, Valid: true},
	}
}

// Worker assigns groups to clusters against one shared centroid table.
// It is safe for concurrent use.
type Worker struct {
	provider *centroid.Provider
	opts     options

	loadOnce sync.Once
}

// New creates a Worker. The centroid table is not loaded until first use.
func New(provider *centroid.Provider, optFns ...Option) (*Worker, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	return &Worker{
		provider: provider,
		opts:     applyOptions(optFns),
	}, nil
}

// Table returns the worker's centroid table, loading it on first use.
// A failed load is permanent: every call returns an error matching
// ErrCentroidLoad.
func (w *Worker) Table(ctx context.Context) (*centroid.Table, error) {
	start := time.Now()
	table, err := w.provider.Get(ctx)

	// A canceled waiter says nothing about the load itself.
	if ctx.Err() == nil || w.provider.Loaded() {
		w.loadOnce.Do(func() {
			w.observeLoad(ctx, table, time.Since(start), err)
		})
	}
	if err != nil {
		return nil, translateError(err)
	}
	return table, nil
}

func (w *Worker) observeLoad(ctx context.Context, table *centroid.Table, d time.Duration, err error) {
	if err != nil {
		w.opts.logger.LogLoad(ctx, 0, 0, 0, d, err)
		w.opts.metricsCollector.RecordLoad(0, d, err)
		return
	}
	w.opts.logger.LogLoad(ctx, table.K(), table.Terms(), table.Fingerprint(), d, nil)
	w.opts.metricsCollector.RecordLoad(table.K(), d, nil)
}

// NewAccumulator returns an empty accumulator bound to the worker's table.
func (w *Worker) NewAccumulator(ctx context.Context) (*aggregate.Accumulator, error) {
	table, err := w.Table(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.New(table), nil
}

// Assign folds the observations of a single group into one accumulator and
// returns the chosen cluster. An empty group is assigned cluster 0.
func (w *Worker) Assign(ctx context.Context, obs []Observation) (cluster int, err error) {
	start := time.Now()
	defer func() {
		w.opts.logger.LogAssign(ctx, len(obs), cluster, err)
		w.opts.metricsCollector.RecordAssign(len(obs), time.Since(start), err)
	}()

	acc, err := w.NewAccumulator(ctx)
	if err != nil {
		return 0, err
	}
	for _, o := range obs {
		if err := acc.Update(o.Term, o.Weight); err != nil {
			return 0, translateError(err)
		}
	}
	cluster, err = acc.Finalize()
	if err != nil {
		return 0, translateError(err)
	}
	return cluster, nil
}

// Run aggregates rows per group through the partitioned engine and returns the
// cluster of every group. The plan's codec and controller default to the
// worker's options.
func (w *Worker) Run(ctx context.Context, rows []engine.Row, plan engine.Plan) (assignments map[string]int, err error) {
	start := time.Now()
	defer func() {
		d := time.Since(start)
		w.opts.logger.LogRun(ctx, len(rows), plan.Partitions, len(assignments), plan.Shape.String(), d, err)
		w.opts.metricsCollector.RecordRun(len(rows), len(assignments), d, err)
	}()

	table, err := w.Table(ctx)
	if err != nil {
		return nil, err
	}

	if plan.Codec == nil {
		plan.Codec = w.opts.codec
	}
	if plan.Controller == nil {
		plan.Controller = w.opts.controller
	}

	assignments, err = engine.Run(ctx, table, rows, plan)
	if err != nil {
		return nil, translateError(err)
	}
	return assignments, nil
}
