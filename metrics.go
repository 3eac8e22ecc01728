package termcluster

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package
// metrics/prometheus provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordLoad is called once, after the centroid table load resolved.
	// clusters is the table's K, or 0 when the load failed.
	RecordLoad(clusters int, duration time.Duration, err error)

	// RecordAssign is called after each single-group assignment.
	// observations is the number of observations folded into the group.
	RecordAssign(observations int, duration time.Duration, err error)

	// RecordRun is called after each partitioned run.
	// rows is the number of input rows, groups the number of assigned groups.
	RecordRun(rows, groups int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordAssign(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordRun(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount        atomic.Int64
	LoadErrors       atomic.Int64
	LoadNanos        atomic.Int64
	AssignCount      atomic.Int64
	AssignErrors     atomic.Int64
	AssignTotalNanos atomic.Int64
	Observations     atomic.Int64
	RunCount         atomic.Int64
	RunErrors        atomic.Int64
	RunTotalNanos    atomic.Int64
	RunRows          atomic.Int64
	RunGroups        atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(clusters int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// RecordAssign implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAssign(observations int, duration time.Duration, err error) {
	b.AssignCount.Add(1)
	b.AssignTotalNanos.Add(duration.Nanoseconds())
	b.Observations.Add(int64(observations))
	if err != nil {
		b.AssignErrors.Add(1)
	}
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(rows, groups int, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
		return
	}
	b.RunRows.Add(int64(rows))
	b.RunGroups.Add(int64(groups))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:      b.LoadCount.Load(),
		LoadErrors:     b.LoadErrors.Load(),
		LoadNanos:      b.LoadNanos.Load(),
		AssignCount:    b.AssignCount.Load(),
		AssignErrors:   b.AssignErrors.Load(),
		AssignAvgNanos: avg(b.AssignTotalNanos.Load(), b.AssignCount.Load()),
		Observations:   b.Observations.Load(),
		RunCount:       b.RunCount.Load(),
		RunErrors:      b.RunErrors.Load(),
		RunAvgNanos:    avg(b.RunTotalNanos.Load(), b.RunCount.Load()),
		RunRows:        b.RunRows.Load(),
		RunGroups:      b.RunGroups.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount      int64
	LoadErrors     int64
	LoadNanos      int64
	AssignCount    int64
	AssignErrors   int64
	AssignAvgNanos int64
	Observations   int64
	RunCount       int64
	RunErrors      int64
	RunAvgNanos    int64
	RunRows        int64
	RunGroups      int64
}
