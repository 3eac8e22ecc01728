// Package prometheus exports worker metrics to Prometheus.
package prometheus

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/termcluster"
)

var _ termcluster.MetricsCollector = (*Collector)(nil)

// Collector implements termcluster.MetricsCollector with Prometheus metrics.
type Collector struct {
	latency      *prom.HistogramVec
	observations prom.Counter
	rows         prom.Counter
	groups       prom.Counter
	clusters     prom.Gauge
}

// NewCollector creates a Collector and registers its metrics with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewCollector(reg prom.Registerer, namespace string) (*Collector, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	c := &Collector{
		latency: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of worker operations",
			Buckets:   prom.DefBuckets,
		}, []string{"op", "status"}),
		observations: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "observations_total",
			Help:      "Observations folded by single-group assignments",
		}),
		rows: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_rows_total",
			Help:      "Rows processed by partitioned runs",
		}),
		groups: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_groups_total",
			Help:      "Groups assigned by partitioned runs",
		}),
		clusters: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "centroid_clusters",
			Help:      "Number of clusters in the loaded centroid table",
		}),
	}

	for _, m := range []prom.Collector{c.latency, c.observations, c.rows, c.groups, c.clusters} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordLoad implements termcluster.MetricsCollector.
func (c *Collector) RecordLoad(clusters int, d time.Duration, err error) {
	c.latency.WithLabelValues("load", status(err)).Observe(d.Seconds())
	c.clusters.Set(float64(clusters))
}

// RecordAssign implements termcluster.MetricsCollector.
func (c *Collector) RecordAssign(observations int, d time.Duration, err error) {
	c.latency.WithLabelValues("assign", status(err)).Observe(d.Seconds())
	c.observations.Add(float64(observations))
}

// RecordRun implements termcluster.MetricsCollector.
func (c *Collector) RecordRun(rows, groups int, d time.Duration, err error) {
	c.latency.WithLabelValues("run", status(err)).Observe(d.Seconds())
	if err != nil {
		return
	}
	c.rows.Add(float64(rows))
	c.groups.Add(float64(groups))
}
