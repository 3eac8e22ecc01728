// Package termcluster assigns groups of weighted term observations to the
// best matching of K sparse centroids.
//
// The assignment is a distributed aggregate. Every group owns an accumulator
// of K similarity totals. Observations are added to it where they are read,
// partial accumulators from different partitions are merged in any order,
// and finalization picks the cluster with the largest total. Ties go to the
// lowest cluster index; a group whose totals are all zero is assigned
// cluster 0.
//
// # Quick Start
//
//	ctx := context.Background()
//	store := blobstore.NewLocalStore("./centroids")
//	w, _ := termcluster.New(source.NewProvider(store, "v3.csv.zst", 128))
//
//	cluster, _ := w.Assign(ctx, []termcluster.Observation{
//	    termcluster.Obs("coffee", 2),
//	    termcluster.Obs("espresso", 1),
//	})
//
// # Centroid Tables
//
// A worker shares one read-only centroid.Table between all accumulators. The
// table is loaded lazily by a centroid.Provider on first use and never again;
// a failed load is fatal for the worker and every later call returns
// ErrCentroidLoad. Centroid files are CSV records "cluster,term,weight",
// optionally zstd or lz4 compressed, read from a blobstore.BlobStore (local
// disk, S3 or MinIO).
//
// # Partitioned Execution
//
// Run drives the aggregate the way a query engine would: rows are dealt to
// partitions, partial states cross the stage boundary in encoded form and are
// merged along a configurable tree. See package engine.
//
//	assignments, _ := w.Run(ctx, rows, engine.Plan{Partitions: 8, Shape: engine.Balanced})
//
// # Observability
//
// Workers log through a slog-based Logger and report load, assignment and run
// latencies to a MetricsCollector:
//
//	metrics := &termcluster.BasicMetricsCollector{}
//	w, _ := termcluster.New(provider,
//	    termcluster.WithLogger(termcluster.NewJSONLogger(slog.LevelInfo)),
//	    termcluster.WithMetricsCollector(metrics),
//	)
//
// A Prometheus collector lives in package metrics/prometheus.
package termcluster
