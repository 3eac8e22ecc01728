// Package centroid holds the immutable cluster centroid table.
//
// A Table maps each cluster index in [0, K) to a sparse term->weight vector.
// It is built once per worker with a Builder and then shared read-only by every
// accumulator on that worker; no method on Table takes a lock.
//
// # Normalization
//
// Terms are normalized by exactly one Normalizer, bound to the table when it is
// built. Accumulators look terms up through Table.Normalize so both sides agree:
//
//	b := centroid.NewBuilder(128, centroid.WithNormalizer(centroid.Fold))
//	_ = b.Add(0, "Coffee", 1.5)
//	table, _ := b.Build()
//	table.Postings(table.Normalize(" COFFEE ")) // cluster 0, weight 1.5
//
// # Lazy loading
//
// Provider wraps a load function so the table is materialized at most once,
// even under concurrent first access:
//
//	p := centroid.NewProvider(func(ctx context.Context) (*centroid.Table, error) {
//	    return source.Load(ctx, store, "centroids.csv.zst", 128)
//	})
//	table, err := p.Get(ctx)
package centroid
