// Package aggregate implements the cluster-assignment aggregate: per-group
// similarity accumulation against a centroid table and the final argmax.
//
// The protocol mirrors what a distributed query engine drives for each group:
//
//	acc := aggregate.New(table)                     // initialize
//	_ = acc.Update(term, weight)                    // once per row, nulls are no-ops
//	_ = acc.Merge(other)                            // combine partials of the same group
//	cluster, _ := acc.Finalize()                    // exactly once
//
// Update and Merge only ever add into the accumulator's own totals, so any
// partition of a group's rows, merged in any tree shape, produces the same
// totals up to floating-point summation order.
//
// # Selection
//
// Select returns the lowest index holding the maximum total. An accumulator
// that saw no matching term has all totals at 0.0 and therefore selects
// cluster 0; that result carries no similarity signal.
//
// # Cross-stage transfer
//
// Partial is the detached state of an accumulator: K totals plus the centroid
// fingerprint. It encodes to a compact checksummed binary frame
// (MarshalBinary) or to JSON through the codec package.
package aggregate
