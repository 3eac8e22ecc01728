// Package engine is a reference driver for the cluster-assignment aggregate.
//
// It plays the part of a hosting query engine: rows are dealt to partitions,
// each partition keeps one accumulator per group, partial states are shipped
// across a stage boundary as encoded frames, and the frames of each group are
// combined along a merge tree before the group is finalized exactly once.
//
// The driver exists to exercise the aggregate under arbitrary partitionings
// and merge-tree shapes. The chosen cluster of every group must not depend on
// either, so Run with different plans over the same rows returns the same
// assignments.
package engine
