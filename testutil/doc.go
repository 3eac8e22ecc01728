// Package testutil provides testing utilities for termcluster.
//
// This package is intended for use in tests and benchmarks only.
// It generates reproducible centroid tables and row sets and computes the
// single-accumulator reference assignment that partitioned runs are checked
// against.
//
// # Random Inputs
//
//	rng := testutil.NewRNG(seed)
//	table := rng.Table(8, 200, 0.1)
//	rows := rng.Rows(10_000, 50, 200, 0.05)
//
// # Reference Assignment
//
//	want, err := testutil.Sequential(table, rows)
package testutil
