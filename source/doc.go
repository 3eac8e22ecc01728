// Package source reads centroid tables from blob stores.
//
// A centroid file is CSV with one record per nonzero weight:
//
//	# cluster,term,weight
//	0,coffee,1.25
//	0,espresso,0.8
//	1,tea,2.0
//
// Records may appear in any order and several records may share a cluster.
// Files ending in ".zst" are zstd-compressed and files ending in ".lz4" are
// LZ4-framed; anything else is read as plain text.
package source
