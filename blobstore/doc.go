// Package blobstore abstracts where centroid files live.
//
// Centroid tables are published as immutable blobs and read once per worker.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, memory-mapped reads
//   - MemoryStore: in-process map, for tests and fixtures
//   - s3.Store: Amazon S3 with range reads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Use NewReader to consume a Blob sequentially:
//
//	blob, _ := store.Open(ctx, "centroids-v3.csv.zst")
//	defer blob.Close()
//	r := blobstore.NewReader(ctx, blob)
package blobstore
