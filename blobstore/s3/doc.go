// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore and a
// DynamoDB-backed pointer to the currently published centroid version.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("centroids/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	versions := s3.NewVersionStore(dynamodb.NewFromConfig(cfg), "termcluster-versions", "s3://my-bucket/centroids/")
//	v, err := versions.Current(ctx)
//	blob, err := store.Open(ctx, v.Blob)
//
// # Features
//
//   - Range reads through the blobstore.Blob interface
//   - Whole-object parallel downloads via the S3 transfer manager (Download)
//   - Automatic pagination for listing
//   - Conditional version publishing (no lost updates between publishers)
package s3
