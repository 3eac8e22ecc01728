// Package minio provides a blobstore.BlobStore for MinIO and other
// S3-compatible object stores, built on minio-go.
//
//	client, _ := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4(accessKey, secretKey, ""),
//	})
//	store := minioblob.NewStore(client, "centroids", "prod/")
package minio
