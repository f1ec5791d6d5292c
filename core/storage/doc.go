// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface so snapshot scanning
// and file materialization can run against AWS S3, a self-hosted MinIO instance
// or the testify mock in core/storage/mocks.
//
// # Operations
//
//   - BucketExists / MakeBucket: bucket bootstrap (see EnsureBucket).
//   - ListObjects: snapshot prefix listing.
//   - GetObject: record payload and blob download.
//   - StatObject: existence check before uploading a blob (see IsNotFound).
//   - PutObject: blob upload.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	err = storage.EnsureBucket(ctx, client, config.Bucket, config.Region)
package storage
