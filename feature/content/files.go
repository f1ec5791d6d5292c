package content

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"

	"content-sync/core/snapshot"
	"content-sync/core/storage"

	"github.com/cenkalti/backoff/v4"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// DefaultFilesPrefix is the destination key prefix of materialized blobs.
const DefaultFilesPrefix = "files/"

// Files uploads blobs referenced by file records to the destination bucket.
type Files struct {
	client     storage.Client
	bucket     string
	prefix     string
	blobs      snapshot.BlobSource
	logger     *zap.Logger
	newBackoff func() backoff.BackOff
}

// NewFiles creates a materializer reading blobs from blobs and writing to bucket/prefix.
func NewFiles(client storage.Client, bucket, prefix string, blobs snapshot.BlobSource, logger *zap.Logger) *Files {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Files{
		client:     client,
		bucket:     bucket,
		prefix:     prefix,
		blobs:      blobs,
		logger:     logger,
		newBackoff: newRetryBackoff,
	}
}

// Key returns the destination object key of a blob.
func (f *Files) Key(blob string) string {
	return f.prefix + blob
}

// Ensure uploads the blob of ref unless the destination already has it.
// It returns the number of uploaded objects (0 or 1).
func (f *Files) Ensure(ctx context.Context, ref *snapshot.File) (int, error) {
	if ref == nil || ref.Blob == "" {
		return 0, nil
	}
	key := f.Key(ref.Blob)

	var exists bool
	err := withRetry(ctx, f.newBackoff, func() error {
		_, err := f.client.StatObject(ctx, f.bucket, key, minio.StatObjectOptions{})
		if err == nil {
			exists = true
			return nil
		}
		if storage.IsNotFound(err) {
			return nil
		}
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	if exists {
		return 0, nil
	}

	data, err := f.blobs.ReadBlob(ctx, ref.Blob)
	if err != nil {
		return 0, fmt.Errorf("failed to read blob %s: %w", ref.Blob, err)
	}

	opts := minio.PutObjectOptions{ContentType: mime.TypeByExtension(path.Ext(ref.Blob))}
	if ref.URI != "" {
		opts.UserMetadata = map[string]string{"source-uri": ref.URI}
	}
	err = withRetry(ctx, f.newBackoff, func() error {
		_, err := f.client.PutObject(ctx, f.bucket, key, bytes.NewReader(data), int64(len(data)), opts)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	f.logger.Debug("Materialized file", zap.String("key", key), zap.Int("bytes", len(data)))
	return 1, nil
}
