package snapshot

import (
	"context"
	"fmt"
	"io"
	"strings"

	"content-sync/core/record"
	"content-sync/core/storage"

	"github.com/minio/minio-go/v7"
)

// BucketScanner reads a snapshot stored under a prefix of an object storage bucket.
type BucketScanner struct {
	client storage.Client
	bucket string
	prefix string
}

// NewBucketScanner creates a scanner for bucket/prefix.
func NewBucketScanner(client storage.Client, bucket, prefix string) *BucketScanner {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &BucketScanner{client: client, bucket: bucket, prefix: prefix}
}

// Scan lists every object under the prefix. Location paths are relative to it.
func (s *BucketScanner) Scan(ctx context.Context) ([]record.Group, error) {
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: true,
	})

	var rel []string
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s/%s: %w", s.bucket, s.prefix, obj.Err)
		}
		rel = append(rel, strings.TrimPrefix(obj.Key, s.prefix))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return groupLocations(rel), nil
}

// Read downloads the object behind loc.
func (s *BucketScanner) Read(ctx context.Context, loc record.Location) ([]byte, error) {
	return s.get(ctx, s.prefix+loc.Path)
}

// ReadBlob downloads <prefix>_files/<name>.
func (s *BucketScanner) ReadBlob(ctx context.Context, name string) ([]byte, error) {
	if err := validBlobName(name); err != nil {
		return nil, err
	}
	return s.get(ctx, s.prefix+BlobDir+"/"+name)
}

func (s *BucketScanner) get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}
