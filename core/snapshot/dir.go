package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"content-sync/core/record"
)

// DirScanner reads a snapshot from the local filesystem.
type DirScanner struct {
	Root string
}

// NewDirScanner creates a scanner rooted at root.
func NewDirScanner(root string) *DirScanner {
	return &DirScanner{Root: root}
}

// Scan lists <root>/<type>/*.json.
func (s *DirScanner) Scan(ctx context.Context) ([]record.Group, error) {
	types, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot root %s: %w", s.Root, err)
	}

	var rel []string
	for _, t := range types {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !t.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(s.Root, t.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read type directory %s: %w", t.Name(), err)
		}
		for _, f := range files {
			if f.Type().IsRegular() {
				rel = append(rel, t.Name()+"/"+f.Name())
			}
		}
	}
	return groupLocations(rel), nil
}

// Read returns the file content behind loc.
func (s *DirScanner) Read(ctx context.Context, loc record.Location) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(s.Root, filepath.FromSlash(loc.Path)))
}

// ReadBlob returns <root>/_files/<name>.
func (s *DirScanner) ReadBlob(ctx context.Context, name string) ([]byte, error) {
	if err := validBlobName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(s.Root, BlobDir, filepath.FromSlash(name)))
}
