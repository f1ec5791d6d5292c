package snapshot

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"content-sync/core/record"
)

// Extension is the suffix of record files.
const Extension = ".json"

// BlobDir is the snapshot directory holding the binary blobs referenced by file records.
const BlobDir = "_files"

// Source resolves a scanned location to its raw payload.
type Source interface {
	Read(ctx context.Context, loc record.Location) ([]byte, error)
}

// BlobSource reads a blob stored under BlobDir.
type BlobSource interface {
	ReadBlob(ctx context.Context, name string) ([]byte, error)
}

// ScanSource is a snapshot backend that can list records and read records and blobs.
type ScanSource interface {
	record.Scanner
	Source
	BlobSource
}

// groupLocations sorts the given "type/name.json" relative paths into groups.
// Entries not exactly two segments deep, hidden or underscore-prefixed
// entries, and files without the record extension are ignored.
func groupLocations(rel []string) []record.Group {
	byType := make(map[string][]record.Location)
	for _, p := range rel {
		p = strings.TrimPrefix(p, "/")
		parts := strings.Split(p, "/")
		if len(parts) != 2 {
			continue
		}
		typ, name := parts[0], parts[1]
		if typ == "" || strings.HasPrefix(typ, ".") || strings.HasPrefix(typ, "_") || strings.HasPrefix(name, ".") {
			continue
		}
		if path.Ext(name) != Extension {
			continue
		}
		byType[typ] = append(byType[typ], record.Location{Type: typ, Path: p})
	}

	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)

	groups := make([]record.Group, 0, len(types))
	for _, t := range types {
		locs := byType[t]
		sort.Slice(locs, func(i, j int) bool { return locs[i].Path < locs[j].Path })
		groups = append(groups, record.Group{Type: t, Locations: locs})
	}
	return groups
}

// validBlobName rejects names escaping the blob directory.
func validBlobName(name string) error {
	if name == "" || strings.HasPrefix(name, "/") || path.Clean(name) != name || strings.HasPrefix(name, "..") {
		return fmt.Errorf("invalid blob name %q", name)
	}
	return nil
}
