package record

import (
	"context"
	"fmt"
)

// Location is an opaque handle back to the raw payload of a record.
// Only the Source that produced it knows how to resolve Path.
type Location struct {
	// Type is the destination type the location was scanned under.
	Type string `json:"type"`
	// Path is the source-specific path (file path or object key).
	Path string `json:"path"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%s", l.Type, l.Path)
}

// Group is the set of scanned locations for one destination type.
type Group struct {
	Type      string
	Locations []Location
}

// Fields are the descriptor fields a Decoder extracts from one payload.
type Fields struct {
	// Identity is the stable, globally unique record identity.
	Identity string
	// LastModified is the declared modification time; nil when the record has none.
	LastModified *int64
	// Owner is the identity of the owning record, empty when absent.
	Owner string
	// References are the identities embedded by the record.
	References []string
}

// Descriptor is the indexed view of a single record.
type Descriptor struct {
	Identity     string   `json:"identity"`
	Type         string   `json:"type"`
	LastModified *int64   `json:"last_modified,omitempty"`
	Owner        string   `json:"owner,omitempty"`
	References   []string `json:"references,omitempty"`
	Location     Location `json:"location"`
}

// Scanner yields the scanned source locations grouped by destination type.
// The returned order must be stable across calls on the same snapshot.
type Scanner interface {
	Scan(ctx context.Context) ([]Group, error)
}

// Decoder extracts the descriptor fields of the payload behind loc.
type Decoder interface {
	Decode(ctx context.Context, loc Location) (Fields, error)
}

// DuplicatePolicy controls how two locations claiming one identity are handled.
type DuplicatePolicy string

const (
	// DuplicateStrict fails the batch on the first duplicate identity.
	DuplicateStrict DuplicatePolicy = "strict"
	// DuplicateLenient keeps the first-seen location and records a warning.
	DuplicateLenient DuplicatePolicy = "lenient"
)

// ParseDuplicatePolicy maps a configuration value to a policy.
// An empty value yields DuplicateStrict.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", DuplicateStrict:
		return DuplicateStrict, nil
	case DuplicateLenient:
		return DuplicateLenient, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q (want strict or lenient)", s)
	}
}

// Warning is a non-fatal indexing problem.
type Warning struct {
	Identity string   `json:"identity"`
	Kept     Location `json:"kept"`
	Dropped  Location `json:"dropped"`
	Message  string   `json:"message"`
}
