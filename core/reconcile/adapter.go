package reconcile

import "context"

// Existing is a handle to a record already present at the destination.
type Existing interface {
	// LastModified returns the destination modification time, if the record has one.
	LastModified() (int64, bool)

	// InternalKey returns the destination storage key of the record.
	InternalKey() string
}

// Lookup queries destination state by identity.
type Lookup interface {
	// FindByIdentity returns the existing record for identity, or nil when there is none.
	FindByIdentity(ctx context.Context, identity string) (Existing, error)
}

// BatchLookup is implemented by destinations that can resolve many identities in one query.
type BatchLookup interface {
	// FindByIdentities returns the existing records keyed by identity.
	// Identities without a destination record are absent from the map.
	FindByIdentities(ctx context.Context, identities []string) (map[string]Existing, error)
}

// Capabilities describes per-type destination features.
type Capabilities interface {
	// TracksModified reports whether records of typeID expose a modification time.
	TracksModified(typeID string) bool

	// TracksOwner reports whether records of typeID carry an owner.
	TracksOwner(typeID string) bool
}

// noCapabilities treats every type as tracking neither modification time nor owner.
type noCapabilities struct{}

func (noCapabilities) TracksModified(string) bool { return false }
func (noCapabilities) TracksOwner(string) bool    { return false }

// Outcome is what a driver reports after applying one decision.
type Outcome struct {
	// Materialized counts dependencies created only to satisfy this record (e.g. missing files).
	Materialized int
}

// Driver applies decisions against the destination store.
//
// On ActionCreate it inserts the incoming payload. On ActionUpdate it writes the
// incoming payload bound to Decision.InternalKey as an existing (not new) record.
// ActionSkip decisions are never passed to the driver.
type Driver interface {
	Apply(ctx context.Context, d Decision) (Outcome, error)
}
