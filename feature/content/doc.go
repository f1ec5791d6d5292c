// Package content is the gorm-backed destination of an import.
//
// Store implements the destination lookup (FindByIdentity, and FindByIdentities
// for per-run preloading) and the apply driver. Entities live in the
// content_entities table: the auto-increment id is the internal key inherited by
// updates, uuid is the record identity.
//
// Registry says per type whether the destination tracks modification time and
// ownership and whether records reference a blob. It is read from a YAML file:
//
//	types:
//	  - name: node
//	    tracks_modified: true
//	    tracks_owner: true
//	  - name: file
//	    tracks_modified: true
//	    files: true
//
// Files uploads referenced blobs to the destination bucket when they are missing
// there; every upload counts as a materialized dependency.
//
// Transient database and storage errors are retried with exponential backoff.
package content
