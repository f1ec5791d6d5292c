// Package record indexes a scanned export snapshot into lightweight descriptors.
//
// A descriptor carries only what ordering and reconciliation need: the record
// identity, its destination type, the declared last-modified time, the owner and
// the identities it references. The full payload stays behind its Location and is
// re-read by the apply driver when the record is written.
//
// # Building an Index
//
// Build walks the scanned groups in the order the Scanner yields them and asks
// the Decoder for each location's descriptor fields. Any decoding failure aborts
// the whole batch with a MalformedRecord error; a partially indexed batch is never
// returned.
//
// # Duplicate identities
//
// Two locations claiming the same identity are handled by DuplicatePolicy:
//   - DuplicateStrict (default): fail with a DuplicateIdentity error naming both locations.
//   - DuplicateLenient: keep the first-seen location, record a Warning and drop the later one.
//
// # Usage
//
//	groups, err := scanner.Scan(ctx)
//	idx, err := record.Build(ctx, groups, decoder, record.Options{Duplicates: record.DuplicateStrict})
//	for _, d := range idx.Descriptors() {
//	    fmt.Println(d.Identity, d.References)
//	}
package record
