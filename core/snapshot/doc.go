// Package snapshot reads an export snapshot laid out as <root>/<type>/<name>.json.
//
// DirScanner reads a local directory and BucketScanner a MinIO/S3 prefix. Both
// implement record.Scanner and Source, and iterate type directories and files in
// lexical order so two scans of the same snapshot yield the same groups.
//
// Blobs referenced by file records live under <root>/_files/ and are read with
// ReadBlob. Directories starting with "_" or "." are never record types.
//
// JSONDecoder turns one record file into record.Fields. A record's owner is also
// one of its references, so owners are always applied before what they own.
//
//	src := snapshot.NewDirScanner("./export")
//	dec := snapshot.NewJSONDecoder(src)
package snapshot
