// Package graph holds the dependency graph of one import batch.
//
// Vertices live in an arena indexed by first-seen position and are looked up by
// identity; adjacency is stored as index lists with set semantics. A Builder is
// filled once per batch and frozen with Build, after which the Graph is read-only.
// The graph stores identities and edges only, never record payloads.
package graph
