// Package preview serves a read-only view of the import plan over HTTP.
//
//   - GET /preview: summary, order, cycles, warnings and decisions
//     (optionally filtered with ?action=create|update|skip).
//   - GET /preview/:identity: the decision and plan position of one record.
//
// Every request plans from scratch against the current snapshot and destination;
// nothing is ever applied.
package preview
