// Package reconcile decides, for every record of an import batch, whether the
// destination store needs a Create, an Update or nothing at all, and drives the
// apply phase.
//
// The reconcile system is split in two phases with a hard boundary between them:
//
//  1. Plan (BuildPlan): scan the snapshot, index descriptors, build the dependency
//     graph, compute the application order and reconcile each record against the
//     destination. This phase only reads and is always safe to cancel.
//
//  2. Apply (ApplyPlan): hand each decision to a Driver, strictly in plan order,
//     after explicit confirmation. Per-record failures are isolated and aggregated
//     in a BatchResult; cancellation stops before the next record and reports what
//     was applied up to that point.
//
// # Decision rules
//
//   - No destination record: Create.
//   - Both sides expose a modification time: Update when the destination is strictly
//     older, Skip otherwise. Content is never regressed.
//   - The type does not track modification time, or a side lacks it: Update. The
//     rule is "always overwrite when staleness cannot be determined".
//
// An Update carries the destination internal key on the Decision itself, so the
// driver writes in place instead of creating a duplicate. Owner-less records of
// owner-tracking types are annotated with the configured default owner.
//
// # Errors
//
// Lookup failures abort planning with ErrLookupFailed. Apply failures are wrapped
// in ErrApplyFailed and collected in BatchResult.Failures.
//
// # Usage Example
//
//	spec := &reconcile.Spec{
//	    Scanner:      snap,
//	    Decoder:      snapshot.NewJSONDecoder(snap),
//	    Lookup:       store,
//	    Capabilities: registry,
//	}
//	plan, err := reconcile.BuildPlan(ctx, spec)
//	result, err := reconcile.ApplyPlan(ctx, store, plan, reconcile.ApplyOptions{Confirmed: true})
package reconcile
