// Package planner computes the application order of an import batch.
//
// The dependency graph is condensed into its strongly connected components and the
// components are emitted dependencies-first, so every referenced record is applied
// no later than the records that reference it. Mutually referencing records end up
// contiguous inside one cyclic component, ordered by first-seen position.
//
// Planning is pure and deterministic: the same graph always yields the same Plan,
// and a cycle is never an error.
//
// # Usage
//
//	g := graph.FromIndex(idx)
//	plan := planner.Compute(g)
//	for _, c := range plan.Cycles() {
//	    log.Warn("cycle", zap.Strings("members", c.Members))
//	}
//	order := plan.Order()
package planner
