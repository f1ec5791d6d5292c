package reconcile

import (
	"context"
	"errors"
	"fmt"

	"content-sync/core/graph"
	"content-sync/core/planner"
	"content-sync/core/record"

	"go.uber.org/zap"
)

// BuildPlan scans, indexes, orders and reconciles one import batch.
// It does NOT write anything; use ApplyPlan for that, so cancelling here is always safe.
func BuildPlan(ctx context.Context, spec *Spec) (*ImportPlan, error) {
	if spec.Scanner == nil || spec.Decoder == nil || spec.Lookup == nil {
		return nil, errors.New("spec requires a scanner, a decoder and a lookup")
	}
	log := spec.Logger
	if log == nil {
		log = zap.NewNop()
	}

	groups, err := spec.Scanner.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	// Index descriptors (no destination access)
	idx, err := record.Build(ctx, groups, spec.Decoder, record.Options{
		Duplicates: spec.Duplicates,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}

	// Order
	g := graph.FromIndex(idx)
	order := planner.Compute(g)
	for _, c := range order.Cycles() {
		log.Warn("Dependency cycle, applying members in first-seen order", zap.Strings("members", c.Members))
	}

	// Reconcile against the destination
	lookup := spec.Lookup
	if bl, ok := spec.Lookup.(BatchLookup); ok && spec.LookupChunkSize > 0 {
		preloaded, err := NewIndexedLookup(ctx, bl, order.Order(), spec.LookupChunkSize)
		if err != nil {
			return nil, err
		}
		lookup = preloaded
	}
	engine := NewEngine(lookup, spec.Capabilities, EngineOptions{
		DefaultOwner: spec.DefaultOwner,
		Logger:       log,
	})
	decisions, err := engine.Reconcile(ctx, order.Order(), idx)
	if err != nil {
		return nil, err
	}

	plan := &ImportPlan{
		Order:      order.Order(),
		Components: order.Components(),
		Decisions:  decisions,
		Warnings:   idx.Warnings(),
	}
	plan.Summary = summarize(plan, g)
	return plan, nil
}

// ApplyPlan hands every non-skip decision to the driver, strictly in plan order.
// Requires opts.Confirmed=true and opts.DryRun=false to actually write.
//
// A failed apply is recorded in the result and processing continues with the next
// decision, unless opts.FailFast is set. Cancellation is checked before each
// decision; on cancellation the partial result is returned together with
// ErrCancelled and its counts reflect exactly what was applied.
func ApplyPlan(ctx context.Context, driver Driver, plan *ImportPlan, opts ApplyOptions) (*BatchResult, error) {
	result := &BatchResult{}

	// Safety check: do not execute if not confirmed or dry-run
	if !opts.Confirmed || opts.DryRun {
		return result, nil
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	for _, d := range plan.Decisions {
		if err := ctx.Err(); err != nil {
			result.Cancelled = true
			return result, fmt.Errorf("%w after %d of %d records: %w", ErrCancelled, result.Processed, len(plan.Decisions), err)
		}

		result.Processed++
		if d.Action == ActionSkip {
			result.Skipped++
			continue
		}

		outcome, err := driver.Apply(ctx, d)
		if err != nil {
			applyErr := &Error{Kind: ErrApplyFailed, Identity: d.Identity, Err: err}
			result.Failed++
			result.Failures = append(result.Failures, ApplyFailure{Identity: d.Identity, Action: d.Action, Err: applyErr})
			log.Error("Apply failed",
				zap.String("identity", d.Identity),
				zap.String("action", string(d.Action)),
				zap.Error(err),
			)
			if opts.FailFast {
				return result, applyErr
			}
			continue
		}

		switch d.Action {
		case ActionCreate:
			result.Created++
		case ActionUpdate:
			result.Updated++
		}
		result.MaterializedDependencies += outcome.Materialized
	}

	return result, nil
}

// PlanAndApply is a convenience wrapper that plans and optionally applies.
func PlanAndApply(ctx context.Context, spec *Spec, driver Driver, opts ApplyOptions) (*ImportPlan, *BatchResult, error) {
	plan, err := BuildPlan(ctx, spec)
	if err != nil {
		return nil, nil, err
	}
	result, err := ApplyPlan(ctx, driver, plan, opts)
	return plan, result, err
}

// summarize counts decisions, edges, cycles and warnings.
func summarize(plan *ImportPlan, g *graph.Graph) PlanSummary {
	s := PlanSummary{
		Total:    len(plan.Decisions),
		Edges:    g.EdgeCount(),
		Warnings: len(plan.Warnings),
	}
	for _, d := range plan.Decisions {
		switch d.Action {
		case ActionCreate:
			s.Creates++
		case ActionUpdate:
			s.Updates++
		case ActionSkip:
			s.Skips++
		}
	}
	for _, c := range plan.Components {
		if c.Cyclic {
			s.Cycles++
		}
	}
	return s
}
