package reconcile

import (
	"errors"

	"content-sync/core/planner"
	"content-sync/core/record"

	"go.uber.org/zap"
)

// Action is the reconciliation outcome for a single record.
type Action string

const (
	// ActionCreate inserts the incoming record; nothing exists at the destination.
	ActionCreate Action = "create"
	// ActionUpdate overwrites the existing destination record in place.
	ActionUpdate Action = "update"
	// ActionSkip leaves the destination untouched.
	ActionSkip Action = "skip"
)

// Decision is the reconciliation result for one planned identity.
type Decision struct {
	// Identity is the record identity.
	Identity string `json:"identity"`

	// Type is the destination type of the record.
	Type string `json:"type"`

	// Action is the chosen action.
	Action Action `json:"action"`

	// Reason explains a Skip or a forced Update.
	Reason string `json:"reason,omitempty"`

	// InternalKey is the destination storage key to write to.
	// Only populated for ActionUpdate; the write must target this key.
	InternalKey string `json:"internal_key,omitempty"`

	// DefaultOwner is set when the record carries no owner but its type tracks one.
	// The driver assigns it as the owner on write.
	DefaultOwner string `json:"default_owner,omitempty"`

	// Record is the indexed descriptor, used by the driver to re-read the payload.
	Record record.Descriptor `json:"-"`
}

// Spec bundles the collaborators and settings of one import run.
type Spec struct {
	// Scanner yields the snapshot locations grouped by type.
	Scanner record.Scanner

	// Decoder extracts descriptor fields from each location.
	Decoder record.Decoder

	// Lookup queries destination state by identity.
	// If it also implements BatchLookup and LookupChunkSize is positive,
	// destination state is preloaded once per run.
	Lookup Lookup

	// Capabilities describes which destination types track modification time and ownership.
	Capabilities Capabilities

	// Duplicates is the duplicate identity policy. Empty means strict; unknown values fail planning.
	Duplicates record.DuplicatePolicy

	// DefaultOwner is attached to owner-less records of types that track ownership.
	DefaultOwner string

	// LookupChunkSize is the number of identities per preload query.
	LookupChunkSize int

	// Logger receives planning diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// ImportPlan is the read-only outcome of planning: order plus decisions.
type ImportPlan struct {
	// Order is the identities in application order.
	Order []string `json:"order"`

	// Components are the strongly connected components in application order.
	Components []planner.Component `json:"components"`

	// Decisions holds one decision per identity, in Order.
	Decisions []Decision `json:"decisions"`

	// Warnings are non-fatal indexing problems (lenient duplicates).
	Warnings []record.Warning `json:"warnings"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// Decision returns the decision for identity.
func (p *ImportPlan) Decision(identity string) (Decision, bool) {
	for _, d := range p.Decisions {
		if d.Identity == identity {
			return d, true
		}
	}
	return Decision{}, false
}

// Position returns the index of identity in Order, or -1 when it is not planned.
func (p *ImportPlan) Position(identity string) int {
	for i, id := range p.Order {
		if id == identity {
			return i
		}
	}
	return -1
}

// PlanSummary provides aggregate statistics for an import plan.
type PlanSummary struct {
	// Total is the number of planned records.
	Total int `json:"total"`

	// Edges is the number of in-batch dependency edges.
	Edges int `json:"edges"`

	// Creates counts planned Create decisions.
	Creates int `json:"creates"`

	// Updates counts planned Update decisions.
	Updates int `json:"updates"`

	// Skips counts planned Skip decisions.
	Skips int `json:"skips"`

	// Cycles counts cyclic components.
	Cycles int `json:"cycles"`

	// Warnings counts indexing warnings.
	Warnings int `json:"warnings"`
}

// ApplyOptions controls the apply phase.
type ApplyOptions struct {
	// DryRun prevents execution of any write if true.
	DryRun bool

	// Confirmed indicates the user has confirmed the writes.
	// If false, nothing is applied regardless of DryRun.
	Confirmed bool

	// FailFast stops at the first failed apply instead of continuing.
	FailFast bool

	// Logger receives per-record apply failures. Nil disables logging.
	Logger *zap.Logger
}

// ApplyFailure records a decision the driver failed to apply.
type ApplyFailure struct {
	Identity string `json:"identity"`
	Action   Action `json:"action"`
	Err      error  `json:"-"`
}

// BatchResult aggregates the outcome of applying an import plan.
type BatchResult struct {
	// Processed counts decisions considered, including failed ones.
	Processed int `json:"processed"`

	// Created counts successful creates.
	Created int `json:"created"`

	// Updated counts successful updates.
	Updated int `json:"updated"`

	// Skipped counts skip decisions.
	Skipped int `json:"skipped"`

	// Failed counts decisions the driver failed to apply.
	Failed int `json:"failed"`

	// MaterializedDependencies counts records created only to satisfy a reference.
	MaterializedDependencies int `json:"materialized_dependencies"`

	// Failures lists every failed apply.
	Failures []ApplyFailure `json:"-"`

	// Cancelled is true when the run stopped before the end of the plan.
	Cancelled bool `json:"cancelled"`
}

// Err joins every apply failure, or returns nil when all applies succeeded.
func (r *BatchResult) Err() error {
	if r == nil || len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}
