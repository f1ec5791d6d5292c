package reconcile

import (
	"context"
	"fmt"

	"content-sync/core/record"

	"go.uber.org/zap"
)

const (
	reasonNoModifiedSupport = "type does not track modification time: always overwrite when staleness cannot be determined"
	reasonNoTimestamp       = "modification time missing on one side: always overwrite when staleness cannot be determined"
	reasonDestinationNewer  = "destination is same age or newer"
)

// EngineOptions configures an Engine.
type EngineOptions struct {
	// DefaultOwner is attached to owner-less records of owner-tracking types.
	DefaultOwner string
	// Logger receives per-decision debug output. Nil disables logging.
	Logger *zap.Logger
}

// Engine decides Create, Update or Skip for each planned record.
// It only reads from the destination.
type Engine struct {
	lookup       Lookup
	caps         Capabilities
	defaultOwner string
	logger       *zap.Logger
}

// NewEngine creates an Engine over a destination lookup.
func NewEngine(lookup Lookup, caps Capabilities, opts EngineOptions) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if caps == nil {
		caps = noCapabilities{}
	}
	return &Engine{
		lookup:       lookup,
		caps:         caps,
		defaultOwner: opts.DefaultOwner,
		logger:       logger,
	}
}

// Reconcile produces one decision per identity, in order.
// The first lookup failure aborts the run with an ErrLookupFailed error.
func (e *Engine) Reconcile(ctx context.Context, order []string, idx *record.Index) ([]Decision, error) {
	decisions := make([]Decision, 0, len(order))
	for _, identity := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		desc, ok := idx.Get(identity)
		if !ok {
			return nil, fmt.Errorf("identity %q is planned but not indexed", identity)
		}
		d, err := e.Decide(ctx, desc)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return decisions, nil
}

// Decide reconciles a single record against the destination.
//
// Rules, in order:
//   - nothing exists at the destination: Create.
//   - the type does not track modification time: Update (always overwrite when
//     staleness cannot be determined).
//   - either side lacks a modification time: Update, for the same reason.
//   - destination strictly older than source: Update; otherwise Skip.
//
// An Update carries the destination internal key so the write lands in place.
func (e *Engine) Decide(ctx context.Context, desc record.Descriptor) (Decision, error) {
	existing, err := e.lookup.FindByIdentity(ctx, desc.Identity)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Decision{}, ctxErr
		}
		return Decision{}, &Error{Kind: ErrLookupFailed, Identity: desc.Identity, Err: err}
	}

	d := Decision{
		Identity: desc.Identity,
		Type:     desc.Type,
		Record:   desc,
	}
	if desc.Owner == "" && e.defaultOwner != "" && e.caps.TracksOwner(desc.Type) {
		d.DefaultOwner = e.defaultOwner
	}

	if existing == nil {
		d.Action = ActionCreate
		e.logger.Debug("Decided", zap.String("identity", d.Identity), zap.String("action", string(d.Action)))
		return d, nil
	}

	switch {
	case !e.caps.TracksModified(desc.Type):
		d.Action = ActionUpdate
		d.Reason = reasonNoModifiedSupport
	default:
		dst, dstOK := existing.LastModified()
		if desc.LastModified == nil || !dstOK {
			d.Action = ActionUpdate
			d.Reason = reasonNoTimestamp
		} else if dst < *desc.LastModified {
			d.Action = ActionUpdate
		} else {
			d.Action = ActionSkip
			d.Reason = reasonDestinationNewer
		}
	}

	if d.Action == ActionUpdate {
		d.InternalKey = existing.InternalKey()
	}

	e.logger.Debug("Decided",
		zap.String("identity", d.Identity),
		zap.String("action", string(d.Action)),
		zap.String("reason", d.Reason),
	)
	return d, nil
}
