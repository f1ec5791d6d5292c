package reconcile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// preloadConcurrency bounds the number of in-flight preload queries.
const preloadConcurrency = 4

// IndexedLookup serves FindByIdentity from destination state loaded up front.
// It is built per run and never shared across runs, so it cannot go stale
// between two imports.
type IndexedLookup struct {
	found map[string]Existing

	// Built is the time the index was loaded.
	Built time.Time
}

// NewIndexedLookup loads destination state for all identities in chunks of chunkSize.
// Chunks are queried concurrently.
func NewIndexedLookup(ctx context.Context, bl BatchLookup, identities []string, chunkSize int) (*IndexedLookup, error) {
	if chunkSize <= 0 {
		chunkSize = len(identities)
	}

	var (
		mu    sync.Mutex
		found = make(map[string]Existing, len(identities))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(preloadConcurrency)

	for start := 0; start < len(identities); start += chunkSize {
		end := start + chunkSize
		if end > len(identities) {
			end = len(identities)
		}
		chunk := identities[start:end]

		g.Go(func() error {
			batch, err := bl.FindByIdentities(gctx, chunk)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return &Error{Kind: ErrLookupFailed, Identity: chunk[0], Err: err}
			}
			mu.Lock()
			for id, ex := range batch {
				if ex != nil {
					found[id] = ex
				}
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &IndexedLookup{found: found, Built: time.Now()}, nil
}

// FindByIdentity returns the preloaded record, or nil when the identity does not exist.
func (l *IndexedLookup) FindByIdentity(ctx context.Context, identity string) (Existing, error) {
	if ex, ok := l.found[identity]; ok {
		return ex, nil
	}
	return nil, nil
}

// Len returns the number of destination records found.
func (l *IndexedLookup) Len() int { return len(l.found) }
