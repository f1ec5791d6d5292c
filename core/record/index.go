package record

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// Options controls index building.
type Options struct {
	// Duplicates selects the duplicate identity policy. Empty means DuplicateStrict,
	// anything other than strict or lenient is rejected.
	Duplicates DuplicatePolicy
	// Logger receives lenient duplicate warnings. Nil disables logging.
	Logger *zap.Logger
}

// Index is the descriptor set of one import batch, in first-seen order.
type Index struct {
	descriptors []Descriptor
	byIdentity  map[string]int
	warnings    []Warning
}

// Build decodes every scanned location into a Descriptor.
// It performs no destination access.
func Build(ctx context.Context, groups []Group, dec Decoder, opts Options) (*Index, error) {
	policy, err := ParseDuplicatePolicy(string(opts.Duplicates))
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	idx := &Index{byIdentity: make(map[string]int)}

	for _, group := range groups {
		for _, loc := range group.Locations {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if loc.Type == "" {
				loc.Type = group.Type
			}

			fields, err := dec.Decode(ctx, loc)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil, err
				}
				return nil, malformed(loc, err)
			}
			identity := strings.TrimSpace(fields.Identity)
			if identity == "" {
				return nil, malformed(loc, errors.New("missing identity field"))
			}

			if pos, exists := idx.byIdentity[identity]; exists {
				first := idx.descriptors[pos].Location
				if policy == DuplicateStrict {
					return nil, duplicate(identity, first, loc)
				}
				w := Warning{
					Identity: identity,
					Kept:     first,
					Dropped:  loc,
					Message:  "duplicate identity, keeping first-seen location",
				}
				idx.warnings = append(idx.warnings, w)
				log.Warn("Duplicate identity in snapshot",
					zap.String("identity", identity),
					zap.String("kept", first.String()),
					zap.String("dropped", loc.String()),
				)
				continue
			}

			idx.byIdentity[identity] = len(idx.descriptors)
			idx.descriptors = append(idx.descriptors, Descriptor{
				Identity:     identity,
				Type:         group.Type,
				LastModified: fields.LastModified,
				Owner:        fields.Owner,
				References:   dedupe(fields.References),
				Location:     loc,
			})
		}
	}

	return idx, nil
}

// Len returns the number of indexed descriptors.
func (i *Index) Len() int { return len(i.descriptors) }

// Descriptors returns the descriptors in first-seen order.
func (i *Index) Descriptors() []Descriptor {
	out := make([]Descriptor, len(i.descriptors))
	copy(out, i.descriptors)
	return out
}

// Get returns the descriptor for identity.
func (i *Index) Get(identity string) (Descriptor, bool) {
	pos, ok := i.byIdentity[identity]
	if !ok {
		return Descriptor{}, false
	}
	return i.descriptors[pos], true
}

// Warnings returns the non-fatal problems recorded while indexing.
func (i *Index) Warnings() []Warning {
	out := make([]Warning, len(i.warnings))
	copy(out, i.warnings)
	return out
}

// dedupe drops blank and repeated references, keeping first occurrence order.
func dedupe(refs []string) []string {
	if len(refs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(refs))
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
