package reconcile

import (
	"context"
	"errors"
	"testing"

	"content-sync/core/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	typ    string
	path   string
	fields record.Fields
}

// fakeSnapshot is both the scanner and the decoder of an in-memory snapshot.
type fakeSnapshot struct {
	records []testRecord
	scanErr error
}

func (s *fakeSnapshot) Scan(ctx context.Context) ([]record.Group, error) {
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	var groups []record.Group
	pos := map[string]int{}
	for _, r := range s.records {
		typ := r.typ
		if typ == "" {
			typ = "node"
		}
		i, ok := pos[typ]
		if !ok {
			i = len(groups)
			pos[typ] = i
			groups = append(groups, record.Group{Type: typ})
		}
		groups[i].Locations = append(groups[i].Locations, record.Location{Type: typ, Path: r.path})
	}
	return groups, nil
}

func (s *fakeSnapshot) Decode(ctx context.Context, loc record.Location) (record.Fields, error) {
	for _, r := range s.records {
		if r.path == loc.Path {
			return r.fields, nil
		}
	}
	return record.Fields{}, errors.New("not found")
}

func buildIndex(t *testing.T, records []testRecord) *record.Index {
	t.Helper()
	snap := &fakeSnapshot{records: records}
	groups, err := snap.Scan(context.Background())
	require.NoError(t, err)
	idx, err := record.Build(context.Background(), groups, snap, record.Options{})
	require.NoError(t, err)
	return idx
}

// fakeDriver records applied decisions and fails the configured identities.
type fakeDriver struct {
	applied      []Decision
	fail         map[string]error
	materialized map[string]int
	onApply      func(d Decision)
}

func (f *fakeDriver) Apply(ctx context.Context, d Decision) (Outcome, error) {
	if f.onApply != nil {
		f.onApply(d)
	}
	if err, ok := f.fail[d.Identity]; ok {
		return Outcome{}, err
	}
	f.applied = append(f.applied, d)
	return Outcome{Materialized: f.materialized[d.Identity]}, nil
}

func chainSnapshot() *fakeSnapshot {
	// Listed dependents-first so the plan has to reorder them.
	return &fakeSnapshot{records: []testRecord{
		{path: "c.json", fields: record.Fields{Identity: "C", LastModified: ts(100), References: []string{"B"}}},
		{path: "b.json", fields: record.Fields{Identity: "B", LastModified: ts(100), References: []string{"A"}}},
		{path: "a.json", fields: record.Fields{Identity: "A", LastModified: ts(100)}},
	}}
}

func actions(decisions []Decision) []Action {
	out := make([]Action, 0, len(decisions))
	for _, d := range decisions {
		out = append(out, d.Action)
	}
	return out
}

func TestBuildPlan_ChainAllCreate(t *testing.T) {
	snap := chainSnapshot()
	spec := &Spec{Scanner: snap, Decoder: snap, Lookup: &mapLookup{}, Capabilities: defaultCaps}

	plan, err := BuildPlan(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, plan.Order)
	assert.Equal(t, []Action{ActionCreate, ActionCreate, ActionCreate}, actions(plan.Decisions))
	assert.Equal(t, PlanSummary{Total: 3, Edges: 2, Creates: 3}, plan.Summary)

	driver := &fakeDriver{}
	result, err := ApplyPlan(context.Background(), driver, plan, ApplyOptions{Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 0, result.Failed)
	assert.NoError(t, result.Err())

	require.Len(t, driver.applied, 3)
	assert.Equal(t, "A", driver.applied[0].Identity)
	assert.Equal(t, "C", driver.applied[2].Identity)
}

func TestBuildPlan_SkippedDependencyStillSatisfiesReference(t *testing.T) {
	snap := chainSnapshot()
	lookup := &mapLookup{records: map[string]*fakeExisting{"B": {key: "9", changed: ts(200)}}}
	spec := &Spec{Scanner: snap, Decoder: snap, Lookup: lookup, Capabilities: defaultCaps}

	plan, err := BuildPlan(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, []Action{ActionCreate, ActionSkip, ActionCreate}, actions(plan.Decisions))

	driver := &fakeDriver{}
	result, err := ApplyPlan(context.Background(), driver, plan, ApplyOptions{Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Skipped)

	require.Len(t, driver.applied, 2)
	assert.Equal(t, "C", driver.applied[1].Identity, "C applies although B was skipped")
}

func TestBuildPlan_UpdateCarriesInternalKey(t *testing.T) {
	snap := chainSnapshot()
	lookup := &mapLookup{records: map[string]*fakeExisting{"A": {key: "17", changed: ts(50)}}}
	spec := &Spec{Scanner: snap, Decoder: snap, Lookup: lookup, Capabilities: defaultCaps}

	plan, err := BuildPlan(context.Background(), spec)
	require.NoError(t, err)

	d, ok := plan.Decision("A")
	require.True(t, ok)
	assert.Equal(t, ActionUpdate, d.Action)
	assert.Equal(t, "17", d.InternalKey)
	assert.Equal(t, "A", d.Identity, "incoming identity is preserved")

	_, ok = plan.Decision("missing")
	assert.False(t, ok)
}

func TestBuildPlan_Cycle(t *testing.T) {
	snap := &fakeSnapshot{records: []testRecord{
		{path: "x", fields: record.Fields{Identity: "X", References: []string{"Y"}}},
		{path: "y", fields: record.Fields{Identity: "Y", References: []string{"Z"}}},
		{path: "z", fields: record.Fields{Identity: "Z", References: []string{"X"}}},
		{path: "w", fields: record.Fields{Identity: "W", References: []string{"X"}}},
	}}
	spec := &Spec{Scanner: snap, Decoder: snap, Lookup: &mapLookup{}, Capabilities: defaultCaps}

	plan, err := BuildPlan(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y", "Z", "W"}, plan.Order)
	assert.Equal(t, 1, plan.Summary.Cycles)
}

func TestBuildPlan_DuplicatePolicies(t *testing.T) {
	records := []testRecord{
		{path: "a1", fields: record.Fields{Identity: "A"}},
		{path: "a2", fields: record.Fields{Identity: "A"}},
		{path: "b", fields: record.Fields{Identity: "B", References: []string{"A"}}},
	}

	t.Run("strict", func(t *testing.T) {
		snap := &fakeSnapshot{records: records}
		spec := &Spec{Scanner: snap, Decoder: snap, Lookup: &mapLookup{}, Duplicates: record.DuplicateStrict}

		_, err := BuildPlan(context.Background(), spec)
		require.Error(t, err)
		assert.ErrorIs(t, err, record.ErrDuplicateIdentity)
		assert.Contains(t, err.Error(), "a1")
		assert.Contains(t, err.Error(), "a2")
	})

	t.Run("lenient", func(t *testing.T) {
		snap := &fakeSnapshot{records: records}
		spec := &Spec{Scanner: snap, Decoder: snap, Lookup: &mapLookup{}, Duplicates: record.DuplicateLenient}

		plan, err := BuildPlan(context.Background(), spec)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, plan.Order)
		assert.Len(t, plan.Decisions, 2, "exactly one decision for A")
		require.Len(t, plan.Warnings, 1)
		assert.Equal(t, 1, plan.Summary.Warnings)
	})
}

func TestBuildPlan_Errors(t *testing.T) {
	t.Run("missing collaborators", func(t *testing.T) {
		_, err := BuildPlan(context.Background(), &Spec{})
		assert.Error(t, err)
	})

	t.Run("scan error", func(t *testing.T) {
		snap := &fakeSnapshot{scanErr: errors.New("permission denied")}
		_, err := BuildPlan(context.Background(), &Spec{Scanner: snap, Decoder: snap, Lookup: &mapLookup{}})
		assert.ErrorContains(t, err, "permission denied")
	})

	t.Run("lookup error", func(t *testing.T) {
		snap := chainSnapshot()
		lookup := &mapLookup{errs: map[string]error{"A": errors.New("timeout")}}
		_, err := BuildPlan(context.Background(), &Spec{Scanner: snap, Decoder: snap, Lookup: lookup})
		assert.ErrorIs(t, err, ErrLookupFailed)
	})
}

func TestApplyPlan_SafetyGates(t *testing.T) {
	snap := chainSnapshot()
	plan, err := BuildPlan(context.Background(), &Spec{Scanner: snap, Decoder: snap, Lookup: &mapLookup{}})
	require.NoError(t, err)

	tests := []struct {
		name string
		opts ApplyOptions
	}{
		{"not confirmed", ApplyOptions{}},
		{"dry run", ApplyOptions{Confirmed: true, DryRun: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver := &fakeDriver{}
			result, err := ApplyPlan(context.Background(), driver, plan, tt.opts)
			assert.NoError(t, err)
			assert.Equal(t, BatchResult{}, *result)
			assert.Empty(t, driver.applied)
		})
	}
}

func TestApplyPlan_FailuresAreIsolated(t *testing.T) {
	snap := chainSnapshot()
	plan, err := BuildPlan(context.Background(), &Spec{Scanner: snap, Decoder: snap, Lookup: &mapLookup{}})
	require.NoError(t, err)

	driver := &fakeDriver{
		fail:         map[string]error{"B": errors.New("constraint violation")},
		materialized: map[string]int{"C": 2},
	}
	result, err := ApplyPlan(context.Background(), driver, plan, ApplyOptions{Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 2, result.MaterializedDependencies)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "B", result.Failures[0].Identity)
	assert.ErrorIs(t, result.Err(), ErrApplyFailed)
	assert.ErrorContains(t, result.Err(), "constraint violation")
}

func TestApplyPlan_FailFast(t *testing.T) {
	snap := chainSnapshot()
	plan, err := BuildPlan(context.Background(), &Spec{Scanner: snap, Decoder: snap, Lookup: &mapLookup{}})
	require.NoError(t, err)

	driver := &fakeDriver{fail: map[string]error{"B": errors.New("boom")}}
	result, err := ApplyPlan(context.Background(), driver, plan, ApplyOptions{Confirmed: true, FailFast: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrApplyFailed)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, driver.applied, 1)
}

func TestApplyPlan_CancellationReportsPartialCounts(t *testing.T) {
	snap := chainSnapshot()
	plan, err := BuildPlan(context.Background(), &Spec{Scanner: snap, Decoder: snap, Lookup: &mapLookup{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	driver := &fakeDriver{onApply: func(d Decision) {
		if d.Identity == "B" {
			cancel()
		}
	}}

	result, err := ApplyPlan(ctx, driver, plan, ApplyOptions{Confirmed: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, result.Cancelled)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 2, result.Created, "A and B were applied before cancellation")
	assert.Len(t, driver.applied, 2)
}

func TestPlanAndApply(t *testing.T) {
	snap := chainSnapshot()
	driver := &fakeDriver{}
	plan, result, err := PlanAndApply(context.Background(),
		&Spec{Scanner: snap, Decoder: snap, Lookup: &mapLookup{}},
		driver, ApplyOptions{Confirmed: true})
	require.NoError(t, err)
	assert.Len(t, plan.Decisions, 3)
	assert.Equal(t, 3, result.Created)
}
