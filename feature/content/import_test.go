package content_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"content-sync/core/database"
	"content-sync/core/reconcile"
	"content-sync/core/record"
	"content-sync/core/snapshot"
	"content-sync/feature/content"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSnapshot(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return root
}

func TestImport_EndToEnd(t *testing.T) {
	root := writeSnapshot(t, map[string]string{
		"node/article.json": `{"uuid":"n1","changed":200,"owner":"u1","references":["t1"],"fields":{"title":"Hello"}}`,
		"node/orphan.json":  `{"uuid":"n2","changed":200}`,
		"taxonomy_term/tag.json": `{"uuid":"t1","changed":100,"fields":{"name":"go"}}`,
		"user/alice.json":   `{"uuid":"u1","changed":100}`,
		"block/footer.json": `{"uuid":"b1"}`,
	})

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	src := snapshot.NewDirScanner(root)
	dec := snapshot.NewJSONDecoder(src)
	registry := content.DefaultRegistry()
	store := content.NewStore(db, registry, dec, nil, nil)
	require.NoError(t, store.Migrate())

	spec := &reconcile.Spec{
		Scanner:         src,
		Decoder:         dec,
		Lookup:          store,
		Capabilities:    registry,
		Duplicates:      record.DuplicateStrict,
		DefaultOwner:    "admin",
		LookupChunkSize: 2,
	}
	ctx := context.Background()

	plan, result, err := reconcile.PlanAndApply(ctx, spec, store, reconcile.ApplyOptions{Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Processed)
	assert.Equal(t, 5, result.Created)
	assert.Less(t, plan.Position("u1"), plan.Position("n1"))
	assert.Less(t, plan.Position("t1"), plan.Position("n1"))

	var orphan content.Entity
	require.NoError(t, db.Where("uuid = ?", "n2").First(&orphan).Error)
	assert.Equal(t, "admin", orphan.OwnerUUID)

	// A second run against the same snapshot only rewrites what cannot be compared.
	plan, result, err = reconcile.PlanAndApply(ctx, spec, store, reconcile.ApplyOptions{Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, 4, plan.Summary.Skips)
	assert.Equal(t, 1, plan.Summary.Updates, "block does not track modification time")
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Updated)

	var count int64
	require.NoError(t, db.Model(&content.Entity{}).Count(&count).Error)
	assert.Equal(t, int64(5), count)

	var block content.Entity
	require.NoError(t, db.Where("uuid = ?", "b1").First(&block).Error)
	assert.Equal(t, 2, block.Revision)
}
