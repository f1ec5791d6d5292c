package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 30, cfg.Database.TimeoutSeconds)
	assert.Equal(t, "content", cfg.Storage.Bucket)
	assert.Equal(t, "./snapshot", cfg.Snapshot.Dir)
	assert.False(t, cfg.Snapshot.UseBucket)
	assert.Equal(t, "strict", cfg.Import.Duplicates)
	assert.Equal(t, 500, cfg.Import.LookupChunkSize)
	assert.False(t, cfg.Import.FailFast)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("IMPORT_DUPLICATES", "lenient")
	t.Setenv("IMPORT_FAIL_FAST", "true")
	t.Setenv("SNAPSHOT_USE_BUCKET", "true")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("IMPORT_DEFAULT_OWNER=admin-uuid\nDATABASE_DRIVER=sqlite\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("IMPORT_DEFAULT_OWNER")
		os.Unsetenv("DATABASE_DRIVER")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "lenient", cfg.Import.Duplicates)
	assert.True(t, cfg.Import.FailFast)
	assert.True(t, cfg.Snapshot.UseBucket)
	assert.Equal(t, "admin-uuid", cfg.Import.DefaultOwner)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}
