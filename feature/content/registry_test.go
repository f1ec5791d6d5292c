package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	assert.True(t, r.TracksModified("node"))
	assert.True(t, r.TracksOwner("node"))
	assert.True(t, r.HasFiles("file"))
	assert.False(t, r.TracksModified("block"))
	assert.False(t, r.TracksOwner("user"))
	assert.False(t, r.TracksModified("unknown"), "unknown types track nothing")
	assert.Contains(t, r.Types(), "taxonomy_term")
}

func TestParseRegistry(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "valid",
			doc: `
types:
  - name: article
    tracks_modified: true
    tracks_owner: true
  - name: media
    files: true
`,
		},
		{name: "missing name", doc: "types:\n  - tracks_owner: true\n", wantErr: "has no name"},
		{name: "duplicate", doc: "types:\n  - name: a\n  - name: a\n", wantErr: "declared twice"},
		{name: "invalid yaml", doc: "types: [", wantErr: "invalid type registry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRegistry([]byte(tt.doc))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"article", "media"}, r.Types())

			spec, ok := r.Spec("article")
			require.True(t, ok)
			assert.True(t, spec.TracksOwner)
			assert.True(t, r.HasFiles("media"))
			assert.False(t, r.TracksModified("media"))
		})
	}
}

func TestLoadRegistry(t *testing.T) {
	r, err := LoadRegistry("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRegistry().Types(), r.Types())

	path := filepath.Join(t.TempDir(), "types.yaml")
	require.NoError(t, os.WriteFile(path, []byte("types:\n  - name: page\n    tracks_modified: true\n"), 0o644))
	r, err = LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"page"}, r.Types())

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
