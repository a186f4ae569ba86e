package packstore

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCachedAssets_Coherence(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()

	// Nothing cached yet.
	assert.Nil(t, s.GetCachedAssets(ctx, "fp"))

	// Half a cache (interrupted aggregation) is a miss, never corruption.
	writeFiles(t, s.fs, map[string]string{"/data/cachedassets/fp.js": "var a;"})
	assert.Nil(t, s.GetCachedAssets(ctx, "fp"))

	// Both files present is a hit.
	writeFiles(t, s.fs, map[string]string{"/data/cachedassets/fp.css": "h1 {}"})
	set := s.GetCachedAssets(ctx, "fp")
	require.NotNil(t, set)
	assert.Equal(t, "cachedassets/fp.js", set.Scripts.Path)
	assert.Equal(t, "cachedassets/fp.css", set.Styles.Path)
	assert.Empty(t, set.Scripts.Version)
	assert.Empty(t, set.Styles.Version)

	// Invalidation removes both files.
	require.NoError(t, s.DeleteCachedAssets(ctx, "fp"))
	assert.Nil(t, s.GetCachedAssets(ctx, "fp"))
	for _, p := range []string{"/data/cachedassets/fp.js", "/data/cachedassets/fp.css"} {
		ok, _ := afero.Exists(s.fs, p)
		assert.False(t, ok, "%s should be gone", p)
	}
}

func TestDeleteCachedAssets_MissingKeysAreSilent(t *testing.T) {
	s := newMemStore(t)
	assert.NoError(t, s.DeleteCachedAssets(context.Background(), "never-cached", "also-missing"))
}

func TestDeleteCachedAssets_MultipleKeys(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()
	writeFiles(t, s.fs, map[string]string{
		"/data/cachedassets/one.js":  "a",
		"/data/cachedassets/one.css": "b",
		"/data/cachedassets/two.js":  "c",
		"/data/cachedassets/two.css": "d",
	})

	require.NoError(t, s.DeleteCachedAssets(ctx, "one", "two"))
	assert.Nil(t, s.GetCachedAssets(ctx, "one"))
	assert.Nil(t, s.GetCachedAssets(ctx, "two"))
}

func TestGetCachedAssets_RejectsUnsafeKey(t *testing.T) {
	s := newMemStore(t)
	assert.Nil(t, s.GetCachedAssets(context.Background(), "../../etc/passwd"))
}
