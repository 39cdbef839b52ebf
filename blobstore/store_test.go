package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStoreLifecycle(t *testing.T, store BlobStore) {
	ctx := context.Background()

	_, err := store.Open(ctx, "general/certain.json")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "general/certain.json", []byte(`[["a","b"]]`)))
	require.NoError(t, store.Put(ctx, "general/rejected.json", []byte(`[]`)))
	require.NoError(t, store.Put(ctx, "alpha/certain.json", []byte(`[]`)))

	data, err := ReadAll(ctx, store, "general/certain.json")
	require.NoError(t, err)
	assert.Equal(t, `[["a","b"]]`, string(data))

	require.NoError(t, store.Put(ctx, "general/certain.json", []byte(`[]`)))
	data, err = ReadAll(ctx, store, "general/certain.json")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	names, err := store.List(ctx, "general/")
	require.NoError(t, err)
	assert.Equal(t, []string{"general/certain.json", "general/rejected.json"}, names)

	require.NoError(t, store.Delete(ctx, "general/rejected.json"))
	require.NoError(t, store.Delete(ctx, "general/rejected.json"))
	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha/certain.json", "general/certain.json"}, names)
}

func TestLocalStore_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	testStoreLifecycle(t, NewLocalStore(dir))

	// No temp files are left behind by atomic writes.
	entries, err := os.ReadDir(filepath.Join(dir, "general"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "missing"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	store := NewMemoryStore()
	testStoreLifecycle(t, store)
	assert.Equal(t, 4, store.PutCount())
}

func TestMemoryStore_PutCancelled(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Put(ctx, "x", []byte("y")), context.Canceled)
	assert.Equal(t, 0, store.PutCount())
}
