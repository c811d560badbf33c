package sonar

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(afero.NewMemMapFs(), "records")
	require.NoError(t, err)
	return store
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := newTestFileStore(t)

	compiledAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := Record{Key: "sonar-bartik-abc", LastCompiledAt: compiledAt, OutputDigest: "deadbeefdeadbeef"}
	require.NoError(t, store.Set(rec))

	got, ok, err := store.Get("sonar-bartik-abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec.Key, got.Key)
	assert.True(t, got.LastCompiledAt.Equal(compiledAt))
	assert.Equal(t, rec.OutputDigest, got.OutputDigest)
}

func TestFileStoreGetMissing(t *testing.T) {
	store := newTestFileStore(t)

	_, ok, err := store.Get("sonar-bartik-missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreSetReplaces(t *testing.T) {
	store := newTestFileStore(t)

	first := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Set(Record{Key: "k", LastCompiledAt: first}))
	second := first.Add(time.Hour)
	require.NoError(t, store.Set(Record{Key: "k", LastCompiledAt: second}))

	got, ok, err := store.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.LastCompiledAt.Equal(second))
}

func TestFileStoreDelete(t *testing.T) {
	store := newTestFileStore(t)

	require.NoError(t, store.Set(Record{Key: "k", LastCompiledAt: time.Now()}))
	require.NoError(t, store.Delete("k"))

	_, ok, err := store.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is not an error.
	assert.NoError(t, store.Delete("k"))
}

func TestFileStoreClear(t *testing.T) {
	store := newTestFileStore(t)

	require.NoError(t, store.Set(Record{Key: "a", LastCompiledAt: time.Now()}))
	require.NoError(t, store.Set(Record{Key: "b", LastCompiledAt: time.Now()}))
	require.NoError(t, store.Clear())

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.Entries)

	// Store is usable after a clear.
	require.NoError(t, store.Set(Record{Key: "c", LastCompiledAt: time.Now()}))
}

func TestFileStoreStats(t *testing.T) {
	store := newTestFileStore(t)

	oldest := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newest := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Set(Record{Key: "old", LastCompiledAt: oldest}))
	require.NoError(t, store.Set(Record{Key: "mid", LastCompiledAt: oldest.Add(time.Hour)}))
	require.NoError(t, store.Set(Record{Key: "new", LastCompiledAt: newest}))

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Entries)
	assert.True(t, stats.Oldest.Equal(oldest))
	assert.True(t, stats.Newest.Equal(newest))
}

func TestMemStore(t *testing.T) {
	store := NewMemStore()

	_, ok, err := store.Get("k")
	require.NoError(t, err)
	require.False(t, ok)

	compiledAt := time.Now()
	require.NoError(t, store.Set(Record{Key: "k", LastCompiledAt: compiledAt}))

	got, ok, err := store.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.LastCompiledAt.Equal(compiledAt))

	require.NoError(t, store.Delete("k"))
	_, ok, err = store.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}
