package archive

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logtidy/internal/logtidy"
)

func TestMemoryStore_CreateOpenCommit(t *testing.T) {
	src := t.TempDir()
	store := NewMemoryStore()

	require.NoError(t, store.Create("/logs/632024.zip", []logtidy.ArchiveEntry{
		writeSource(t, src, "app.log", "old"),
	}))

	w, err := store.Open("/logs/632024.zip")
	require.NoError(t, err)
	newer := writeSource(t, src, "again/app.log", "new")
	require.NoError(t, w.Add(logtidy.ArchiveEntry{Name: "1-app.log", Source: newer.Source}))
	require.NoError(t, w.Commit())

	names, err := store.List("/logs/632024.zip")
	require.NoError(t, err)
	assert.Equal(t, []string{"app.log", "1-app.log"}, names)

	data, ok := store.Content("/logs/632024.zip", "1-app.log")
	require.True(t, ok)
	assert.Equal(t, "new", string(data))
}

func TestMemoryStore_FailOnLeavesArchiveUnchanged(t *testing.T) {
	src := t.TempDir()
	store := NewMemoryStore()
	store.Put("/logs/632024.zip", "app.log")
	store.FailOn("debug.log")

	w, err := store.Open("/logs/632024.zip")
	require.NoError(t, err)
	require.NoError(t, w.Add(writeSource(t, src, "a.log", "a")))
	require.Error(t, w.Add(writeSource(t, src, "debug.log", "d")))
	require.NoError(t, w.Abort())

	names, err := store.List("/logs/632024.zip")
	require.NoError(t, err)
	assert.Equal(t, []string{"app.log"}, names)
}

func TestMemoryStore_OpenMissing(t *testing.T) {
	_, err := NewMemoryStore().Open(filepath.Join("/nowhere", "1112024.zip"))
	require.Error(t, err)
}
