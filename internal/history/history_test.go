package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndRecent(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Record("Jujutsu Kaisen", 1))
	require.NoError(t, store.Record("Jujutsu Kaisen", 2))
	require.NoError(t, store.Record("Monster", 5))

	entries, err := store.Recent(10)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestRecordIsUpsert(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Record("Monster", 5))
	require.NoError(t, store.Record("Monster", 5))

	entries, err := store.Recent(10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "Monster", entries[0].AnimeTitle)
	assert.Equal(t, 5, entries[0].Episode)
}

func TestRecentLimit(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	for ep := 1; ep <= 5; ep++ {
		require.NoError(t, store.Record("One Piece", ep))
	}

	entries, err := store.Recent(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
