package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// touchSession pins both session files to a fixed mtime so listing order is
// under test control.
func touchSession(t *testing.T, store *Store, id string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(store.logPath(id), mtime, mtime))
	if _, err := os.Stat(store.metaPath(id)); err == nil {
		require.NoError(t, os.Chtimes(store.metaPath(id), mtime, mtime))
	}
}

func TestListEmptyCatalog(t *testing.T) {
	store, _ := setupTestStore(t)
	defer store.Close()

	infos, err := store.List(context.Background(), SortDescending)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestListSortsByModified(t *testing.T) {
	store, _ := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		createSession(t, store, id)
		touchSession(t, store, id, base.Add(time.Duration(i)*time.Hour))
	}

	desc, err := store.List(ctx, SortDescending)
	require.NoError(t, err)
	require.Len(t, desc, 3)
	assert.Equal(t, "new", desc[0].ID)
	assert.Equal(t, "mid", desc[1].ID)
	assert.Equal(t, "old", desc[2].ID)

	asc, err := store.List(ctx, SortAscending)
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, "old", asc[0].ID)
	assert.Equal(t, "new", asc[2].ID)
}

func TestListTiesBrokenByID(t *testing.T) {
	store, _ := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	mtime := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	for _, id := range []string{"charlie", "alpha", "bravo"} {
		createSession(t, store, id)
		touchSession(t, store, id, mtime)
	}

	for _, order := range []SortOrder{SortAscending, SortDescending} {
		infos, err := store.List(ctx, order)
		require.NoError(t, err)
		require.Len(t, infos, 3)
		assert.Equal(t, "alpha", infos[0].ID)
		assert.Equal(t, "bravo", infos[1].ID)
		assert.Equal(t, "charlie", infos[2].ID)
	}
}

func TestListModifiedFormat(t *testing.T) {
	store, _ := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	createSession(t, store, "s")
	mtime := time.Date(2025, 6, 15, 9, 30, 45, 0, time.UTC)
	touchSession(t, store, "s", mtime)

	infos, err := store.List(ctx, SortDescending)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "2025-06-15 09:30:45 UTC", infos[0].Modified)

	parsed, err := time.Parse(ModifiedTimeLayout, infos[0].Modified)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(mtime))
}

func TestListSkipsCorruptMetadata(t *testing.T) {
	store, tempDir := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	createSession(t, store, "healthy")
	createSession(t, store, "broken")
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "broken.meta.json"), []byte("not json"), 0600))

	infos, err := store.List(ctx, SortDescending)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "healthy", infos[0].ID)
}

func TestListIncludesMetadata(t *testing.T) {
	store, _ := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	createSession(t, store, "s")
	require.NoError(t, store.SetDescription(ctx, "s", "my session"))

	infos, err := store.List(ctx, SortDescending)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "my session", infos[0].Metadata.Description)
	assert.True(t, infos[0].Metadata.IsTitleCustomized)
}

func TestTitleUpdateBumpsRecency(t *testing.T) {
	store, _ := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	createSession(t, store, "stale")
	createSession(t, store, "renamed")
	touchSession(t, store, "stale", old.Add(time.Hour))
	touchSession(t, store, "renamed", old)

	// The title update rewrites the metadata file, so the renamed session
	// becomes the most recent.
	require.NoError(t, store.SetDescription(ctx, "renamed", "fresh title"))

	infos, err := store.List(ctx, SortDescending)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "renamed", infos[0].ID)
}

func TestReadRecord(t *testing.T) {
	store, _ := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	messages := []Message{
		{Role: "user", Content: "question", Created: 1700000000},
		{Role: "assistant", Content: "answer", Created: 1700000120},
	}
	require.NoError(t, store.AppendMessages(ctx, "s", messages))
	require.NoError(t, store.SetDescription(ctx, "s", "titled"))

	record, err := store.ReadRecord(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "s", record.ID)
	assert.Equal(t, messages, record.Messages)
	assert.Equal(t, "titled", record.Metadata.Description)
	assert.Equal(t, 2, record.Metadata.MessageCount)
}

func TestReadRecordNotFound(t *testing.T) {
	store, _ := setupTestStore(t)
	defer store.Close()

	_, err := store.ReadRecord(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
