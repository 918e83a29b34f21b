package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageCreateIsAtomic(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("calendar-scolar.ics", []byte("old"))
	require.NoError(t, err)

	w, err := store.Create("calendar-scolar.ics")
	require.NoError(t, err)
	_, err = w.Write([]byte("new"))
	require.NoError(t, err)

	current, err := os.ReadFile(store.Path("calendar-scolar.ics"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(current))

	require.NoError(t, w.Close())
	current, err = os.ReadFile(store.Path("calendar-scolar.ics"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(current))
}

func TestLocalStorageAbortKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)
	_, err = store.Save("judet-cluj.ics", []byte("v1"))
	require.NoError(t, err)

	w, err := store.Create("judet-cluj.ics")
	require.NoError(t, err)
	_, _ = w.Write([]byte("partial"))
	require.NoError(t, w.Abort())

	current, err := os.ReadFile(filepath.Join(dir, "judet-cluj.ics"))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(current))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../escape.ics", []byte("x"))
	assert.Error(t, err)
	_, err = store.Save("/etc/passwd", []byte("x"))
	assert.Error(t, err)
	assert.Empty(t, store.Path("../x"))
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save("judet-old.ics", []byte("x"))
	require.NoError(t, err)
	_, err = store.Save("notes.txt", []byte("x"))
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "judet-old.ics"), past, past))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "notes.txt"), past, past))
	_, err = store.Save("judet-new.ics", []byte("x"))
	require.NoError(t, err)

	deleted, err := store.CleanupOlderThan(time.Now().Add(-time.Minute), ".ics")
	require.NoError(t, err)
	assert.Equal(t, []string{"judet-old.ics"}, deleted)
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
	assert.FileExists(t, filepath.Join(dir, "judet-new.ics"))
}
