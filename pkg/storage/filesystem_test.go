package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	name, err := store.Save("bk1/backup.zip", []byte("PK"))
	require.NoError(t, err)
	assert.Equal(t, "bk1/backup.zip", name)
	assert.Equal(t, filepath.Join(dir, "bk1", "backup.zip"), store.Path(name))

	raw, err := os.ReadFile(store.Path(name))
	require.NoError(t, err)
	assert.Equal(t, "PK", string(raw))
}

func TestLocalStorageKeepsNamesInsideBaseDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(filepath.Join(dir, "inner"))
	require.NoError(t, err)

	_, err = store.Save("../../escape.txt", []byte("x"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "inner", "escape.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "escape.txt"))
	assert.True(t, os.IsNotExist(err))

	_, err = store.Save("", []byte("x"))
	assert.Error(t, err)
	assert.Empty(t, store.Path(""))
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("old.zip", []byte("a"))
	require.NoError(t, err)
	_, err = store.Save("new.zip", []byte("b"))
	require.NoError(t, err)
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(store.Path("old.zip"), past, past))

	deleted, err := store.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.zip"}, deleted)
	_, err = os.Stat(store.Path("old.zip"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(store.Path("new.zip"))
	assert.NoError(t, err)
}
