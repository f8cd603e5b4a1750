package storage_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/book-expert/speak/internal/audio"
	"github.com/book-expert/speak/internal/config"
	"github.com/book-expert/speak/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_PathIsFixed(t *testing.T) {
	t.Parallel()

	store := storage.NewFileStore(config.Default().Output)
	assert.Equal(t, filepath.Join("temp_audio", "output.mp3"), store.Path())
}

func TestFileStore_SaveCreatesDirectoryAndOverwrites(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "temp_audio")
	store := storage.NewFileStore(config.OutputConfig{Dir: dir, File: "output.mp3"})

	path, err := store.Save(&audio.Clip{Encoded: []byte("first run")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "output.mp3"), path)

	path, err = store.Save(&audio.Clip{Encoded: []byte("second")})
	require.NoError(t, err)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(written))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_SaveDirectoryBlockedByFile(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "temp_audio")
	require.NoError(t, os.WriteFile(dir, []byte("not a dir"), 0o600))

	store := storage.NewFileStore(config.OutputConfig{Dir: dir, File: "output.mp3"})

	_, err := store.Save(&audio.Clip{Encoded: []byte("data")})
	require.ErrorIs(t, err, storage.ErrCreateDirectory)
	assert.Equal(t, "directory creation", storage.FailureSite(err))
}

func TestFileStore_SaveWriteFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := storage.NewFileStore(config.OutputConfig{Dir: dir, File: "output.mp3"})

	_, err := store.Save(&audio.Clip{})
	require.ErrorIs(t, err, storage.ErrWriteFile)
	require.ErrorIs(t, err, audio.ErrEmptyAudio)
	assert.Equal(t, "file write", storage.FailureSite(err))
}

func TestFileStore_SavePermissionDenied(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("Skipping test: permission bits are not enforced for root")
	}

	parent := filepath.Join(t.TempDir(), "locked")
	require.NoError(t, os.Mkdir(parent, 0o500))

	store := storage.NewFileStore(config.OutputConfig{Dir: filepath.Join(parent, "temp_audio"), File: "output.mp3"})

	_, err := store.Save(&audio.Clip{Encoded: []byte("data")})
	require.ErrorIs(t, err, fs.ErrPermission)
	require.ErrorIs(t, err, storage.ErrCreateDirectory)
}

func TestFailureSite_Unrelated(t *testing.T) {
	t.Parallel()

	assert.Empty(t, storage.FailureSite(errors.New("boom")))
	assert.Empty(t, storage.FailureSite(nil))
}
