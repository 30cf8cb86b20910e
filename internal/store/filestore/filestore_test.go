package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"livetsstemme/internal/domain/story"
	"livetsstemme/internal/store"
	"livetsstemme/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		fs, err := New(t.TempDir())
		require.NoError(t, err)
		return fs
	})
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	fs, err := New(dir)
	require.NoError(t, err)
	s := story.New("u1", "Krigsårene", time.Now())
	require.NoError(t, fs.SaveStory(ctx, s))

	reopened, err := New(dir)
	require.NoError(t, err)
	got, err := reopened.GetStory(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Krigsårene", got.Title)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, ".tmp", filepath.Ext(e.Name()), "temp files must not be left behind")
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, storiesFile), []byte("{not json"), 0o644))

	fs, err := New(dir)
	require.NoError(t, err)
	_, err = fs.ListStories(context.Background(), "u1")
	assert.Error(t, err)
}
