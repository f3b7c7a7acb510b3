package blob_test

import (
	"context"
	"path/filepath"
	"testing"

	repo "todoList/internal/repository"
	"todoList/internal/repository/blob"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkStore runs the Get/Set behaviour every backend shares.
func checkStore(t *testing.T, s blob.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	require.NoError(t, s.Set(ctx, "@todolist_tasks", []byte(`[]`)))
	got, err := s.Get(ctx, "@todolist_tasks")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)

	require.NoError(t, s.Set(ctx, "@todolist_tasks", []byte(`[{"id":"1"}]`)))
	got, err = s.Get(ctx, "@todolist_tasks")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"1"}]`), got)

	require.NoError(t, s.Set(ctx, "other", []byte("x")))
	got, err = s.Get(ctx, "@todolist_tasks")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"1"}]`), got)

	assert.NoError(t, s.Ping(ctx))
}

func TestMemory(t *testing.T) {
	checkStore(t, blob.NewMemory())
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := blob.NewMemory()

	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'z'
	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestFile(t *testing.T) {
	f, err := blob.NewFile(afero.NewMemMapFs(), "/var/lib/todo")
	require.NoError(t, err)
	checkStore(t, f)
}

func TestFile_KeyIsEscapedIntoFileName(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	f, err := blob.NewFile(fs, "/data")
	require.NoError(t, err)

	require.NoError(t, f.Set(ctx, "a/b", []byte("v")))

	exists, err := afero.Exists(fs, filepath.Join("/data", "a%2Fb.json"))
	require.NoError(t, err)
	assert.True(t, exists)

	files, err := afero.ReadDir(fs, "/data")
	require.NoError(t, err)
	assert.Len(t, files, 1, "temp file must be renamed away")
}

func TestFile_PingFailsWhenDirectoryVanishes(t *testing.T) {
	fs := afero.NewMemMapFs()
	f, err := blob.NewFile(fs, "/data")
	require.NoError(t, err)

	require.NoError(t, fs.RemoveAll("/data"))
	assert.Error(t, f.Ping(context.Background()))
}

func TestFile_ReadOnlyFilesystem(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, base.MkdirAll("/data", 0o755))

	_, err := blob.NewFile(afero.NewReadOnlyFs(base), "/data")
	assert.Error(t, err)
}
