package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todoList/internal/models/task"
	"todoList/internal/repository/blob"
	"todoList/internal/repository/photo"
	"todoList/internal/repository/task/blobstore"
	"todoList/internal/service"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*service.TaskService, *blobstore.TaskStorage) {
	t.Helper()
	store := blobstore.NewTaskStorage(blob.NewMemory(), "@todolist_tasks")
	return service.NewTaskService(store, photo.NewFSStore(afero.NewMemMapFs(), "/photos")), store
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, srcStore := newTestService(t)

	_, err := src.CreateTask(ctx, "a@x.com", task.Draft{
		Title:    "Comprar leche",
		Comments: "2 litros",
		Location: &task.Location{Latitude: -33.45, Longitude: -70.66, Address: "Santiago"},
	}, nil)
	require.NoError(t, err)
	_, err = src.CreateTask(ctx, "b@x.com", task.Draft{Title: "Estudiar"}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := exportTasks(ctx, src, "", &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, buf.String(), "user_email: a@x.com")

	dst, dstStore := newTestService(t)
	n, err = importTasks(ctx, dst, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	want, err := srcStore.AllTasks(ctx)
	require.NoError(t, err)
	got, err := dstStore.AllTasks(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, got)
}

func TestExportSingleUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	for _, email := range []string{"a@x.com", "b@x.com", "a@x.com"} {
		_, err := svc.CreateTask(ctx, email, task.Draft{Title: "t"}, nil)
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	n, err := exportTasks(ctx, svc, "a@x.com", &buf)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, buf.String(), "user: a@x.com")
	assert.NotContains(t, buf.String(), "b@x.com")
}

func TestImportEdgeCases(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	n, err := importTasks(ctx, svc, strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = importTasks(ctx, svc, strings.NewReader("tasks: [unclosed"))
	assert.Error(t, err)

	_, err = importTasks(ctx, svc, strings.NewReader("tasks:\n  - id: \"1\"\n    title: no owner\n"))
	assert.True(t, service.IsCode(err, service.CodeValidation))
}

func TestRunCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"storage:\n  type: file\n  dir: "+filepath.Join(dir, "storage")+"\n"+
			"photos:\n  dir: "+filepath.Join(dir, "photos")+"\n"), 0o644))

	importPath := filepath.Join(dir, "in.yml")
	require.NoError(t, os.WriteFile(importPath, []byte(
		"tasks:\n  - id: \"1\"\n    title: imported\n    user_email: a@x.com\n    created_at: 1\n"), 0o644))

	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, run(ctx, []string{"import", "-c", cfgPath, "-f", importPath}, &out))
	assert.Contains(t, out.String(), "imported 1 tasks")

	out.Reset()
	require.NoError(t, run(ctx, []string{"export", "-c", cfgPath, "--user", "a@x.com"}, &out))
	assert.Contains(t, out.String(), "title: imported")

	out.Reset()
	require.NoError(t, run(ctx, []string{"sweep", "-c", cfgPath}, &out))
	assert.Contains(t, out.String(), "checked 0 photos")

	out.Reset()
	require.NoError(t, run(ctx, []string{"help"}, &out))
	assert.Contains(t, out.String(), "usage: todoctl")

	assert.Error(t, run(ctx, nil, &out))
	assert.Error(t, run(ctx, []string{"frobnicate"}, &out))
	assert.Error(t, run(ctx, []string{"import", "-c", cfgPath}, &out))
}
