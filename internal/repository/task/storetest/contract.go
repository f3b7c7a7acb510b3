// Package storetest holds the behaviour every task store must share.
package storetest

import (
	"context"
	"testing"

	"todoList/internal/models/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Store interface {
	GetTasks(ctx context.Context, userEmail string) ([]*task.Task, error)
	AllTasks(ctx context.Context) ([]*task.Task, error)
	AddTask(ctx context.Context, t *task.Task) error
	DeleteTask(ctx context.Context, id string) error
	UpdateTask(ctx context.Context, t *task.Task) error
	ToggleTaskCompletion(ctx context.Context, id string) error
	SaveTasks(ctx context.Context, tasks []*task.Task) error
	HealthCheck(ctx context.Context) error
}

const (
	alice = "alice@example.com"
	bob   = "bob@example.com"
)

func newTask(id, email, title string) *task.Task {
	return task.New(id, email, title, 1700000000000)
}

func ids(tasks []*task.Task) []string {
	res := make([]string, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, t.ID)
	}
	return res
}

// Run checks a fresh, empty store produced by newStore for every case.
func Run(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("empty store reads as no tasks", func(t *testing.T) {
		s := newStore(t)

		tasks, err := s.GetTasks(ctx, alice)
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)

		all, err := s.AllTasks(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("mutations on an empty store are no-ops", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.DeleteTask(ctx, "missing"))
		require.NoError(t, s.ToggleTaskCompletion(ctx, "missing"))
		require.NoError(t, s.UpdateTask(ctx, newTask("missing", alice, "x")))

		tasks, err := s.GetTasks(ctx, alice)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("add round-trips every field", func(t *testing.T) {
		s := newStore(t)
		photo := "file:///photos/t1.jpg"
		in := task.New("t1", alice, "Comprar leche", 1700000000123,
			task.WithComments("2 litros"),
			task.WithPhotoURI(photo),
			task.WithLocation(&task.Location{Latitude: -33.45, Longitude: -70.66, Address: "Santiago, Chile"}),
		)

		require.NoError(t, s.AddTask(ctx, in))

		tasks, err := s.GetTasks(ctx, alice)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, in, tasks[0])
	})

	t.Run("added tasks come first", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddTask(ctx, newTask("a", alice, "first")))
		require.NoError(t, s.AddTask(ctx, newTask("b", alice, "second")))
		require.NoError(t, s.AddTask(ctx, newTask("c", alice, "third")))

		tasks, err := s.GetTasks(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "b", "a"}, ids(tasks))
	})

	t.Run("users only see their own tasks", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddTask(ctx, newTask("a1", alice, "mine")))
		require.NoError(t, s.AddTask(ctx, newTask("b1", bob, "his")))

		aliceTasks, err := s.GetTasks(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, []string{"a1"}, ids(aliceTasks))

		bobTasks, err := s.GetTasks(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, []string{"b1"}, ids(bobTasks))

		none, err := s.GetTasks(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Empty(t, none)

		all, err := s.AllTasks(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a1", "b1"}, ids(all))
	})

	t.Run("delete removes only the matching task", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddTask(ctx, newTask("a", alice, "keep")))
		require.NoError(t, s.AddTask(ctx, newTask("b", alice, "drop")))

		require.NoError(t, s.DeleteTask(ctx, "b"))
		require.NoError(t, s.DeleteTask(ctx, "unknown"))

		tasks, err := s.GetTasks(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids(tasks))
	})

	t.Run("update replaces the entry verbatim", func(t *testing.T) {
		s := newStore(t)
		original := task.New("a", alice, "old", 1700000000000,
			task.WithComments("old comments"),
			task.WithPhotoURI("file:///photos/a.jpg"),
			task.WithLocation(&task.Location{Latitude: 1, Longitude: 2}),
		)
		require.NoError(t, s.AddTask(ctx, original))
		require.NoError(t, s.AddTask(ctx, newTask("b", alice, "other")))

		replacement := task.New("a", alice, "new", 1700000000000)
		replacement.Completed = true
		require.NoError(t, s.UpdateTask(ctx, replacement))

		tasks, err := s.GetTasks(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, []string{"b", "a"}, ids(tasks))
		assert.Equal(t, replacement, tasks[1])
		assert.Nil(t, tasks[1].PhotoURI)
		assert.Nil(t, tasks[1].Location)
	})

	t.Run("update of an unknown id changes nothing", func(t *testing.T) {
		s := newStore(t)
		existing := newTask("a", alice, "same")
		require.NoError(t, s.AddTask(ctx, existing))

		require.NoError(t, s.UpdateTask(ctx, newTask("zzz", alice, "ghost")))

		tasks, err := s.GetTasks(ctx, alice)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, existing, tasks[0])
	})

	t.Run("toggle twice restores completion", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddTask(ctx, newTask("a", alice, "flip")))

		require.NoError(t, s.ToggleTaskCompletion(ctx, "a"))
		tasks, err := s.GetTasks(ctx, alice)
		require.NoError(t, err)
		assert.True(t, tasks[0].Completed)

		require.NoError(t, s.ToggleTaskCompletion(ctx, "a"))
		tasks, err = s.GetTasks(ctx, alice)
		require.NoError(t, err)
		assert.False(t, tasks[0].Completed)
	})

	t.Run("save replaces only the users it mentions", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddTask(ctx, newTask("a1", alice, "alice old")))
		require.NoError(t, s.AddTask(ctx, newTask("b1", bob, "bob keeps")))

		require.NoError(t, s.SaveTasks(ctx, []*task.Task{
			newTask("a2", alice, "alice new 1"),
			newTask("a3", alice, "alice new 2"),
		}))

		aliceTasks, err := s.GetTasks(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, []string{"a2", "a3"}, ids(aliceTasks))

		bobTasks, err := s.GetTasks(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, []string{"b1"}, ids(bobTasks))
	})

	t.Run("saved tasks go after existing ones and added tasks before", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SaveTasks(ctx, []*task.Task{
			newTask("x", alice, "x"),
			newTask("y", alice, "y"),
		}))
		require.NoError(t, s.AddTask(ctx, newTask("z", alice, "z")))

		tasks, err := s.GetTasks(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, []string{"z", "x", "y"}, ids(tasks))
	})

	t.Run("save with no tasks keeps everything", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddTask(ctx, newTask("a", alice, "stay")))

		require.NoError(t, s.SaveTasks(ctx, nil))

		tasks, err := s.GetTasks(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids(tasks))
	})

	t.Run("health check passes", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.HealthCheck(ctx))
	})
}
