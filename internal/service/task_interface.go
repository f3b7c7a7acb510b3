package service

import (
	"context"
	"io"
	"time"

	"todoList/internal/models/task"
)

type TaskRepository interface {
	GetTasks(ctx context.Context, userEmail string) ([]*task.Task, error)
	AllTasks(ctx context.Context) ([]*task.Task, error)
	AddTask(ctx context.Context, t *task.Task) error
	DeleteTask(ctx context.Context, id string) error
	UpdateTask(ctx context.Context, t *task.Task) error
	ToggleTaskCompletion(ctx context.Context, id string) error
	SaveTasks(ctx context.Context, tasks []*task.Task) error
	HealthCheck(ctx context.Context) error
}

type PhotoStore interface {
	SavePhoto(ctx context.Context, sourceURI, taskID string) (string, error)
	DeletePhoto(ctx context.Context, taskID string) error
	PhotoURI(taskID string) string
	OpenPhoto(ctx context.Context, taskID string) (io.ReadCloser, error)
	ListPhotos(ctx context.Context) ([]string, error)
	PhotoModTime(ctx context.Context, taskID string) (time.Time, error)
}

type Locator interface {
	CurrentLocation(ctx context.Context) *task.Location
}
