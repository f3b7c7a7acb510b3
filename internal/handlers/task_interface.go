package handlers

import (
	"context"
	"io"

	"todoList/internal/auth"
	"todoList/internal/models/task"
	"todoList/internal/service"
)

type TaskService interface {
	CreateTask(ctx context.Context, userEmail string, draft task.Draft, locator service.Locator) (*task.Task, error)
	EditTask(ctx context.Context, userEmail, id string, draft task.Draft) (*task.Task, error)
	GetTask(ctx context.Context, userEmail, id string) (*task.Task, error)
	DeleteTask(ctx context.Context, userEmail, id string) error
	ToggleTask(ctx context.Context, userEmail, id string) (*task.Task, error)
	ListTasks(ctx context.Context, userEmail string, filter task.Filter) []*task.Task
	Stats(ctx context.Context, userEmail string) task.Stats
	ReplaceTasks(ctx context.Context, userEmail string, tasks []*task.Task) ([]*task.Task, error)
	OpenPhoto(ctx context.Context, userEmail, id string) (io.ReadCloser, error)
	HealthCheck(ctx context.Context) error
}

type Authenticator interface {
	Login(email, password string) (auth.Session, error)
	Logout(token string)
	Users() []auth.User
}

// Stager keeps an upload on local disk until the photo store has copied it.
type Stager interface {
	Stage(r io.Reader) (string, func(), error)
}
