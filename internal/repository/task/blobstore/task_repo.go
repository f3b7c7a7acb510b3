// Package blobstore keeps the whole task collection of every user as one
// JSON array under a single key. Each mutation is a full read-modify-write
// of that array with no locking in between, so two concurrent mutations can
// lose one of the updates.
package blobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"todoList/internal/logger"
	"todoList/internal/models/task"
	repo "todoList/internal/repository"
	"todoList/internal/repository/blob"

	"go.uber.org/zap"
)

const DefaultKey = "@todolist_tasks"

type TaskStorage struct {
	blob blob.Store
	key  string
}

func NewTaskStorage(b blob.Store, key string) *TaskStorage {
	if key == "" {
		key = DefaultKey
	}
	return &TaskStorage{blob: b, key: key}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	if err := s.blob.Ping(ctx); err != nil {
		return fmt.Errorf("task storage health: %w", err)
	}
	return nil
}

// load reads the collection; found is false when nothing was ever persisted.
func (s *TaskStorage) load(ctx context.Context, op string) (tasks []*task.Task, found bool, err error) {
	data, err := s.blob.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, false, nil
		}
		logger.Error("Repository: could not read task collection", err, zap.String("operation", op))
		return nil, false, repo.WrapError(op, err)
	}
	if len(data) == 0 {
		return nil, false, nil
	}

	if err := json.Unmarshal(data, &tasks); err != nil {
		logger.Error("Repository: could not decode task collection", err, zap.String("operation", op))
		return nil, false, repo.WrapError(op, fmt.Errorf("%w: %v", repo.ErrCorrupted, err))
	}
	for i, t := range tasks {
		if t == nil {
			logger.Error("Repository: task collection holds a null entry", nil,
				zap.String("operation", op), zap.Int("index", i))
			return nil, false, repo.WrapError(op, fmt.Errorf("%w: null entry at index %d", repo.ErrCorrupted, i))
		}
	}
	return tasks, true, nil
}

func (s *TaskStorage) save(ctx context.Context, op string, tasks []*task.Task) error {
	if tasks == nil {
		tasks = []*task.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return repo.WrapError(op, err)
	}
	if err := s.blob.Set(ctx, s.key, data); err != nil {
		logger.Error("Repository: could not write task collection", err, zap.String("operation", op))
		return repo.WrapError(op, err)
	}
	return nil
}

func (s *TaskStorage) GetTasks(ctx context.Context, userEmail string) ([]*task.Task, error) {
	all, _, err := s.load(ctx, "get_tasks")
	if err != nil {
		return nil, err
	}

	res := []*task.Task{}
	for _, t := range all {
		if t.UserEmail == userEmail {
			res = append(res, t)
		}
	}
	return res, nil
}

func (s *TaskStorage) AllTasks(ctx context.Context) ([]*task.Task, error) {
	all, _, err := s.load(ctx, "all_tasks")
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = []*task.Task{}
	}
	return all, nil
}

// AddTask puts the task in front of the collection.
func (s *TaskStorage) AddTask(ctx context.Context, taskToAdd *task.Task) error {
	all, _, err := s.load(ctx, "add_task")
	if err != nil {
		return err
	}

	updated := make([]*task.Task, 0, len(all)+1)
	updated = append(updated, taskToAdd)
	updated = append(updated, all...)
	return s.save(ctx, "add_task", updated)
}

func (s *TaskStorage) DeleteTask(ctx context.Context, id string) error {
	all, found, err := s.load(ctx, "delete_task")
	if err != nil || !found {
		return err
	}

	updated := make([]*task.Task, 0, len(all))
	for _, t := range all {
		if t.ID != id {
			updated = append(updated, t)
		}
	}
	return s.save(ctx, "delete_task", updated)
}

// UpdateTask replaces the stored entry with the same id as is, without merging.
func (s *TaskStorage) UpdateTask(ctx context.Context, taskToUpdate *task.Task) error {
	all, found, err := s.load(ctx, "update_task")
	if err != nil || !found {
		return err
	}

	for i, t := range all {
		if t.ID == taskToUpdate.ID {
			all[i] = taskToUpdate
		}
	}
	return s.save(ctx, "update_task", all)
}

func (s *TaskStorage) ToggleTaskCompletion(ctx context.Context, id string) error {
	all, found, err := s.load(ctx, "toggle_task")
	if err != nil || !found {
		return err
	}

	for _, t := range all {
		if t.ID == id {
			t.Completed = !t.Completed
		}
	}
	return s.save(ctx, "toggle_task", all)
}

// SaveTasks replaces every task of the users present in tasks and keeps
// the tasks of all other users untouched.
func (s *TaskStorage) SaveTasks(ctx context.Context, tasks []*task.Task) error {
	all, _, err := s.load(ctx, "save_tasks")
	if err != nil {
		return err
	}

	emails := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		emails[t.UserEmail] = struct{}{}
	}

	updated := make([]*task.Task, 0, len(all)+len(tasks))
	for _, t := range all {
		if _, replaced := emails[t.UserEmail]; !replaced {
			updated = append(updated, t)
		}
	}
	updated = append(updated, tasks...)
	return s.save(ctx, "save_tasks", updated)
}
