package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"todoList/internal/models/task"

	"gopkg.in/yaml.v3"
)

type exportFile struct {
	ExportedAt time.Time    `yaml:"exported_at"`
	User       string       `yaml:"user,omitempty"`
	Tasks      []*task.Task `yaml:"tasks"`
}

type transferService interface {
	ExportTasks(ctx context.Context, userEmail string) ([]*task.Task, error)
	ImportTasks(ctx context.Context, tasks []*task.Task) (int, error)
}

func exportTasks(ctx context.Context, svc transferService, user string, w io.Writer) (int, error) {
	tasks, err := svc.ExportTasks(ctx, user)
	if err != nil {
		return 0, err
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(exportFile{ExportedAt: time.Now().UTC(), User: user, Tasks: tasks}); err != nil {
		return 0, fmt.Errorf("encoding export: %w", err)
	}
	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("encoding export: %w", err)
	}
	return len(tasks), nil
}

// importTasks replaces, per owner, the tasks of every user in the file.
func importTasks(ctx context.Context, svc transferService, r io.Reader) (int, error) {
	var in exportFile
	if err := yaml.NewDecoder(r).Decode(&in); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, fmt.Errorf("decoding import: %w", err)
	}
	return svc.ImportTasks(ctx, in.Tasks)
}
