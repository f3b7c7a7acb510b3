// Package photo stores one image per task, named after the task id.
// There is no manifest: a photo exists if and only if its file exists.
package photo

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"todoList/internal/models/task"
	repo "todoList/internal/repository"

	"github.com/spf13/afero"
)

const Extension = ".jpg"

// ErrInvalidID is returned for task ids that cannot name a photo file.
var ErrInvalidID = errors.New("invalid task id")

func checkID(op, taskID string) error {
	if !task.ValidID(taskID) {
		return repo.WrapError(op, fmt.Errorf("%w: %q", ErrInvalidID, taskID))
	}
	return nil
}

const fileScheme = "file://"

func FileName(taskID string) string {
	return taskID + Extension
}

// TaskIDFromName is the inverse of FileName; ok is false for foreign files.
func TaskIDFromName(name string) (string, bool) {
	name = path.Base(name)
	if !strings.HasSuffix(name, Extension) {
		return "", false
	}
	id := strings.TrimSuffix(name, Extension)
	return id, task.ValidID(id)
}

func LocalURI(p string) string {
	return fileScheme + p
}

// LocalPath accepts either a plain path or a file:// URI.
func LocalPath(uri string) string {
	return strings.TrimPrefix(uri, fileScheme)
}

func openSource(fs afero.Fs, sourceURI string) (afero.File, int64, error) {
	f, err := fs.Open(LocalPath(sourceURI))
	if err != nil {
		return nil, 0, fmt.Errorf("opening source %s: %w", sourceURI, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat source %s: %w", sourceURI, err)
	}
	return f, info.Size(), nil
}
