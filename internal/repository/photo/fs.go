package photo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"todoList/internal/logger"
	repo "todoList/internal/repository"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type FSStore struct {
	fs  afero.Fs
	dir string
}

func NewFSStore(fs afero.Fs, dir string) *FSStore {
	return &FSStore{fs: fs, dir: dir}
}

func (s *FSStore) path(taskID string) string {
	return filepath.Join(s.dir, FileName(taskID))
}

func (s *FSStore) PhotoURI(taskID string) string {
	return LocalURI(s.path(taskID))
}

func (s *FSStore) SavePhoto(ctx context.Context, sourceURI, taskID string) (string, error) {
	start := time.Now()
	defer logger.Slow("save_photo", start, 200*time.Millisecond)

	if err := checkID("save_photo", taskID); err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		logger.Error("Repository: could not create photo directory", err, zap.String("dir", s.dir))
		return "", repo.WrapError("save_photo", err)
	}

	src, _, err := openSource(s.fs, sourceURI)
	if err != nil {
		logger.Error("Repository: could not open photo source", err, zap.String("task_id", taskID))
		return "", repo.WrapError("save_photo", err)
	}
	defer src.Close()

	dst, err := s.fs.OpenFile(s.path(taskID), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Error("Repository: could not create photo file", err, zap.String("task_id", taskID))
		return "", repo.WrapError("save_photo", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		logger.Error("Repository: could not copy photo", err, zap.String("task_id", taskID))
		return "", repo.WrapError("save_photo", err)
	}
	if err := dst.Close(); err != nil {
		return "", repo.WrapError("save_photo", err)
	}

	return s.PhotoURI(taskID), nil
}

// DeletePhoto returns repository.ErrNotFound when there is no file for taskID.
func (s *FSStore) DeletePhoto(ctx context.Context, taskID string) error {
	if err := checkID("delete_photo", taskID); err != nil {
		return err
	}
	p := s.path(taskID)
	if _, err := s.fs.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return repo.ErrNotFound
		}
		return repo.WrapError("delete_photo", err)
	}
	if err := s.fs.Remove(p); err != nil {
		return repo.WrapError("delete_photo", err)
	}
	return nil
}

func (s *FSStore) OpenPhoto(ctx context.Context, taskID string) (io.ReadCloser, error) {
	if err := checkID("open_photo", taskID); err != nil {
		return nil, err
	}
	f, err := s.fs.Open(s.path(taskID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, repo.ErrNotFound
		}
		return nil, repo.WrapError("open_photo", err)
	}
	return f, nil
}

func (s *FSStore) PhotoModTime(ctx context.Context, taskID string) (time.Time, error) {
	if err := checkID("photo_mod_time", taskID); err != nil {
		return time.Time{}, err
	}
	info, err := s.fs.Stat(s.path(taskID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, repo.ErrNotFound
		}
		return time.Time{}, repo.WrapError("photo_mod_time", err)
	}
	return info.ModTime(), nil
}

func (s *FSStore) ListPhotos(ctx context.Context) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, repo.WrapError("list_photos", fmt.Errorf("reading %s: %w", s.dir, err))
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id, ok := TaskIDFromName(e.Name()); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
