package blob

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"todoList/internal/logger"
	repo "todoList/internal/repository"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// File keeps every key in its own JSON file under dir.
type File struct {
	fs  afero.Fs
	dir string
}

func NewFile(fs afero.Fs, dir string) (*File, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		logger.Error("Repository: could not create data directory", err, zap.String("dir", dir))
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	logger.Info("Repository: file storage ready", zap.String("dir", dir))
	return &File{fs: fs, dir: dir}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".json")
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	defer logger.Slow("file_get", start, 50*time.Millisecond)

	data, err := afero.ReadFile(f.fs, f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, repo.ErrNotFound
		}
		return nil, repo.WrapError("file_get", err)
	}
	return data, nil
}

// Set writes through a temp file and a rename so readers never see half a document.
func (f *File) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	defer logger.Slow("file_set", start, 100*time.Millisecond)

	tmp, err := afero.TempFile(f.fs, f.dir, ".tmp-*")
	if err != nil {
		return repo.WrapError("file_set", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		_ = f.fs.Remove(tmpName)
		return repo.WrapError("file_set", err)
	}
	if err := tmp.Close(); err != nil {
		_ = f.fs.Remove(tmpName)
		return repo.WrapError("file_set", err)
	}
	if err := f.fs.Rename(tmpName, f.path(key)); err != nil {
		_ = f.fs.Remove(tmpName)
		return repo.WrapError("file_set", err)
	}
	return nil
}

func (f *File) Ping(ctx context.Context) error {
	info, err := f.fs.Stat(f.dir)
	if err != nil {
		return repo.WrapError("file_ping", err)
	}
	if !info.IsDir() {
		return repo.WrapError("file_ping", fmt.Errorf("%s is not a directory", f.dir))
	}
	return nil
}

func (f *File) Close() error {
	return nil
}
