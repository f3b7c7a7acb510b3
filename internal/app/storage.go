package app

import (
	"context"
	"fmt"
	"path/filepath"

	"todoList/internal/config"
	"todoList/internal/logger"
	"todoList/internal/repository/blob"
	"todoList/internal/repository/photo"
	"todoList/internal/repository/task/blobstore"
	"todoList/internal/repository/task/indexed"
	"todoList/internal/service"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// OpenTaskStore builds the task store named by cfg.Storage.Type. The returned
// close func releases its connections.
func OpenTaskStore(ctx context.Context, cfg config.StorageConfig, fs afero.Fs) (service.TaskRepository, func() error, error) {
	if cfg.Type == config.StorageSQLite {
		if err := fs.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("sqlite directory: %w", err)
		}
		store, err := indexed.New(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}

	b, err := openBlob(ctx, cfg, fs)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("App: task storage ready", zap.String("type", cfg.Type), zap.String("key", cfg.Key))
	return blobstore.NewTaskStorage(b, cfg.Key), b.Close, nil
}

func openBlob(ctx context.Context, cfg config.StorageConfig, fs afero.Fs) (blob.Store, error) {
	switch cfg.Type {
	case config.StorageMemory:
		return blob.NewMemory(), nil
	case config.StorageFile:
		return blob.NewFile(fs, cfg.Dir)
	case config.StorageRedis:
		return blob.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	case config.StoragePostgres:
		pg, err := blob.NewPostgres(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	}
	return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
}

// OpenPhotoStore builds the photo store. Sources are always read from fs,
// where uploads are staged.
func OpenPhotoStore(ctx context.Context, cfg config.PhotosConfig, fs afero.Fs) (service.PhotoStore, error) {
	switch cfg.Type {
	case config.PhotosFS:
		dir, err := filepath.Abs(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("photo directory: %w", err)
		}
		logger.Info("App: filesystem photo storage", zap.String("dir", dir))
		return photo.NewFSStore(fs, dir), nil
	case config.PhotosMinio:
		return photo.NewMinioStore(ctx, photo.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			UseSSL:    cfg.Minio.UseSSL,
			Bucket:    cfg.Minio.Bucket,
			Prefix:    cfg.Minio.Prefix,
		}, fs)
	}
	return nil, fmt.Errorf("unknown photos type %q", cfg.Type)
}
