package photo

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"todoList/internal/logger"
	repo "todoList/internal/repository"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Prefix    string
}

// MinioStore keeps photos in a bucket; sources are read from a local filesystem.
type MinioStore struct {
	client *minio.Client
	bucket string
	prefix string
	source afero.Fs
}

func NewMinioStore(ctx context.Context, cfg MinioConfig, source afero.Fs) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		logger.Error("Repository: could not create minio client", err, zap.String("endpoint", cfg.Endpoint))
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	s := &MinioStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		source: source,
	}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}

	logger.Info("Repository: minio photo storage ready",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket))
	return s, nil
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return repo.WrapError("ensure_bucket", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return repo.WrapError("ensure_bucket", err)
	}
	logger.Info("Repository: created bucket", zap.String("bucket", s.bucket))
	return nil
}

func (s *MinioStore) key(taskID string) string {
	if s.prefix == "" {
		return FileName(taskID)
	}
	return s.prefix + "/" + FileName(taskID)
}

func (s *MinioStore) PhotoURI(taskID string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key(taskID))
}

func (s *MinioStore) SavePhoto(ctx context.Context, sourceURI, taskID string) (string, error) {
	start := time.Now()
	defer logger.Slow("save_photo", start, 500*time.Millisecond)

	if err := checkID("save_photo", taskID); err != nil {
		return "", err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	src, size, err := openSource(s.source, sourceURI)
	if err != nil {
		logger.Error("Repository: could not open photo source", err, zap.String("task_id", taskID))
		return "", repo.WrapError("save_photo", err)
	}
	defer src.Close()

	_, err = s.client.PutObject(ctx, s.bucket, s.key(taskID), src, size, minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		logger.Error("Repository: could not upload photo", err, zap.String("task_id", taskID))
		return "", repo.WrapError("save_photo", err)
	}
	return s.PhotoURI(taskID), nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

func (s *MinioStore) DeletePhoto(ctx context.Context, taskID string) error {
	if err := checkID("delete_photo", taskID); err != nil {
		return err
	}
	key := s.key(taskID)
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return repo.ErrNotFound
		}
		return repo.WrapError("delete_photo", err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return repo.WrapError("delete_photo", err)
	}
	return nil
}

func (s *MinioStore) OpenPhoto(ctx context.Context, taskID string) (io.ReadCloser, error) {
	if err := checkID("open_photo", taskID); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(taskID), minio.GetObjectOptions{})
	if err != nil {
		return nil, repo.WrapError("open_photo", err)
	}
	// GetObject is lazy; Stat surfaces a missing key
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if isNoSuchKey(err) {
			return nil, repo.ErrNotFound
		}
		return nil, repo.WrapError("open_photo", err)
	}
	return obj, nil
}

func (s *MinioStore) PhotoModTime(ctx context.Context, taskID string) (time.Time, error) {
	if err := checkID("photo_mod_time", taskID); err != nil {
		return time.Time{}, err
	}
	info, err := s.client.StatObject(ctx, s.bucket, s.key(taskID), minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return time.Time{}, repo.ErrNotFound
		}
		return time.Time{}, repo.WrapError("photo_mod_time", err)
	}
	return info.LastModified, nil
}

func (s *MinioStore) ListPhotos(ctx context.Context) ([]string, error) {
	opts := minio.ListObjectsOptions{Recursive: true}
	if s.prefix != "" {
		opts.Prefix = s.prefix + "/"
	}

	ids := []string{}
	for object := range s.client.ListObjects(ctx, s.bucket, opts) {
		if object.Err != nil {
			return nil, repo.WrapError("list_photos", object.Err)
		}
		if id, ok := TaskIDFromName(object.Key); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
