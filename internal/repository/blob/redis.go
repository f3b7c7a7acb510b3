package blob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todoList/internal/logger"
	repo "todoList/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type Redis struct {
	client *redis.Client
}

func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("Repository: redis ping failed", err, zap.String("addr", addr))
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	logger.Info("Repository: connected to redis", zap.String("addr", addr), zap.Int("db", db))
	return &Redis{client: client}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	defer logger.Slow("redis_get", start, 50*time.Millisecond)

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: redis get failed", err, zap.String("key", key))
		return nil, repo.WrapError("redis_get", err)
	}
	return data, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	defer logger.Slow("redis_set", start, 50*time.Millisecond)

	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		logger.Error("Repository: redis set failed", err, zap.String("key", key))
		return repo.WrapError("redis_set", err)
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return repo.WrapError("redis_ping", err)
	}
	return nil
}

func (r *Redis) Close() error {
	logger.Info("Repository: closing redis client")
	return r.client.Close()
}
