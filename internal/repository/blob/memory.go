package blob

import (
	"context"
	"sync"

	repo "todoList/internal/repository"
)

type Memory struct {
	data map[string][]byte
	mtx  *sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{
		data: make(map[string][]byte),
		mtx:  &sync.RWMutex{},
	}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

func (m *Memory) Close() error {
	return nil
}
