// Package blob holds single-key value backends used by the task store.
// Each backend is safe for concurrent Get/Set calls; it gives no guarantee
// across a Get followed by a Set.
package blob

import "context"

type Store interface {
	// Get returns repository.ErrNotFound when nothing is stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}
