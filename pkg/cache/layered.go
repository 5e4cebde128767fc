package cache

import (
	"context"
)

// LayeredStore is a two-level cache: a fast in-process L1 over a slower shared L2
// (Redis or the file backend).
type LayeredStore struct {
	l1 *MemoryStore
	l2 Store
}

// NewLayeredStore wraps l2 with an in-memory L1.
func NewLayeredStore(l2 Store, opts ...MemoryOption) *LayeredStore {
	return &LayeredStore{
		l1: NewMemoryStore(opts...),
		l2: l2,
	}
}

func (l *LayeredStore) Get(ctx context.Context, key string) ([]byte, error) {
	if b, err := l.l1.Get(ctx, key); err == nil {
		return b, nil
	}
	b, err := l.l2.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	_ = l.l1.Set(ctx, key, b)
	return b, nil
}

func (l *LayeredStore) Set(ctx context.Context, key string, value []byte) error {
	// Write-through: L2 first, then L1
	if err := l.l2.Set(ctx, key, value); err != nil {
		return err
	}
	_ = l.l1.Set(ctx, key, value)
	return nil
}

func (l *LayeredStore) Close() error {
	_ = l.l1.Close()
	return l.l2.Close()
}
