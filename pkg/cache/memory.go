package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	value    []byte
	storedAt time.Time
}

// MemoryStore implements Store with an in-process map. Entries past the TTL are dropped
// on the read that finds them, matching the file backend's behavior.
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string]memoryItem
	access  map[string]time.Time
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

// NewMemoryStore creates an in-memory cache with LRU eviction at maxSize.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	cfg := &MemoryConfig{
		TTL:     time.Hour,
		MaxSize: 1000,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &MemoryStore{
		data:    make(map[string]memoryItem),
		access:  make(map[string]time.Time),
		ttl:     cfg.TTL,
		maxSize: cfg.MaxSize,
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	if m.ttl > 0 && m.now().Sub(item.storedAt) > m.ttl {
		delete(m.data, key)
		delete(m.access, key)
		return nil, ErrCacheMiss
	}
	m.access[key] = m.now()
	return item.value, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.data) >= m.maxSize {
		m.evictLRU()
	}
	m.data[key] = memoryItem{value: value, storedAt: m.now()}
	m.access[key] = m.now()
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) evictLRU() {
	var oldestKey string
	oldestTime := m.now()

	for key, accessTime := range m.access {
		if accessTime.Before(oldestTime) {
			oldestTime = accessTime
			oldestKey = key
		}
	}
	if oldestKey != "" {
		delete(m.data, oldestKey)
		delete(m.access, oldestKey)
	}
}
