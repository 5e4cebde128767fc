package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

type fileEnvelope struct {
	TS    int64           `json:"ts"`
	Value json.RawMessage `json:"value"`
}

// FileStore implements Store as one JSON file per key under a root directory. Each file
// holds {ts, value}; staleness is judged against ts on every read, so a restarted
// process keeps benefiting from earlier runs.
type FileStore struct {
	root string
	ttl  time.Duration
	now  func() time.Time
}

// NewFileStore creates the root directory if needed.
func NewFileStore(root string, ttl time.Duration) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{root: root, ttl: ttl, now: time.Now}, nil
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(f.path(key))
	if err != nil {
		return nil, ErrCacheMiss
	}
	var env fileEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, ErrCacheMiss
	}
	if f.ttl > 0 && f.now().Unix()-env.TS > int64(f.ttl.Seconds()) {
		return nil, ErrCacheMiss
	}
	return env.Value, nil
}

func (f *FileStore) Set(_ context.Context, key string, value []byte) error {
	env := fileEnvelope{TS: f.now().Unix(), Value: value}
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path(key), b, 0o644)
}

func (f *FileStore) Close() error {
	return nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.root, SafeKey(key)+".json")
}
