package cache

import (
	"errors"
	"strings"

	"context"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Store is a raw-bytes response cache. Each backend owns a configured time-to-live;
// expiry is evaluated at read time, never actively swept. Get returns ErrCacheMiss for
// an absent, unreadable, or expired key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// SafeKey makes a key usable as a file name or a flat namespace member.
func SafeKey(key string) string {
	key = strings.ReplaceAll(key, "/", "_")
	return strings.ReplaceAll(key, ":", "_")
}
