package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSafeKey(t *testing.T) {
	if got := SafeKey("twelvedata_BRK/B"); got != "twelvedata_BRK_B" {
		t.Fatalf("SafeKey = %q", got)
	}
	if got := SafeKey("a:b/c"); got != "a_b_c" {
		t.Fatalf("SafeKey = %q", got)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore(WithMemoryTTL(time.Hour))
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	b, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(b) != "v" {
		t.Fatalf("value = %q", b)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore(WithMemoryTTL(time.Minute))
	current := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	current = current.Add(30 * time.Second)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("fresh entry missed: %v", err)
	}
	current = current.Add(2 * time.Minute)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("stale entry served: %v", err)
	}
}

func TestMemoryStoreLRUEviction(t *testing.T) {
	s := NewMemoryStore(WithMemoryTTL(time.Hour), WithMemoryMaxSize(2))
	current := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { current = current.Add(time.Second); return current }
	ctx := context.Background()

	s.Set(ctx, "a", []byte("1"))
	s.Set(ctx, "b", []byte("2"))
	s.Get(ctx, "a")
	s.Set(ctx, "c", []byte("3"))

	if _, err := s.Get(ctx, "b"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("b should have been evicted")
	}
	if _, err := s.Get(ctx, "a"); err != nil {
		t.Fatalf("a evicted despite recent access: %v", err)
	}
}

func TestFileStoreRoundTripAndExpiry(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), time.Minute)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	current := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }
	ctx := context.Background()

	payload := []byte(`{"status":"ok"}`)
	if err := s.Set(ctx, "twelvedata_AAPL", payload); err != nil {
		t.Fatalf("Set: %v", err)
	}
	b, err := s.Get(ctx, "twelvedata_AAPL")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(b) != string(payload) {
		t.Fatalf("value = %s", b)
	}

	current = current.Add(2 * time.Minute)
	if _, err := s.Get(ctx, "twelvedata_AAPL"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("stale entry served: %v", err)
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileStore(dir, time.Hour)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := first.Set(ctx, "k", []byte(`"v"`)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	second, err := NewFileStore(dir, time.Hour)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	b, err := second.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(b) != `"v"` {
		t.Fatalf("value = %q", b)
	}
}

func TestLayeredStorePromotesToL1(t *testing.T) {
	ctx := context.Background()
	l2, err := NewFileStore(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	l := NewLayeredStore(l2, WithMemoryTTL(time.Hour))

	if err := l.Set(ctx, "k", []byte(`"v"`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// Direct L2 read proves write-through
	if b, err := l2.Get(ctx, "k"); err != nil || string(b) != `"v"` {
		t.Fatalf("L2 = %q, %v", b, err)
	}
	if b, err := l.Get(ctx, "k"); err != nil || string(b) != `"v"` {
		t.Fatalf("layered Get = %q, %v", b, err)
	}
	if b, err := l.l1.Get(ctx, "k"); err != nil || string(b) != `"v"` {
		t.Fatalf("L1 = %q, %v", b, err)
	}
}
