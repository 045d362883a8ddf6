package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, 1); err != nil || ok {
		t.Fatalf("Get on empty store = ok=%v err=%v", ok, err)
	}

	want := Entry{URL: "https://cdn.example.com/1.jpg", StoredAt: time.Now().Truncate(time.Second)}
	if err := s.Set(ctx, 1, want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := s.Get(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v", ok, err)
	}
	if got.URL != want.URL || !got.StoredAt.Equal(want.StoredAt) {
		t.Errorf("entry = %+v, want %+v", got, want)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := s.Get(ctx, 1); ok {
		t.Error("entry survived Clear")
	}
}

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, 24*time.Hour), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, 1); err != nil || ok {
		t.Fatalf("Get on empty store = ok=%v err=%v", ok, err)
	}

	stored := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if err := s.Set(ctx, 1, Entry{URL: "https://cdn.example.com/1.jpg", StoredAt: stored}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := s.Get(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v", ok, err)
	}
	if got.URL != "https://cdn.example.com/1.jpg" {
		t.Errorf("URL = %q", got.URL)
	}
	if !got.StoredAt.Equal(stored) {
		t.Errorf("StoredAt = %v, want %v", got.StoredAt, stored)
	}
}

func TestRedisStore_ServerSideTTL(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, 2, Entry{URL: "https://cdn.example.com/2.jpg", StoredAt: time.Now()}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Redis reclaims the key once the TTL elapses.
	mr.FastForward(24*time.Hour + time.Minute)

	if _, ok, err := s.Get(ctx, 2); err != nil || ok {
		t.Errorf("Get after TTL = ok=%v err=%v, want absent", ok, err)
	}
}

func TestRedisStore_Clear(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	for id := 1; id <= 3; id++ {
		if err := s.Set(ctx, id, Entry{URL: "https://cdn.example.com/x.jpg", StoredAt: time.Now()}); err != nil {
			t.Fatalf("Set(%d): %v", id, err)
		}
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	for id := 1; id <= 3; id++ {
		if _, ok, _ := s.Get(ctx, id); ok {
			t.Errorf("entry %d survived Clear", id)
		}
	}
}

func TestImageCache_WithRedisStore(t *testing.T) {
	s, _ := newTestRedisStore(t)
	r := &fakeResolver{urls: map[int]string{9: "https://cdn.example.com/9.jpg"}}
	c := NewImageCache(s, r, 24*time.Hour, discardLogger(), nil)

	for i := 0; i < 2; i++ {
		url, err := c.Lookup(context.Background(), 9)
		if err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		if url != "https://cdn.example.com/9.jpg" {
			t.Errorf("url = %q", url)
		}
	}
	if got := r.calls.Load(); got != 1 {
		t.Errorf("resolver calls = %d, want 1", got)
	}
}
