package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBigCacheStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewBigCacheStore(time.Minute)
	if err != nil {
		t.Fatalf("NewBigCacheStore: %v", err)
	}

	if err := s.Set(ctx, "k", newEntry("payload", time.Minute)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got.Body) != "payload" {
		t.Errorf("Body = %q, want %q", got.Body, "payload")
	}
	if got.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Header lost in round trip: %v", got.Header)
	}
}

func TestBigCacheStoreMiss(t *testing.T) {
	s, err := NewBigCacheStore(time.Minute)
	if err != nil {
		t.Fatalf("NewBigCacheStore: %v", err)
	}

	if _, err := s.Get(context.Background(), "absent"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get(absent) = %v, want ErrCacheMiss", err)
	}
}

func TestBigCacheStoreEmbeddedExpiry(t *testing.T) {
	ctx := context.Background()
	s, err := NewBigCacheStore(time.Minute)
	if err != nil {
		t.Fatalf("NewBigCacheStore: %v", err)
	}

	// Entry TTL shorter than the bigcache life window: the embedded
	// ExpiresAt must still win.
	if err := s.Set(ctx, "k", newEntry("v", 20*time.Millisecond)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(40 * time.Millisecond)

	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired entry not treated as miss: %v", err)
	}
}

func TestBigCacheStoreDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	s, err := NewBigCacheStore(time.Minute)
	if err != nil {
		t.Fatalf("NewBigCacheStore: %v", err)
	}

	if err := s.Set(ctx, "a", newEntry("1", time.Minute)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "b", newEntry("2", time.Minute)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("deleted entry still present: %v", err)
	}
	if err := s.Delete(ctx, "absent"); err != nil {
		t.Errorf("Delete(absent) = %v, want nil", err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := s.Get(ctx, "b"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("entry survived Clear: %v", err)
	}
}
