package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
)

// BigCacheStore is a Store backed by bigcache, trading per-entry maps for a
// GC-friendly byte arena. bigcache only supports one global life window, so
// the window caps every TTL and the precise per-entry expiry is carried in
// the serialized entry and checked lazily on Get.
type BigCacheStore struct {
	bc *bigcache.BigCache
}

// NewBigCacheStore creates a bigcache-backed store whose life window bounds
// the maximum entry TTL.
func NewBigCacheStore(maxTTL time.Duration) (*BigCacheStore, error) {
	bc, err := bigcache.New(context.Background(), bigcache.DefaultConfig(maxTTL))
	if err != nil {
		return nil, fmt.Errorf("init bigcache: %w", err)
	}
	return &BigCacheStore{bc: bc}, nil
}

// Get returns the live entry for key, or ErrCacheMiss.
func (s *BigCacheStore) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := s.bc.Get(key)
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			cacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		cacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("bigcache get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		cacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.Expired() {
		_ = s.Delete(ctx, key)
		cacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	cacheHits.WithLabelValues("bigcache").Inc()
	return &entry, nil
}

// Set stores entry under key. Already-expired entries are dropped.
func (s *BigCacheStore) Set(_ context.Context, key string, entry *Entry) error {
	if entry == nil || entry.TTL() <= 0 {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := s.bc.Set(key, data); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("bigcache set: %w", err)
	}
	return nil
}

// Delete removes the entry for key.
func (s *BigCacheStore) Delete(_ context.Context, key string) error {
	if err := s.bc.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		cacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("bigcache delete: %w", err)
	}
	return nil
}

// Clear removes every entry.
func (s *BigCacheStore) Clear(_ context.Context) error {
	if err := s.bc.Reset(); err != nil {
		cacheErrors.WithLabelValues("clear").Inc()
		return fmt.Errorf("bigcache reset: %w", err)
	}
	return nil
}
