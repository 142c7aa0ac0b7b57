package cache

import (
	"context"
	"hash/fnv"
	"sync"
)

const memoryShards = 16

// MemoryStore is the default in-process Store: a sharded map with lazy
// expiry. Safe for concurrent use.
type MemoryStore struct {
	shards [memoryShards]*memoryShard
}

type memoryShard struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	for i := range s.shards {
		s.shards[i] = &memoryShard{entries: make(map[string]*Entry)}
	}
	return s
}

func (s *MemoryStore) shard(key string) *memoryShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return s.shards[h.Sum32()%memoryShards]
}

// Get returns the live entry for key. An expired entry is evicted and
// reported as a miss.
func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	shard := s.shard(key)

	shard.mu.RLock()
	entry, ok := shard.entries[key]
	shard.mu.RUnlock()

	if !ok {
		cacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	if entry.Expired() {
		shard.mu.Lock()
		// Re-check under the write lock: a fresh entry may have been
		// written for the same key in the meantime.
		if cur, ok := shard.entries[key]; ok && cur.Expired() {
			delete(shard.entries, key)
		}
		shard.mu.Unlock()
		cacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	cacheHits.WithLabelValues("memory").Inc()
	return entry, nil
}

// Set stores entry under key. Already-expired entries are dropped.
func (s *MemoryStore) Set(_ context.Context, key string, entry *Entry) error {
	if entry == nil || entry.TTL() <= 0 {
		return nil
	}

	shard := s.shard(key)
	shard.mu.Lock()
	shard.entries[key] = entry
	shard.mu.Unlock()
	return nil
}

// Delete removes the entry for key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	shard := s.shard(key)
	shard.mu.Lock()
	delete(shard.entries, key)
	shard.mu.Unlock()
	return nil
}

// Clear removes every entry.
func (s *MemoryStore) Clear(_ context.Context) error {
	for _, shard := range s.shards {
		shard.mu.Lock()
		shard.entries = make(map[string]*Entry)
		shard.mu.Unlock()
	}
	return nil
}

// Len returns the number of stored entries, counting expired entries that
// have not been looked up since expiry.
func (s *MemoryStore) Len() int {
	n := 0
	for _, shard := range s.shards {
		shard.mu.RLock()
		n += len(shard.entries)
		shard.mu.RUnlock()
	}
	return n
}
