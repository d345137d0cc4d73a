package edgecache

import (
	"context"
	"sync"
	"time"

	"storefront-api/internal/pkg/clock"
)

// MemoryStore is a per-process TTL map. It loses its contents on instance
// recycling, which is acceptable for an edge cache: the cost of a cold entry
// is one origin computation.
type MemoryStore struct {
	clk clock.Clock

	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	entry     Entry
	expiresAt time.Time
}

func NewMemoryStore(clk clock.Clock) *MemoryStore {
	return &MemoryStore{
		clk:     clk,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	me, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || s.clk.Now().After(me.expiresAt) {
		if ok {
			s.mu.Lock()
			delete(s.entries, key)
			s.mu.Unlock()
		}
		cacheMisses.WithLabelValues("memory").Inc()
		return nil, ErrCacheMiss
	}

	cacheHits.WithLabelValues("memory").Inc()
	entry := me.entry
	return &entry, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, entry *Entry, ttl time.Duration) error {
	if entry == nil || ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	s.entries[key] = memoryEntry{
		entry:     *entry,
		expiresAt: s.clk.Now().Add(ttl),
	}
	s.mu.Unlock()
	return nil
}
