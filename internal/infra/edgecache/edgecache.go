// Package edgecache is the HTTP-level response cache in front of the catalog
// endpoints. It is an availability/latency layer only: staleness is bounded
// purely by TTL and there is no invalidation channel. Callers needing fresher
// data bypass it.
package edgecache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss indicates the requested key was not found or has expired.
var ErrCacheMiss = errors.New("edge cache miss")

// Entry is one cached GET response. Only HTTP 200 responses are ever stored.
type Entry struct {
	Body        []byte    `json:"body"`
	ContentType string    `json:"content_type"`
	StoredAt    time.Time `json:"stored_at"`
	TTLSeconds  int       `json:"ttl_seconds"`
}

// Store is the cache backend. Production uses Redis; the in-process store
// serves deployments without Redis and hermetic tests.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error
}
