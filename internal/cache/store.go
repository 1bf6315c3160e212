// Package cache implements the two-tier cache (C3): an in-process L1
// LRU backed by an optional remote L2 key/value store, with
// compression and pattern invalidation (spec.md §4.3).
package cache

import (
	"context"
	"time"
)

// Store is the L2 remote key/value contract. Implementations must
// never panic on a missing key — absence is reported through the
// returned bool/error per method, the way the tiered cache expects to
// treat "L2 unreachable" as equivalent to a miss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
	Info(ctx context.Context) (StoreInfo, error)
}

// StoreInfo carries the fields the stats() operation surfaces about L2.
type StoreInfo struct {
	Connected  bool
	KeyCount   int64
	MemoryUsed int64
}
