package cache

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/textcore/aicore/internal/cachekey"
	"github.com/textcore/aicore/internal/config"
	"github.com/textcore/aicore/pkg/logger"
)

var errCorruptEntry = errors.New("corrupt cache entry")

// InvalidationEvent is emitted by invalidate_pattern and its callers
// (spec.md §4.3).
type InvalidationEvent struct {
	Pattern     string
	KeysRemoved int
	Context     string
	Timestamp   time.Time
}

// L2Stats and L1Stats are the stats() sub-bags from spec.md §4.3.
type L2Stats struct {
	Connected  bool
	Keys       int64
	MemoryUsed int64
}

type L1Stats struct {
	Entries     int
	Capacity    int
	Utilization float64
}

type PerformanceStats struct {
	HitRatio   float64
	Hits       int64
	Misses     int64
	L2Errors   int64
	AvgOpTime  time.Duration
}

type Stats struct {
	L2          L2Stats
	L1          L1Stats
	Performance PerformanceStats
}

// TieredCache is the two-tier cache: an in-process L1 LRU in front of
// an optional remote L2 Store. L2 is best-effort — every error from it
// degrades to a miss rather than propagating (spec.md §4.3 failure
// semantics).
type TieredCache struct {
	l1    *l1
	l2    Store
	cfg   config.CacheConfig
	keys  *cachekey.Generator
	log   logger.Logger

	hits      atomic.Int64
	misses    atomic.Int64
	l2Errors  atomic.Int64
	totalOpNs atomic.Int64
	totalOps  atomic.Int64
}

// New constructs a TieredCache. l2 may be nil, meaning no remote tier
// is configured; all L2 operations then behave as permanent misses.
func New(cfg config.CacheConfig, l2 Store, log logger.Logger) *TieredCache {
	if log == nil {
		log = logger.NoOp{}
	}
	return &TieredCache{
		l1:   newL1(cfg.MemoryCacheSize),
		l2:   l2,
		cfg:  cfg,
		keys: cachekey.New(cfg.Tiers),
		log:  log,
	}
}

// Get retrieves a cached value. It consults L1 first; on miss it
// consults L2 and, for small-tier keys, promotes the value into L1
// (smart promotion). L2 being unreachable is treated as a miss, never
// an error.
func (c *TieredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	start := time.Now()
	defer c.recordOpTime(start)

	if raw, ok := c.l1.get(key); ok {
		c.hits.Add(1)
		return raw, true
	}

	if c.l2 == nil {
		c.misses.Add(1)
		return nil, false
	}

	raw, found, err := c.l2.Get(ctx, key)
	if err != nil {
		c.l2Errors.Add(1)
		c.log.Warn("L2 cache get failed, treating as miss", logger.F("key", key), logger.F("error", err.Error()))
		c.misses.Add(1)
		return nil, false
	}
	if !found {
		c.misses.Add(1)
		return nil, false
	}

	value, err := decode(raw)
	if err != nil {
		c.log.Warn("corrupt L2 cache entry, evicting", logger.F("key", key), logger.F("error", err.Error()))
		_ = c.l2.Delete(ctx, key)
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	if c.cfg.AI.EnableSmartPromotion && keyTier(key) == "small" {
		c.l1.set(key, value)
	}
	return value, true
}

// Set stores a value under key for the given operation, choosing TTL
// from the configured per-operation map (falling back to DefaultTTL),
// compressing if the serialized size meets the configured threshold.
func (c *TieredCache) Set(ctx context.Context, key string, value []byte, operation config.Operation) error {
	ttl, ok := c.cfg.OperationTTLs[operation]
	if !ok {
		ttl = c.cfg.DefaultTTL
	}
	return c.SetWithTTL(ctx, key, value, ttl)
}

// SetWithTTL stores a value under an explicit TTL, bypassing the
// per-operation TTL table. Used by the fallback path (spec.md §4.7),
// which stores degraded responses under a short TTL independent of
// the operation's normal cache lifetime.
func (c *TieredCache) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	defer c.recordOpTime(start)

	encoded, err := encode(value, c.cfg.CompressionThresholdByte, c.cfg.CompressionLevel)
	if err != nil {
		return err
	}

	if c.l2 != nil {
		if err := c.l2.Set(ctx, key, encoded, ttl); err != nil {
			c.l2Errors.Add(1)
			c.log.Warn("L2 cache set failed, continuing with L1 only", logger.F("key", key), logger.F("error", err.Error()))
		}
	}

	c.l1.set(key, value)
	return nil
}

// InvalidatePattern enumerates L2 keys matching the glob-shaped pattern
// and deletes them, emitting an InvalidationEvent. L1 entries matching
// the pattern are removed too, since L1 must never outlive an L2
// invalidation it was derived from.
func (c *TieredCache) InvalidatePattern(ctx context.Context, pattern, invalidationContext string) (InvalidationEvent, error) {
	event := InvalidationEvent{Pattern: pattern, Context: invalidationContext, Timestamp: time.Now()}

	const keyPrefix = "ai_cache:"
	for _, k := range c.l1.c.Keys() {
		if strings.HasPrefix(k, keyPrefix) && strings.Contains(k[len(keyPrefix):], pattern) {
			c.l1.remove(k)
		}
	}

	if c.l2 == nil {
		return event, nil
	}

	matched, err := c.l2.Keys(ctx, "ai_cache:*"+pattern+"*")
	if err != nil {
		c.l2Errors.Add(1)
		return event, err
	}

	for _, k := range matched {
		if err := c.l2.Delete(ctx, k); err != nil {
			c.l2Errors.Add(1)
			continue
		}
		c.l1.remove(k)
		event.KeysRemoved++
	}
	return event, nil
}

// InvalidateByOperation invalidates every cached entry for op.
func (c *TieredCache) InvalidateByOperation(ctx context.Context, op config.Operation, invalidationContext string) (InvalidationEvent, error) {
	return c.InvalidatePattern(ctx, "op:"+string(op), invalidationContext)
}

// ClearAll invalidates every cached entry.
func (c *TieredCache) ClearAll(ctx context.Context, invalidationContext string) (InvalidationEvent, error) {
	event, err := c.InvalidatePattern(ctx, "", invalidationContext)
	c.l1.purge()
	return event, err
}

// InvalidateL1 clears only the in-process tier, useful under memory
// pressure without touching L2.
func (c *TieredCache) InvalidateL1() {
	c.l1.purge()
}

// Stats reports current cache health and performance.
func (c *TieredCache) Stats(ctx context.Context) Stats {
	var l2stats L2Stats
	if c.l2 != nil {
		if info, err := c.l2.Info(ctx); err == nil {
			l2stats = L2Stats{Connected: info.Connected, Keys: info.KeyCount, MemoryUsed: info.MemoryUsed}
		}
	}

	hits, misses := c.hits.Load(), c.misses.Load()
	total := hits + misses
	var ratio float64
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}

	var avg time.Duration
	if ops := c.totalOps.Load(); ops > 0 {
		avg = time.Duration(c.totalOpNs.Load() / ops)
	}

	entries := c.l1.len()
	var util float64
	if cap := c.l1.cap(); cap > 0 {
		util = float64(entries) / float64(cap)
	}

	return Stats{
		L2: l2stats,
		L1: L1Stats{Entries: entries, Capacity: c.l1.cap(), Utilization: util},
		Performance: PerformanceStats{
			HitRatio:  ratio,
			Hits:      hits,
			Misses:    misses,
			L2Errors:  c.l2Errors.Load(),
			AvgOpTime: avg,
		},
	}
}

func (c *TieredCache) recordOpTime(start time.Time) {
	c.totalOpNs.Add(int64(time.Since(start)))
	c.totalOps.Add(1)
}

// keyTier recovers the tier a key was generated for by re-deriving it
// from the key's txt fragment shape: small-tier keys embed text
// verbatim (unbounded length, no hex-only 64-char run), everything
// else embeds a 64-char hex SHA-256 digest. This lets Get decide
// whether to smart-promote without re-classifying the original text.
func keyTier(key string) string {
	const prefix = "|txt:"
	idx := strings.Index(key, prefix)
	if idx < 0 {
		return "unknown"
	}
	rest := key[idx+len(prefix):]
	end := strings.Index(rest, "|opts:")
	if end < 0 {
		end = len(rest)
	}
	frag := rest[:end]
	if len(frag) == 64 && isHex(frag) {
		return "hashed"
	}
	return "small"
}

func isHex(s string) bool {
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return false
		}
	}
	return true
}
