package cache_test

import (
	"context"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textcore/aicore/internal/cache"
	"github.com/textcore/aicore/internal/config"
)

// fakeStore is a minimal in-memory Store used to test TieredCache
// logic without a live Redis server.
type fakeStore struct {
	mu   sync.Mutex
	data map[string][]byte
	fail bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (f *fakeStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.fail {
		return nil, false, assert.AnError
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if f.fail {
		return assert.AnError
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k := range f.data {
		if ok, _ := path.Match(pattern, k); ok {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeStore) Info(ctx context.Context) (cache.StoreInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cache.StoreInfo{Connected: !f.fail, KeyCount: int64(len(f.data))}, nil
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		DefaultTTL:               time.Minute,
		MemoryCacheSize:          64,
		CompressionThresholdByte: 16,
		CompressionLevel:         6,
		Tiers:                    config.TextTiers{Small: 256, Medium: 2048, Large: 16384},
		OperationTTLs:            map[config.Operation]time.Duration{config.OpSummarize: 30 * time.Second},
		AI:                       config.AICacheConfig{EnableSmartPromotion: true},
	}
}

func TestSetThenGetHitsL1(t *testing.T) {
	store := newFakeStore()
	c := cache.New(testCacheConfig(), store, nil)

	require.NoError(t, c.Set(context.Background(), "ai_cache:op:summarize|txt:hello|opts:abcd1234|q:", []byte("result"), config.OpSummarize))
	val, ok := c.Get(context.Background(), "ai_cache:op:summarize|txt:hello|opts:abcd1234|q:")
	require.True(t, ok)
	assert.Equal(t, "result", string(val))
}

func TestGetMissWhenAbsent(t *testing.T) {
	store := newFakeStore()
	c := cache.New(testCacheConfig(), store, nil)
	_, ok := c.Get(context.Background(), "nope")
	assert.False(t, ok)
}

func TestL2FailureDegradesToMissNeverErrors(t *testing.T) {
	store := newFakeStore()
	store.fail = true
	c := cache.New(testCacheConfig(), store, nil)

	err := c.Set(context.Background(), "k", []byte("v"), config.OpSummarize)
	assert.NoError(t, err, "L2 set failure must not propagate as an error")

	// Set still wrote L1; drop it so Get has to go to the failing L2.
	c.InvalidateL1()
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestInvalidateByOperationOnlyAffectsThatOperation(t *testing.T) {
	store := newFakeStore()
	c := cache.New(testCacheConfig(), store, nil)
	ctx := context.Background()

	sumKey := "ai_cache:op:summarize|txt:x|opts:aa|q:"
	sentKey := "ai_cache:op:sentiment|txt:x|opts:aa|q:"
	require.NoError(t, c.Set(ctx, sumKey, []byte("s"), config.OpSummarize))
	require.NoError(t, c.Set(ctx, sentKey, []byte("t"), config.OpSentiment))

	_, err := c.InvalidateByOperation(ctx, config.OpSummarize, "model_update")
	require.NoError(t, err)

	_, ok := c.Get(ctx, sumKey)
	assert.False(t, ok)
	_, ok = c.Get(ctx, sentKey)
	assert.True(t, ok)
}

func TestClearAllRemovesEverything(t *testing.T) {
	store := newFakeStore()
	c := cache.New(testCacheConfig(), store, nil)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "ai_cache:op:summarize|txt:a|opts:aa|q:", []byte("a"), config.OpSummarize))
	require.NoError(t, c.Set(ctx, "ai_cache:op:sentiment|txt:b|opts:bb|q:", []byte("b"), config.OpSentiment))

	_, err := c.ClearAll(ctx, "test")
	require.NoError(t, err)

	_, ok := c.Get(ctx, "ai_cache:op:summarize|txt:a|opts:aa|q:")
	assert.False(t, ok)
}

func TestStatsReportsHitRatio(t *testing.T) {
	store := newFakeStore()
	c := cache.New(testCacheConfig(), store, nil)
	ctx := context.Background()

	key := "ai_cache:op:summarize|txt:x|opts:aa|q:"
	require.NoError(t, c.Set(ctx, key, []byte("v"), config.OpSummarize))
	c.Get(ctx, key)
	c.Get(ctx, "missing-key")

	stats := c.Stats(ctx)
	assert.Equal(t, int64(1), stats.Performance.Hits)
	assert.Equal(t, int64(1), stats.Performance.Misses)
	assert.InDelta(t, 0.5, stats.Performance.HitRatio, 0.001)
}

func TestCompressionRoundTripsForLargeValues(t *testing.T) {
	store := newFakeStore()
	c := cache.New(testCacheConfig(), store, nil)
	ctx := context.Background()

	big := strings.Repeat("compress-me ", 200)
	key := "ai_cache:op:summarize|txt:x|opts:aa|q:"
	require.NoError(t, c.Set(ctx, key, []byte(big), config.OpSummarize))

	c.InvalidateL1()
	val, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, big, string(val))
}
