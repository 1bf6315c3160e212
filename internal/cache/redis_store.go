package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/textcore/aicore/pkg/logger"
)

// RedisStore is the L2 Store backed by github.com/redis/go-redis/v9,
// the actively maintained client the pack's alert-history service uses
// for its own Redis-backed L2 tier.
type RedisStore struct {
	client *redis.Client
	log    logger.Logger
}

// RedisStoreConfig configures the underlying client connection.
type RedisStoreConfig struct {
	URL      string
	Password string
	CertFile string
	KeyFile  string
}

// NewRedisStore parses URL (redis:// or rediss://) and constructs a
// client. Connectivity is not verified here — the tiered cache treats
// every L2 call as best-effort and degrades to a miss on error.
func NewRedisStore(cfg RedisStoreConfig, log logger.Logger) (*RedisStore, error) {
	if log == nil {
		log = logger.NoOp{}
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		opts.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
	}

	return &RedisStore{client: redis.NewClient(opts), log: log}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *RedisStore) Info(ctx context.Context) (StoreInfo, error) {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return StoreInfo{Connected: false}, err
	}
	dbSize, err := s.client.DBSize(ctx).Result()
	if err != nil {
		return StoreInfo{Connected: true}, err
	}
	memInfo, err := s.client.Info(ctx, "memory").Result()
	var memUsed int64
	if err == nil {
		memUsed = parseUsedMemory(memInfo)
	}
	return StoreInfo{Connected: true, KeyCount: dbSize, MemoryUsed: memUsed}, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
