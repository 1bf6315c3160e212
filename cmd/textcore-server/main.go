// Command textcore-server is a thin net/http demonstration of the
// JSON contract described in spec.md §6. Authentication, CORS policy
// enforcement beyond a pass-through header setter, and rate limiting
// are explicitly out of scope; this binary exists to make the module
// runnable end to end, not to be a production gateway.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/textcore/aicore/internal/ai"
	"github.com/textcore/aicore/internal/cache"
	"github.com/textcore/aicore/internal/cachekey"
	"github.com/textcore/aicore/internal/config"
	"github.com/textcore/aicore/internal/health"
	"github.com/textcore/aicore/internal/resilience"
	"github.com/textcore/aicore/internal/sanitize"
	"github.com/textcore/aicore/internal/textproc"
	"github.com/textcore/aicore/internal/validate"
	"github.com/textcore/aicore/pkg/logger"
)

func main() {
	resolver := config.NewResolver(logger.NewSimple())
	cfg, err := resolver.Build(config.BuildOptions{
		ResiliencePreset:     os.Getenv("RESILIENCE_PRESET"),
		ResilienceCustomJSON: os.Getenv("RESILIENCE_CUSTOM_JSON"),
		CachePreset:          os.Getenv("CACHE_PRESET"),
		CacheCustomJSON:      os.Getenv("CACHE_CUSTOM_JSON"),
	})
	if err != nil {
		log.Fatalf("failed to resolve configuration: %v", err)
	}

	appLog := logger.NewProduction(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output})

	var l2 cache.Store
	if cfg.Cache.RemoteURL != "" {
		store, err := cache.NewRedisStore(cache.RedisStoreConfig{
			URL:      cfg.Cache.RemoteURL,
			Password: cfg.Cache.Password,
			CertFile: cfg.Cache.TLSCertFile,
			KeyFile:  cfg.Cache.TLSKeyFile,
		}, appLog)
		if err != nil {
			appLog.Error("failed to connect to L2 cache, continuing with L1 only", logger.F("error", err.Error()))
		} else {
			l2 = store
		}
	}

	tieredCache := cache.New(cfg.Cache, l2, appLog)
	keys := cachekey.New(cfg.Cache.Tiers)
	sanitizer := sanitize.New(cfg.Cache.AI.MaxTextLength)
	validator := validate.New()
	orchestrator := resilience.New(appLog)
	client := ai.NewClient(cfg.AI.Provider, cfg.AI.APIKey)
	processor := textproc.New(cfg, keys, tieredCache, sanitizer, validator, orchestrator, client, appLog)

	aggregator := health.New(cfg.Health, appLog)
	aggregator.Register("cache", health.CacheProbe(tieredCache))
	aggregator.Register("model", health.ModelProbe(client))

	srv := newServer(cfg, processor, resolver, aggregator, tieredCache, appLog)

	addr := ":8080"
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		addr = v
	}
	httpServer := &http.Server{Addr: addr, Handler: srv}

	go func() {
		appLog.Info("textcore-server listening", logger.F("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Error("server stopped unexpectedly", logger.F("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		appLog.Error("graceful shutdown failed", logger.F("error", err.Error()))
	}
}
