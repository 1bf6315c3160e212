package health

import (
	"context"

	"github.com/textcore/aicore/internal/ai"
	"github.com/textcore/aicore/internal/cache"
)

// CacheProbe checks L2 reachability via the cache's own stats call.
func CacheProbe(c *cache.TieredCache) Probe {
	return func(ctx context.Context) (ComponentStatus, error) {
		stats := c.Stats(ctx)
		if !stats.L2.Connected {
			return ComponentStatus{Status: StatusDegraded, Message: "L2 cache unreachable, serving from L1 only"}, nil
		}
		return ComponentStatus{Status: StatusHealthy, Message: "connected"}, nil
	}
}

// ModelProbe checks the model client is reachable with a minimal
// prompt. A transient or permanent failure both count as the probe
// failing; the aggregator decides retry/backoff.
func ModelProbe(client ai.Client) Probe {
	return func(ctx context.Context) (ComponentStatus, error) {
		_, err := client.GenerateResponse(ctx, "ping", ai.Options{Model: "ping", MaxTokens: 1})
		if err != nil {
			return ComponentStatus{}, err
		}
		return ComponentStatus{Status: StatusHealthy, Message: "reachable"}, nil
	}
}
