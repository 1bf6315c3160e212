package health_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textcore/aicore/internal/config"
	"github.com/textcore/aicore/internal/health"
)

func fastHealthConfig() config.HealthConfig {
	return config.HealthConfig{
		DefaultTimeout:      20 * time.Millisecond,
		PerComponentTimeout: map[string]time.Duration{},
		RetryCount:          2,
		BackoffBase:         2 * time.Millisecond,
	}
}

func TestCheckReturnsHealthyOnSuccess(t *testing.T) {
	a := health.New(fastHealthConfig(), nil)
	a.Register("db", func(ctx context.Context) (health.ComponentStatus, error) {
		return health.ComponentStatus{Status: health.StatusHealthy}, nil
	})
	cs := a.Check(context.Background(), "db")
	assert.Equal(t, health.StatusHealthy, cs.Status)
}

func TestCheckUnregisteredProbeIsUnhealthy(t *testing.T) {
	a := health.New(fastHealthConfig(), nil)
	cs := a.Check(context.Background(), "missing")
	assert.Equal(t, health.StatusUnhealthy, cs.Status)
}

func TestCheckRetriesOnFailureThenSucceeds(t *testing.T) {
	a := health.New(fastHealthConfig(), nil)
	var calls int32
	a.Register("flaky", func(ctx context.Context) (health.ComponentStatus, error) {
		n := atomic.AddInt32(&calls, 1)
		if n < 2 {
			return health.ComponentStatus{}, errors.New("boom")
		}
		return health.ComponentStatus{Status: health.StatusHealthy}, nil
	})
	cs := a.Check(context.Background(), "flaky")
	assert.Equal(t, health.StatusHealthy, cs.Status)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCheckTimeoutMapsToDegraded(t *testing.T) {
	cfg := fastHealthConfig()
	cfg.RetryCount = 0
	a := health.New(cfg, nil)
	a.Register("slow", func(ctx context.Context) (health.ComponentStatus, error) {
		<-ctx.Done()
		return health.ComponentStatus{}, ctx.Err()
	})
	cs := a.Check(context.Background(), "slow")
	assert.Equal(t, health.StatusDegraded, cs.Status)
	assert.Contains(t, cs.Message, "timed out")
}

func TestCheckExhaustedFailureMapsToUnhealthy(t *testing.T) {
	cfg := fastHealthConfig()
	cfg.RetryCount = 1
	a := health.New(cfg, nil)
	a.Register("down", func(ctx context.Context) (health.ComponentStatus, error) {
		return health.ComponentStatus{}, errors.New("connection refused")
	})
	cs := a.Check(context.Background(), "down")
	assert.Equal(t, health.StatusUnhealthy, cs.Status)
	assert.Equal(t, "connection refused", cs.Message)
}

func TestCheckAllRunsConcurrentlyAndIsolatesFailures(t *testing.T) {
	a := health.New(fastHealthConfig(), nil)
	a.Register("good", func(ctx context.Context) (health.ComponentStatus, error) {
		return health.ComponentStatus{Status: health.StatusHealthy}, nil
	})
	a.Register("bad", func(ctx context.Context) (health.ComponentStatus, error) {
		return health.ComponentStatus{}, errors.New("down")
	})

	result := a.CheckAll(context.Background())
	require.Len(t, result.Components, 2)
	assert.Equal(t, health.StatusHealthy, result.Components["good"].Status)
	assert.Equal(t, health.StatusUnhealthy, result.Components["bad"].Status)
	assert.Equal(t, health.StatusUnhealthy, result.Overall, "overall must be the worst of all components")
}

func TestCheckAllEmptyRegistryIsHealthy(t *testing.T) {
	a := health.New(fastHealthConfig(), nil)
	result := a.CheckAll(context.Background())
	assert.Equal(t, health.StatusHealthy, result.Overall)
	assert.Empty(t, result.Components)
}

func TestRegisterReplacesExistingProbe(t *testing.T) {
	a := health.New(fastHealthConfig(), nil)
	a.Register("x", func(ctx context.Context) (health.ComponentStatus, error) {
		return health.ComponentStatus{Status: health.StatusUnhealthy}, nil
	})
	a.Register("x", func(ctx context.Context) (health.ComponentStatus, error) {
		return health.ComponentStatus{Status: health.StatusHealthy}, nil
	})
	cs := a.Check(context.Background(), "x")
	assert.Equal(t, health.StatusHealthy, cs.Status)
}
