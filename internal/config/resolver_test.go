package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textcore/aicore/internal/config"
)

func clearResilienceEnv(t *testing.T) {
	t.Helper()
	vars := []string{
		"RETRY_MAX_ATTEMPTS", "CIRCUIT_BREAKER_FAILURE_THRESHOLD", "RETRY_MAX_DELAY",
		"RETRY_EXPONENTIAL_MIN", "RETRY_EXPONENTIAL_MAX", "RETRY_EXPONENTIAL_MULTIPLIER",
		"RETRY_JITTER_ENABLED", "RETRY_JITTER_MAX", "DEFAULT_RESILIENCE_STRATEGY",
		"CIRCUIT_BREAKER_ENABLED", "RETRY_ENABLED", "RESILIENCE_ENABLED",
		"SUMMARIZE_RESILIENCE_STRATEGY", "QA_RESILIENCE_STRATEGY",
		"CACHE_REDIS_URL", "ENABLE_AI_CACHE", "CACHE_OPERATION_TTLS",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}

func TestBuildUnknownPresetIsFatal(t *testing.T) {
	clearResilienceEnv(t)
	r := config.NewResolver(nil)
	_, err := r.Build(config.BuildOptions{ResiliencePreset: "nonsense"})
	require.Error(t, err)
}

func TestBuildDefaultsToSimplePreset(t *testing.T) {
	clearResilienceEnv(t)
	r := config.NewResolver(nil)
	cfg, err := r.Build(config.BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, "simple", cfg.Resilience.Preset)
	assert.False(t, cfg.Resilience.LegacyMode)
}

func TestLegacyModeDetectedAndIgnoresCustomJSON(t *testing.T) {
	clearResilienceEnv(t)
	os.Setenv("RETRY_MAX_ATTEMPTS", "9")
	defer os.Unsetenv("RETRY_MAX_ATTEMPTS")

	r := config.NewResolver(nil)
	cfg, err := r.Build(config.BuildOptions{
		ResiliencePreset:     "production",
		ResilienceCustomJSON: `{"max_attempts": 1}`,
	})
	require.NoError(t, err)
	assert.True(t, cfg.Resilience.LegacyMode)
	assert.Equal(t, 9, cfg.Resilience.Retry.MaxAttempts)
}

func TestResilienceCustomJSONOverridesPreset(t *testing.T) {
	clearResilienceEnv(t)
	r := config.NewResolver(nil)
	cfg, err := r.Build(config.BuildOptions{
		ResiliencePreset:     "simple",
		ResilienceCustomJSON: `{"max_attempts": 7, "failure_threshold": 2}`,
	})
	require.NoError(t, err)
	params := cfg.ResilienceFor(config.OpSummarize)
	assert.Equal(t, 7, params.MaxAttempts)
	assert.Equal(t, 2, params.FailureThreshold)
}

func TestResilienceCustomJSONUnknownKeyIsDropped(t *testing.T) {
	clearResilienceEnv(t)
	r := config.NewResolver(nil)
	cfg, err := r.Build(config.BuildOptions{
		ResiliencePreset:     "simple",
		ResilienceCustomJSON: `{"not_a_real_field": 1}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "simple", cfg.Resilience.Preset)
}

func TestPerOperationStrategyOverride(t *testing.T) {
	clearResilienceEnv(t)
	r := config.NewResolver(nil)
	cfg, err := r.Build(config.BuildOptions{
		ResiliencePreset:     "simple",
		ResilienceCustomJSON: `{"operation_strategies": {"qa": "critical"}}`,
	})
	require.NoError(t, err)
	assert.Equal(t, config.StrategyCritical, cfg.Resilience.StrategyFor(config.OpQA))
	assert.Equal(t, config.StrategyBalanced, cfg.Resilience.StrategyFor(config.OpSummarize))
}

func TestCacheRedisURLMustHaveValidScheme(t *testing.T) {
	clearResilienceEnv(t)
	os.Setenv("CACHE_REDIS_URL", "http://example.com")
	defer os.Unsetenv("CACHE_REDIS_URL")

	r := config.NewResolver(nil)
	_, err := r.Build(config.BuildOptions{})
	require.Error(t, err)
}

func TestCacheRedisURLAccepted(t *testing.T) {
	clearResilienceEnv(t)
	os.Setenv("CACHE_REDIS_URL", "redis://localhost:6379/0")
	defer os.Unsetenv("CACHE_REDIS_URL")

	r := config.NewResolver(nil)
	cfg, err := r.Build(config.BuildOptions{CachePreset: "development"})
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Cache.RemoteURL)
}

func TestCacheOperationTTLsEnvOverride(t *testing.T) {
	clearResilienceEnv(t)
	os.Setenv("CACHE_OPERATION_TTLS", `{"summarize": 42}`)
	defer os.Unsetenv("CACHE_OPERATION_TTLS")

	r := config.NewResolver(nil)
	cfg, err := r.Build(config.BuildOptions{CachePreset: "development"})
	require.NoError(t, err)
	assert.Equal(t, 42*time.Second, cfg.Cache.OperationTTLs[config.OpSummarize])
}

func TestBuildIsPureForEqualInputs(t *testing.T) {
	clearResilienceEnv(t)
	r := config.NewResolver(nil)
	opts := config.BuildOptions{ResiliencePreset: "production", CachePreset: "ai-production"}

	a, err := r.Build(opts)
	require.NoError(t, err)
	b, err := r.Build(opts)
	require.NoError(t, err)

	assert.Equal(t, a.Resilience.Preset, b.Resilience.Preset)
	assert.Equal(t, a.Cache.Preset, b.Cache.Preset)
	assert.Equal(t, a.ResilienceFor(config.OpQA), b.ResilienceFor(config.OpQA))
}

func TestValidateResilienceOverrideRejectsBadRange(t *testing.T) {
	r := config.NewResolver(nil)
	result := r.ValidateResilienceOverride(`{"max_attempts": -1}`)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestValidateResilienceOverrideAcceptsGood(t *testing.T) {
	r := config.NewResolver(nil)
	result := r.ValidateResilienceOverride(`{"max_attempts": 5}`)
	assert.True(t, result.Valid)
}
