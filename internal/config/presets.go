package config

import "time"

// resiliencePresets bundles the three named resilience presets from
// spec.md §3. Presets set the default strategy and feature toggles;
// per-operation overrides still layer on top via env or JSON.
var resiliencePresets = map[string]ResilienceConfig{
	"simple": {
		Preset:                "simple",
		DefaultStrategy:       StrategyBalanced,
		OperationStrategies:   map[Operation]Strategy{},
		Retry:                 StrategyBalanced.Params(),
		ResilienceEnabled:     true,
		RetryEnabled:          true,
		CircuitBreakerEnabled: true,
	},
	"development": {
		Preset:          "development",
		DefaultStrategy: StrategyAggressive,
		OperationStrategies: map[Operation]Strategy{
			OpQA: StrategyBalanced,
		},
		Retry:                 StrategyAggressive.Params(),
		ResilienceEnabled:     true,
		RetryEnabled:          true,
		CircuitBreakerEnabled: true,
	},
	"production": {
		Preset:          "production",
		DefaultStrategy: StrategyConservative,
		OperationStrategies: map[Operation]Strategy{
			OpQA:        StrategyCritical,
			OpSentiment: StrategyBalanced,
		},
		Retry:                 StrategyConservative.Params(),
		ResilienceEnabled:     true,
		RetryEnabled:          true,
		CircuitBreakerEnabled: true,
	},
}

// cachePresets bundles the seven named cache presets from spec.md §3.
var cachePresets = map[string]CacheConfig{
	"disabled": {
		Preset:  "disabled",
		Enabled: false,
	},
	"minimal": {
		Preset:                   "minimal",
		Enabled:                  true,
		DefaultTTL:               60 * time.Second,
		MemoryCacheSize:          128,
		CompressionThresholdByte: 8192,
		CompressionLevel:         1,
		Tiers:                    TextTiers{Small: 256, Medium: 2048, Large: 16384},
	},
	"simple": {
		Preset:                   "simple",
		Enabled:                  true,
		DefaultTTL:               300 * time.Second,
		MemoryCacheSize:          512,
		CompressionThresholdByte: 4096,
		CompressionLevel:         3,
		Tiers:                    TextTiers{Small: 256, Medium: 2048, Large: 16384},
	},
	"development": {
		Preset:                   "development",
		Enabled:                  true,
		DefaultTTL:               600 * time.Second,
		MemoryCacheSize:          1024,
		CompressionThresholdByte: 2048,
		CompressionLevel:         4,
		Tiers:                    TextTiers{Small: 256, Medium: 2048, Large: 16384},
		OperationTTLs: map[Operation]time.Duration{
			OpSummarize: 600 * time.Second,
			OpSentiment: 1800 * time.Second,
			OpKeyPoints: 600 * time.Second,
			OpQuestions: 600 * time.Second,
			OpQA:        300 * time.Second,
		},
	},
	"production": {
		Preset:                   "production",
		Enabled:                  true,
		DefaultTTL:               3600 * time.Second,
		MemoryCacheSize:          8192,
		CompressionThresholdByte: 1024,
		CompressionLevel:         6,
		Tiers:                    TextTiers{Small: 256, Medium: 2048, Large: 16384},
		OperationTTLs: map[Operation]time.Duration{
			OpSummarize: 3600 * time.Second,
			OpSentiment: 7200 * time.Second,
			OpKeyPoints: 3600 * time.Second,
			OpQuestions: 3600 * time.Second,
			OpQA:        1800 * time.Second,
		},
	},
	"ai-development": {
		Preset:                   "ai-development",
		Enabled:                  true,
		DefaultTTL:               600 * time.Second,
		MemoryCacheSize:          2048,
		CompressionThresholdByte: 2048,
		CompressionLevel:         4,
		Tiers:                    TextTiers{Small: 256, Medium: 2048, Large: 16384},
		AI: AICacheConfig{
			TextHashThreshold:    256,
			HashAlgorithm:        "sha256",
			EnableSmartPromotion: true,
			MaxTextLength:        50000,
		},
	},
	"ai-production": {
		Preset:                   "ai-production",
		Enabled:                  true,
		DefaultTTL:               3600 * time.Second,
		MemoryCacheSize:          16384,
		CompressionThresholdByte: 1024,
		CompressionLevel:         6,
		Tiers:                    TextTiers{Small: 256, Medium: 2048, Large: 16384},
		AI: AICacheConfig{
			TextHashThreshold:    256,
			HashAlgorithm:        "sha256",
			EnableSmartPromotion: true,
			MaxTextLength:        100000,
		},
		OperationTTLs: map[Operation]time.Duration{
			OpSummarize: 3600 * time.Second,
			OpSentiment: 7200 * time.Second,
			OpKeyPoints: 3600 * time.Second,
			OpQuestions: 3600 * time.Second,
			OpQA:        1800 * time.Second,
		},
	},
}

var validResiliencePresets = []string{"simple", "development", "production"}
var validCachePresets = []string{"disabled", "minimal", "simple", "development", "production", "ai-development", "ai-production"}
var validStrategies = []string{string(StrategyAggressive), string(StrategyBalanced), string(StrategyConservative), string(StrategyCritical)}

func cloneResilience(rc ResilienceConfig) ResilienceConfig {
	ops := make(map[Operation]Strategy, len(rc.OperationStrategies))
	for k, v := range rc.OperationStrategies {
		ops[k] = v
	}
	rc.OperationStrategies = ops
	return rc
}

func cloneCache(cc CacheConfig) CacheConfig {
	ttls := make(map[Operation]time.Duration, len(cc.OperationTTLs))
	for k, v := range cc.OperationTTLs {
		ttls[k] = v
	}
	cc.OperationTTLs = ttls
	return cc
}
