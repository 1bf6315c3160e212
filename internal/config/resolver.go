package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/textcore/aicore/internal/apperrors"
	"github.com/textcore/aicore/pkg/logger"
)

// legacyResilienceVars is the fixed set of env vars whose mere presence
// triggers legacy mode (spec.md §4.1 precedence rule 1). <OP>_RESILIENCE_STRATEGY
// is checked separately since its prefix varies by operation.
var legacyResilienceVars = []string{
	"RETRY_MAX_ATTEMPTS",
	"CIRCUIT_BREAKER_FAILURE_THRESHOLD",
	"RETRY_MAX_DELAY",
	"RETRY_EXPONENTIAL_MIN",
	"RETRY_EXPONENTIAL_MAX",
	"RETRY_EXPONENTIAL_MULTIPLIER",
	"RETRY_JITTER_ENABLED",
	"RETRY_JITTER_MAX",
	"DEFAULT_RESILIENCE_STRATEGY",
	"CIRCUIT_BREAKER_ENABLED",
	"RETRY_ENABLED",
	"RESILIENCE_ENABLED",
}

var allOperations = []Operation{OpSummarize, OpSentiment, OpKeyPoints, OpQuestions, OpQA}

// Resolver builds a RuntimeConfig from presets, the process environment
// and optional JSON overrides, per the fixed precedence in spec.md
// §4.1. It never mutates state outside of what it reads via os.Getenv;
// Build is deterministic for a fixed environment and inputs (law L3).
type Resolver struct {
	log logger.Logger
}

// NewResolver creates a Resolver. A nil logger is replaced with a NoOp
// sink so callers in tests are not forced to supply one.
func NewResolver(log logger.Logger) *Resolver {
	if log == nil {
		log = logger.NoOp{}
	}
	return &Resolver{log: log}
}

// BuildOptions carries the inputs to Build: preset names plus optional
// custom JSON override strings for resilience and cache.
type BuildOptions struct {
	ResiliencePreset        string
	ResilienceCustomJSON    string
	CachePreset             string
	CacheCustomJSON         string
}

// Build resolves a complete RuntimeConfig. Invalid preset names are
// fatal (apperrors.KindConfiguration); invalid overrides and legacy env
// values are logged and the corresponding default/base is retained.
func (r *Resolver) Build(opts BuildOptions) (RuntimeConfig, error) {
	resilience, err := r.buildResilience(opts)
	if err != nil {
		return RuntimeConfig{}, err
	}

	cache, err := r.buildCache(opts)
	if err != nil {
		return RuntimeConfig{}, err
	}

	return RuntimeConfig{
		AI:         r.buildAI(),
		Resilience: resilience,
		Cache:      cache,
		Health:     r.buildHealth(),
		Security:   r.buildSecurity(),
		Logging:    r.buildLogging(),
	}, nil
}

func (r *Resolver) buildResilience(opts BuildOptions) (ResilienceConfig, error) {
	if r.anyLegacyVarPresent() {
		r.log.Info("entering legacy resilience mode: legacy env vars present, ignoring custom JSON override")
		return r.buildLegacyResilience(), nil
	}

	preset := opts.ResiliencePreset
	if preset == "" {
		preset = "simple"
	}
	base, ok := resiliencePresets[preset]
	if !ok {
		return ResilienceConfig{}, apperrors.New("config.build_resilience", apperrors.KindConfiguration,
			fmt.Sprintf("unknown resilience preset %q, valid presets: %s", preset, strings.Join(validResiliencePresets, ", ")))
	}
	base = cloneResilience(base)

	if opts.ResilienceCustomJSON != "" {
		overridden, err := r.applyResilienceOverride(base, opts.ResilienceCustomJSON)
		if err != nil {
			r.log.Warn("invalid resilience custom JSON override, keeping base preset", logger.F("error", err.Error()))
		} else {
			base = overridden
		}
	}

	return base, nil
}

func (r *Resolver) buildLegacyResilience() ResilienceConfig {
	rc := cloneResilience(resiliencePresets["simple"])
	rc.Preset = "legacy"
	rc.LegacyMode = true

	params := rc.Retry
	if v, ok := r.envInt("RETRY_MAX_ATTEMPTS"); ok {
		params.MaxAttempts = v
	}
	if v, ok := r.envDurationSeconds("RETRY_MAX_DELAY"); ok {
		params.MaxDelay = v
	}
	if v, ok := r.envDurationSeconds("RETRY_EXPONENTIAL_MIN"); ok {
		params.ExpMin = v
	}
	if v, ok := r.envDurationSeconds("RETRY_EXPONENTIAL_MAX"); ok {
		params.ExpMax = v
	}
	if v, ok := r.envFloat("RETRY_EXPONENTIAL_MULTIPLIER"); ok {
		params.ExpMultiplier = v
	}
	if v, ok := r.envBool("RETRY_JITTER_ENABLED"); ok {
		params.JitterEnabled = v
	}
	if v, ok := r.envDurationSeconds("RETRY_JITTER_MAX"); ok {
		params.JitterMax = v
	}
	if v, ok := r.envInt("CIRCUIT_BREAKER_FAILURE_THRESHOLD"); ok {
		params.FailureThreshold = v
	}
	rc.Retry = params

	if v, ok := r.envBool("CIRCUIT_BREAKER_ENABLED"); ok {
		rc.CircuitBreakerEnabled = v
	}
	if v, ok := r.envBool("RETRY_ENABLED"); ok {
		rc.RetryEnabled = v
	}
	if v, ok := r.envBool("RESILIENCE_ENABLED"); ok {
		rc.ResilienceEnabled = v
	}

	if v := os.Getenv("DEFAULT_RESILIENCE_STRATEGY"); v != "" {
		if s, ok := parseStrategy(v); ok {
			rc.DefaultStrategy = s
		} else {
			r.log.Warn("invalid DEFAULT_RESILIENCE_STRATEGY, falling back to default", logger.F("value", v))
		}
	}

	for _, op := range allOperations {
		key := strings.ToUpper(string(op)) + "_RESILIENCE_STRATEGY"
		if v := os.Getenv(key); v != "" {
			if s, ok := parseStrategy(v); ok {
				rc.OperationStrategies[op] = s
			} else {
				r.log.Warn("invalid per-operation resilience strategy override, ignoring", logger.F("var", key), logger.F("value", v))
			}
		}
	}

	return rc
}

// overrideDoc is the structural shape accepted for a resilience custom
// JSON override. Unknown top-level keys are rejected (spec.md §4.1).
type overrideDoc struct {
	DefaultStrategy     *string            `json:"default_strategy" validate:"omitempty,oneof=aggressive balanced conservative critical"`
	OperationStrategies map[string]string  `json:"operation_strategies"`
	MaxAttempts         *int               `json:"max_attempts" validate:"omitempty,gt=0"`
	MaxDelayS           *float64           `json:"max_delay_s" validate:"omitempty,gt=0"`
	ExpMinS             *float64           `json:"exp_min_s" validate:"omitempty,gt=0"`
	ExpMaxS             *float64           `json:"exp_max_s" validate:"omitempty,gt=0"`
	ExpMultiplier       *float64           `json:"exp_multiplier" validate:"omitempty,gt=0"`
	JitterEnabled       *bool              `json:"jitter_enabled"`
	JitterMaxS          *float64           `json:"jitter_max_s" validate:"omitempty,gte=0"`
	FailureThreshold    *int               `json:"failure_threshold" validate:"omitempty,gt=0"`
	RecoveryTimeoutS    *float64           `json:"recovery_timeout_s" validate:"omitempty,gt=0"`
	HalfOpenMaxCalls    *int               `json:"half_open_max_calls" validate:"omitempty,gt=0"`
	ResilienceEnabled   *bool              `json:"resilience_enabled"`
	RetryEnabled        *bool              `json:"retry_enabled"`
	CircuitBreakerEnabled *bool            `json:"circuit_breaker_enabled"`
}

func (r *Resolver) applyResilienceOverride(base ResilienceConfig, raw string) (ResilienceConfig, error) {
	doc, err := decodeStrict[overrideDoc](raw)
	if err != nil {
		return base, err
	}
	if err := structValidator.Struct(doc); err != nil {
		return base, err
	}

	out := cloneResilience(base)
	if doc.DefaultStrategy != nil {
		if s, ok := parseStrategy(*doc.DefaultStrategy); ok {
			out.DefaultStrategy = s
		}
	}
	for opName, stratName := range doc.OperationStrategies {
		s, ok := parseStrategy(stratName)
		if !ok {
			continue
		}
		out.OperationStrategies[Operation(opName)] = s
	}

	ov := &RetryOverride{}
	if doc.MaxAttempts != nil {
		ov.MaxAttempts = doc.MaxAttempts
	}
	if doc.MaxDelayS != nil {
		d := secondsToDuration(*doc.MaxDelayS)
		ov.MaxDelay = &d
	}
	if doc.ExpMinS != nil {
		d := secondsToDuration(*doc.ExpMinS)
		ov.ExpMin = &d
	}
	if doc.ExpMaxS != nil {
		d := secondsToDuration(*doc.ExpMaxS)
		ov.ExpMax = &d
	}
	if doc.ExpMultiplier != nil {
		ov.ExpMultiplier = doc.ExpMultiplier
	}
	if doc.JitterEnabled != nil {
		ov.JitterEnabled = doc.JitterEnabled
	}
	if doc.JitterMaxS != nil {
		d := secondsToDuration(*doc.JitterMaxS)
		ov.JitterMax = &d
	}
	if doc.FailureThreshold != nil {
		ov.FailureThreshold = doc.FailureThreshold
	}
	if doc.RecoveryTimeoutS != nil {
		d := secondsToDuration(*doc.RecoveryTimeoutS)
		ov.RecoveryTimeout = &d
	}
	if doc.HalfOpenMaxCalls != nil {
		ov.HalfOpenMaxCalls = doc.HalfOpenMaxCalls
	}
	out.Overrides = ov
	out.Retry = ov.apply(out.DefaultStrategy.Params())

	if doc.ResilienceEnabled != nil {
		out.ResilienceEnabled = *doc.ResilienceEnabled
	}
	if doc.RetryEnabled != nil {
		out.RetryEnabled = *doc.RetryEnabled
	}
	if doc.CircuitBreakerEnabled != nil {
		out.CircuitBreakerEnabled = *doc.CircuitBreakerEnabled
	}

	return out, nil
}

func (r *Resolver) buildCache(opts BuildOptions) (CacheConfig, error) {
	preset := opts.CachePreset
	if preset == "" {
		preset = "simple"
	}
	base, ok := cachePresets[preset]
	if !ok {
		return CacheConfig{}, apperrors.New("config.build_cache", apperrors.KindConfiguration,
			fmt.Sprintf("unknown cache preset %q, valid presets: %s", preset, strings.Join(validCachePresets, ", ")))
	}
	base = cloneCache(base)

	if v := os.Getenv("CACHE_REDIS_URL"); v != "" {
		if !strings.HasPrefix(v, "redis://") && !strings.HasPrefix(v, "rediss://") {
			return CacheConfig{}, apperrors.New("config.build_cache", apperrors.KindConfiguration,
				"CACHE_REDIS_URL must start with redis:// or rediss://")
		}
		base.RemoteURL = v
	}
	if v, ok := r.envBool("ENABLE_AI_CACHE"); ok {
		base.Enabled = base.Enabled || v
		if v {
			base.AI.EnableSmartPromotion = true
		}
	}
	if v := os.Getenv("CACHE_OPERATION_TTLS"); v != "" {
		ttls, err := parseOperationTTLs(v)
		if err != nil {
			return CacheConfig{}, apperrors.Wrap("config.build_cache", apperrors.KindConfiguration,
				"invalid CACHE_OPERATION_TTLS", err)
		}
		for op, ttl := range ttls {
			base.OperationTTLs[op] = ttl
		}
	}

	if opts.CacheCustomJSON != "" {
		overridden, err := r.applyCacheOverride(base, opts.CacheCustomJSON)
		if err != nil {
			r.log.Warn("invalid cache custom JSON override, keeping base preset", logger.F("error", err.Error()))
		} else {
			base = overridden
		}
	}

	if base.Tiers.Small >= base.Tiers.Medium || base.Tiers.Medium >= base.Tiers.Large {
		r.log.Warn("cache text tier thresholds are not strictly ascending", logger.F("tiers", base.Tiers))
	}

	return base, nil
}

type cacheOverrideDoc struct {
	DefaultTTLS              *float64           `json:"default_ttl_s" validate:"omitempty,gt=0"`
	MemoryCacheSize          *int               `json:"memory_cache_size" validate:"omitempty,gt=0"`
	CompressionThresholdByte *int               `json:"compression_threshold_bytes" validate:"omitempty,gt=0"`
	CompressionLevel         *int               `json:"compression_level" validate:"omitempty,gte=1,lte=9"`
	TiersSmall               *int               `json:"tier_small" validate:"omitempty,gt=0"`
	TiersMedium              *int               `json:"tier_medium" validate:"omitempty,gt=0"`
	TiersLarge               *int               `json:"tier_large" validate:"omitempty,gt=0"`
	OperationTTLs            map[string]float64 `json:"operation_ttls"`
	TextHashThreshold        *int               `json:"text_hash_threshold" validate:"omitempty,gt=0"`
	HashAlgorithm            *string            `json:"hash_algorithm"`
	EnableSmartPromotion     *bool              `json:"enable_smart_promotion"`
	MaxTextLength            *int               `json:"max_text_length" validate:"omitempty,gt=0"`
}

func (r *Resolver) applyCacheOverride(base CacheConfig, raw string) (CacheConfig, error) {
	doc, err := decodeStrict[cacheOverrideDoc](raw)
	if err != nil {
		return base, err
	}
	if err := structValidator.Struct(doc); err != nil {
		return base, err
	}

	out := cloneCache(base)
	if doc.DefaultTTLS != nil {
		out.DefaultTTL = secondsToDuration(*doc.DefaultTTLS)
	}
	if doc.MemoryCacheSize != nil {
		out.MemoryCacheSize = *doc.MemoryCacheSize
	}
	if doc.CompressionThresholdByte != nil {
		out.CompressionThresholdByte = *doc.CompressionThresholdByte
	}
	if doc.CompressionLevel != nil {
		out.CompressionLevel = *doc.CompressionLevel
	}
	if doc.TiersSmall != nil {
		out.Tiers.Small = *doc.TiersSmall
	}
	if doc.TiersMedium != nil {
		out.Tiers.Medium = *doc.TiersMedium
	}
	if doc.TiersLarge != nil {
		out.Tiers.Large = *doc.TiersLarge
	}
	for opName, secs := range doc.OperationTTLs {
		out.OperationTTLs[Operation(opName)] = secondsToDuration(secs)
	}
	if doc.TextHashThreshold != nil {
		out.AI.TextHashThreshold = *doc.TextHashThreshold
	}
	if doc.HashAlgorithm != nil {
		out.AI.HashAlgorithm = *doc.HashAlgorithm
	}
	if doc.EnableSmartPromotion != nil {
		out.AI.EnableSmartPromotion = *doc.EnableSmartPromotion
	}
	if doc.MaxTextLength != nil {
		out.AI.MaxTextLength = *doc.MaxTextLength
	}

	return out, nil
}

func (r *Resolver) buildAI() AIConfig {
	cfg := AIConfig{Model: "default", Temperature: 0.7, BatchMax: 1, BatchMinSize: 0, Provider: "openai", MaxTokens: 1000}
	if v := os.Getenv("AI_MODEL"); v != "" {
		cfg.Model = v
	}
	if v, ok := r.envFloat("AI_TEMPERATURE"); ok {
		if v < 0.0 || v > 2.0 {
			r.log.Warn("AI_TEMPERATURE out of range [0,2], using default", logger.F("value", v))
		} else {
			cfg.Temperature = v
		}
	}
	if v := os.Getenv("AI_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("AI_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v, ok := r.envInt("AI_MAX_TOKENS"); ok && v > 0 {
		cfg.MaxTokens = v
	}
	return cfg
}

func (r *Resolver) buildHealth() HealthConfig {
	cfg := HealthConfig{
		DefaultTimeout:      5 * time.Second,
		PerComponentTimeout: map[string]time.Duration{},
		RetryCount:          1,
		BackoffBase:         200 * time.Millisecond,
	}
	if v, ok := r.envInt("HEALTH_CHECK_TIMEOUT_MS"); ok {
		if v <= 0 {
			r.log.Warn("HEALTH_CHECK_TIMEOUT_MS must be > 0, using default")
		} else {
			cfg.DefaultTimeout = time.Duration(v) * time.Millisecond
		}
	}
	if v, ok := r.envInt("HEALTH_CHECK_RETRY_COUNT"); ok {
		if v < 0 {
			r.log.Warn("HEALTH_CHECK_RETRY_COUNT must be >= 0, using default")
		} else {
			cfg.RetryCount = v
		}
	}
	if v := os.Getenv("HEALTH_CHECK_ENABLED_COMPONENTS"); v != "" {
		parts := strings.Split(v, ",")
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cfg.EnabledComponents = append(cfg.EnabledComponents, trimmed)
			}
		}
	}
	return cfg
}

func (r *Resolver) buildSecurity() SecurityConfig {
	cfg := SecurityConfig{}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}
	cfg.PrimaryAPIKey = os.Getenv("API_KEY")
	if v := os.Getenv("ADDITIONAL_API_KEYS"); v != "" {
		for _, k := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(k); trimmed != "" {
				cfg.AdditionalKeys = append(cfg.AdditionalKeys, trimmed)
			}
		}
	}
	return cfg
}

func (r *Resolver) buildLogging() LoggingConfig {
	cfg := LoggingConfig{Level: "info", Format: "json", Output: "stdout"}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("LOG_OUTPUT"); v != "" {
		cfg.Output = v
	}
	return cfg
}

func (r *Resolver) anyLegacyVarPresent() bool {
	for _, name := range legacyResilienceVars {
		if _, ok := os.LookupEnv(name); ok {
			return true
		}
	}
	for _, op := range allOperations {
		if _, ok := os.LookupEnv(strings.ToUpper(string(op)) + "_RESILIENCE_STRATEGY"); ok {
			return true
		}
	}
	return false
}

func (r *Resolver) envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.log.Warn("invalid integer env value, ignoring", logger.F("var", name), logger.F("value", v))
		return 0, false
	}
	return n, true
}

func (r *Resolver) envFloat(name string) (float64, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.log.Warn("invalid numeric env value, ignoring", logger.F("var", name), logger.F("value", v))
		return 0, false
	}
	return n, true
}

func (r *Resolver) envBool(name string) (bool, bool) {
	v := os.Getenv(name)
	if v == "" {
		return false, false
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	default:
		r.log.Warn("invalid boolean env value, ignoring", logger.F("var", name), logger.F("value", v))
		return false, false
	}
}

func (r *Resolver) envDurationSeconds(name string) (time.Duration, bool) {
	v, ok := r.envFloat(name)
	if !ok {
		return 0, false
	}
	return secondsToDuration(v), true
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func parseStrategy(s string) (Strategy, bool) {
	switch strings.ToLower(s) {
	case string(StrategyAggressive):
		return StrategyAggressive, true
	case string(StrategyBalanced):
		return StrategyBalanced, true
	case string(StrategyConservative):
		return StrategyConservative, true
	case string(StrategyCritical):
		return StrategyCritical, true
	default:
		return "", false
	}
}

func parseOperationTTLs(raw string) (map[Operation]time.Duration, error) {
	var m map[string]float64
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	out := make(map[Operation]time.Duration, len(m))
	for k, v := range m {
		if v <= 0 {
			return nil, fmt.Errorf("operation %q has non-positive TTL %v", k, v)
		}
		out[Operation(k)] = secondsToDuration(v)
	}
	return out, nil
}
