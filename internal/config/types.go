// Package config resolves a single immutable RuntimeConfig from presets,
// environment variables and optional JSON overrides. Other components
// receive a built RuntimeConfig by constructor injection. Outside this
// package, the environment is read only by the internal/ai clients
// (OPENAI_API_KEY / ANTHROPIC_API_KEY when no key is passed in) and by
// cmd/textcore-server for its own startup settings.
package config

import "time"

// Operation identifies one of the supported text-processing tasks.
type Operation string

const (
	OpSummarize Operation = "summarize"
	OpSentiment Operation = "sentiment"
	OpKeyPoints Operation = "key_points"
	OpQuestions Operation = "questions"
	OpQA        Operation = "qa"
)

// Strategy is a resilience parameter bundle applied per operation.
type Strategy string

const (
	StrategyAggressive   Strategy = "aggressive"
	StrategyBalanced     Strategy = "balanced"
	StrategyConservative Strategy = "conservative"
	StrategyCritical     Strategy = "critical"
)

// RetryParams carries the concrete numbers a Strategy resolves to.
type RetryParams struct {
	MaxAttempts        int
	MaxDelay           time.Duration
	ExpMin             time.Duration
	ExpMax             time.Duration
	ExpMultiplier      float64
	JitterEnabled      bool
	JitterMax          time.Duration
	FailureThreshold   int
	RecoveryTimeout    time.Duration
	HalfOpenMaxCalls   int
	PerAttemptTimeout  time.Duration
}

// strategyTable resolves each Strategy tag to concrete RetryParams. The
// four tiers trade latency for durability: AGGRESSIVE favors fast
// failure, CRITICAL favors exhausting every option before giving up.
var strategyTable = map[Strategy]RetryParams{
	StrategyAggressive: {
		MaxAttempts: 2, MaxDelay: 2 * time.Second,
		ExpMin: 100 * time.Millisecond, ExpMax: 2 * time.Second, ExpMultiplier: 2.0,
		JitterEnabled: true, JitterMax: 100 * time.Millisecond,
		FailureThreshold: 3, RecoveryTimeout: 10 * time.Second, HalfOpenMaxCalls: 1,
		PerAttemptTimeout: 3 * time.Second,
	},
	StrategyBalanced: {
		MaxAttempts: 3, MaxDelay: 5 * time.Second,
		ExpMin: 200 * time.Millisecond, ExpMax: 5 * time.Second, ExpMultiplier: 2.0,
		JitterEnabled: true, JitterMax: 250 * time.Millisecond,
		FailureThreshold: 5, RecoveryTimeout: 30 * time.Second, HalfOpenMaxCalls: 2,
		PerAttemptTimeout: 5 * time.Second,
	},
	StrategyConservative: {
		MaxAttempts: 5, MaxDelay: 15 * time.Second,
		ExpMin: 500 * time.Millisecond, ExpMax: 15 * time.Second, ExpMultiplier: 2.5,
		JitterEnabled: true, JitterMax: 500 * time.Millisecond,
		FailureThreshold: 8, RecoveryTimeout: 60 * time.Second, HalfOpenMaxCalls: 3,
		PerAttemptTimeout: 10 * time.Second,
	},
	StrategyCritical: {
		MaxAttempts: 8, MaxDelay: 30 * time.Second,
		ExpMin: 1 * time.Second, ExpMax: 30 * time.Second, ExpMultiplier: 2.0,
		JitterEnabled: true, JitterMax: 1 * time.Second,
		FailureThreshold: 10, RecoveryTimeout: 120 * time.Second, HalfOpenMaxCalls: 5,
		PerAttemptTimeout: 20 * time.Second,
	},
}

// Params resolves a Strategy tag to its concrete RetryParams. Unknown
// tags resolve to BALANCED.
func (s Strategy) Params() RetryParams {
	if p, ok := strategyTable[s]; ok {
		return p
	}
	return strategyTable[StrategyBalanced]
}

// ResilienceConfig is the resilience subsection of RuntimeConfig.
type ResilienceConfig struct {
	Preset                string
	DefaultStrategy       Strategy
	OperationStrategies   map[Operation]Strategy
	Retry                 RetryParams
	ResilienceEnabled     bool
	RetryEnabled          bool
	CircuitBreakerEnabled bool
	LegacyMode            bool

	// Overrides holds explicit numeric fields from a custom JSON
	// override (or nil in legacy mode, where Retry already carries the
	// fully resolved flat bundle). Non-nil fields win over whatever the
	// resolved strategy's table entry says.
	Overrides *RetryOverride
}

// RetryOverride carries the subset of RetryParams fields an admin
// explicitly set via a custom JSON override. A nil field means "defer
// to the strategy table".
type RetryOverride struct {
	MaxAttempts       *int
	MaxDelay          *time.Duration
	ExpMin            *time.Duration
	ExpMax            *time.Duration
	ExpMultiplier     *float64
	JitterEnabled     *bool
	JitterMax         *time.Duration
	FailureThreshold  *int
	RecoveryTimeout   *time.Duration
	HalfOpenMaxCalls  *int
	PerAttemptTimeout *time.Duration
}

func (o *RetryOverride) apply(p RetryParams) RetryParams {
	if o == nil {
		return p
	}
	if o.MaxAttempts != nil {
		p.MaxAttempts = *o.MaxAttempts
	}
	if o.MaxDelay != nil {
		p.MaxDelay = *o.MaxDelay
	}
	if o.ExpMin != nil {
		p.ExpMin = *o.ExpMin
	}
	if o.ExpMax != nil {
		p.ExpMax = *o.ExpMax
	}
	if p.ExpMin > p.ExpMax {
		p.ExpMin = p.ExpMax
	}
	if o.ExpMultiplier != nil {
		p.ExpMultiplier = *o.ExpMultiplier
	}
	if o.JitterEnabled != nil {
		p.JitterEnabled = *o.JitterEnabled
	}
	if o.JitterMax != nil {
		p.JitterMax = *o.JitterMax
	}
	if o.FailureThreshold != nil {
		p.FailureThreshold = *o.FailureThreshold
	}
	if o.RecoveryTimeout != nil {
		p.RecoveryTimeout = *o.RecoveryTimeout
	}
	if o.HalfOpenMaxCalls != nil {
		p.HalfOpenMaxCalls = *o.HalfOpenMaxCalls
	}
	if o.PerAttemptTimeout != nil {
		p.PerAttemptTimeout = *o.PerAttemptTimeout
	}
	return p
}

// StrategyFor resolves the effective Strategy for an operation: its
// per-operation override if present, else the default strategy.
func (r ResilienceConfig) StrategyFor(op Operation) Strategy {
	if s, ok := r.OperationStrategies[op]; ok {
		return s
	}
	return r.DefaultStrategy
}

// TextTiers are the char-count boundaries used by the key generator to
// classify input text size. Boundaries are half-open [small, medium).
type TextTiers struct {
	Small  int
	Medium int
	Large  int
}

// AICacheConfig is the optional AI-specific cache subsection.
type AICacheConfig struct {
	TextHashThreshold    int
	HashAlgorithm        string
	EnableSmartPromotion bool
	MaxTextLength        int
}

// CacheConfig is the cache subsection of RuntimeConfig.
type CacheConfig struct {
	Preset                   string
	RemoteURL                string
	Password                 string
	TLSCertFile              string
	TLSKeyFile               string
	DefaultTTL               time.Duration
	MemoryCacheSize          int
	CompressionThresholdByte int
	CompressionLevel         int
	Tiers                    TextTiers
	OperationTTLs            map[Operation]time.Duration
	AI                       AICacheConfig
	Enabled                  bool
}

// HealthConfig is the health-check subsection of RuntimeConfig.
type HealthConfig struct {
	DefaultTimeout      time.Duration
	PerComponentTimeout map[string]time.Duration
	RetryCount          int
	BackoffBase         time.Duration
	EnabledComponents   []string
}

// SecurityConfig is the security subsection of RuntimeConfig.
type SecurityConfig struct {
	AllowedOrigins []string
	PrimaryAPIKey  string
	AdditionalKeys []string
}

// AIConfig is the model-invocation subsection of RuntimeConfig.
type AIConfig struct {
	Model        string
	Temperature  float64
	BatchMax     int
	BatchMinSize int
	Provider     string
	APIKey       string
	MaxTokens    int
}

// LoggingConfig describes how the process-wide Logger is constructed.
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// RuntimeConfig is the immutable, fully-resolved configuration for one
// process lifetime. It is produced once by Resolver.Build and never
// mutated afterward; a reload produces a new instance.
type RuntimeConfig struct {
	AI         AIConfig
	Resilience ResilienceConfig
	Cache      CacheConfig
	Health     HealthConfig
	Security   SecurityConfig
	Logging    LoggingConfig
}

// ResilienceFor resolves the effective RetryParams for an operation
// (spec.md §4.1 resilience_for). Unknown operations fall back to the
// default strategy's params. In legacy mode the flat env-derived bundle
// applies uniformly to every operation.
func (c RuntimeConfig) ResilienceFor(op Operation) RetryParams {
	rc := c.Resilience
	if rc.LegacyMode {
		return rc.Retry
	}
	return rc.Overrides.apply(rc.StrategyFor(op).Params())
}
