package textproc_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textcore/aicore/internal/ai"
	"github.com/textcore/aicore/internal/apperrors"
	"github.com/textcore/aicore/internal/cache"
	"github.com/textcore/aicore/internal/cachekey"
	"github.com/textcore/aicore/internal/config"
	"github.com/textcore/aicore/internal/resilience"
	"github.com/textcore/aicore/internal/sanitize"
	"github.com/textcore/aicore/internal/textproc"
	"github.com/textcore/aicore/internal/validate"
)

func fastOverrides() *config.RetryOverride {
	maxAttempts := 2
	expMin := time.Millisecond
	expMax := 3 * time.Millisecond
	maxDelay := 5 * time.Millisecond
	jitterOff := false
	return &config.RetryOverride{
		MaxAttempts:   &maxAttempts,
		ExpMin:        &expMin,
		ExpMax:        &expMax,
		MaxDelay:      &maxDelay,
		JitterEnabled: &jitterOff,
	}
}

func testConfig() config.RuntimeConfig {
	return config.RuntimeConfig{
		AI: config.AIConfig{Model: "test-model", Temperature: 0.5, MaxTokens: 200},
		Resilience: config.ResilienceConfig{
			DefaultStrategy:       config.StrategyBalanced,
			ResilienceEnabled:     true,
			RetryEnabled:          true,
			CircuitBreakerEnabled: true,
		},
		Cache: config.CacheConfig{
			DefaultTTL:      time.Minute,
			MemoryCacheSize: 64,
			Tiers:           config.TextTiers{Small: 50, Medium: 500, Large: 5000},
			AI:              config.AICacheConfig{MaxTextLength: 10000},
		},
	}
}

type fixture struct {
	proc   *textproc.Processor
	client *ai.MockClient
}

func newFixture(cfg config.RuntimeConfig, content string) fixture {
	c := cache.New(cfg.Cache, nil, nil)
	keys := cachekey.New(cfg.Cache.Tiers)
	s := sanitize.New(cfg.Cache.AI.MaxTextLength)
	v := validate.New()
	o := resilience.New(nil)
	client := ai.NewMockClient(content)
	p := textproc.New(cfg, keys, c, s, v, o, client, nil)
	return fixture{proc: p, client: client}
}

func TestProcessSummarizeHappyPath(t *testing.T) {
	f := newFixture(testConfig(), "a short summary")
	resp, err := f.proc.Process(context.Background(), textproc.Request{
		Text:      "Some long article text to summarize.",
		Operation: config.OpSummarize,
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "a short summary", resp.Result)
	assert.False(t, resp.CacheHit)
	assert.Equal(t, "normal", resp.Metadata.ServiceStatus)
	assert.Equal(t, 1, f.client.CallCount)
}

func TestProcessCachesSecondCall(t *testing.T) {
	f := newFixture(testConfig(), "cached summary")
	req := textproc.Request{Text: "Repeat this text please.", Operation: config.OpSummarize}

	_, err := f.proc.Process(context.Background(), req)
	require.NoError(t, err)

	resp2, err := f.proc.Process(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp2.CacheHit)
	assert.Equal(t, 1, f.client.CallCount, "second call must be served from cache, not the model")
}

func TestProcessRejectsUnsupportedOperation(t *testing.T) {
	f := newFixture(testConfig(), "x")
	_, err := f.proc.Process(context.Background(), textproc.Request{Text: "hi", Operation: config.Operation("translate")})
	require.Error(t, err)
}

func TestProcessRejectsEmptyText(t *testing.T) {
	f := newFixture(testConfig(), "x")
	_, err := f.proc.Process(context.Background(), textproc.Request{Text: "   ", Operation: config.OpSummarize})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestProcessQARequiresQuestion(t *testing.T) {
	f := newFixture(testConfig(), "x")
	_, err := f.proc.Process(context.Background(), textproc.Request{Text: "some context", Operation: config.OpQA})
	require.Error(t, err)
}

func TestProcessSentimentParsesJSON(t *testing.T) {
	f := newFixture(testConfig(), `{"label":"positive","confidence":0.8,"explanation":"upbeat tone"}`)
	resp, err := f.proc.Process(context.Background(), textproc.Request{Text: "great news today", Operation: config.OpSentiment})
	require.NoError(t, err)
	require.NotNil(t, resp.Sentiment)
	assert.Equal(t, "positive", resp.Sentiment.Label)
	assert.InDelta(t, 0.8, resp.Sentiment.Confidence, 0.0001)
}

func TestProcessSentimentInvalidLabelPropagates(t *testing.T) {
	f := newFixture(testConfig(), `{"label":"ecstatic","confidence":0.8,"explanation":"x"}`)
	_, err := f.proc.Process(context.Background(), textproc.Request{Text: "great news today", Operation: config.OpSentiment})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestProcessFallsBackOnExhaustedRetries(t *testing.T) {
	cfg := testConfig()
	cfg.Resilience.Overrides = fastOverrides()

	c := cache.New(cfg.Cache, nil, nil)
	keys := cachekey.New(cfg.Cache.Tiers)
	s := sanitize.New(cfg.Cache.AI.MaxTextLength)
	v := validate.New()
	o := resilience.New(nil)
	client := &ai.MockClient{Err: apperrors.New("test", apperrors.KindTransientInfrastructure, "down")}
	p := textproc.New(cfg, keys, c, s, v, o, client, nil)

	resp, err := p.Process(context.Background(), textproc.Request{Text: "will this work", Operation: config.OpSentiment})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "degraded", resp.Metadata.ServiceStatus)
	assert.True(t, resp.Metadata.FallbackUsed)
	require.NotNil(t, resp.Sentiment)
	assert.Equal(t, "neutral", resp.Sentiment.Label)
}

func TestProcessKeyPointsFallbackIsEmptyList(t *testing.T) {
	cfg := testConfig()
	cfg.Resilience.Overrides = fastOverrides()
	c := cache.New(cfg.Cache, nil, nil)
	keys := cachekey.New(cfg.Cache.Tiers)
	s := sanitize.New(cfg.Cache.AI.MaxTextLength)
	v := validate.New()
	o := resilience.New(nil)
	client := &ai.MockClient{Err: apperrors.New("test", apperrors.KindTransientInfrastructure, "down")}
	p := textproc.New(cfg, keys, c, s, v, o, client, nil)

	resp, err := p.Process(context.Background(), textproc.Request{Text: "will this work", Operation: config.OpKeyPoints})
	require.NoError(t, err)
	assert.Equal(t, []string{}, resp.KeyPoints)
}

func TestProcessPermanentModelErrorPropagatesNotFallback(t *testing.T) {
	cfg := testConfig()
	c := cache.New(cfg.Cache, nil, nil)
	keys := cachekey.New(cfg.Cache.Tiers)
	s := sanitize.New(cfg.Cache.AI.MaxTextLength)
	v := validate.New()
	o := resilience.New(nil)
	client := &ai.MockClient{Err: apperrors.New("test", apperrors.KindPermanentInfrastructure, "bad request")}
	p := textproc.New(cfg, keys, c, s, v, o, client, nil)

	_, err := p.Process(context.Background(), textproc.Request{Text: "will this work", Operation: config.OpSummarize})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindPermanentInfrastructure))
}
