package cachekey_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/textcore/aicore/internal/cachekey"
	"github.com/textcore/aicore/internal/config"
)

func tiers() config.TextTiers {
	return config.TextTiers{Small: 256, Medium: 2048, Large: 16384}
}

func TestKeyStableAcrossOptionPermutation(t *testing.T) {
	g := cachekey.New(tiers())
	a := g.Key("hello", config.OpSummarize, map[string]interface{}{"max_length": 10, "style": "concise"}, "")
	b := g.Key("hello", config.OpSummarize, map[string]interface{}{"style": "concise", "max_length": 10}, "")
	assert.Equal(t, a, b)
}

func TestKeyDiffersByOperation(t *testing.T) {
	g := cachekey.New(tiers())
	a := g.Key("hello", config.OpSummarize, nil, "")
	b := g.Key("hello", config.OpSentiment, nil, "")
	assert.NotEqual(t, a, b)
}

func TestSmallTierEmbedsTextVerbatim(t *testing.T) {
	g := cachekey.New(tiers())
	key := g.Key("a short string", config.OpSummarize, nil, "")
	assert.Contains(t, key, "txt:a short string")
}

func TestLargeTierNeverLeaksLongSubstring(t *testing.T) {
	g := cachekey.New(tiers())
	text := strings.Repeat("x", 300)
	key := g.Key(text, config.OpSummarize, nil, "")
	assert.NotContains(t, key, strings.Repeat("x", 33))
}

func TestTierBoundaryIsHalfOpen(t *testing.T) {
	tt := tiers()
	exactlyAtSmall := strings.Repeat("a", tt.Small)
	assert.Equal(t, cachekey.TierMedium, cachekey.ClassifyTier(exactlyAtSmall, tt))

	justBelow := strings.Repeat("a", tt.Small-1)
	assert.Equal(t, cachekey.TierSmall, cachekey.ClassifyTier(justBelow, tt))
}

func TestQuestionAlwaysHashed(t *testing.T) {
	g := cachekey.New(tiers())
	key := g.Key("short", config.OpQA, nil, "what is this?")
	assert.NotContains(t, key, "what is this?")
	assert.NotContains(t, key, "q:|")
}

func TestEmptyQuestionLeavesFragmentEmpty(t *testing.T) {
	g := cachekey.New(tiers())
	key := g.Key("short", config.OpSummarize, nil, "")
	assert.True(t, strings.HasSuffix(key, "q:"))
}
