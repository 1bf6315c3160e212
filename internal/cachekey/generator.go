// Package cachekey builds deterministic, collision-resistant cache keys
// for the text-processing pipeline (spec.md §4.2). Keys are stable
// across processes given equal inputs, and equal regardless of option
// map key order.
package cachekey

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/textcore/aicore/internal/config"
)

// Tier classifies input text by size, deciding whether the key
// generator embeds the text verbatim or a hash of it.
type Tier string

const (
	TierSmall  Tier = "small"
	TierMedium Tier = "medium"
	TierLarge  Tier = "large"
	TierXLarge Tier = "xlarge"
)

// ClassifyTier classifies text by rune-normalized length against the
// configured boundaries. Boundaries are half-open [small, medium).
func ClassifyTier(text string, tiers config.TextTiers) Tier {
	n := len([]rune(text))
	switch {
	case n < tiers.Small:
		return TierSmall
	case n < tiers.Medium:
		return TierMedium
	case n < tiers.Large:
		return TierLarge
	default:
		return TierXLarge
	}
}

// Generator produces cache keys for the tiered cache (C3).
type Generator struct {
	tiers config.TextTiers
}

// New creates a Generator bound to a fixed set of tier boundaries.
func New(tiers config.TextTiers) *Generator {
	return &Generator{tiers: tiers}
}

// Key builds the cache key for a request. normalizedText must already
// have gone through whitespace normalization (the sanitizer's job);
// Key only decides verbatim-vs-hash based on tier.
func (g *Generator) Key(normalizedText string, op config.Operation, options map[string]interface{}, question string) string {
	tier := ClassifyTier(normalizedText, g.tiers)

	var textPart string
	if tier == TierSmall {
		textPart = normalizedText
	} else {
		textPart = hashHex(normalizedText)
	}

	optsJSON := canonicalJSON(options)
	optsHash := hashHex(optsJSON)[:8]

	var qPart string
	if question != "" {
		qPart = hashHex(question)
	}

	return fmt.Sprintf("ai_cache:op:%s|txt:%s|opts:%s|q:%s", op, textPart, optsHash, qPart)
}

// hashHex returns the lowercase hex SHA-256 digest of s. SHA-256 is
// spec.md's default hash algorithm; full-length hex, never truncated
// except for the embedded options fragment.
func hashHex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// canonicalJSON renders a normalized options bag: keys sorted, nested
// maps sorted recursively, so permuted option maps marshal identically.
func canonicalJSON(options map[string]interface{}) string {
	var b strings.Builder
	writeCanonical(&b, options)
	return b.String()
}

func writeCanonical(b *strings.Builder, v interface{}) {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			b.Write(kb)
			b.WriteByte(':')
			writeCanonical(b, val[k])
		}
		b.WriteByte('}')
	case []interface{}:
		b.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, item)
		}
		b.WriteByte(']')
	default:
		vb, _ := json.Marshal(val)
		b.Write(vb)
	}
}
