// Package textproc implements the end-to-end text-processing pipeline
// (C7): validate, sanitize, key, cache, prompt, resilience-wrapped
// model call, validate output, cache store, and graceful fallback on
// availability failures. It wires together every other internal
// package the way the teacher's ai_agent.go wires its own pipeline
// stages, but generalized to the operation set this module supports.
package textproc

import (
	"github.com/textcore/aicore/internal/config"
)

// Options is the request-scoped parameter bag (spec.md §3
// TextProcessingRequest.options).
type Options struct {
	MaxLength    int
	MaxPoints    int
	NumQuestions int
	Style        string
}

// ToMap renders Options as the map the cache-key generator hashes.
// Zero-valued fields are omitted so two requests that didn't set a
// field hash identically to one that set it to the zero value.
func (o Options) ToMap() map[string]interface{} {
	m := map[string]interface{}{}
	if o.MaxLength != 0 {
		m["max_length"] = o.MaxLength
	}
	if o.MaxPoints != 0 {
		m["max_points"] = o.MaxPoints
	}
	if o.NumQuestions != 0 {
		m["num_questions"] = o.NumQuestions
	}
	if o.Style != "" {
		m["style"] = o.Style
	}
	return m
}

// Request is one text-processing invocation.
type Request struct {
	Text      string
	Operation config.Operation
	Options   Options
	Question  string
}

// Sentiment mirrors validate.Sentiment in the response shape spec.md
// §3 requires for the SENTIMENT operation.
type Sentiment struct {
	Label       string  `json:"label"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// Metadata is the response's bag of secondary fields.
type Metadata struct {
	ServiceStatus string `json:"service_status"`
	FallbackUsed  bool   `json:"fallback_used"`
	WordCount     int    `json:"word_count"`
}

// Response is the result of one Process call. Exactly one of
// Result/Sentiment/KeyPoints/Questions is populated, selected by
// Operation, per spec.md §3.
type Response struct {
	Operation        config.Operation `json:"operation"`
	Success          bool             `json:"success"`
	Result           string           `json:"result,omitempty"`
	Sentiment        *Sentiment       `json:"sentiment,omitempty"`
	KeyPoints        []string         `json:"key_points,omitempty"`
	Questions        []string         `json:"questions,omitempty"`
	ProcessingTimeMs float64          `json:"processing_time_ms"`
	CacheHit         bool             `json:"cache_hit"`
	Metadata         Metadata         `json:"metadata"`
}
