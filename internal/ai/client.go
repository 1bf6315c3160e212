// Package ai provides the model client boundary (C10): the single
// point where the Text Processor's resilience-wrapped calls reach an
// actual language model provider. Adapted from the teacher's
// ai/client.go OpenAI implementation, generalized behind the Client
// interface and reclassified to this module's apperrors taxonomy so
// the resilience orchestrator can tell transient failures from
// permanent ones.
package ai

import (
	"context"
)

// Options mirrors the subset of model invocation parameters the Text
// Processor cares about.
type Options struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// Response is a model's raw completion plus token accounting.
type Response struct {
	Content string
	Model   string
	Usage   TokenUsage
}

// TokenUsage tracks token accounting for a single completion.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client generates a completion for a prompt. Implementations must
// classify failures using apperrors Kinds: timeouts/5xx/connection
// resets as KindTransientInfrastructure, 400-class as
// KindPermanentInfrastructure, explicit rate limiting as
// KindRateLimit — the resilience orchestrator dispatches on these.
type Client interface {
	GenerateResponse(ctx context.Context, prompt string, opts Options) (Response, error)
}
