package ai

import "strings"

// NewClient selects a Client implementation by provider name
// ("openai", "anthropic", or any other value falls back to OpenAI,
// matching the teacher's default-provider behavior in ai/client.go).
// Bedrock is intentionally excluded here since it only builds under
// the bedrock tag; callers needing it construct BedrockClient
// directly.
func NewClient(provider, apiKey string) Client {
	switch strings.ToLower(provider) {
	case "anthropic":
		return NewAnthropicClient(apiKey)
	case "openai", "":
		return NewOpenAIClient(apiKey)
	default:
		return NewOpenAIClient(apiKey)
	}
}
