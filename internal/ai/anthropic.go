package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/textcore/aicore/internal/apperrors"
)

const (
	anthropicBaseURL    = "https://api.anthropic.com/v1"
	anthropicAPIVersion = "2023-06-01"
)

// AnthropicClient implements Client against Anthropic's Messages API,
// adapted from the teacher's ai/providers/anthropic/client.go — same
// endpoint, same required api-version header, with the distributed
// tracing spans dropped (this module has no telemetry layer) and
// errors reclassified into apperrors Kinds.
type AnthropicClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewAnthropicClient creates a client. An empty apiKey falls back to
// the ANTHROPIC_API_KEY environment variable.
func NewAnthropicClient(apiKey string) *AnthropicClient {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	return &AnthropicClient{
		apiKey:     apiKey,
		baseURL:    anthropicBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *AnthropicClient) GenerateResponse(ctx context.Context, prompt string, opts Options) (Response, error) {
	if c.apiKey == "" {
		return Response{}, apperrors.New("ai.anthropic", apperrors.KindConfiguration, "Anthropic API key not configured")
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	reqBody := map[string]interface{}{
		"model":      opts.Model,
		"max_tokens": maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	if opts.SystemPrompt != "" {
		reqBody["system"] = opts.SystemPrompt
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return Response{}, apperrors.Wrap("ai.anthropic", apperrors.KindPermanentInfrastructure, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return Response{}, apperrors.Wrap("ai.anthropic", apperrors.KindPermanentInfrastructure, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, apperrors.Wrap("ai.anthropic", apperrors.KindTransientInfrastructure, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, apperrors.Wrap("ai.anthropic", apperrors.KindTransientInfrastructure, "failed to read response", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return Response{}, apperrors.New("ai.anthropic", apperrors.KindRateLimit, fmt.Sprintf("rate limited (status %d)", resp.StatusCode))
	}
	if resp.StatusCode >= 500 {
		return Response{}, apperrors.New("ai.anthropic", apperrors.KindTransientInfrastructure, fmt.Sprintf("upstream error (status %d): %s", resp.StatusCode, string(body)))
	}
	if resp.StatusCode >= 400 {
		return Response{}, apperrors.New("ai.anthropic", apperrors.KindPermanentInfrastructure, fmt.Sprintf("request rejected (status %d): %s", resp.StatusCode, string(body)))
	}

	var parsed struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		Model string `json:"model"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Response{}, apperrors.Wrap("ai.anthropic", apperrors.KindPermanentInfrastructure, "failed to parse response", err)
	}
	if len(parsed.Content) == 0 {
		return Response{}, apperrors.New("ai.anthropic", apperrors.KindPermanentInfrastructure, "no content in response")
	}

	return Response{
		Content: parsed.Content[0].Text,
		Model:   parsed.Model,
		Usage: TokenUsage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
	}, nil
}
