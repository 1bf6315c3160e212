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

// OpenAIClient implements Client against the OpenAI chat completions
// API. Adapted directly from the teacher's ai/client.go; the main
// change is that HTTP/decode failures are now classified into this
// module's apperrors Kinds instead of returned as bare fmt.Errorf
// values, so the resilience orchestrator can dispatch on them.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIClient creates a client. An empty apiKey falls back to the
// OPENAI_API_KEY environment variable.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	return &OpenAIClient{
		apiKey:     apiKey,
		baseURL:    "https://api.openai.com/v1",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *OpenAIClient) GenerateResponse(ctx context.Context, prompt string, opts Options) (Response, error) {
	if c.apiKey == "" {
		return Response{}, apperrors.New("ai.openai", apperrors.KindConfiguration, "OpenAI API key not configured")
	}

	messages := []map[string]string{}
	if opts.SystemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": opts.SystemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": prompt})

	reqBody := map[string]interface{}{
		"model":       opts.Model,
		"messages":    messages,
		"temperature": opts.Temperature,
		"max_tokens":  opts.MaxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return Response{}, apperrors.Wrap("ai.openai", apperrors.KindPermanentInfrastructure, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return Response{}, apperrors.Wrap("ai.openai", apperrors.KindPermanentInfrastructure, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, apperrors.Wrap("ai.openai", apperrors.KindTransientInfrastructure, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, apperrors.Wrap("ai.openai", apperrors.KindTransientInfrastructure, "failed to read response", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return Response{}, apperrors.New("ai.openai", apperrors.KindRateLimit, fmt.Sprintf("rate limited (status %d)", resp.StatusCode))
	}
	if resp.StatusCode >= 500 {
		return Response{}, apperrors.New("ai.openai", apperrors.KindTransientInfrastructure, fmt.Sprintf("upstream error (status %d): %s", resp.StatusCode, string(body)))
	}
	if resp.StatusCode >= 400 {
		return Response{}, apperrors.New("ai.openai", apperrors.KindPermanentInfrastructure, fmt.Sprintf("request rejected (status %d): %s", resp.StatusCode, string(body)))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
		Model string `json:"model"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Response{}, apperrors.Wrap("ai.openai", apperrors.KindPermanentInfrastructure, "failed to parse response", err)
	}
	if len(parsed.Choices) == 0 {
		return Response{}, apperrors.New("ai.openai", apperrors.KindPermanentInfrastructure, "no choices in response")
	}

	return Response{
		Content: parsed.Choices[0].Message.Content,
		Model:   parsed.Model,
		Usage: TokenUsage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
	}, nil
}
