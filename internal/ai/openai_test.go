package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textcore/aicore/internal/apperrors"
)

func TestOpenAIGenerateResponseSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"hello there"}}],"model":"gpt-4","usage":{"prompt_tokens":5,"completion_tokens":3,"total_tokens":8}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("test-key")
	c.baseURL = srv.URL

	resp, err := c.GenerateResponse(context.Background(), "hi", Options{Model: "gpt-4"})
	require.NoError(t, err)
	assert.Equal(t, "hello there", resp.Content)
	assert.Equal(t, 8, resp.Usage.TotalTokens)
}

func TestOpenAIGenerateResponseRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("test-key")
	c.baseURL = srv.URL

	_, err := c.GenerateResponse(context.Background(), "hi", Options{Model: "gpt-4"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindRateLimit))
}

func TestOpenAIGenerateResponseServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewOpenAIClient("test-key")
	c.baseURL = srv.URL

	_, err := c.GenerateResponse(context.Background(), "hi", Options{Model: "gpt-4"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindTransientInfrastructure))
}

func TestOpenAIGenerateResponseMissingKey(t *testing.T) {
	c := &OpenAIClient{baseURL: "https://example.invalid", httpClient: http.DefaultClient}
	_, err := c.GenerateResponse(context.Background(), "hi", Options{Model: "gpt-4"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindConfiguration))
}
