package ai

import (
	"context"
	"errors"
)

// MockClient is a scripted Client for use in textproc tests, grounded
// on the teacher's ai/providers/mock/provider.go. It is kept in the
// main package (not a _test.go file) so other packages' tests can
// import it directly.
type MockClient struct {
	Responses     []Response
	ResponseIndex int
	Err           error
	CallCount     int
	LastPrompt    string
	LastOptions   Options
}

// NewMockClient builds a client scripted with a single response: the
// first call returns content, later calls fail with "no more scripted
// responses".
func NewMockClient(content string) *MockClient {
	return &MockClient{Responses: []Response{{Content: content, Model: "mock-model"}}}
}

func (c *MockClient) GenerateResponse(ctx context.Context, prompt string, opts Options) (Response, error) {
	c.CallCount++
	c.LastPrompt = prompt
	c.LastOptions = opts

	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if c.Err != nil {
		return Response{}, c.Err
	}
	if c.ResponseIndex >= len(c.Responses) {
		return Response{}, errors.New("mock client: no more scripted responses")
	}
	resp := c.Responses[c.ResponseIndex]
	c.ResponseIndex++
	return resp, nil
}
