//go:build bedrock

package ai

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/textcore/aicore/internal/apperrors"
)

// Bedrock model identifiers carried over from the teacher's
// ai/providers/bedrock/models.go so callers don't have to hardcode
// provider-specific ARNs.
const (
	ModelClaude3Opus   = "anthropic.claude-3-opus-20240229-v1:0"
	ModelClaude3Sonnet = "anthropic.claude-3-sonnet-20240229-v1:0"
	ModelClaude3Haiku  = "anthropic.claude-3-haiku-20240307-v1:0"
	ModelTitanTextExpress = "amazon.titan-text-express-v1"
	ModelLlama3_70B    = "meta.llama3-70b-instruct-v1:0"
)

// BedrockClient implements Client against AWS Bedrock's Converse API,
// adapted from the teacher's ai/providers/bedrock/client.go. It is
// built only with -tags bedrock, same as the teacher, since it pulls
// in the full AWS SDK v2 dependency tree.
type BedrockClient struct {
	runtime *bedrockruntime.Client
}

// NewBedrockClient wraps an already-configured bedrockruntime.Client
// (constructed from aws.Config via config.LoadDefaultConfig upstream).
func NewBedrockClient(runtime *bedrockruntime.Client) *BedrockClient {
	return &BedrockClient{runtime: runtime}
}

func (c *BedrockClient) GenerateResponse(ctx context.Context, prompt string, opts Options) (Response, error) {
	messages := []types.Message{
		{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: prompt}},
		},
	}

	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(opts.Model),
		Messages: messages,
	}
	if opts.SystemPrompt != "" {
		input.System = []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: opts.SystemPrompt}}
	}

	inference := &types.InferenceConfiguration{}
	configured := false
	if opts.MaxTokens > 0 {
		inference.MaxTokens = aws.Int32(int32(opts.MaxTokens))
		configured = true
	}
	if opts.Temperature > 0 {
		inference.Temperature = aws.Float32(float32(opts.Temperature))
		configured = true
	}
	if configured {
		input.InferenceConfig = inference
	}

	output, err := c.runtime.Converse(ctx, input)
	if err != nil {
		return Response{}, apperrors.Wrap("ai.bedrock", apperrors.KindTransientInfrastructure, "bedrock converse error", err)
	}
	if output.Output == nil {
		return Response{}, apperrors.New("ai.bedrock", apperrors.KindPermanentInfrastructure, "no output in bedrock response")
	}

	var content string
	switch v := output.Output.(type) {
	case *types.ConverseOutputMemberMessage:
		for _, block := range v.Value.Content {
			if b, ok := block.(*types.ContentBlockMemberText); ok {
				content += b.Value
			}
		}
	default:
		return Response{}, apperrors.New("ai.bedrock", apperrors.KindPermanentInfrastructure, fmt.Sprintf("unexpected output type %T from bedrock", v))
	}
	if content == "" {
		return Response{}, apperrors.New("ai.bedrock", apperrors.KindPermanentInfrastructure, "no text content in bedrock response")
	}

	result := Response{Content: content, Model: opts.Model}
	if output.Usage != nil {
		result.Usage = TokenUsage{
			PromptTokens:     int(*output.Usage.InputTokens),
			CompletionTokens: int(*output.Usage.OutputTokens),
			TotalTokens:      int(*output.Usage.TotalTokens),
		}
	}
	return result, nil
}
