package textproc

import (
	"encoding/json"
	"strings"

	"github.com/textcore/aicore/internal/apperrors"
	"github.com/textcore/aicore/internal/config"
	"github.com/textcore/aicore/internal/validate"
)

// modelResult is the operation-shaped payload extracted from a raw
// model completion, before validation.
type modelResult struct {
	Result    string
	Sentiment *Sentiment
	KeyPoints []string
	Questions []string
}

// parseModelOutput enforces the "type shape matches operation" check
// from spec.md §4.6 item 1: a completion that can't be parsed into the
// expected shape is a permanent failure, not a retryable one.
func parseModelOutput(op config.Operation, content string) (modelResult, error) {
	switch op {
	case config.OpSummarize, config.OpQA:
		return modelResult{Result: strings.TrimSpace(content)}, nil
	case config.OpKeyPoints:
		return modelResult{KeyPoints: parseListLines(content)}, nil
	case config.OpQuestions:
		return modelResult{Questions: parseListLines(content)}, nil
	case config.OpSentiment:
		s, err := parseSentimentJSON(content)
		if err != nil {
			return modelResult{}, err
		}
		return modelResult{Sentiment: &s}, nil
	default:
		return modelResult{}, apperrors.New("textproc.parse", apperrors.KindPermanentInfrastructure, "unsupported operation").
			WithContext("operation", string(op))
	}
}

// parseListLines splits a numbered or bulleted completion into its
// individual items, stripping common list markers line by line.
func parseListLines(content string) []string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = stripListMarker(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func stripListMarker(line string) string {
	trimmed := strings.TrimLeft(line, "0123456789")
	trimmed = strings.TrimPrefix(trimmed, ".")
	trimmed = strings.TrimPrefix(trimmed, ")")
	trimmed = strings.TrimPrefix(trimmed, "-")
	trimmed = strings.TrimPrefix(trimmed, "*")
	return strings.TrimSpace(trimmed)
}

// parseSentimentJSON extracts the first JSON object in content and
// decodes it into a Sentiment. Models are prompted to answer in JSON;
// a non-JSON or malformed completion is a shape mismatch, matching
// spec.md §4.6 item 1.
func parseSentimentJSON(content string) (Sentiment, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return Sentiment{}, apperrors.New("textproc.parse", apperrors.KindPermanentInfrastructure, "sentiment response is not a JSON object")
	}
	var s Sentiment
	if err := json.Unmarshal([]byte(content[start:end+1]), &s); err != nil {
		return Sentiment{}, apperrors.Wrap("textproc.parse", apperrors.KindPermanentInfrastructure, "failed to parse sentiment JSON", err)
	}
	return s, nil
}

// validateParsed runs C6 over the parsed shape.
func validateParsed(v *validate.Validator, op config.Operation, r modelResult) error {
	switch op {
	case config.OpSummarize, config.OpQA:
		return v.ValidateText(r.Result, op)
	case config.OpKeyPoints:
		return v.ValidateList(r.KeyPoints, op)
	case config.OpQuestions:
		return v.ValidateList(r.Questions, op)
	case config.OpSentiment:
		return v.ValidateSentiment(validate.Sentiment{
			Label:       r.Sentiment.Label,
			Confidence:  r.Sentiment.Confidence,
			Explanation: r.Sentiment.Explanation,
		})
	default:
		return apperrors.New("textproc.validate", apperrors.KindPermanentInfrastructure, "unsupported operation")
	}
}
