package textproc

import "github.com/textcore/aicore/internal/config"

const unavailableMessage = "The requested content could not be generated because the service is temporarily unavailable. Please try again shortly."

// genericFollowUpQuestions are the two fixed questions returned for a
// degraded QUESTIONS request. Kept as constants, not a config field,
// per the documented decision in DESIGN.md.
var genericFollowUpQuestions = []string{
	"What additional context would help clarify this topic?",
	"Are there related aspects of this subject worth exploring further?",
}

// defaultFallback builds the fixed, operation-shaped degraded response
// spec.md §4.7 mandates when no cached value is available to reuse.
func defaultFallback(op config.Operation) Response {
	resp := Response{
		Operation: op,
		Success:   true,
		Metadata: Metadata{
			ServiceStatus: "degraded",
			FallbackUsed:  true,
		},
	}
	switch op {
	case config.OpSummarize, config.OpQA:
		resp.Result = unavailableMessage
	case config.OpSentiment:
		resp.Sentiment = &Sentiment{Label: "neutral", Confidence: 0.0, Explanation: unavailableMessage}
	case config.OpKeyPoints:
		resp.KeyPoints = []string{}
	case config.OpQuestions:
		resp.Questions = append([]string{}, genericFollowUpQuestions...)
	}
	return resp
}
