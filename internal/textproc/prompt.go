package textproc

import (
	"fmt"
	"strings"

	"github.com/textcore/aicore/internal/config"
)

// buildPrompt renders a fixed, deterministic prompt template per
// operation, following the teacher's buildContextPrompt style
// (ai_agent.go): plain string concatenation, no templating engine.
func buildPrompt(req Request) string {
	switch req.Operation {
	case config.OpSummarize:
		return buildSummarizePrompt(req)
	case config.OpSentiment:
		return buildSentimentPrompt(req)
	case config.OpKeyPoints:
		return buildKeyPointsPrompt(req)
	case config.OpQuestions:
		return buildQuestionsPrompt(req)
	case config.OpQA:
		return buildQAPrompt(req)
	default:
		return req.Text
	}
}

func buildSummarizePrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Summarize the following text.")
	if req.Options.MaxLength > 0 {
		fmt.Fprintf(&b, " Limit the summary to approximately %d words.", req.Options.MaxLength)
	}
	if req.Options.Style != "" {
		fmt.Fprintf(&b, " Use a %s style.", req.Options.Style)
	}
	b.WriteString("\n\nText:\n")
	b.WriteString(req.Text)
	return b.String()
}

func buildSentimentPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Analyze the sentiment of the following text. Respond with a label (positive, neutral, or negative), ")
	b.WriteString("a confidence between 0 and 1, and a short explanation.\n\nText:\n")
	b.WriteString(req.Text)
	return b.String()
}

func buildKeyPointsPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Extract the key points from the following text as a numbered list.")
	if req.Options.MaxPoints > 0 {
		fmt.Fprintf(&b, " List at most %d points.", req.Options.MaxPoints)
	}
	b.WriteString("\n\nText:\n")
	b.WriteString(req.Text)
	return b.String()
}

func buildQuestionsPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Generate thoughtful follow-up questions about the following text.")
	if req.Options.NumQuestions > 0 {
		fmt.Fprintf(&b, " Generate exactly %d questions.", req.Options.NumQuestions)
	}
	b.WriteString("\n\nText:\n")
	b.WriteString(req.Text)
	return b.String()
}

func buildQAPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Answer the question using only the following text as context. ")
	b.WriteString("If the answer cannot be found in the text, say so plainly.\n\nText:\n")
	b.WriteString(req.Text)
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(req.Question)
	return b.String()
}
