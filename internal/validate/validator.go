// Package validate implements the response validator (C6, spec.md
// §4.6): a sequence of checks applied in order, first failure wins,
// over a model's raw output before the Text Processor accepts it.
package validate

import (
	"regexp"
	"strings"

	"github.com/textcore/aicore/internal/apperrors"
	"github.com/textcore/aicore/internal/config"
)

var allowedSentimentLabels = map[string]bool{"positive": true, "neutral": true, "negative": true}

// outputInjectionMarkers catches a model output claiming to disregard
// instructions or emitting a synthetic system message — the output
// side of the same threat the prompt sanitizer guards on the input
// side.
var outputInjectionMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore (all )?(previous|prior) instructions`),
	regexp.MustCompile(`(?i)^\s*\[?system\]?\s*:`),
}

// Sentiment is the structural shape expected for a SENTIMENT output.
type Sentiment struct {
	Label       string
	Confidence  float64
	Explanation string
}

// Validator checks model output against the schema its operation
// demands. A failing check is fatal for the call — the Text Processor
// must not cache the response.
type Validator struct{}

// New creates a Validator. It carries no state; one shared instance is
// safe for concurrent use.
func New() *Validator {
	return &Validator{}
}

// ValidateText checks a plain-string result (SUMMARIZE, QA, and the
// individual strings inside KEY_POINTS/QUESTIONS lists).
func (v *Validator) ValidateText(text string, op config.Operation) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return apperrors.New("validate.text", apperrors.KindValidation, "empty response after trim").
			WithContext("operation", string(op))
	}
	if err := checkInjectionMarkers(trimmed); err != nil {
		return err
	}
	return nil
}

// ValidateList checks a KEY_POINTS or QUESTIONS result: every element
// passes the same text checks as ValidateText.
func (v *Validator) ValidateList(items []string, op config.Operation) error {
	for _, item := range items {
		if err := v.ValidateText(item, op); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSentiment checks a SENTIMENT result's structural and content
// constraints: label in the allowed set, confidence in [0,1].
func (v *Validator) ValidateSentiment(s Sentiment) error {
	if strings.TrimSpace(s.Explanation) == "" {
		return apperrors.New("validate.sentiment", apperrors.KindValidation, "empty explanation after trim")
	}
	if err := checkInjectionMarkers(s.Explanation); err != nil {
		return err
	}
	if !allowedSentimentLabels[strings.ToLower(s.Label)] {
		return apperrors.New("validate.sentiment", apperrors.KindValidation, "sentiment label not in allowed set").
			WithContext("label", s.Label)
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return apperrors.New("validate.sentiment", apperrors.KindValidation, "confidence out of range [0,1]").
			WithContext("confidence", s.Confidence)
	}
	return nil
}

func checkInjectionMarkers(text string) error {
	for _, pattern := range outputInjectionMarkers {
		if pattern.MatchString(text) {
			return apperrors.New("validate.injection", apperrors.KindValidation, "model output contains an injection marker")
		}
	}
	return nil
}
