// Package sanitize implements the prompt sanitizer (C5, spec.md §4.5):
// a conservative, O(n), non-suspending text cleaner that only removes
// or collapses — it never inserts text.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

// injectionPatterns catches common prompt-injection phrasing: attempts
// to override prior instructions or forge a system message inside user
// text. Matches are stripped, not rewritten.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore (all )?(previous|prior|above) instructions`),
	regexp.MustCompile(`(?i)disregard (all )?(previous|prior|above) (instructions|prompts)`),
	regexp.MustCompile(`(?i)you are now (in )?(developer|debug|admin|unrestricted) mode`),
	regexp.MustCompile(`(?i)system\s*:\s*`),
	regexp.MustCompile(`(?i)\[\s*system\s*\]`),
	regexp.MustCompile(`(?i)act as (if you (were|are) )?(an?\s+)?unfiltered`),
	regexp.MustCompile(`(?i)forget (everything|all) (you (were|are) told|above)`),
}

var whitespaceRun = regexp.MustCompile(`[ \t]{2,}`)
var blankLineRun = regexp.MustCompile(`\n{3,}`)

// Sanitizer cleans request text before it reaches a prompt template.
type Sanitizer struct {
	maxTextLength int
}

// New creates a Sanitizer capping output at maxTextLength runes.
func New(maxTextLength int) *Sanitizer {
	return &Sanitizer{maxTextLength: maxTextLength}
}

// Clean strips control characters (except standard whitespace),
// collapses repeated whitespace, removes known injection markers, and
// caps the result at maxTextLength runes.
func (s *Sanitizer) Clean(text string) string {
	text = stripControlChars(text)

	for _, pattern := range injectionPatterns {
		text = pattern.ReplaceAllString(text, "")
	}

	text = whitespaceRun.ReplaceAllString(text, " ")
	text = blankLineRun.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if s.maxTextLength > 0 {
		runes := []rune(text)
		if len(runes) > s.maxTextLength {
			text = string(runes[:s.maxTextLength])
		}
	}

	return text
}

// stripControlChars removes control characters other than '\n', '\r'
// and '\t', which are kept as standard whitespace.
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
