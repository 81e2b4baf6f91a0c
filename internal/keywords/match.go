package keywords

import (
	"strings"

	"github.com/fmuoria/interview-analyzer/internal/transcript"
)

const (
	// MaxDisplayKeywords caps the keywords shown on a score card
	MaxDisplayKeywords = 10
	// minDisplayKeywordLength is exclusive: only tokens longer than this are shown
	minDisplayKeywordLength = 5
)

// Score counts the expected keywords that occur case-insensitively anywhere in
// text and returns the lower-cased matches in keyword order
func Score(text string, expected []string) (int, []string) {
	lower := strings.ToLower(text)
	found := []string{}

	for _, kw := range expected {
		kw = strings.ToLower(kw)
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}

	return len(found), found
}

// Extract returns up to MaxDisplayKeywords distinct alphabetic tokens longer
// than five characters, in order of first appearance
func Extract(words []string) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, w := range words {
		if len([]rune(w)) <= minDisplayKeywordLength || !transcript.IsAlpha(w) {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == MaxDisplayKeywords {
			break
		}
	}

	return out
}
