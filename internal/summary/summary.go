package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/didasy/tldr"

	"github.com/fmuoria/interview-analyzer/internal/llm"
	"github.com/fmuoria/interview-analyzer/internal/transcript"
)

// Length bounds, in tokens, for the two kinds of summary
const (
	SpeakerMaxTokens = 50
	SpeakerMinTokens = 10
	SessionMaxTokens = 80
	SessionMinTokens = 20
)

// Summarizer condenses text to roughly between minTokens and maxTokens tokens
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxTokens, minTokens int) (string, error)
}

// LLMSummarizer summarizes with a generative model
type LLMSummarizer struct {
	gen llm.Generator
}

// NewLLMSummarizer creates a summarizer on top of a text generator
func NewLLMSummarizer(gen llm.Generator) *LLMSummarizer {
	return &LLMSummarizer{gen: gen}
}

// Summarize implements Summarizer
func (s *LLMSummarizer) Summarize(ctx context.Context, text string, maxTokens, minTokens int) (string, error) {
	var sb strings.Builder
	sb.WriteString("Summarize the following interview transcript excerpt in plain prose.\n")
	sb.WriteString(fmt.Sprintf("Use between %d and %d words. Do not add facts that are not in the text.\n\n", minTokens, maxTokens))
	sb.WriteString("## TEXT\n")
	sb.WriteString(text)
	sb.WriteString("\n\nReturn ONLY the summary text.\n")

	response, err := s.gen.GenerateContent(ctx, sb.String())
	if err != nil {
		return "", fmt.Errorf("failed to summarize: %w", err)
	}

	return strings.TrimSpace(response), nil
}

// Extractive summarizes with TextRank over the sentences of the text. It is
// used when no summarization model is configured.
type Extractive struct{}

// NewExtractive creates the extractive summarizer
func NewExtractive() *Extractive {
	return &Extractive{}
}

// Summarize implements Summarizer. The highest ranked sentences are kept, in
// text order, while they fit in maxTokens words; ranking stops early once
// minTokens words are reached. Text shorter than minTokens words is returned
// unchanged, and text without two sentences to rank is cut at maxTokens words.
func (e *Extractive) Summarize(_ context.Context, text string, maxTokens, minTokens int) (string, error) {
	text = strings.TrimSpace(text)
	if maxTokens <= 0 {
		return "", nil
	}
	if len(strings.Fields(text)) <= minTokens {
		return text, nil
	}

	sentences := transcript.Sentences(text)
	if len(sentences) < 2 {
		return truncateWords(text, maxTokens), nil
	}

	var best string
	for k := 1; k <= len(sentences); k++ {
		ranked, err := tldr.New().Summarize(text, k)
		if err != nil {
			break
		}
		candidate := joinSentences(ranked)
		n := len(strings.Fields(candidate))
		if n > maxTokens {
			break
		}
		best = candidate
		if n >= minTokens {
			break
		}
	}

	if best == "" {
		return truncateWords(text, maxTokens), nil
	}
	return best, nil
}

// joinSentences accepts both the slice and the joined string forms of a
// TextRank result
func joinSentences(v any) string {
	switch r := v.(type) {
	case []string:
		parts := make([]string, 0, len(r))
		for _, s := range r {
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case string:
		return strings.Join(strings.Fields(r), " ")
	default:
		return ""
	}
}

func truncateWords(text string, n int) string {
	fields := strings.Fields(text)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}
