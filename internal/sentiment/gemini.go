package sentiment

import (
	"context"
	"fmt"
	"strings"

	"github.com/fmuoria/interview-analyzer/internal/llm"
	"github.com/fmuoria/interview-analyzer/internal/models"
)

// LLMAnalyzer asks a generative model for sentiment scores in JSON
type LLMAnalyzer struct {
	gen llm.Generator
}

// NewLLMAnalyzer creates a sentiment backend on top of a text generator
func NewLLMAnalyzer(gen llm.Generator) *LLMAnalyzer {
	return &LLMAnalyzer{gen: gen}
}

// PolarityScores implements PolarityAnalyzer
func (a *LLMAnalyzer) PolarityScores(ctx context.Context, text string) (models.PolarityScores, error) {
	var sb strings.Builder
	sb.WriteString("You are a sentiment analysis engine. Score the text below the way a valence-aware lexicon would.\n\n")
	sb.WriteString("## TEXT\n")
	sb.WriteString(text)
	sb.WriteString("\n\nReturn ONLY a JSON object of this form:\n")
	sb.WriteString(`{"pos": <0-1>, "neg": <0-1>, "neu": <0-1>, "compound": <-1 to 1>}` + "\n")
	sb.WriteString("pos, neg and neu are proportions that sum to 1. compound is the normalized overall polarity.\n")

	response, err := a.gen.GenerateContent(ctx, sb.String())
	if err != nil {
		return models.PolarityScores{}, fmt.Errorf("failed to get polarity scores: %w", err)
	}

	var scores models.PolarityScores
	if err := llm.DecodeJSON(response, &scores); err != nil {
		return models.PolarityScores{}, fmt.Errorf("failed to parse polarity scores: %w", err)
	}

	scores.Positive = clamp(scores.Positive, 0, 1)
	scores.Negative = clamp(scores.Negative, 0, 1)
	scores.Neutral = clamp(scores.Neutral, 0, 1)
	scores.Compound = clamp(scores.Compound, -1, 1)

	return scores, nil
}

// Sentiment implements GeneralAnalyzer
func (a *LLMAnalyzer) Sentiment(ctx context.Context, text string) (models.GeneralSentiment, error) {
	var sb strings.Builder
	sb.WriteString("You are a sentiment analysis engine. Rate the polarity and subjectivity of the text below.\n\n")
	sb.WriteString("## TEXT\n")
	sb.WriteString(text)
	sb.WriteString("\n\nReturn ONLY a JSON object of this form:\n")
	sb.WriteString(`{"polarity": <-1 to 1>, "subjectivity": <0-1>}` + "\n")
	sb.WriteString("subjectivity is 0 for purely factual text and 1 for purely opinion.\n")

	response, err := a.gen.GenerateContent(ctx, sb.String())
	if err != nil {
		return models.GeneralSentiment{}, fmt.Errorf("failed to get sentiment: %w", err)
	}

	var general models.GeneralSentiment
	if err := llm.DecodeJSON(response, &general); err != nil {
		return models.GeneralSentiment{}, fmt.Errorf("failed to parse sentiment: %w", err)
	}

	general.Polarity = clamp(general.Polarity, -1, 1)
	general.Subjectivity = clamp(general.Subjectivity, 0, 1)

	return general, nil
}
