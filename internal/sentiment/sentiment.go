// Package sentiment defines the sentiment collaborators used by the scorer and
// ships two backends: an offline lexicon and a Gemini prompt.
package sentiment

import (
	"context"

	"github.com/fmuoria/interview-analyzer/internal/models"
)

// PolarityAnalyzer produces a positive/negative/neutral/compound breakdown
type PolarityAnalyzer interface {
	PolarityScores(ctx context.Context, text string) (models.PolarityScores, error)
}

// GeneralAnalyzer produces a polarity/subjectivity pair
type GeneralAnalyzer interface {
	Sentiment(ctx context.Context, text string) (models.GeneralSentiment, error)
}

// Analyzer is a backend that provides both views
type Analyzer interface {
	PolarityAnalyzer
	GeneralAnalyzer
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
