package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/fmuoria/interview-analyzer/internal/keywords"
	"github.com/fmuoria/interview-analyzer/internal/models"
	"github.com/fmuoria/interview-analyzer/internal/sentiment"
	"github.com/fmuoria/interview-analyzer/internal/summary"
	"github.com/fmuoria/interview-analyzer/internal/transcript"
	"github.com/sirupsen/logrus"
)

// MinTextLength is the minimum number of characters needed to score a
// transcript or a single speaker
const MinTextLength = 10

// DefaultKnowledgeScore is used when no domain keywords are selected
const DefaultKnowledgeScore = 6.0

var (
	// ErrInsufficientTranscript is returned for empty or very short transcripts
	ErrInsufficientTranscript = errors.New("insufficient data for analysis, please provide a transcript")
	// ErrNoScoreCards is returned when no speaker had enough text to score
	ErrNoScoreCards = errors.New("no speaker had enough text to score")
)

// EmpathyMarkers are phrases that signal empathy, matched case-insensitively
var EmpathyMarkers = []string{
	"I understand",
	"I appreciate",
	"thank you",
	"good question",
	"that makes sense",
	"let me help",
}

// FillerWords are counted as exact token matches
var FillerWords = []string{"um", "uh", "like", "you know"}

// Scorer turns transcripts into score cards and a session result
type Scorer struct {
	polarity   sentiment.PolarityAnalyzer
	general    sentiment.GeneralAnalyzer
	summarizer summary.Summarizer
	log        *logrus.Entry
}

// NewScorer creates a new scorer instance
func NewScorer(polarity sentiment.PolarityAnalyzer, general sentiment.GeneralAnalyzer, summarizer summary.Summarizer, log *logrus.Entry) *Scorer {
	return &Scorer{
		polarity:   polarity,
		general:    general,
		summarizer: summarizer,
		log:        log.WithField("component", "scoring"),
	}
}

// Analyze scores every speaker of a transcript and aggregates the session.
// Any collaborator failure aborts the whole analysis.
func (s *Scorer) Analyze(ctx context.Context, raw string, domainKeywords []string) (*models.Analysis, error) {
	text := strings.TrimSpace(raw)
	if utf8.RuneCountInString(text) < MinTextLength {
		return nil, ErrInsufficientTranscript
	}

	segments := transcript.Segment(text)
	s.log.WithFields(logrus.Fields{
		"speakers": len(segments.Speakers),
		"keywords": len(domainKeywords),
	}).Debug("transcript segmented")

	cards := make([]models.SpeakerScoreCard, 0, len(segments.Speakers))
	for _, speaker := range segments.Speakers {
		card, err := s.ScoreSpeaker(ctx, speaker, segments.Joined(speaker), domainKeywords)
		if err != nil {
			return nil, fmt.Errorf("failed to score speaker %q: %w", speaker, err)
		}
		if card == nil {
			s.log.WithField("speaker", speaker).Debug("speaker skipped, not enough text")
			continue
		}
		cards = append(cards, *card)
	}

	if len(cards) == 0 {
		return nil, ErrNoScoreCards
	}

	session := Aggregate(cards)

	sessionSummary, err := s.summarizer.Summarize(ctx, text, summary.SessionMaxTokens, summary.SessionMinTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize session: %w", err)
	}
	session.Summary = sessionSummary

	return &models.Analysis{Cards: cards, Session: session}, nil
}

// ScoreSpeaker evaluates one speaker's joined text. It returns nil without an
// error when the text is shorter than MinTextLength.
func (s *Scorer) ScoreSpeaker(ctx context.Context, speaker, text string, domainKeywords []string) (*models.SpeakerScoreCard, error) {
	if utf8.RuneCountInString(text) < MinTextLength {
		return nil, nil
	}

	polarity, err := s.polarity.PolarityScores(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to get polarity scores: %w", err)
	}

	general, err := s.general.Sentiment(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to get general sentiment: %w", err)
	}

	words := transcript.Words(text)
	sentences := transcript.Sentences(text)

	confidence := Confidence(polarity, general)
	empathy := CountEmpathy(text)
	fillers := CountFillers(words)

	matched, found := keywords.Score(text, domainKeywords)

	speakerSummary, err := s.summarizer.Summarize(ctx, text, summary.SpeakerMaxTokens, summary.SpeakerMinTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize speaker: %w", err)
	}

	return &models.SpeakerScoreCard{
		Speaker:           speaker,
		Tone:              ToneOf(polarity.Compound),
		Score:             InterviewScore(polarity.Compound, confidence, empathy, fillers),
		Confidence:        confidence,
		EmpathyScore:      empathy,
		NumFillers:        fillers,
		AvgSentenceLength: len(words) / max(1, len(sentences)),
		Summary:           speakerSummary,
		Keywords:          keywords.Extract(words),
		KnowledgeScore:    KnowledgeScore(matched, len(domainKeywords)),
		MatchedKeywords:   found,
		Polarity:          polarity,
		General:           general,
	}, nil
}

// Confidence combines positivity and objectivity into a 0-1 value
func Confidence(p models.PolarityScores, g models.GeneralSentiment) float64 {
	return clamp(p.Positive-p.Negative+(1-g.Subjectivity), 0, 1)
}

// CountEmpathy counts how many empathy markers appear in text
func CountEmpathy(text string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, marker := range EmpathyMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			count++
		}
	}
	return count
}

// CountFillers counts tokens that exactly equal a filler word. Multi-word
// fillers never equal a single token.
func CountFillers(words []string) int {
	count := 0
	for _, filler := range FillerWords {
		for _, w := range words {
			if w == filler {
				count++
			}
		}
	}
	return count
}

// InterviewScore computes the 0-10 speaker score
func InterviewScore(compound, confidence float64, empathy, fillers int) float64 {
	score := (compound+1)*3 +
		3*confidence +
		2*float64(min(empathy, 1)) -
		2*float64(min(fillers, 2))
	return clamp(score, 0, 10)
}

// KnowledgeScore scales the share of matched domain keywords to 0-10
func KnowledgeScore(matched, total int) float64 {
	if total == 0 {
		return DefaultKnowledgeScore
	}
	return clamp(float64(matched)/float64(total)*10, 0, 10)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
