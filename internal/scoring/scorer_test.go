package scoring

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/fmuoria/interview-analyzer/internal/logger"
	"github.com/fmuoria/interview-analyzer/internal/models"
	"github.com/fmuoria/interview-analyzer/internal/sentiment"
	"github.com/fmuoria/interview-analyzer/internal/summary"
)

type fakeSentiment struct {
	polarity    models.PolarityScores
	general     models.GeneralSentiment
	polarityErr error
	generalErr  error
	calls       int
}

func (f *fakeSentiment) PolarityScores(_ context.Context, _ string) (models.PolarityScores, error) {
	f.calls++
	return f.polarity, f.polarityErr
}

func (f *fakeSentiment) Sentiment(_ context.Context, _ string) (models.GeneralSentiment, error) {
	return f.general, f.generalErr
}

type fakeSummarizer struct {
	err   error
	calls []int
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string, maxTokens, _ int) (string, error) {
	f.calls = append(f.calls, maxTokens)
	if f.err != nil {
		return "", f.err
	}
	return "summary of " + strings.Fields(text)[0], nil
}

func newTestScorer(s *fakeSentiment, sum summary.Summarizer) *Scorer {
	return NewScorer(s, s, sum, logger.Discard().Component("test"))
}

func TestAnalyzeAliceAndBob(t *testing.T) {
	s := &fakeSentiment{
		polarity: models.PolarityScores{Positive: 0.3, Neutral: 0.7, Compound: 0.5},
		general:  models.GeneralSentiment{Polarity: 0.2, Subjectivity: 0.5},
	}
	scorer := newTestScorer(s, &fakeSummarizer{})

	raw := "Alice: I understand your concern about performance, let me help.\nBob: um like yeah it was fine"
	analysis, err := scorer.Analyze(context.Background(), raw, []string{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(analysis.Cards) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(analysis.Cards))
	}

	alice, bob := analysis.Cards[0], analysis.Cards[1]
	if alice.Speaker != "Alice" || bob.Speaker != "Bob" {
		t.Fatalf("Expected speakers [Alice Bob], got [%s %s]", alice.Speaker, bob.Speaker)
	}
	if alice.EmpathyScore < 2 {
		t.Errorf("Expected Alice empathy >= 2, got %d", alice.EmpathyScore)
	}
	if bob.NumFillers < 2 {
		t.Errorf("Expected Bob fillers >= 2, got %d", bob.NumFillers)
	}
	for _, c := range analysis.Cards {
		if c.KnowledgeScore != DefaultKnowledgeScore {
			t.Errorf("Expected %s knowledge %v, got %v", c.Speaker, DefaultKnowledgeScore, c.KnowledgeScore)
		}
	}
	if analysis.Session.AvgKnowledge != DefaultKnowledgeScore {
		t.Errorf("Expected session knowledge %v, got %v", DefaultKnowledgeScore, analysis.Session.AvgKnowledge)
	}
	if analysis.Session.Summary != "summary of Alice:" {
		t.Errorf("Expected session summary over the whole transcript, got %q", analysis.Session.Summary)
	}
}

func TestAnalyzeUnknownSpeaker(t *testing.T) {
	scorer := newTestScorer(&fakeSentiment{}, &fakeSummarizer{})

	analysis, err := scorer.Analyze(context.Background(), "this line has no speaker label at all", nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(analysis.Cards) != 1 || analysis.Cards[0].Speaker != models.UnknownSpeaker {
		t.Fatalf("Expected a single %s card, got %+v", models.UnknownSpeaker, analysis.Cards)
	}
}

func TestAnalyzeDropsShortSpeakers(t *testing.T) {
	scorer := newTestScorer(&fakeSentiment{}, &fakeSummarizer{})

	raw := "Alice: ok\nBob: I have worked with Python for five years."
	analysis, err := scorer.Analyze(context.Background(), raw, nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(analysis.Cards) != 1 || analysis.Cards[0].Speaker != "Bob" {
		t.Errorf("Expected only Bob to be scored, got %+v", analysis.Cards)
	}
}

func TestAnalyzeInsufficientTranscript(t *testing.T) {
	scorer := newTestScorer(&fakeSentiment{}, &fakeSummarizer{})

	tests := []string{"", "   \n  ", "A: hi"}
	for _, raw := range tests {
		_, err := scorer.Analyze(context.Background(), raw, nil)
		if !errors.Is(err, ErrInsufficientTranscript) {
			t.Errorf("Analyze(%q): expected ErrInsufficientTranscript, got %v", raw, err)
		}
	}
}

func TestAnalyzeNoScoreCards(t *testing.T) {
	s := &fakeSentiment{}
	scorer := newTestScorer(s, &fakeSummarizer{})

	_, err := scorer.Analyze(context.Background(), "A: hi there\nB: yes ok\nC: fine", nil)
	if !errors.Is(err, ErrNoScoreCards) {
		t.Fatalf("Expected ErrNoScoreCards, got %v", err)
	}
	if s.calls != 0 {
		t.Errorf("Expected no sentiment calls, got %d", s.calls)
	}
}

func TestAnalyzeCollaboratorErrors(t *testing.T) {
	boom := errors.New("boom")
	raw := "Alice: I have worked with Python for five years."

	tests := []struct {
		name      string
		sentiment *fakeSentiment
		summary   *fakeSummarizer
	}{
		{"polarity", &fakeSentiment{polarityErr: boom}, &fakeSummarizer{}},
		{"general", &fakeSentiment{generalErr: boom}, &fakeSummarizer{}},
		{"summary", &fakeSentiment{}, &fakeSummarizer{err: boom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := newTestScorer(tt.sentiment, tt.summary)
			analysis, err := scorer.Analyze(context.Background(), raw, nil)
			if !errors.Is(err, boom) {
				t.Errorf("Expected wrapped collaborator error, got %v", err)
			}
			if analysis != nil {
				t.Errorf("Expected no partial analysis, got %+v", analysis)
			}
		})
	}
}

func TestAnalyzeSummaryBounds(t *testing.T) {
	sum := &fakeSummarizer{}
	scorer := newTestScorer(&fakeSentiment{}, sum)

	if _, err := scorer.Analyze(context.Background(), "Alice: I have worked with Python for five years.", nil); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	want := []int{summary.SpeakerMaxTokens, summary.SessionMaxTokens}
	if !reflect.DeepEqual(sum.calls, want) {
		t.Errorf("Expected summary calls %v, got %v", want, sum.calls)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	lex := sentiment.NewLexicon()
	scorer := NewScorer(lex, lex, &fakeSummarizer{}, logger.Discard().Component("test"))

	raw := "Interviewer: Tell me about your SQL experience.\n" +
		"Candidate: Thank you, good question. I designed database schemas and optimized queries.\n" +
		"Candidate: I understand normalization and indexing really well."
	kws := []string{"SQL", "query", "database", "index"}

	first, err := scorer.Analyze(context.Background(), raw, kws)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	second, err := scorer.Analyze(context.Background(), raw, kws)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical analyses, got\n%+v\n%+v", first, second)
	}
}

func TestScoreSpeakerKnowledgeCaseInsensitive(t *testing.T) {
	scorer := newTestScorer(&fakeSentiment{}, &fakeSummarizer{})

	card, err := scorer.ScoreSpeaker(context.Background(), "Bob", "I mostly write PYTHON and some sql scripts", []string{"Python", "SQL", "Java", "Pandas"})
	if err != nil {
		t.Fatalf("ScoreSpeaker failed: %v", err)
	}

	if card.KnowledgeScore != 5 {
		t.Errorf("Expected knowledge 5, got %v", card.KnowledgeScore)
	}
	if !reflect.DeepEqual(card.MatchedKeywords, []string{"python", "sql"}) {
		t.Errorf("Expected matched [python sql], got %v", card.MatchedKeywords)
	}
}

func TestScoreSpeakerShortText(t *testing.T) {
	s := &fakeSentiment{}
	scorer := newTestScorer(s, &fakeSummarizer{})

	card, err := scorer.ScoreSpeaker(context.Background(), "Bob", "too short", nil)
	if err != nil || card != nil {
		t.Errorf("Expected nil card and nil error, got %v, %v", card, err)
	}
	if s.calls != 0 {
		t.Errorf("Expected no sentiment calls for short text, got %d", s.calls)
	}
}

func TestScoreSpeakerFields(t *testing.T) {
	s := &fakeSentiment{
		polarity: models.PolarityScores{Positive: 0.5, Negative: 0.1, Neutral: 0.4, Compound: 0.6},
		general:  models.GeneralSentiment{Polarity: 0.3, Subjectivity: 0.4},
	}
	scorer := newTestScorer(s, &fakeSummarizer{})

	card, err := scorer.ScoreSpeaker(context.Background(), "Ann", "Kubernetes deployments scale nicely. Kubernetes rocks!", nil)
	if err != nil {
		t.Fatalf("ScoreSpeaker failed: %v", err)
	}

	if card.Tone != models.TonePositive {
		t.Errorf("Expected Positive tone, got %s", card.Tone)
	}
	// pos 0.5 - neg 0.1 + (1 - 0.4) = 1.0
	if math.Abs(card.Confidence-1.0) > 1e-9 {
		t.Errorf("Expected confidence 1.0, got %v", card.Confidence)
	}
	// 1.6*3 + 3*1 = 7.8
	if math.Abs(card.Score-7.8) > 1e-9 {
		t.Errorf("Expected score 7.8, got %v", card.Score)
	}
	// 8 tokens over 2 sentences
	if card.AvgSentenceLength != 4 {
		t.Errorf("Expected avg sentence length 4, got %d", card.AvgSentenceLength)
	}
	if !reflect.DeepEqual(card.Keywords, []string{"Kubernetes", "deployments", "nicely"}) {
		t.Errorf("Unexpected display keywords: %v", card.Keywords)
	}
}

func TestConfidenceClamp(t *testing.T) {
	tests := []struct {
		name string
		p    models.PolarityScores
		g    models.GeneralSentiment
		want float64
	}{
		{"upper", models.PolarityScores{Positive: 1}, models.GeneralSentiment{Subjectivity: 0}, 1},
		{"lower", models.PolarityScores{Negative: 1}, models.GeneralSentiment{Subjectivity: 1}, 0},
		{"middle", models.PolarityScores{Positive: 0.2, Negative: 0.1}, models.GeneralSentiment{Subjectivity: 0.6}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Confidence(tt.p, tt.g); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Confidence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInterviewScore(t *testing.T) {
	tests := []struct {
		name       string
		compound   float64
		confidence float64
		empathy    int
		fillers    int
		want       float64
	}{
		{"max clamps to 10", 1, 1, 5, 0, 10},
		{"min clamps to 0", -1, 0, 0, 9, 0},
		{"neutral", 0, 0.5, 0, 0, 4.5},
		{"empathy capped at one", 0, 0, 3, 0, 5},
		{"fillers capped at two", 0, 1, 0, 7, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InterviewScore(tt.compound, tt.confidence, tt.empathy, tt.fillers)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("InterviewScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCountFillers(t *testing.T) {
	tests := []struct {
		words []string
		want  int
	}{
		{[]string{"um", "like", "yeah"}, 2},
		{[]string{"Um", "LIKE"}, 0},
		{[]string{"you", "know"}, 0},
		{[]string{"uh", "uh", "um"}, 3},
	}

	for _, tt := range tests {
		if got := CountFillers(tt.words); got != tt.want {
			t.Errorf("CountFillers(%v) = %d, want %d", tt.words, got, tt.want)
		}
	}
}

func TestCountEmpathy(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"I UNDERSTAND, thank you!", 2},
		{"nothing here", 0},
		{"That makes sense. Let me help. Good question.", 3},
		{"thank you thank you", 1},
	}

	for _, tt := range tests {
		if got := CountEmpathy(tt.text); got != tt.want {
			t.Errorf("CountEmpathy(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestKnowledgeScore(t *testing.T) {
	tests := []struct {
		matched, total int
		want           float64
	}{
		{0, 0, DefaultKnowledgeScore},
		{0, 4, 0},
		{4, 4, 10},
		{1, 4, 2.5},
		{5, 4, 10},
	}

	for _, tt := range tests {
		if got := KnowledgeScore(tt.matched, tt.total); got != tt.want {
			t.Errorf("KnowledgeScore(%d, %d) = %v, want %v", tt.matched, tt.total, got, tt.want)
		}
	}
}
