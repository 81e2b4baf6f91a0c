package models

import (
	"strings"
	"time"
)

// UnknownSpeaker collects transcript lines that carry no "Speaker:" prefix
const UnknownSpeaker = "Unknown"

// SpeakerTranscript maps each speaker to their utterances, preserving first-seen order
type SpeakerTranscript struct {
	Speakers   []string            `json:"speakers"`
	Utterances map[string][]string `json:"utterances"`
}

// NewSpeakerTranscript creates an empty speaker transcript
func NewSpeakerTranscript() *SpeakerTranscript {
	return &SpeakerTranscript{
		Utterances: make(map[string][]string),
	}
}

// Add appends an utterance to a speaker, registering the speaker on first use
func (st *SpeakerTranscript) Add(speaker, utterance string) {
	if _, ok := st.Utterances[speaker]; !ok {
		st.Speakers = append(st.Speakers, speaker)
	}
	st.Utterances[speaker] = append(st.Utterances[speaker], utterance)
}

// Joined returns all utterances of a speaker joined with single spaces
func (st *SpeakerTranscript) Joined(speaker string) string {
	return strings.Join(st.Utterances[speaker], " ")
}

// Tone is the overall sentiment direction of a speaker
type Tone string

const (
	TonePositive Tone = "Positive"
	ToneNegative Tone = "Negative"
	ToneNeutral  Tone = "Neutral"
)

// Recommendation is the hiring decision derived from a session
type Recommendation string

const (
	RecommendSelect      Recommendation = "Select"
	RecommendReview      Recommendation = "Review"
	RecommendDoNotSelect Recommendation = "Do-Not-Select"
)

// Badge is the performance tier shown next to a session
type Badge string

const (
	BadgeExcellent Badge = "Excellent"
	BadgeGood      Badge = "Good"
	BadgeAverage   Badge = "Average"
	BadgePoor      Badge = "Poor"
)

// KnowledgeBadge is the domain knowledge tier shown next to a session
type KnowledgeBadge string

const (
	KnowledgeStrong KnowledgeBadge = "Strong"
	KnowledgeGood   KnowledgeBadge = "Good"
	KnowledgeBasic  KnowledgeBadge = "Basic"
	KnowledgeWeak   KnowledgeBadge = "Weak"
)

// PolarityScores is the four-part breakdown from a lexicon style sentiment engine
type PolarityScores struct {
	Positive float64 `json:"pos"`
	Negative float64 `json:"neg"`
	Neutral  float64 `json:"neu"`
	Compound float64 `json:"compound"` // -1..1
}

// GeneralSentiment is the polarity/subjectivity pair from a general purpose engine
type GeneralSentiment struct {
	Polarity     float64 `json:"polarity"`     // -1..1
	Subjectivity float64 `json:"subjectivity"` // 0..1
}

// SpeakerScoreCard holds the evaluation of one speaker
type SpeakerScoreCard struct {
	Speaker           string           `json:"speaker"`
	Tone              Tone             `json:"tone"`
	Score             float64          `json:"score"`      // 0-10
	Confidence        float64          `json:"confidence"` // 0-1
	EmpathyScore      int              `json:"empathy_score"`
	NumFillers        int              `json:"num_fillers"`
	AvgSentenceLength int              `json:"avg_sentence_length"`
	Summary           string           `json:"summary"`
	Keywords          []string         `json:"keywords"`
	KnowledgeScore    float64          `json:"knowledge_score"` // 0-10
	MatchedKeywords   []string         `json:"matched_keywords"`
	Polarity          PolarityScores   `json:"polarity"`
	General           GeneralSentiment `json:"general"`
}

// SessionResult is the aggregate over all score cards of a transcript
type SessionResult struct {
	AvgScore       float64        `json:"avg_score"`
	AvgKnowledge   float64        `json:"avg_knowledge"`
	Recommendation Recommendation `json:"recommendation"`
	Message        string         `json:"message"`
	Badge          Badge          `json:"badge"`
	KnowledgeBadge KnowledgeBadge `json:"knowledge_badge"`
	Pros           []string       `json:"pros"`
	Cons           []string       `json:"cons"`
	Summary        string         `json:"summary"`
}

// Analysis is the output of scoring a single transcript
type Analysis struct {
	Cards   []SpeakerScoreCard `json:"cards"`
	Session SessionResult      `json:"session"`
}

// AnalyzeRequest describes what to analyze and against which domain
type AnalyzeRequest struct {
	Transcript    string `json:"transcript"`
	Industry      string `json:"industry"`
	Subdomain     string `json:"subdomain"`
	CandidateType string `json:"candidate_type"` // "Fresher" or "Experienced"
	RoundType     string `json:"round_type"`     // "Interview", "Group Discussion" or "Mock"
	Source        string `json:"source,omitempty"`
}

// Report is a completed analysis together with the request metadata
type Report struct {
	ID            string             `json:"id"`
	Source        string             `json:"source"`
	Industry      string             `json:"industry"`
	Subdomain     string             `json:"subdomain"`
	CandidateType string             `json:"candidate_type"`
	RoundType     string             `json:"round_type"`
	DomainKeys    []string           `json:"domain_keywords"`
	Cards         []SpeakerScoreCard `json:"cards"`
	Session       SessionResult      `json:"session"`
	GeneratedAt   time.Time          `json:"generated_at"`
}

// TranscriptDocument is a transcript file found in the uploads directory
type TranscriptDocument struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Content string `json:"content"`
}
