package sentiment

import (
	"context"
	"strings"
	"unicode"

	"github.com/jonreiter/govader"

	"github.com/fmuoria/interview-analyzer/internal/models"
	"github.com/fmuoria/interview-analyzer/internal/transcript"
)

// subjectivityBoost scales the subjectivity of a word that follows an intensifier
const subjectivityBoost = 1.3

// subjectivity of opinion words, 0 (factual) to 1 (opinion), in the range
// used by pattern-style adjective lexicons
var subjectivity = map[string]float64{
	"accomplished": 0.6, "agree": 0.5, "amazing": 0.9, "angry": 1.0, "annoyed": 0.9,
	"annoying": 0.9, "anxious": 0.8, "appreciate": 0.6, "appreciated": 0.6, "awesome": 1.0,
	"awful": 1.0, "bad": 0.67, "beautiful": 1.0, "best": 0.3, "better": 0.5,
	"boring": 1.0, "brilliant": 1.0, "calm": 0.75, "careful": 1.0, "challenging": 0.5,
	"clear": 0.38, "comfortable": 0.6, "concern": 0.4, "concerned": 0.5, "confident": 0.8,
	"confused": 0.7, "crazy": 0.9, "curious": 1.0, "dedicated": 0.6, "delighted": 0.9,
	"difficult": 1.0, "disagree": 0.5, "disappointed": 0.8, "disappointing": 0.7, "disaster": 0.8,
	"disastrous": 0.9, "dreadful": 1.0, "dull": 0.9, "eager": 0.8, "easy": 0.83,
	"effective": 0.6, "efficient": 0.5, "enjoy": 0.6, "enjoyed": 0.6, "enthusiastic": 0.9,
	"excellent": 1.0, "excited": 0.75, "exciting": 0.8, "exhausted": 0.8, "fail": 0.3,
	"failed": 0.3, "failure": 0.3, "fair": 0.6, "fantastic": 0.9, "favorite": 1.0,
	"fine": 0.5, "fortunate": 1.0, "frustrated": 0.7, "frustrating": 0.8, "fun": 0.2,
	"glad": 1.0, "good": 0.6, "grateful": 0.9, "great": 0.75, "happy": 1.0,
	"hard": 0.54, "hate": 0.9, "hated": 0.9, "helpful": 0.4, "honest": 0.9,
	"hopeful": 0.8, "horrible": 1.0, "ideal": 0.9, "important": 1.0, "impressive": 1.0,
	"improve": 0.3, "improved": 0.3, "incredible": 0.9, "interesting": 0.5, "lazy": 1.0,
	"love": 0.6, "loved": 0.7, "lovely": 0.75, "lucky": 1.0, "mediocre": 0.8,
	"messy": 0.9, "motivated": 0.6, "nervous": 1.0, "nice": 1.0, "ok": 0.5,
	"okay": 0.5, "outstanding": 0.9, "painful": 0.9, "passionate": 0.9, "perfect": 1.0,
	"pleasant": 0.73, "pleased": 0.8, "poor": 0.6, "positive": 0.55, "pretty": 1.0,
	"proud": 1.0, "rewarding": 0.8, "ridiculous": 1.0, "sad": 1.0, "satisfied": 0.9,
	"scared": 1.0, "serious": 0.67, "simple": 0.36, "smart": 0.64, "sorry": 1.0,
	"strange": 0.15, "stressful": 0.9, "stressed": 0.6, "strong": 0.73, "stupid": 1.0,
	"successful": 0.95, "sure": 0.89, "surprised": 0.6, "terrible": 1.0, "thankful": 0.9,
	"tired": 0.7, "tough": 0.83, "ugly": 1.0, "uncomfortable": 0.8, "unfortunately": 0.6,
	"unhappy": 1.0, "upset": 1.0, "useful": 0.0, "useless": 0.6, "valuable": 0.4,
	"weak": 0.6, "weird": 1.0, "wonderful": 1.0, "worried": 0.8, "worse": 0.6,
	"worst": 1.0, "wrong": 0.9,
}

var intensifiers = map[string]struct{}{
	"absolutely": {}, "extremely": {}, "highly": {}, "incredibly": {},
	"really": {}, "so": {}, "totally": {}, "very": {},
}

// Lexicon is the offline backend. Polarity comes from the VADER lexicon and
// rules; subjectivity is averaged over known opinion words. It needs no
// network and is deterministic.
type Lexicon struct {
	vader *govader.SentimentIntensityAnalyzer
}

// NewLexicon creates the built-in lexicon analyzer
func NewLexicon() *Lexicon {
	return &Lexicon{vader: govader.NewSentimentIntensityAnalyzer()}
}

// PolarityScores implements PolarityAnalyzer
func (l *Lexicon) PolarityScores(_ context.Context, text string) (models.PolarityScores, error) {
	s := l.vader.PolarityScores(text)
	if s.Positive == 0 && s.Negative == 0 && s.Neutral == 0 {
		return models.PolarityScores{Neutral: 1}, nil
	}

	return models.PolarityScores{
		Positive: s.Positive,
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Compound: clamp(s.Compound, -1, 1),
	}, nil
}

// Sentiment implements GeneralAnalyzer. Polarity is the VADER compound score.
func (l *Lexicon) Sentiment(_ context.Context, text string) (models.GeneralSentiment, error) {
	words := lowerWords(text)

	var total float64
	var assessed int
	for i, w := range words {
		v, ok := subjectivity[w]
		if !ok {
			continue
		}
		if i > 0 {
			if _, ok := intensifiers[words[i-1]]; ok {
				v *= subjectivityBoost
			}
		}
		total += clamp(v, 0, 1)
		assessed++
	}

	out := models.GeneralSentiment{Polarity: clamp(l.vader.PolarityScores(text).Compound, -1, 1)}
	if assessed > 0 {
		out.Subjectivity = clamp(total/float64(assessed), 0, 1)
	}
	return out, nil
}

func lowerWords(text string) []string {
	var words []string
	for _, tok := range transcript.Words(text) {
		if !strings.ContainsFunc(tok, unicode.IsLetter) {
			continue
		}
		words = append(words, strings.ToLower(tok))
	}
	return words
}
