package scoring

import (
	"fmt"

	"github.com/fmuoria/interview-analyzer/internal/models"
)

// Tone thresholds on the compound sentiment score
const (
	PositiveToneThreshold = 0.2
	NegativeToneThreshold = -0.2
)

// Session thresholds
const (
	MinKnowledgeForSelection = 5.0
	ExcellentScore           = 8.5
	GoodScore                = 7.0
	AverageScore             = 5.0

	StrongKnowledge = 8.5
	GoodKnowledge   = 7.0
	BasicKnowledge  = 4.0
)

// Per-card thresholds used for pros and cons
const (
	EmpathyPraiseThreshold = 1
	HighConfidence         = 0.6
	LowConfidence          = 0.4
	LowKnowledge           = 5.0
)

// Outcome is the recommendation part of a session result
type Outcome struct {
	Recommendation models.Recommendation
	Message        string
	Badge          models.Badge
}

type recommendationRule struct {
	matches func(avgScore, avgKnowledge float64) bool
	outcome Outcome
}

// recommendationRules are evaluated top to bottom; the first match wins
var recommendationRules = []recommendationRule{
	{
		matches: func(_, k float64) bool { return k < MinKnowledgeForSelection },
		outcome: Outcome{models.RecommendDoNotSelect, "Not recommended: the candidate showed insufficient knowledge of the domain.", models.BadgePoor},
	},
	{
		matches: func(s, _ float64) bool { return s >= ExcellentScore },
		outcome: Outcome{models.RecommendSelect, "MentorFlow strongly recommends selecting this candidate.", models.BadgeExcellent},
	},
	{
		matches: func(s, _ float64) bool { return s >= GoodScore },
		outcome: Outcome{models.RecommendSelect, "MentorFlow recommends selecting this candidate.", models.BadgeGood},
	},
	{
		matches: func(s, _ float64) bool { return s >= AverageScore },
		outcome: Outcome{models.RecommendReview, "MentorFlow suggests reviewing further before a decision.", models.BadgeAverage},
	},
	{
		matches: func(float64, float64) bool { return true },
		outcome: Outcome{models.RecommendDoNotSelect, "Not recommended: low performance across the session.", models.BadgePoor},
	},
}

type knowledgeRule struct {
	min   float64
	badge models.KnowledgeBadge
}

var knowledgeRules = []knowledgeRule{
	{StrongKnowledge, models.KnowledgeStrong},
	{GoodKnowledge, models.KnowledgeGood},
	{BasicKnowledge, models.KnowledgeBasic},
}

// ToneOf classifies a compound sentiment score
func ToneOf(compound float64) models.Tone {
	switch {
	case compound > PositiveToneThreshold:
		return models.TonePositive
	case compound < NegativeToneThreshold:
		return models.ToneNegative
	default:
		return models.ToneNeutral
	}
}

// Recommend picks the outcome for the session averages
func Recommend(avgScore, avgKnowledge float64) Outcome {
	for _, rule := range recommendationRules {
		if rule.matches(avgScore, avgKnowledge) {
			return rule.outcome
		}
	}
	// unreachable, the last rule always matches
	return recommendationRules[len(recommendationRules)-1].outcome
}

// KnowledgeBadgeFor maps an average knowledge score to a badge
func KnowledgeBadgeFor(avgKnowledge float64) models.KnowledgeBadge {
	for _, rule := range knowledgeRules {
		if avgKnowledge >= rule.min {
			return rule.badge
		}
	}
	return models.KnowledgeWeak
}

// Aggregate builds the session result from the score cards. Callers must not
// pass an empty slice.
func Aggregate(cards []models.SpeakerScoreCard) models.SessionResult {
	var totalScore, totalKnowledge float64
	knowledgeCount := 0
	for _, c := range cards {
		totalScore += c.Score
		totalKnowledge += c.KnowledgeScore
		knowledgeCount++
	}

	avgScore := totalScore / float64(len(cards))
	avgKnowledge := DefaultKnowledgeScore
	if knowledgeCount > 0 {
		avgKnowledge = totalKnowledge / float64(knowledgeCount)
	}

	outcome := Recommend(avgScore, avgKnowledge)
	pros, cons := ProsAndCons(avgScore, avgKnowledge, cards)

	return models.SessionResult{
		AvgScore:       avgScore,
		AvgKnowledge:   avgKnowledge,
		Recommendation: outcome.Recommendation,
		Message:        outcome.Message,
		Badge:          outcome.Badge,
		KnowledgeBadge: KnowledgeBadgeFor(avgKnowledge),
		Pros:           pros,
		Cons:           cons,
	}
}

// ProsAndCons runs every check independently and collects the messages
func ProsAndCons(avgScore, avgKnowledge float64, cards []models.SpeakerScoreCard) (pros, cons []string) {
	pros, cons = []string{}, []string{}

	if avgScore >= GoodScore {
		pros = append(pros, "Strong overall communication and interview performance.")
	}
	if avgScore < AverageScore {
		cons = append(cons, "Overall interview performance is below expectations.")
	}
	if avgKnowledge >= GoodKnowledge {
		pros = append(pros, "Good coverage of the expected domain concepts.")
	}
	if avgKnowledge < MinKnowledgeForSelection {
		cons = append(cons, "Limited coverage of the expected domain concepts.")
	}

	for _, c := range cards {
		if c.EmpathyScore >= EmpathyPraiseThreshold {
			pros = append(pros, fmt.Sprintf("%s showed empathy and active listening.", c.Speaker))
		}
		if c.Confidence >= HighConfidence {
			pros = append(pros, fmt.Sprintf("%s spoke with confidence.", c.Speaker))
		}
		if c.Confidence < LowConfidence {
			cons = append(cons, fmt.Sprintf("%s could speak with more confidence.", c.Speaker))
		}
		if c.KnowledgeScore < LowKnowledge {
			cons = append(cons, fmt.Sprintf("%s missed several key domain concepts.", c.Speaker))
		}
	}

	return pros, cons
}
