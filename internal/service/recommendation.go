package service

import (
	"fmt"

	"voicescreen/internal/model"
)

// RecommendationInput is everything the verdict depends on. Scores are on
// the aggregated 0-100 scale.
type RecommendationInput struct {
	Overall       int
	Technical     int
	Communication int
	Culture       int

	TurnsAnswered    int
	RedFlagCount     int
	GreenFlagCount   int
	ImprovementCount int

	// GamingFlagCount is how many turns were independently flagged as
	// irrelevant or repetitive answers
	GamingFlagCount int

	// CategoryScores holds the chronological per-turn scores by category
	CategoryScores map[model.Category][]float64

	SeniorRole bool
}

// RecommendationEngine maps a finished interview's aggregate signals to a
// PROCEED/HOLD/REJECT verdict. The table is evaluated top to bottom and the
// first matching rule wins; identical input always yields the identical
// verdict and reasoning string.
type RecommendationEngine struct{}

// NewRecommendationEngine creates the verdict engine
func NewRecommendationEngine() *RecommendationEngine {
	return &RecommendationEngine{}
}

// Decide produces the verdict plus the human-readable audit trail
func (e *RecommendationEngine) Decide(in RecommendationInput) model.Verdict {
	// Rule 1: gaming guard, overrides everything
	if in.GamingFlagCount >= 2 {
		return verdict(model.RecommendReject,
			"%d turns were flagged as irrelevant or repetitive answers; the candidate did not engage honestly with the process (overall %d/100)",
			in.GamingFlagCount, in.Overall)
	}

	// Rule 2: hard floors
	if in.Overall < 40 {
		return verdict(model.RecommendReject,
			"overall score %d/100 is too low to proceed", in.Overall)
	}
	if in.RedFlagCount >= 4 {
		return verdict(model.RecommendReject,
			"%d substantial red flags accumulated over %d turns (overall %d/100)",
			in.RedFlagCount, in.TurnsAnswered, in.Overall)
	}
	if in.RedFlagCount >= 2 && in.Overall < 50 {
		return verdict(model.RecommendReject,
			"%d red flags combined with a weak overall score of %d/100",
			in.RedFlagCount, in.Overall)
	}
	if in.ImprovementCount >= 8 && in.Overall < 50 {
		return verdict(model.RecommendReject,
			"%d substantial improvement notes combined with a weak overall score of %d/100",
			in.ImprovementCount, in.Overall)
	}
	if in.Technical > 0 && in.Technical < 30 {
		return verdict(model.RecommendReject,
			"technical score %d/100 is critically weak for this role", in.Technical)
	}
	if in.TurnsAnswered >= 10 && in.Overall < 45 {
		return verdict(model.RecommendReject,
			"overall %d/100 after a full %d-turn interview leaves no open questions", in.Overall, in.TurnsAnswered)
	}

	// Rule 3: strong band
	if in.Overall >= 75 {
		return e.strongBand(in)
	}

	// Rule 4: early termination, not enough signal for a confident call
	if in.TurnsAnswered < CorePlanLength {
		if in.Overall < 50 && (in.RedFlagCount >= 1 || in.ImprovementCount >= 5) {
			return verdict(model.RecommendReject,
				"early termination after %d turns with overall %d/100 and %d red flags",
				in.TurnsAnswered, in.Overall, in.RedFlagCount)
		}
		return verdict(model.RecommendHold,
			"early termination after %d turns (overall %d/100); need more signal before a final call",
			in.TurnsAnswered, in.Overall)
	}

	// Rule 5: mid band
	if in.Overall >= 60 {
		return e.midBand(in)
	}

	// Rule 6: default
	return verdict(model.RecommendHold,
		"mixed signals: overall %d/100 with %d red flags and %d green flags over %d turns",
		in.Overall, in.RedFlagCount, in.GreenFlagCount, in.TurnsAnswered)
}

func (e *RecommendationEngine) strongBand(in RecommendationInput) model.Verdict {
	passed := 0
	if in.Technical >= 70 {
		passed++
	}
	if in.Communication >= 70 {
		passed++
	}
	if in.GreenFlagCount >= in.RedFlagCount {
		passed++
	}
	if passed < 2 {
		return verdict(model.RecommendHold,
			"overall %d/100 but the supporting signals disagree (technical %d/100, communication %d/100, %d red vs %d green flags)",
			in.Overall, in.Technical, in.Communication, in.RedFlagCount, in.GreenFlagCount)
	}

	if in.RedFlagCount >= 3 {
		return verdict(model.RecommendHold,
			"strong scores (overall %d/100) undermined by %d red flags; needs human review",
			in.Overall, in.RedFlagCount)
	}

	improvementLimit := 1.25 * float64(in.TurnsAnswered)
	if in.Overall >= 80 {
		improvementLimit = 1.5 * float64(in.TurnsAnswered)
	}
	if improvementLimit < 10 {
		improvementLimit = 10
	}
	if float64(in.ImprovementCount) > improvementLimit {
		return verdict(model.RecommendHold,
			"overall %d/100 but %d improvement notes over %d turns suggest inflated axis scores",
			in.Overall, in.ImprovementCount, in.TurnsAnswered)
	}

	if in.Technical > 0 && in.Technical < 60 {
		return verdict(model.RecommendHold,
			"overall %d/100 but technical score %d/100 needs validation before proceeding",
			in.Overall, in.Technical)
	}

	return verdict(model.RecommendProceed,
		"strong performance: overall %d/100 with solid technical skills (%d/100) and clear communication (%d/100) across %d turns, %d red flags",
		in.Overall, in.Technical, in.Communication, in.TurnsAnswered, in.RedFlagCount)
}

func (e *RecommendationEngine) midBand(in RecommendationInput) model.Verdict {
	if cat, first, last, n := e.detectRecovery(in.CategoryScores); cat != "" {
		return verdict(model.RecommendHold,
			"recovery pattern in %s (first %.1f, last %.1f over %d questions, smoothed average %.1f); flagging for human review rather than auto-proceeding",
			cat, first, last, n, SmoothedCategoryAverage(in.CategoryScores[cat]))
	}

	if cat, first, last := e.detectFailedDoubleChance(in.CategoryScores); cat != "" {
		return verdict(model.RecommendHold,
			"%s failed both early (%.1f) and late (%.1f) despite an acceptable overall %d/100; needs a human look",
			cat, first, last, in.Overall)
	}

	if !in.SeniorRole && in.Overall >= 65 && in.RedFlagCount == 0 {
		return verdict(model.RecommendProceed,
			"overall %d/100 with zero red flags meets the bar for a non-senior role", in.Overall)
	}

	if in.Overall >= 70 && in.RedFlagCount == 0 {
		return verdict(model.RecommendProceed,
			"overall %d/100 with zero red flags over %d turns", in.Overall, in.TurnsAnswered)
	}

	if in.Technical >= 75 && in.Communication < 60 {
		return verdict(model.RecommendHold,
			"technical %d/100 but communication %d/100; communication needs validation in a live round",
			in.Technical, in.Communication)
	}
	if in.Communication >= 75 && in.Technical < 60 {
		return verdict(model.RecommendHold,
			"communication %d/100 but technical %d/100; technical depth needs validation in a live round",
			in.Communication, in.Technical)
	}

	return verdict(model.RecommendHold,
		"mixed signals: overall %d/100 with %d red flags and %d green flags over %d turns",
		in.Overall, in.RedFlagCount, in.GreenFlagCount, in.TurnsAnswered)
}

// substantiveOrder fixes iteration order so verdicts are deterministic
var substantiveOrder = []model.Category{
	model.CategoryBehavioral,
	model.CategoryMotivation,
	model.CategoryTechnical,
	model.CategoryScenario,
	model.CategoryCulture,
}

func (e *RecommendationEngine) detectRecovery(scores map[model.Category][]float64) (model.Category, float64, float64, int) {
	for _, cat := range substantiveOrder {
		seq := scores[cat]
		if len(seq) < 3 {
			continue
		}
		first, last := seq[0], seq[len(seq)-1]
		if first < 5.0 && last >= 7.0 {
			return cat, first, last, len(seq)
		}
	}
	return "", 0, 0, 0
}

func (e *RecommendationEngine) detectFailedDoubleChance(scores map[model.Category][]float64) (model.Category, float64, float64) {
	for _, cat := range substantiveOrder {
		seq := scores[cat]
		if len(seq) < 3 {
			continue
		}
		first, last := seq[0], seq[len(seq)-1]
		if first < 5.0 && last < 5.0 {
			return cat, first, last
		}
	}
	return "", 0, 0
}

func verdict(rec model.Recommendation, format string, args ...interface{}) model.Verdict {
	return model.Verdict{
		Recommendation: rec,
		Reasoning:      fmt.Sprintf(format, args...),
	}
}
