package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"voicescreen/internal/config"
	"voicescreen/internal/model"
)

// disabledScorer has no API key, so every path stays local
func disabledScorer() AnswerScorer {
	cfg := &config.AIConfig{TimeoutMS: 100}
	return NewAnswerScorer(NewGeminiClient(cfg), zap.NewNop())
}

func TestGibberishDetection(t *testing.T) {
	gibberish := []string{
		"",
		"   ",
		"yes",
		"ok sure",
		"asdfasdfasdf keyboard warrior text here",
		"qwerqwer something something words here",
		strings.Repeat("THIS IS ALL SHOUTING AND NOTHING ELSE ", 3),
		"zzz bbbb cccc dddd ffff gggg hhhh jjjj",
	}
	for _, answer := range gibberish {
		assert.True(t, IsGibberish(answer), "expected gibberish: %q", answer)
	}

	genuine := []string{
		"I led the migration of our payments service from a monolith to three Go services.",
		"In my last role I handled around forty support tickets a day and kept CSAT above 95%.",
	}
	for _, answer := range genuine {
		assert.False(t, IsGibberish(answer), "expected genuine: %q", answer)
	}
}

func TestGibberishScoresZeroWithoutExternalCall(t *testing.T) {
	scorer := disabledScorer()

	eval := scorer.Score(context.Background(), ScoreRequest{
		TurnNo:   3,
		Question: "Tell me about a challenge you faced.",
		Answer:   "idk",
		Category: model.CategoryBehavioral,
	})

	require.NotNil(t, eval)
	assert.Zero(t, eval.Technical)
	assert.Zero(t, eval.Communication)
	assert.Zero(t, eval.Structure)
	assert.Zero(t, eval.Confidence)
	assert.NotEmpty(t, eval.RedFlags)
}

func TestLowSignalCategoriesScoreNeutral(t *testing.T) {
	scorer := disabledScorer()

	for _, category := range []model.Category{model.CategoryWarmup, model.CategoryCandidateQuestions, model.CategoryWrapup} {
		// Even a one-word answer: low-signal turns skip the gibberish gate
		eval := scorer.Score(context.Background(), ScoreRequest{
			TurnNo:   1,
			Answer:   "hi",
			Category: category,
		})
		require.NotNil(t, eval)
		assert.Equal(t, 5.0, eval.Technical, string(category))
		assert.Equal(t, 5.0, eval.Communication, string(category))
		assert.Equal(t, 5.0, eval.Structure, string(category))
		assert.Equal(t, 5.0, eval.Confidence, string(category))
		assert.Empty(t, eval.RedFlags)
	}
}

func TestLengthFallbackIsClipped(t *testing.T) {
	scorer := disabledScorer()

	short := scorer.Score(context.Background(), ScoreRequest{
		TurnNo:   2,
		Answer:   "I worked on backend systems at my last company for a while.",
		Category: model.CategoryTechnical,
	})
	assert.Equal(t, 5.0, short.Technical, "short genuine answers sit at the floor of the fallback band")

	long := scorer.Score(context.Background(), ScoreRequest{
		TurnNo:   2,
		Answer:   strings.Repeat("we shipped the service and measured latency improvements across the fleet ", 20),
		Category: model.CategoryTechnical,
	})
	assert.Equal(t, 10.0, long.Technical, "fallback band is capped at 10")
	assert.GreaterOrEqual(t, long.Technical, short.Technical)
}

func TestSmoothedCategoryAverage(t *testing.T) {
	// Fewer than 3 samples: plain mean
	assert.InDelta(t, 6.0, SmoothedCategoryAverage([]float64{4, 8}), 0.001)
	assert.Equal(t, 0.0, SmoothedCategoryAverage(nil))

	// One collapse against an otherwise strong category gets pulled up
	scores := []float64{8, 2, 9}
	// rest avg 8.5, gap 6.5 > 4 so min becomes 0.3*2 + 0.7*8.5 = 6.55
	assert.InDelta(t, (8+9+6.55)/3, SmoothedCategoryAverage(scores), 0.001)

	// A consistent category is untouched
	assert.InDelta(t, 6.0, SmoothedCategoryAverage([]float64{5, 6, 7}), 0.001)
}
