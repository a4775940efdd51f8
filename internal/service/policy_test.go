package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"voicescreen/internal/model"
)

func testJob() *model.Job {
	return &model.Job{
		ID:                  "job-1",
		Title:               "Backend Engineer",
		Level:               "Mid",
		MustHaveSkills:      []string{"Go", "PostgreSQL", "REST API design"},
		NiceToHaveSkills:    []string{"Redis"},
		TechnicalFocusAreas: []string{"distributed systems"},
	}
}

func newEngine() *PolicyEngine {
	return NewPolicyEngine(zap.NewNop())
}

func TestCorePlanDeterminism(t *testing.T) {
	engine := newEngine()
	state := model.NewCandidateState("INT-1", "cand-1", "job-1")

	for i := 0; i < CorePlanLength; i++ {
		action := engine.NextQuestion(state, testJob())
		require.NotNil(t, action, "core plan question %d", i+1)
		assert.Equal(t, i+1, action.TurnNo)
		assert.Equal(t, CorePlan[i], action.Category)
		assert.Empty(t, action.FixedText)
	}
	assert.Equal(t, CorePlanLength, state.QuestionCount)
}

func TestTurnMonotonicityUnscored(t *testing.T) {
	engine := newEngine()
	state := model.NewCandidateState("INT-1", "cand-1", "job-1")

	// With no scores recorded the extension window terminates by default,
	// so the full interview is 8 core + Q&A + wrap-up.
	var turnNos []int
	for {
		action := engine.NextQuestion(state, testJob())
		if action == nil {
			break
		}
		turnNos = append(turnNos, action.TurnNo)
	}

	require.Len(t, turnNos, 10)
	for i, n := range turnNos {
		assert.Equal(t, i+1, n, "turn numbers must increase by exactly 1")
	}
	assert.Equal(t, model.CategoryCandidateQuestions, state.TopicsCovered[len(state.TopicsCovered)-2])
	assert.Equal(t, model.CategoryWrapup, state.TopicsCovered[len(state.TopicsCovered)-1])

	// Exhausted interview never produces another question
	assert.Nil(t, engine.NextQuestion(state, testJob()))
}

func TestScriptedClosingTurns(t *testing.T) {
	engine := newEngine()
	state := model.NewCandidateState("INT-1", "cand-1", "job-1")
	state.QuestionCount = CorePlanLength
	for _, c := range CorePlan {
		state.MarkCovered(c)
	}

	qa := engine.NextQuestion(state, testJob())
	require.NotNil(t, qa)
	assert.Equal(t, model.CategoryCandidateQuestions, qa.Category)
	assert.NotEmpty(t, qa.FixedText)

	wrapup := engine.NextQuestion(state, testJob())
	require.NotNil(t, wrapup)
	assert.Equal(t, model.CategoryWrapup, wrapup.Category)
	assert.NotEmpty(t, wrapup.FixedText)

	assert.Nil(t, engine.NextQuestion(state, testJob()))
}

func TestInvariantGuardRefusesInconsistentState(t *testing.T) {
	engine := newEngine()

	state := model.NewCandidateState("INT-1", "cand-1", "job-1")
	state.QuestionCount = MaxTotalQuestions
	assert.Nil(t, engine.NextQuestion(state, testJob()))

	state = model.NewCandidateState("INT-1", "cand-1", "job-1")
	state.QuestionCount = -1
	assert.Nil(t, engine.NextQuestion(state, testJob()))
}

func coreCompleteState(scores []float64) *model.CandidateState {
	state := model.NewCandidateState("INT-1", "cand-1", "job-1")
	for i, score := range scores {
		state.RecordScore(score, CorePlan[i%CorePlanLength])
	}
	state.QuestionCount = CorePlanLength
	for _, c := range CorePlan {
		state.MarkCovered(c)
	}
	state.LastQuestionType = model.CategoryCulture
	return state
}

func TestTerminationOnRedFlags(t *testing.T) {
	engine := newEngine()
	state := coreCompleteState([]float64{7, 7, 7, 7, 7, 7, 7, 7})
	state.AddRedFlag("fabricated project details")
	state.AddRedFlag("evasive about dates")
	state.AddRedFlag("blamed every failure on teammates")

	action := engine.NextQuestion(state, testJob())
	require.NotNil(t, action)
	assert.Equal(t, model.CategoryCandidateQuestions, action.Category)

	last := state.DecisionsMade[len(state.DecisionsMade)-1]
	assert.Equal(t, model.DecisionTerminate, last.Kind)
	assert.Contains(t, last.Reasoning, "red flags")
}

func TestTerminationOnSustainedStruggle(t *testing.T) {
	engine := newEngine()
	state := coreCompleteState([]float64{4, 4, 5, 4, 3, 2, 2, 2})
	require.GreaterOrEqual(t, state.StruggleCount, 3)
	require.Less(t, state.AvgScore(), 5.0)

	action := engine.NextQuestion(state, testJob())
	require.NotNil(t, action)
	assert.Equal(t, model.CategoryCandidateQuestions, action.Category)
}

func TestOutstandingCandidateGetsExtension(t *testing.T) {
	engine := newEngine()
	state := coreCompleteState([]float64{9, 9, 9, 9, 9, 9, 9, 9})
	require.GreaterOrEqual(t, state.StrongAnswerCount, 4)

	action := engine.NextQuestion(state, testJob())
	require.NotNil(t, action)
	assert.Equal(t, model.CategoryTechnical, action.Category)
	assert.Equal(t, model.DifficultyHard, action.Difficulty)
	assert.NotEmpty(t, action.FollowUp)
	assert.Equal(t, 1, state.ExtensionQuestions)
}

func TestUnclearSignalClarificationCap(t *testing.T) {
	engine := newEngine()
	state := coreCompleteState([]float64{6, 6, 6, 6, 6, 6, 6, 6})

	for i := 0; i < maxClarifications; i++ {
		action := engine.NextQuestion(state, testJob())
		require.NotNil(t, action)
		assert.True(t, action.Category.IsSubstantive(), "clarification %d must be a real question", i+1)
	}
	assert.Equal(t, maxClarifications, state.ExtensionQuestions)

	// Cap reached: the next call falls through to termination
	action := engine.NextQuestion(state, testJob())
	require.NotNil(t, action)
	assert.Equal(t, model.CategoryCandidateQuestions, action.Category)
}

func TestHardQuestionCeiling(t *testing.T) {
	engine := newEngine()
	state := coreCompleteState([]float64{9, 9, 9, 9, 9, 9, 9, 9})
	state.AddGreenFlag("g1")
	state.AddGreenFlag("g2")
	state.AddGreenFlag("g3")

	// An outstanding candidate keeps earning extensions, but never past
	// the 13-question ceiling.
	questions := 0
	for {
		action := engine.NextQuestion(state, testJob())
		require.NotNil(t, action)
		if !action.Category.IsSubstantive() {
			assert.Equal(t, model.CategoryCandidateQuestions, action.Category)
			break
		}
		questions++
		require.LessOrEqual(t, state.QuestionCount, MaxCoreExtension)
	}
	assert.Equal(t, MaxCoreExtension-CorePlanLength, questions)
	assert.LessOrEqual(t, state.QuestionCount, MaxTotalQuestions)
}

func TestSecondChanceIsSingleUse(t *testing.T) {
	engine := newEngine()
	state := model.NewCandidateState("INT-1", "cand-1", "job-1")
	// behavioral is the single weak category; technical and scenario are strong
	state.RecordScore(5.0, model.CategoryBehavioral)
	state.RecordScore(5.0, model.CategoryBehavioral)
	state.RecordScore(8.0, model.CategoryTechnical)
	state.RecordScore(8.0, model.CategoryTechnical)
	state.RecordScore(8.0, model.CategoryScenario)
	state.RecordScore(7.0, model.CategoryMotivation)
	state.QuestionCount = CorePlanLength
	for _, c := range CorePlan {
		state.MarkCovered(c)
	}
	state.LastQuestionType = model.CategoryCulture

	action := engine.NextQuestion(state, testJob())
	require.NotNil(t, action)
	assert.Equal(t, model.CategoryBehavioral, action.Category)
	assert.Equal(t, model.DifficultyHard, action.Difficulty)
	assert.Empty(t, state.SecondChanceCategory, "flag must be consumed the moment the question is asked")

	// The boundary evaluation never reruns, so the remedial question
	// cannot repeat even though behavioral is still weak.
	for {
		next := engine.NextQuestion(state, testJob())
		require.NotNil(t, next)
		if !next.Category.IsSubstantive() {
			break
		}
		assert.NotEqual(t, model.CategoryBehavioral, next.Category)
	}
}

func TestSecondChanceNotGrantedWithTwoWeakCategories(t *testing.T) {
	engine := newEngine()
	state := model.NewCandidateState("INT-1", "cand-1", "job-1")
	state.RecordScore(5.0, model.CategoryBehavioral)
	state.RecordScore(5.0, model.CategoryMotivation)
	state.RecordScore(8.0, model.CategoryTechnical)
	state.RecordScore(8.0, model.CategoryScenario)
	state.QuestionCount = CorePlanLength
	for _, c := range CorePlan {
		state.MarkCovered(c)
	}

	engine.NextQuestion(state, testJob())
	assert.Empty(t, state.SecondChanceCategory)
}

func TestDifficultyFollowsRecentTrend(t *testing.T) {
	engine := newEngine()

	// Strong recent trend escalates to hard
	state := model.NewCandidateState("INT-1", "cand-1", "job-1")
	state.RecordScore(9.0, model.CategoryWarmup)
	state.RecordScore(8.5, model.CategoryBehavioral)
	state.QuestionCount = 2
	state.MarkCovered(model.CategoryWarmup)
	state.MarkCovered(model.CategoryBehavioral)

	action := engine.NextQuestion(state, testJob())
	require.NotNil(t, action)
	assert.Equal(t, model.DifficultyHard, action.Difficulty)
	assert.Equal(t, model.DifficultyHard, state.CurrentDifficulty)

	var kinds []model.DecisionKind
	for _, d := range state.DecisionsMade {
		kinds = append(kinds, d.Kind)
	}
	assert.Contains(t, kinds, model.DecisionDifficulty)

	// A struggling candidate eases back to medium, never below
	state = model.NewCandidateState("INT-2", "cand-2", "job-1")
	state.CurrentDifficulty = model.DifficultyHard
	state.RecordScore(3.0, model.CategoryWarmup)
	state.RecordScore(2.0, model.CategoryBehavioral)
	state.RecordScore(4.0, model.CategoryBehavioral)
	state.QuestionCount = 3

	action = engine.NextQuestion(state, testJob())
	require.NotNil(t, action)
	assert.Equal(t, model.DifficultyMedium, action.Difficulty)
}

func TestWarmupIsAlwaysEasy(t *testing.T) {
	engine := newEngine()
	state := model.NewCandidateState("INT-1", "cand-1", "job-1")

	action := engine.NextQuestion(state, testJob())
	require.NotNil(t, action)
	assert.Equal(t, model.CategoryWarmup, action.Category)
	assert.Equal(t, model.DifficultyEasy, action.Difficulty)
}

func TestSkillSelectionWalksMustHaveList(t *testing.T) {
	engine := newEngine()
	state := model.NewCandidateState("INT-1", "cand-1", "job-1")
	job := testJob()

	var technicalSkills []string
	for i := 0; i < CorePlanLength; i++ {
		action := engine.NextQuestion(state, job)
		require.NotNil(t, action)
		if action.Category == model.CategoryTechnical {
			technicalSkills = append(technicalSkills, action.TargetSkill)
		}
	}

	assert.Equal(t, []string{"Go", "PostgreSQL"}, technicalSkills)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, state.SkillsTested)
}

func TestSkillSelectionRetestsWeakGround(t *testing.T) {
	engine := newEngine()
	state := coreCompleteState([]float64{5, 5, 6, 5, 5, 6, 5, 6})
	state.MarkSkillTested("Go")
	state.MarkSkillTested("PostgreSQL")
	require.Less(t, state.AvgScore(), 6.0)

	// Unclear average earns a clarification; the technical slot re-tests
	// the first probed skill instead of advancing.
	action := engine.NextQuestion(state, testJob())
	require.NotNil(t, action)
	require.Equal(t, model.CategoryTechnical, action.Category)
	assert.Equal(t, "Go", action.TargetSkill)
}

func TestSkillSelectionWithoutJob(t *testing.T) {
	engine := newEngine()
	state := model.NewCandidateState("INT-1", "cand-1", "job-1")
	state.QuestionCount = 4

	action := engine.NextQuestion(state, nil)
	require.NotNil(t, action)
	require.Equal(t, model.CategoryTechnical, action.Category)
	assert.Equal(t, "general technical knowledge", action.TargetSkill)
}

func TestDecisionLogIsAppendOnly(t *testing.T) {
	engine := newEngine()
	state := coreCompleteState([]float64{6, 6, 6, 6, 6, 6, 6, 6})

	before := len(state.DecisionsMade)
	engine.NextQuestion(state, testJob())
	require.Greater(t, len(state.DecisionsMade), before)

	for _, d := range state.DecisionsMade[before:] {
		assert.False(t, d.Timestamp.IsZero())
		assert.NotEmpty(t, d.Reasoning)
	}
}
