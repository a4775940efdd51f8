package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"voicescreen/internal/model"
)

const (
	// CorePlanLength is the number of fixed-plan questions every interview asks
	CorePlanLength = 8

	// MaxCoreExtension caps core+extension questions, leaving two slots for
	// candidate Q&A and wrap-up inside the hard maximum
	MaxCoreExtension = 13

	// MaxTotalQuestions is the absolute ceiling on questions per interview
	MaxTotalQuestions = 15

	// maxClarifications caps "unclear signal" extension questions
	maxClarifications = 3
)

// CorePlan is the fixed category order for the first 8 questions
var CorePlan = [CorePlanLength]model.Category{
	model.CategoryWarmup,
	model.CategoryBehavioral,
	model.CategoryBehavioral,
	model.CategoryMotivation,
	model.CategoryTechnical,
	model.CategoryTechnical,
	model.CategoryScenario,
	model.CategoryCulture,
}

const (
	candidateQAText = "That covers everything I wanted to ask. Before we wrap up, do you have any questions for me about the role, the team, or the company?"
	wrapupText      = "Thank you so much for your time today! The team will review your responses and get back to you with next steps within a few business days. Have a great rest of your day!"
)

// NextAction is the policy engine's decision for one next-question call
type NextAction struct {
	TurnNo      int
	Category    model.Category
	Difficulty  model.Difficulty
	TargetSkill string
	FollowUp    model.FollowUpMode

	// FixedText is set for the scripted candidate-Q&A and wrap-up turns;
	// when non-empty the drafter is not consulted.
	FixedText string
}

// PolicyEngine decides what happens on each interview turn. Given identical
// state it always produces the identical decision; the only variable part of
// a turn is the question text the drafter returns.
type PolicyEngine struct {
	logger *zap.Logger
}

// NewPolicyEngine creates the turn-level decision engine
func NewPolicyEngine(logger *zap.Logger) *PolicyEngine {
	return &PolicyEngine{logger: logger}
}

// NextQuestion advances the interview by one turn. It mutates state (turn
// cursor, coverage sets, decision log) and returns what to ask, or nil when
// the interview is over. Exactly one question is materialized per call.
func (e *PolicyEngine) NextQuestion(state *model.CandidateState, job *model.Job) *NextAction {
	if state.QuestionCount < 0 || state.QuestionCount >= MaxTotalQuestions {
		// Inconsistent or exhausted cursor: refuse to build on it
		return nil
	}
	if state.HasCovered(model.CategoryWrapup) {
		return nil
	}

	n := state.QuestionCount + 1

	if n <= CorePlanLength {
		return e.coreQuestion(state, job, n)
	}

	// Once the candidate has asked their questions, only wrap-up remains
	if state.HasCovered(model.CategoryCandidateQuestions) {
		return e.scriptedTurn(state, n, model.CategoryWrapup, wrapupText)
	}

	if n <= MaxCoreExtension {
		if state.QuestionCount == CorePlanLength {
			e.evaluateSecondChance(state)
		}
		decision := e.decideTermination(state)
		decision.Timestamp = time.Now().UTC()
		decision.TurnNumber = n
		state.AddDecision(decision)
		e.logger.Info("extension decision",
			zap.String("interviewId", state.InterviewID),
			zap.String("kind", string(decision.Kind)),
			zap.String("reasoning", decision.Reasoning))

		if decision.Kind == model.DecisionTerminate {
			return e.scriptedTurn(state, n, model.CategoryCandidateQuestions, candidateQAText)
		}
		return e.extensionQuestion(state, job, n)
	}

	return e.scriptedTurn(state, n, model.CategoryCandidateQuestions, candidateQAText)
}

func (e *PolicyEngine) coreQuestion(state *model.CandidateState, job *model.Job, n int) *NextAction {
	category := CorePlan[n-1]

	difficulty := e.decideDifficulty(state, n, category)
	if difficulty != state.CurrentDifficulty {
		state.AddDecision(model.Decision{
			Timestamp:  time.Now().UTC(),
			TurnNumber: n,
			Kind:       model.DecisionDifficulty,
			Action:     string(difficulty),
			Reasoning: fmt.Sprintf("difficulty %s -> %s based on recent average %.1f",
				state.CurrentDifficulty, difficulty, state.RecentAvgScore()),
			Context: map[string]float64{"recentAvg": state.RecentAvgScore()},
		})
		state.CurrentDifficulty = difficulty
	}

	var skill string
	if category == model.CategoryTechnical {
		skill = e.selectSkill(state, job, n)
		state.NextSkillToTest = skill
		state.MarkSkillTested(skill)
		state.AddDecision(model.Decision{
			Timestamp:  time.Now().UTC(),
			TurnNumber: n,
			Kind:       model.DecisionSkillSelection,
			Action:     skill,
			Reasoning:  fmt.Sprintf("probing %q on technical turn %d (overall average %.1f)", skill, n, state.AvgScore()),
			Context:    map[string]float64{"avgScore": state.AvgScore()},
		})
	}

	e.advance(state, n, category)
	return &NextAction{
		TurnNo:      n,
		Category:    category,
		Difficulty:  difficulty,
		TargetSkill: skill,
	}
}

func (e *PolicyEngine) extensionQuestion(state *model.CandidateState, job *model.Job, n int) *NextAction {
	mode, reason := e.followUpTrigger(state)
	if mode == "" {
		// The termination policy granted the slot; never waste it
		mode = model.FollowUpDeepDive
		reason = "extension slot granted with no specific trigger, probing deeper by default"
	}
	state.AddDecision(model.Decision{
		Timestamp:  time.Now().UTC(),
		TurnNumber: n,
		Kind:       model.DecisionAddFollowup,
		Action:     string(mode),
		Reasoning:  reason,
		Context:    map[string]float64{"lastScore": state.LastScore},
	})

	category := model.CategoryTechnical
	if state.SecondChanceCategory != "" {
		// One-shot token: consumed in the same step that reads it
		category = state.SecondChanceCategory
		state.SecondChanceCategory = ""
	}

	var skill string
	if category == model.CategoryTechnical {
		skill = e.selectSkill(state, job, n)
		state.NextSkillToTest = skill
		state.MarkSkillTested(skill)
	}

	state.CurrentDifficulty = model.DifficultyHard
	state.ExtensionQuestions++
	e.advance(state, n, category)
	return &NextAction{
		TurnNo:      n,
		Category:    category,
		Difficulty:  model.DifficultyHard,
		TargetSkill: skill,
		FollowUp:    mode,
	}
}

func (e *PolicyEngine) scriptedTurn(state *model.CandidateState, n int, category model.Category, text string) *NextAction {
	e.advance(state, n, category)
	return &NextAction{
		TurnNo:    n,
		Category:  category,
		FixedText: text,
	}
}

func (e *PolicyEngine) advance(state *model.CandidateState, n int, category model.Category) {
	state.QuestionCount = n
	state.LastQuestionType = category
	state.MarkCovered(category)
}

// decideTermination applies the extension-window policy. Exactly one rule
// fires; earlier rules take precedence.
func (e *PolicyEngine) decideTermination(state *model.CandidateState) model.Decision {
	avg := state.AvgScore()
	ctx := map[string]float64{
		"avgScore":      avg,
		"questionCount": float64(state.QuestionCount),
		"redFlags":      float64(len(state.RedFlags)),
		"greenFlags":    float64(len(state.GreenFlags)),
	}

	switch {
	case state.QuestionCount >= MaxCoreExtension:
		return model.Decision{
			Kind:      model.DecisionTerminate,
			Action:    "end_questioning",
			Reasoning: fmt.Sprintf("reached the %d-question ceiling for core and extension questions", MaxCoreExtension),
			Context:   ctx,
		}

	case len(state.RedFlags) >= 3:
		return model.Decision{
			Kind:      model.DecisionTerminate,
			Action:    "end_questioning",
			Reasoning: fmt.Sprintf("%d red flags accumulated, sufficient negative signal", len(state.RedFlags)),
			Context:   ctx,
		}

	case state.StruggleCount >= 3 && avg < 5.0:
		return model.Decision{
			Kind:      model.DecisionTerminate,
			Action:    "end_questioning",
			Reasoning: fmt.Sprintf("%d consecutive weak answers with overall average %.1f, ending early", state.StruggleCount, avg),
			Context:   ctx,
		}

	case state.SecondChanceCategory != "":
		return model.Decision{
			Kind:      model.DecisionContinue,
			Action:    "second_chance",
			Reasoning: fmt.Sprintf("granting one remedial %s question, category underperformed while others are strong", state.SecondChanceCategory),
			Context:   ctx,
		}

	case avg >= 8.5 && (len(state.GreenFlags) >= 3 || state.StrongAnswerCount >= 4):
		return model.Decision{
			Kind:      model.DecisionContinue,
			Action:    "probe_deeper",
			Reasoning: fmt.Sprintf("outstanding performance (average %.1f), probing the ceiling with a harder question", avg),
			Context:   ctx,
		}

	case avg >= 5.0 && avg <= 7.0 && state.ExtensionQuestions < maxClarifications:
		return model.Decision{
			Kind:      model.DecisionContinue,
			Action:    "clarify",
			Reasoning: fmt.Sprintf("signal still unclear (average %.1f), asking clarification %d of %d", avg, state.ExtensionQuestions+1, maxClarifications),
			Context:   ctx,
		}
	}

	return model.Decision{
		Kind:      model.DecisionTerminate,
		Action:    "end_questioning",
		Reasoning: fmt.Sprintf("core plan complete with average %.1f, sufficient signal gathered", avg),
		Context:   ctx,
	}
}

// evaluateSecondChance runs once, entering the extension window. A borderline
// failure in exactly one substantive category, against an otherwise strong
// interview, earns a single remedial question in that category.
func (e *PolicyEngine) evaluateSecondChance(state *model.CandidateState) {
	candidates := []model.Category{
		model.CategoryBehavioral,
		model.CategoryMotivation,
		model.CategoryTechnical,
		model.CategoryScenario,
	}

	var weak []model.Category
	strong := 0
	for _, cat := range candidates {
		scores := state.CategoryScores[cat]
		if len(scores) == 0 {
			continue
		}
		avg := mean(scores)
		low := scores[0]
		for _, v := range scores {
			if v < low {
				low = v
			}
		}
		switch {
		case avg < 6.0 || low < 4.5:
			weak = append(weak, cat)
		case avg >= 7.5:
			strong++
		}
	}

	if len(weak) != 1 || strong < 2 {
		return
	}

	state.SecondChanceCategory = weak[0]
	state.AddDecision(model.Decision{
		Timestamp:  time.Now().UTC(),
		TurnNumber: state.QuestionCount + 1,
		Kind:       model.DecisionAddFollowup,
		Action:     "schedule_second_chance",
		Reasoning: fmt.Sprintf("%s underperformed while %d other categories are strong, scheduling one remedial question",
			weak[0], strong),
		Context: map[string]float64{"strongCategories": float64(strong)},
	})
}

// followUpTrigger picks the flavor of an extension question
func (e *PolicyEngine) followUpTrigger(state *model.CandidateState) (model.FollowUpMode, string) {
	if state.LastScore < 5.0 && state.LastQuestionType.IsSubstantive() && len(state.PerformanceTrend) > 0 {
		return model.FollowUpClarify,
			fmt.Sprintf("last %s answer scored %.1f, re-approaching from a different angle", state.LastQuestionType, state.LastScore)
	}
	if state.LastScore >= 9.0 &&
		(state.LastQuestionType == model.CategoryTechnical || state.LastQuestionType == model.CategoryScenario) {
		return model.FollowUpDeepDive,
			fmt.Sprintf("last %s answer scored %.1f, pushing into harder territory", state.LastQuestionType, state.LastScore)
	}
	if len(state.RedFlags) > 0 && len(state.RedFlags) > len(state.DecisionsMade)-5 {
		return model.FollowUpProbeRedFlag,
			fmt.Sprintf("recent red flag on record (%d total), giving the candidate a chance to address it", len(state.RedFlags))
	}
	return "", ""
}

// decideDifficulty derives the next question's difficulty from the recent
// trend. Warmup is always easy; the first two turns default to medium; a
// struggling candidate is eased back to medium rather than easy so scores
// stay comparable across candidates.
func (e *PolicyEngine) decideDifficulty(state *model.CandidateState, n int, category model.Category) model.Difficulty {
	if category == model.CategoryWarmup {
		return model.DifficultyEasy
	}
	if n <= 2 || len(state.PerformanceTrend) == 0 {
		return model.DifficultyMedium
	}
	recent := state.RecentAvgScore()
	if recent >= 8.0 {
		return model.DifficultyHard
	}
	return model.DifficultyMedium
}

// selectSkill picks the skill to probe on a technical turn
func (e *PolicyEngine) selectSkill(state *model.CandidateState, job *model.Job, n int) string {
	const genericSkill = "general technical knowledge"

	if job == nil || len(job.MustHaveSkills) == 0 {
		return genericSkill
	}

	var untested []string
	for _, skill := range job.MustHaveSkills {
		if !state.HasTestedSkill(skill) {
			untested = append(untested, skill)
		}
	}
	if len(untested) == 0 {
		pool := append(append([]string{}, job.NiceToHaveSkills...), job.TechnicalFocusAreas...)
		for _, skill := range pool {
			if !state.HasTestedSkill(skill) {
				untested = append(untested, skill)
			}
		}
	}

	// The two planned technical slots walk the must-have list in order;
	// the 5th question takes the first untested skill, the 6th the next.
	if n == 5 || n == 6 {
		if len(untested) > 0 {
			return untested[0]
		}
		return job.MustHaveSkills[0]
	}

	// Later technical slots: re-test the weakest ground when the candidate
	// is struggling overall, otherwise keep advancing through the list
	if state.AvgScore() < 6.0 && len(state.SkillsTested) > 0 {
		return state.SkillsTested[0]
	}
	if len(untested) > 0 {
		return untested[0]
	}
	return genericSkill
}
