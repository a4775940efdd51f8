package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"voicescreen/internal/model"
)

// scoringWorkers bounds concurrent scoring calls at finish time
const scoringWorkers = 5

// Finish closes the question loop, bulk-scores every answered turn, computes
// the verdict and signals, persists everything, and pushes the result to the
// ATS. Every stage after the session lookup is isolated: a failing stage
// degrades to a safe default and the remaining stages still run. The only
// error this returns is an unknown interview id.
func (s *InterviewService) Finish(ctx context.Context, interviewID string) (*model.Report, error) {
	interview, err := s.sessions.GetByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if interview == nil {
		return nil, ErrNotFound
	}

	turns, err := s.turns.GetByInterview(ctx, interviewID)
	if err != nil {
		s.logger.Error("failed to load transcript for scoring", zap.String("interviewId", interviewID), zap.Error(err))
		turns = nil
	}

	state, err := s.states.Load(ctx, interviewID)
	if err != nil || state == nil {
		if err != nil {
			s.logger.Error("failed to load candidate state at finish", zap.String("interviewId", interviewID), zap.Error(err))
		}
		state = model.NewCandidateState(interviewID, interview.CandidateID, interview.JobID)
	}

	job, err := s.jobs.GetByID(ctx, state.JobID)
	if err != nil {
		s.logger.Warn("job lookup failed at finish", zap.String("jobId", state.JobID), zap.Error(err))
	}

	evals := s.scoreAnswers(ctx, turns, job)
	s.rebuildScoringState(state, evals)

	scores := s.aggregate(interviewID, state, evals, job)
	if err := s.scores.SaveScores(ctx, scores); err != nil {
		s.logger.Error("failed to persist scores", zap.String("interviewId", interviewID), zap.Error(err))
	}

	signals := s.signals.Compute(ctx, interviewID, turns)
	if err := s.scores.SaveSignals(ctx, signals); err != nil {
		s.logger.Error("failed to persist signals", zap.String("interviewId", interviewID), zap.Error(err))
	}

	if err := s.states.Save(ctx, state); err != nil {
		s.logger.Warn("failed to persist final candidate state", zap.String("interviewId", interviewID), zap.Error(err))
	}
	if err := s.sessions.MarkEnded(ctx, interviewID, model.StatusCompleted); err != nil {
		s.logger.Error("failed to mark interview completed", zap.String("interviewId", interviewID), zap.Error(err))
	}

	s.ats.Sync(ctx, &ATSPayload{
		InterviewID:    interviewID,
		CandidateID:    interview.CandidateID,
		JobID:          interview.JobID,
		Scores:         scores.Scores,
		Recommendation: scores.Recommendation,
		Reasoning:      scores.Reasoning,
		CompletedAt:    scores.CreatedAt,
	})

	s.logger.Info("interview finished",
		zap.String("interviewId", interviewID),
		zap.Int("answeredTurns", len(evals)),
		zap.Int("overall", scores.Scores.Overall),
		zap.String("recommendation", string(scores.Recommendation)))

	return &model.Report{
		InterviewID: interviewID,
		CandidateID: interview.CandidateID,
		JobID:       interview.JobID,
		Status:      model.StatusCompleted,
		Transcript:  turns,
		Scores:      scores,
		Signals:     signals,
	}, nil
}

// scoreAnswers pairs each agent question with the candidate's answer and
// grades the pairs on a bounded worker pool. Scoring calls are independent;
// one failure degrades that single turn, never the batch.
func (s *InterviewService) scoreAnswers(ctx context.Context, turns []model.Turn, job *model.Job) []*model.Evaluation {
	questions := make(map[int]model.Turn)
	answers := make(map[int]string)
	for _, t := range turns {
		switch {
		case t.Speaker == model.SpeakerAgent && t.Category != "":
			if _, seen := questions[t.TurnNo]; !seen {
				questions[t.TurnNo] = t
			}
		case t.Speaker == model.SpeakerCandidate:
			if _, seen := answers[t.TurnNo]; !seen {
				answers[t.TurnNo] = t.Text
			}
		}
	}

	var requests []ScoreRequest
	for turnNo, q := range questions {
		answer, ok := answers[turnNo]
		if !ok {
			continue
		}
		req := ScoreRequest{
			TurnNo:   turnNo,
			Question: q.Text,
			Answer:   answer,
			Category: q.Category,
			Job:      job,
		}
		if q.Rubric != nil {
			req.Rubric = *q.Rubric
		}
		requests = append(requests, req)
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].TurnNo < requests[j].TurnNo })

	evals := make([]*model.Evaluation, len(requests))
	sem := make(chan struct{}, scoringWorkers)
	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(i int, req ScoreRequest) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			evals[i] = s.scorer.Score(ctx, req)
		}(i, req)
	}
	wg.Wait()

	return evals
}

// rebuildScoringState replays the evaluations into the candidate state in
// turn order. The scoring fields are reset first so calling Finish twice
// yields the same state, not doubled trends.
func (s *InterviewService) rebuildScoringState(state *model.CandidateState, evals []*model.Evaluation) {
	state.PerformanceTrend = nil
	state.CategoryScores = make(map[model.Category][]float64)
	state.RedFlags = nil
	state.GreenFlags = nil
	state.StruggleCount = 0
	state.StrongAnswerCount = 0

	for _, eval := range evals {
		if eval == nil || eval.Category.IsLowSignal() {
			continue
		}
		overall := eval.Overall()
		state.RecordScore(overall, eval.Category)
		for _, flag := range eval.RedFlags {
			state.AddRedFlag(flag)
		}
		if overall >= 8.0 {
			state.AddGreenFlag(fmt.Sprintf("excellent %s answer on turn %d", eval.Category, eval.TurnNo))
		}
	}
}

func (s *InterviewService) aggregate(interviewID string, state *model.CandidateState, evals []*model.Evaluation, job *model.Job) *model.InterviewScores {
	var techSum, commSum, cultureSum float64
	var substantive int
	improvementSet := make(map[string]struct{})
	strengthSet := make(map[string]struct{})
	var strengths, improvements []string
	gaming := 0

	for _, eval := range evals {
		if eval == nil || eval.Category.IsLowSignal() {
			continue
		}
		substantive++
		techSum += eval.Technical
		commSum += eval.Communication
		cultureSum += (eval.Structure + eval.Confidence) / 2.0

		for _, item := range eval.Strengths {
			if _, seen := strengthSet[item]; !seen && len(item) > 10 {
				strengthSet[item] = struct{}{}
				strengths = append(strengths, item)
			}
		}
		for _, item := range eval.Improvements {
			if _, seen := improvementSet[item]; !seen {
				improvementSet[item] = struct{}{}
				improvements = append(improvements, item)
			}
		}
		for _, flag := range eval.RedFlags {
			lower := strings.ToLower(flag)
			if strings.Contains(lower, "irrelevant answer") || strings.Contains(lower, "repetitive content") {
				gaming++
				break
			}
		}
	}

	if substantive == 0 {
		// Nothing scorable survived; the candidate still gets a report
		return &model.InterviewScores{
			InterviewID:    interviewID,
			Recommendation: model.RecommendHold,
			Reasoning:      "no scorable answers were recorded; a human needs to review this interview",
			Highlights:     []string{},
			Concerns:       []string{"interview produced no scorable answers"},
		}
	}

	n := float64(substantive)
	summary := model.ScoreSummary{
		Technical:     roundScore(techSum / n * 10),
		Communication: roundScore(commSum / n * 10),
		Culture:       roundScore(cultureSum / n * 10),
	}
	summary.Overall = roundScore((float64(summary.Technical) + float64(summary.Communication) + float64(summary.Culture)) / 3.0)

	verdict := s.recommender.Decide(RecommendationInput{
		Overall:          summary.Overall,
		Technical:        summary.Technical,
		Communication:    summary.Communication,
		Culture:          summary.Culture,
		TurnsAnswered:    len(evals),
		RedFlagCount:     len(state.RedFlags),
		GreenFlagCount:   len(state.GreenFlags),
		ImprovementCount: len(improvements),
		GamingFlagCount:  gaming,
		CategoryScores:   state.CategoryScores,
		SeniorRole:       job != nil && job.IsSenior(),
	})

	highlights := strengths
	if len(highlights) > 5 {
		highlights = highlights[:5]
	}

	concerns := append([]string{}, state.RedFlags...)
	if len(evals) < CorePlanLength {
		concerns = append(concerns, fmt.Sprintf("interview terminated early after %d questions", len(evals)))
	}
	for _, item := range improvements {
		if len(concerns) >= 5 {
			break
		}
		concerns = append(concerns, item)
	}

	return &model.InterviewScores{
		InterviewID:    interviewID,
		Scores:         summary,
		Recommendation: verdict.Recommendation,
		Reasoning:      verdict.Reasoning,
		Highlights:     highlights,
		Concerns:       concerns,
	}
}

func roundScore(v float64) int {
	rounded := int(math.Round(v))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}
