package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"voicescreen/internal/cache"
	"voicescreen/internal/model"
	"voicescreen/internal/repository"
)

// DisclosureText is read to the candidate before consent is requested
const DisclosureText = "Hello! Before we begin, a quick disclosure: this screening interview is conducted by an AI assistant. " +
	"Your responses will be recorded, transcribed, and evaluated to help the hiring team make a decision. " +
	"A human reviewer will see the results before any final decision is made. " +
	"Do you consent to proceeding on these terms? Please answer yes or no."

const candidateQAFallbackReply = "That's a great question. I don't have the full details on that, but I'll make sure the hiring team addresses it when they follow up with you."

// InterviewService orchestrates the interview lifecycle: session creation,
// the compliance gate, the question/answer loop, and finalization.
type InterviewService struct {
	sessions repository.SessionRepo
	turns    repository.TurnRepo
	scores   repository.ScoreRepo
	jobs     repository.JobRepo
	states   cache.StateCache

	policy      *PolicyEngine
	drafter     QuestionDrafter
	scorer      AnswerScorer
	recommender *RecommendationEngine
	signals     *SignalsService
	ats         *ATSSyncService
	gemini      *GeminiClient
	logger      *zap.Logger
}

// NewInterviewService wires the orchestrator
func NewInterviewService(
	sessions repository.SessionRepo,
	turns repository.TurnRepo,
	scores repository.ScoreRepo,
	jobs repository.JobRepo,
	states cache.StateCache,
	policy *PolicyEngine,
	drafter QuestionDrafter,
	scorer AnswerScorer,
	recommender *RecommendationEngine,
	signals *SignalsService,
	ats *ATSSyncService,
	gemini *GeminiClient,
	logger *zap.Logger,
) *InterviewService {
	return &InterviewService{
		sessions:    sessions,
		turns:       turns,
		scores:      scores,
		jobs:        jobs,
		states:      states,
		policy:      policy,
		drafter:     drafter,
		scorer:      scorer,
		recommender: recommender,
		signals:     signals,
		ats:         ats,
		gemini:      gemini,
		logger:      logger,
	}
}

// Create starts a new interview session. A candidate can have at most one
// interview in a pre-completion status at a time.
func (s *InterviewService) Create(ctx context.Context, candidateID, jobID, channel string) (*model.Interview, error) {
	active, err := s.sessions.FindActiveByCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active interviews: %w", err)
	}
	if active != nil {
		return nil, ErrActiveInterview
	}

	if channel == "" {
		channel = "web"
	}
	interview := &model.Interview{
		ID:            newInterviewID(),
		CandidateID:   candidateID,
		JobID:         jobID,
		Status:        model.StatusCreated,
		Channel:       channel,
		ConsentStatus: model.ConsentPending,
	}

	// Persistence retries apply here only; LLM calls are never retried
	var createErr error
	for attempt := 0; attempt < 3; attempt++ {
		if createErr = s.sessions.Create(ctx, interview); createErr == nil {
			break
		}
		s.logger.Warn("interview creation attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(createErr))
	}
	if createErr != nil {
		return nil, fmt.Errorf("failed to create interview: %w", createErr)
	}

	state := model.NewCandidateState(interview.ID, candidateID, jobID)
	if err := s.states.Save(ctx, state); err != nil {
		s.logger.Warn("failed to seed candidate state", zap.String("interviewId", interview.ID), zap.Error(err))
	}

	s.logger.Info("interview created",
		zap.String("interviewId", interview.ID),
		zap.String("candidateId", candidateID),
		zap.String("jobId", jobID))
	return interview, nil
}

// Disclosure returns the AI disclosure text and advances the session state
func (s *InterviewService) Disclosure(ctx context.Context, interviewID string) (string, error) {
	interview, err := s.sessions.GetByID(ctx, interviewID)
	if err != nil {
		return "", err
	}
	if interview == nil {
		return "", ErrNotFound
	}

	if interview.Status == model.StatusCreated {
		if err := s.sessions.UpdateStatus(ctx, interviewID, model.StatusDisclosureDone); err != nil {
			return "", err
		}
	}

	if err := s.turns.Save(ctx, &model.Turn{
		InterviewID: interviewID,
		TurnNo:      0,
		Speaker:     model.SpeakerSystem,
		Text:        DisclosureText,
	}); err != nil {
		s.logger.Warn("failed to record disclosure turn", zap.String("interviewId", interviewID), zap.Error(err))
	}

	return DisclosureText, nil
}

var consentAffirmatives = []string{"yes", "yeah", "yep", "sure", "i consent", "i agree", "ok", "okay", "absolutely", "of course"}

// Consent records the candidate's consent response. Denial is terminal: the
// session goes straight to ENDED and never enters the question loop.
func (s *InterviewService) Consent(ctx context.Context, interviewID, response string) (bool, error) {
	interview, err := s.sessions.GetByID(ctx, interviewID)
	if err != nil {
		return false, err
	}
	if interview == nil {
		return false, ErrNotFound
	}

	granted := false
	normalized := strings.ToLower(strings.TrimSpace(response))
	for _, affirmative := range consentAffirmatives {
		if normalized == affirmative || strings.HasPrefix(normalized, affirmative+" ") ||
			strings.HasPrefix(normalized, affirmative+",") || strings.HasPrefix(normalized, affirmative+".") {
			granted = true
			break
		}
	}

	if !granted {
		if err := s.sessions.UpdateConsent(ctx, interviewID, model.ConsentDenied, response); err != nil {
			return false, err
		}
		if err := s.sessions.MarkEnded(ctx, interviewID, model.StatusEnded); err != nil {
			return false, err
		}
		s.logger.Info("consent denied, interview ended", zap.String("interviewId", interviewID))
		return false, nil
	}

	if err := s.sessions.UpdateConsent(ctx, interviewID, model.ConsentGranted, response); err != nil {
		return false, err
	}
	if err := s.sessions.UpdateStatus(ctx, interviewID, model.StatusConsentGranted); err != nil {
		return false, err
	}
	return true, nil
}

// NextQuestionResponse is returned for each next-question call
type NextQuestionResponse struct {
	TurnNo     int              `json:"turnNo"`
	Final      bool             `json:"final"`
	Question   string           `json:"question,omitempty"`
	Category   model.Category   `json:"category,omitempty"`
	Difficulty model.Difficulty `json:"difficulty,omitempty"`
}

// NextQuestion materializes the next interview question. The policy decision
// and the state write happen before the response is returned, so a repeated
// call observes the advanced cursor and never re-issues the same turn number.
func (s *InterviewService) NextQuestion(ctx context.Context, interviewID string) (*NextQuestionResponse, error) {
	interview, err := s.sessions.GetByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if interview == nil {
		return nil, ErrNotFound
	}

	switch interview.Status {
	case model.StatusCompleted, model.StatusEnded:
		return nil, ErrInterviewOver
	case model.StatusConsentGranted:
		if err := s.sessions.MarkStarted(ctx, interviewID); err != nil {
			return nil, err
		}
	case model.StatusInProgress:
		// continue the loop
	default:
		return nil, ErrConsentRequired
	}

	state, err := s.states.Load(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate state: %w", err)
	}
	if state == nil {
		state = model.NewCandidateState(interviewID, interview.CandidateID, interview.JobID)
	}

	job, err := s.jobs.GetByID(ctx, state.JobID)
	if err != nil {
		s.logger.Warn("job lookup failed, drafting without job context",
			zap.String("jobId", state.JobID), zap.Error(err))
	}

	action := s.policy.NextQuestion(state, job)
	if action == nil {
		if err := s.states.Save(ctx, state); err != nil {
			s.logger.Warn("failed to persist candidate state", zap.String("interviewId", interviewID), zap.Error(err))
		}
		return &NextQuestionResponse{TurnNo: state.QuestionCount, Final: true}, nil
	}

	question := s.materialize(ctx, interviewID, action, job)
	state.LastQuestion = question.Text

	if err := s.states.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to persist candidate state: %w", err)
	}

	turn := &model.Turn{
		InterviewID: interviewID,
		TurnNo:      action.TurnNo,
		Speaker:     model.SpeakerAgent,
		Text:        question.Text,
		Category:    action.Category,
	}
	if action.Category.IsSubstantive() {
		rubric := question.Rubric
		turn.Rubric = &rubric
	}
	if err := s.turns.Save(ctx, turn); err != nil {
		return nil, fmt.Errorf("failed to save question turn: %w", err)
	}

	return &NextQuestionResponse{
		TurnNo:     action.TurnNo,
		Question:   question.Text,
		Category:   action.Category,
		Difficulty: action.Difficulty,
	}, nil
}

// materialize turns a policy action into question text. Drafting failures
// degrade to a fixed template; the turn cursor has already advanced and a
// failed draft must not stall the interview.
func (s *InterviewService) materialize(ctx context.Context, interviewID string, action *NextAction, job *model.Job) *model.Question {
	if action.FixedText != "" {
		return &model.Question{Text: action.FixedText, Category: action.Category}
	}

	history, err := s.turns.GetByInterview(ctx, interviewID)
	if err != nil {
		s.logger.Warn("failed to load history for drafting", zap.String("interviewId", interviewID), zap.Error(err))
	}

	req := DraftRequest{
		Category:    action.Category,
		Difficulty:  action.Difficulty,
		TargetSkill: action.TargetSkill,
		FollowUp:    action.FollowUp,
		Job:         job,
		History:     history,
	}

	question, err := s.drafter.Draft(ctx, req)
	if err != nil {
		s.logger.Warn("drafting failed, using fallback question",
			zap.String("interviewId", interviewID),
			zap.String("category", string(action.Category)),
			zap.Error(err))
		return FallbackQuestion(action.Category, req)
	}
	return question
}

// SubmitAnswerResponse acknowledges a candidate answer
type SubmitAnswerResponse struct {
	TurnNo int    `json:"turnNo"`
	Reply  string `json:"reply,omitempty"`
}

// SubmitAnswer records the candidate's answer for the pending question.
// Answers are stored raw and scored in bulk at finish; the only per-answer
// processing here is replying to the candidate's own questions during the
// Q&A turn.
func (s *InterviewService) SubmitAnswer(ctx context.Context, interviewID, answer string) (*SubmitAnswerResponse, error) {
	interview, err := s.sessions.GetByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if interview == nil {
		return nil, ErrNotFound
	}
	if interview.Status != model.StatusInProgress {
		return nil, ErrInterviewOver
	}

	state, err := s.states.Load(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate state: %w", err)
	}
	if state == nil || state.QuestionCount == 0 {
		return nil, fmt.Errorf("no question is pending for interview %s", interviewID)
	}

	if err := s.turns.Save(ctx, &model.Turn{
		InterviewID: interviewID,
		TurnNo:      state.QuestionCount,
		Speaker:     model.SpeakerCandidate,
		Text:        answer,
	}); err != nil {
		return nil, fmt.Errorf("failed to save answer turn: %w", err)
	}

	resp := &SubmitAnswerResponse{TurnNo: state.QuestionCount}
	if state.LastQuestionType == model.CategoryCandidateQuestions {
		if reply := s.answerCandidateQuestion(ctx, answer, state.JobID); reply != "" {
			resp.Reply = reply
			if err := s.turns.Save(ctx, &model.Turn{
				InterviewID: interviewID,
				TurnNo:      state.QuestionCount,
				Speaker:     model.SpeakerAgent,
				Text:        reply,
			}); err != nil {
				s.logger.Warn("failed to save Q&A reply turn", zap.String("interviewId", interviewID), zap.Error(err))
			}
		}
	}

	state.LastAnswer = answer
	if err := s.states.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to persist candidate state: %w", err)
	}

	return resp, nil
}

var decliningPhrases = []string{"no", "nope", "no questions", "nothing", "i'm good", "im good", "not really", "i don't", "all clear"}

// answerCandidateQuestion replies to the candidate's own question during the
// Q&A turn. Returns "" when the candidate declined to ask anything.
func (s *InterviewService) answerCandidateQuestion(ctx context.Context, answer, jobID string) string {
	normalized := strings.ToLower(strings.TrimSpace(answer))
	for _, phrase := range decliningPhrases {
		if normalized == phrase || strings.HasPrefix(normalized, phrase+" ") ||
			strings.HasPrefix(normalized, phrase+",") || strings.HasPrefix(normalized, phrase+".") {
			return ""
		}
	}
	if len(normalized) <= 10 {
		return ""
	}

	if !s.gemini.IsEnabled() {
		return candidateQAFallbackReply
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	jobContext := ""
	if err == nil && job != nil {
		jobContext = fmt.Sprintf("ROLE: %s (%s)\nDESCRIPTION: %s\n", job.Title, job.Level, job.Description)
	}

	prompt := fmt.Sprintf(`You are an AI interviewer wrapping up a screening interview. The candidate asked:
%q

%s
Answer briefly and honestly in 2-3 sentences. If you do not know the answer, say the hiring team will follow up. Never invent salary figures, team sizes, or policies.

Return JSON only: {"reply": "your answer"}`, answer, jobContext)

	response, err := s.gemini.Generate(ctx, s.gemini.Models().CandidateQA, prompt)
	if err != nil {
		s.logger.Debug("candidate Q&A reply fell back to canned text", zap.Error(err))
		return candidateQAFallbackReply
	}

	var parsed struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal([]byte(response), &parsed); err != nil || strings.TrimSpace(parsed.Reply) == "" {
		return candidateQAFallbackReply
	}
	return parsed.Reply
}

// GetTurns returns the ordered transcript
func (s *InterviewService) GetTurns(ctx context.Context, interviewID string) ([]model.Turn, error) {
	interview, err := s.sessions.GetByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if interview == nil {
		return nil, ErrNotFound
	}
	return s.turns.GetByInterview(ctx, interviewID)
}

// GetReport assembles the full interview report
func (s *InterviewService) GetReport(ctx context.Context, interviewID string) (*model.Report, error) {
	interview, err := s.sessions.GetByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if interview == nil {
		return nil, ErrNotFound
	}

	report := &model.Report{
		InterviewID: interview.ID,
		CandidateID: interview.CandidateID,
		JobID:       interview.JobID,
		Status:      interview.Status,
	}

	if turns, err := s.turns.GetByInterview(ctx, interviewID); err == nil {
		report.Transcript = turns
	} else {
		s.logger.Warn("failed to load transcript for report", zap.String("interviewId", interviewID), zap.Error(err))
	}
	if scores, err := s.scores.GetScores(ctx, interviewID); err == nil {
		report.Scores = scores
	}
	if signals, err := s.scores.GetSignals(ctx, interviewID); err == nil {
		report.Signals = signals
	}

	return report, nil
}

func newInterviewID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the process is in far worse trouble
		// than a duplicate id
		return "INT-00000000"
	}
	return "INT-" + hex.EncodeToString(b)
}
