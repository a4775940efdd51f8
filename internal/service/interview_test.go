package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"voicescreen/internal/config"
	"voicescreen/internal/model"
)

type harness struct {
	svc      *InterviewService
	sessions *fakeSessionRepo
	turns    *fakeTurnRepo
	scores   *fakeScoreRepo
	syncs    *fakeSyncLogRepo
	states   *fakeStateCache
	drafter  *fakeDrafter
	scorer   *fakeScorer

	atsPayloads []ATSPayload
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		sessions: newFakeSessionRepo(),
		turns:    &fakeTurnRepo{},
		scores:   newFakeScoreRepo(),
		syncs:    &fakeSyncLogRepo{},
		states:   newFakeStateCache(),
		drafter:  &fakeDrafter{},
		scorer: &fakeScorer{
			defaultEval: model.Evaluation{
				Technical:     8,
				Communication: 7.5,
				Structure:     7,
				Confidence:    7.5,
				Strengths:     []string{"concrete examples with measurable outcomes"},
			},
		},
	}

	atsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload ATSPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		h.atsPayloads = append(h.atsPayloads, payload)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(atsServer.Close)

	zlog := zap.NewNop()
	gemini := NewGeminiClient(&config.AIConfig{TimeoutMS: 100})
	jobs := newFakeJobRepo(&model.Job{
		ID:             "job-1",
		Title:          "Backend Engineer",
		Level:          "Mid",
		MustHaveSkills: []string{"Go", "PostgreSQL"},
	})

	h.svc = NewInterviewService(
		h.sessions, h.turns, h.scores, jobs, h.states,
		NewPolicyEngine(zlog), h.drafter, h.scorer, NewRecommendationEngine(),
		NewSignalsService(gemini, zlog),
		NewATSSyncService(atsServer.URL, h.syncs, zlog),
		gemini, zlog,
	)
	return h
}

func (h *harness) startInterview(t *testing.T, candidateID string) string {
	t.Helper()
	ctx := context.Background()

	interview, err := h.svc.Create(ctx, candidateID, "job-1", "web")
	require.NoError(t, err)

	_, err = h.svc.Disclosure(ctx, interview.ID)
	require.NoError(t, err)

	granted, err := h.svc.Consent(ctx, interview.ID, "yes, let's do it")
	require.NoError(t, err)
	require.True(t, granted)

	return interview.ID
}

func TestCreateRejectsSecondActiveInterview(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Create(ctx, "cand-1", "job-1", "web")
	require.NoError(t, err)

	_, err = h.svc.Create(ctx, "cand-1", "job-1", "web")
	assert.ErrorIs(t, err, ErrActiveInterview)

	// A different candidate is unaffected
	_, err = h.svc.Create(ctx, "cand-2", "job-1", "web")
	assert.NoError(t, err)
}

func TestCreateRetriesTransientPersistenceFailure(t *testing.T) {
	h := newHarness(t)
	h.sessions.failures = 2

	interview, err := h.svc.Create(context.Background(), "cand-1", "job-1", "web")
	require.NoError(t, err)
	assert.NotEmpty(t, interview.ID)
}

func TestConsentDenialIsTerminal(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	interview, err := h.svc.Create(ctx, "cand-1", "job-1", "web")
	require.NoError(t, err)

	granted, err := h.svc.Consent(ctx, interview.ID, "no thanks, I'd rather not")
	require.NoError(t, err)
	assert.False(t, granted)

	stored, _ := h.sessions.GetByID(ctx, interview.ID)
	assert.Equal(t, model.StatusEnded, stored.Status)
	assert.Equal(t, model.ConsentDenied, stored.ConsentStatus)

	_, err = h.svc.NextQuestion(ctx, interview.ID)
	assert.ErrorIs(t, err, ErrInterviewOver)
}

func TestNextQuestionRequiresConsent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	interview, err := h.svc.Create(ctx, "cand-1", "job-1", "web")
	require.NoError(t, err)

	_, err = h.svc.NextQuestion(ctx, interview.ID)
	assert.ErrorIs(t, err, ErrConsentRequired)
}

func TestNextQuestionUnknownInterview(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.NextQuestion(context.Background(), "INT-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFullInterviewFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.startInterview(t, "cand-1")

	var asked int
	for {
		resp, err := h.svc.NextQuestion(ctx, id)
		require.NoError(t, err)
		if resp.Final {
			break
		}
		asked++
		assert.Equal(t, asked, resp.TurnNo, "turn numbers advance by exactly 1")
		assert.NotEmpty(t, resp.Question)

		_, err = h.svc.SubmitAnswer(ctx, id, "In my last role I owned the billing service and cut p99 latency by 40 percent.")
		require.NoError(t, err)
	}

	// Unscored interviews run 8 core questions plus Q&A and wrap-up
	assert.Equal(t, 10, asked)

	report, err := h.svc.Finish(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, report.Scores)

	// Fixed axes 8/7.5/7/7.5 aggregate to 80/75/73 and overall 76
	assert.Equal(t, 80, report.Scores.Scores.Technical)
	assert.Equal(t, 75, report.Scores.Scores.Communication)
	assert.Equal(t, 73, report.Scores.Scores.Culture)
	assert.Equal(t, 76, report.Scores.Scores.Overall)
	assert.Equal(t, model.RecommendProceed, report.Scores.Recommendation)
	assert.NotEmpty(t, report.Scores.Reasoning)
	assert.NotEmpty(t, report.Transcript)
	require.NotNil(t, report.Signals)

	stored, _ := h.sessions.GetByID(ctx, id)
	assert.Equal(t, model.StatusCompleted, stored.Status)

	// Seven substantive answers were rebuilt into the state trend
	state, err := h.states.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, state.PerformanceTrend, 7)

	require.Len(t, h.atsPayloads, 1)
	assert.Equal(t, id, h.atsPayloads[0].InterviewID)
	assert.Equal(t, model.RecommendProceed, h.atsPayloads[0].Recommendation)
	require.Len(t, h.syncs.entries, 1)
	assert.Equal(t, "delivered", h.syncs.entries[0].Status)
}

func TestDrafterFailureStillAdvancesTurns(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.startInterview(t, "cand-1")
	h.drafter.fail = true

	first, err := h.svc.NextQuestion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, first.TurnNo)
	assert.NotEmpty(t, first.Question, "fallback question text substitutes a failed draft")

	_, err = h.svc.SubmitAnswer(ctx, id, "Sure, here is a bit about my background in support roles.")
	require.NoError(t, err)

	second, err := h.svc.NextQuestion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, second.TurnNo)
}

func TestFinishUnknownInterview(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Finish(context.Background(), "INT-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFinishIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.startInterview(t, "cand-1")

	for {
		resp, err := h.svc.NextQuestion(ctx, id)
		require.NoError(t, err)
		if resp.Final {
			break
		}
		_, err = h.svc.SubmitAnswer(ctx, id, "A detailed answer about my experience shipping production software.")
		require.NoError(t, err)
	}

	first, err := h.svc.Finish(ctx, id)
	require.NoError(t, err)
	second, err := h.svc.Finish(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, first.Scores.Scores, second.Scores.Scores)
	assert.Equal(t, first.Scores.Recommendation, second.Scores.Recommendation)

	state, err := h.states.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, state.PerformanceTrend, 7, "re-finishing must not double the trend")
}

func TestCandidateQAReplies(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.startInterview(t, "cand-1")

	// Walk to the candidate-questions turn
	for {
		resp, err := h.svc.NextQuestion(ctx, id)
		require.NoError(t, err)
		require.False(t, resp.Final)
		if resp.Category == model.CategoryCandidateQuestions {
			break
		}
		_, err = h.svc.SubmitAnswer(ctx, id, "Here is a reasonably detailed answer about my prior work.")
		require.NoError(t, err)
	}

	// A real question earns a reply (canned, since no API key is set)
	resp, err := h.svc.SubmitAnswer(ctx, id, "What does the team's on-call rotation look like?")
	require.NoError(t, err)
	assert.Equal(t, candidateQAFallbackReply, resp.Reply)

	// Declining produces no reply
	resp, err = h.svc.SubmitAnswer(ctx, id, "No, I'm good.")
	require.NoError(t, err)
	assert.Empty(t, resp.Reply)
}
