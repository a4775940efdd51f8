package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"voicescreen/internal/model"
)

// In-memory collaborator fakes for orchestrator tests. They mirror the
// repository contracts: lookups miss with (nil, nil), saves upsert.

type fakeSessionRepo struct {
	sessions map[string]*model.Interview
	failures int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*model.Interview)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, interview *model.Interview) error {
	if r.failures > 0 {
		r.failures--
		return fmt.Errorf("transient write failure")
	}
	if interview.CreatedAt.IsZero() {
		interview.CreatedAt = time.Now().UTC()
	}
	copied := *interview
	r.sessions[interview.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id string) (*model.Interview, error) {
	interview, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *interview
	return &copied, nil
}

func (r *fakeSessionRepo) FindActiveByCandidate(ctx context.Context, candidateID string) (*model.Interview, error) {
	for _, interview := range r.sessions {
		if interview.CandidateID != candidateID {
			continue
		}
		switch interview.Status {
		case model.StatusCreated, model.StatusDisclosureDone, model.StatusConsentGranted, model.StatusInProgress:
			copied := *interview
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) UpdateStatus(ctx context.Context, id string, status model.InterviewStatus) error {
	if interview, ok := r.sessions[id]; ok {
		interview.Status = status
	}
	return nil
}

func (r *fakeSessionRepo) UpdateConsent(ctx context.Context, id string, status model.ConsentStatus, text string) error {
	if interview, ok := r.sessions[id]; ok {
		interview.ConsentStatus = status
		if text != "" {
			interview.ConsentText = text
		}
	}
	return nil
}

func (r *fakeSessionRepo) MarkStarted(ctx context.Context, id string) error {
	if interview, ok := r.sessions[id]; ok {
		now := time.Now().UTC()
		interview.Status = model.StatusInProgress
		interview.StartedAt = &now
	}
	return nil
}

func (r *fakeSessionRepo) MarkEnded(ctx context.Context, id string, status model.InterviewStatus) error {
	if interview, ok := r.sessions[id]; ok {
		now := time.Now().UTC()
		interview.Status = status
		interview.EndedAt = &now
	}
	return nil
}

type fakeTurnRepo struct {
	turns []model.Turn
}

func (r *fakeTurnRepo) Save(ctx context.Context, turn *model.Turn) error {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}
	turn.ID = fmt.Sprintf("turn-%d", len(r.turns)+1)
	r.turns = append(r.turns, *turn)
	return nil
}

func (r *fakeTurnRepo) GetByInterview(ctx context.Context, interviewID string) ([]model.Turn, error) {
	var out []model.Turn
	for _, t := range r.turns {
		if t.InterviewID == interviewID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TurnNo < out[j].TurnNo })
	return out, nil
}

func (r *fakeTurnRepo) LastTurnNo(ctx context.Context, interviewID string) (int, error) {
	last := 0
	for _, t := range r.turns {
		if t.InterviewID == interviewID && t.TurnNo > last {
			last = t.TurnNo
		}
	}
	return last, nil
}

type fakeScoreRepo struct {
	scores  map[string]*model.InterviewScores
	signals map[string]*model.InterviewSignals
}

func newFakeScoreRepo() *fakeScoreRepo {
	return &fakeScoreRepo{
		scores:  make(map[string]*model.InterviewScores),
		signals: make(map[string]*model.InterviewSignals),
	}
}

func (r *fakeScoreRepo) SaveScores(ctx context.Context, scores *model.InterviewScores) error {
	if scores.CreatedAt.IsZero() {
		scores.CreatedAt = time.Now().UTC()
	}
	copied := *scores
	r.scores[scores.InterviewID] = &copied
	return nil
}

func (r *fakeScoreRepo) GetScores(ctx context.Context, interviewID string) (*model.InterviewScores, error) {
	scores, ok := r.scores[interviewID]
	if !ok {
		return nil, nil
	}
	copied := *scores
	return &copied, nil
}

func (r *fakeScoreRepo) SaveSignals(ctx context.Context, signals *model.InterviewSignals) error {
	if signals.CreatedAt.IsZero() {
		signals.CreatedAt = time.Now().UTC()
	}
	copied := *signals
	r.signals[signals.InterviewID] = &copied
	return nil
}

func (r *fakeScoreRepo) GetSignals(ctx context.Context, interviewID string) (*model.InterviewSignals, error) {
	signals, ok := r.signals[interviewID]
	if !ok {
		return nil, nil
	}
	copied := *signals
	return &copied, nil
}

type fakeJobRepo struct {
	jobs map[string]*model.Job
}

func newFakeJobRepo(jobs ...*model.Job) *fakeJobRepo {
	r := &fakeJobRepo{jobs: make(map[string]*model.Job)}
	for _, job := range jobs {
		r.jobs[job.ID] = job
	}
	return r
}

func (r *fakeJobRepo) Upsert(ctx context.Context, job *model.Job) error {
	r.jobs[job.ID] = job
	return nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, nil
	}
	return job, nil
}

func (r *fakeJobRepo) List(ctx context.Context) ([]model.Job, error) {
	var out []model.Job
	for _, job := range r.jobs {
		out = append(out, *job)
	}
	return out, nil
}

type fakeSyncLogRepo struct {
	entries []model.ATSSyncLog
}

func (r *fakeSyncLogRepo) Log(ctx context.Context, entry *model.ATSSyncLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

type fakeStateCache struct {
	states map[string][]byte
}

func newFakeStateCache() *fakeStateCache {
	return &fakeStateCache{states: make(map[string][]byte)}
}

func (c *fakeStateCache) Save(ctx context.Context, state *model.CandidateState) error {
	state.LastUpdated = time.Now().UTC()
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	c.states[state.InterviewID] = data
	return nil
}

func (c *fakeStateCache) Load(ctx context.Context, interviewID string) (*model.CandidateState, error) {
	data, ok := c.states[interviewID]
	if !ok {
		return nil, nil
	}
	var state model.CandidateState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *fakeStateCache) Delete(ctx context.Context, interviewID string) error {
	delete(c.states, interviewID)
	return nil
}

// fakeDrafter returns deterministic questions and can be told to fail
type fakeDrafter struct {
	fail   bool
	drafts int
}

func (d *fakeDrafter) Draft(ctx context.Context, req DraftRequest) (*model.Question, error) {
	d.drafts++
	if d.fail {
		return nil, fmt.Errorf("drafting unavailable")
	}
	return &model.Question{
		Text:        fmt.Sprintf("drafted %s question %d", req.Category, d.drafts),
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		TargetSkill: req.TargetSkill,
		Rubric: model.Rubric{
			MustMention: []string{"specific evidence of real work"},
			RedFlags:    []string{"vague or evasive answer"},
		},
	}, nil
}

// fakeScorer grades every substantive answer with a fixed evaluation
type fakeScorer struct {
	perCategory map[model.Category]model.Evaluation
	defaultEval model.Evaluation
	calls       int
}

func (s *fakeScorer) Score(ctx context.Context, req ScoreRequest) *model.Evaluation {
	s.calls++
	if req.Category.IsLowSignal() {
		return neutralEvaluation(req, "low-signal turn, not graded")
	}
	eval := s.defaultEval
	if e, ok := s.perCategory[req.Category]; ok {
		eval = e
	}
	eval.TurnNo = req.TurnNo
	eval.Category = req.Category
	return &eval
}
