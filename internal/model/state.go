package model

import "time"

// DecisionKind classifies a policy decision in the audit log
type DecisionKind string

const (
	DecisionContinue       DecisionKind = "continue"
	DecisionTerminate      DecisionKind = "terminate"
	DecisionAddFollowup    DecisionKind = "add_followup"
	DecisionDifficulty     DecisionKind = "difficulty"
	DecisionSkillSelection DecisionKind = "skill_selection"
)

// Decision is a write-once audit log entry for one policy decision
type Decision struct {
	Timestamp  time.Time          `json:"timestamp"`
	TurnNumber int                `json:"turnNumber"`
	Kind       DecisionKind       `json:"kind"`
	Action     string             `json:"action"`
	Reasoning  string             `json:"reasoning"`
	Context    map[string]float64 `json:"context,omitempty"`
}

// CandidateState is the evolving decision context for one interview.
// question_count is the canonical turn cursor: it equals the number of
// questions materialized so far and increases by exactly 1 per question.
// performance_trend may lag question_count under deferred scoring.
type CandidateState struct {
	InterviewID string `json:"interviewId"`
	CandidateID string `json:"candidateId"`
	JobID       string `json:"jobId"`

	OverallScore     float64                `json:"overallScore"`
	PerformanceTrend []float64              `json:"performanceTrend"`
	QuestionCount    int                    `json:"questionCount"`
	CategoryScores   map[Category][]float64 `json:"categoryScores"`

	RedFlags          []string `json:"redFlags"`
	GreenFlags        []string `json:"greenFlags"`
	StruggleCount     int      `json:"struggleCount"`
	StrongAnswerCount int      `json:"strongAnswerCount"`

	CurrentDifficulty    Difficulty `json:"currentDifficulty"`
	TopicsCovered        []Category `json:"topicsCovered"`
	SkillsTested         []string   `json:"skillsTested"`
	NextSkillToTest      string     `json:"nextSkillToTest,omitempty"`
	SecondChanceCategory Category   `json:"secondChanceCategory,omitempty"`
	ExtensionQuestions   int        `json:"extensionQuestions"`

	DecisionsMade []Decision `json:"decisionsMade"`

	LastQuestion     string   `json:"lastQuestion"`
	LastQuestionType Category `json:"lastQuestionType"`
	LastAnswer       string   `json:"lastAnswer"`
	LastScore        float64  `json:"lastScore"`

	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// NewCandidateState creates the initial state for an interview
func NewCandidateState(interviewID, candidateID, jobID string) *CandidateState {
	now := time.Now().UTC()
	return &CandidateState{
		InterviewID:       interviewID,
		CandidateID:       candidateID,
		JobID:             jobID,
		CategoryScores:    make(map[Category][]float64),
		CurrentDifficulty: DifficultyMedium,
		CreatedAt:         now,
		LastUpdated:       now,
	}
}

// AvgScore is the mean of all scored turns (0-10 scale)
func (s *CandidateState) AvgScore() float64 {
	if len(s.PerformanceTrend) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.PerformanceTrend {
		sum += v
	}
	return sum / float64(len(s.PerformanceTrend))
}

// RecentAvgScore is the mean of the last 3 scored turns
func (s *CandidateState) RecentAvgScore() float64 {
	n := len(s.PerformanceTrend)
	if n == 0 {
		return 0
	}
	start := n - 3
	if start < 0 {
		start = 0
	}
	sum := 0.0
	for _, v := range s.PerformanceTrend[start:] {
		sum += v
	}
	return sum / float64(n-start)
}

// AddDecision appends to the audit log. Entries are never mutated or removed.
func (s *CandidateState) AddDecision(d Decision) {
	s.DecisionsMade = append(s.DecisionsMade, d)
	s.LastUpdated = time.Now().UTC()
}

// RecordScore appends a per-turn overall score (0-10) for the given category
// and maintains the consecutive struggle/strong run counters.
func (s *CandidateState) RecordScore(score float64, category Category) {
	s.PerformanceTrend = append(s.PerformanceTrend, score)
	if s.CategoryScores == nil {
		s.CategoryScores = make(map[Category][]float64)
	}
	s.CategoryScores[category] = append(s.CategoryScores[category], score)
	s.LastScore = score
	s.LastUpdated = time.Now().UTC()

	switch {
	case score < 5.0:
		s.StruggleCount++
		s.StrongAnswerCount = 0
	case score >= 8.0:
		s.StrongAnswerCount++
		s.StruggleCount = 0
	default:
		s.StruggleCount = 0
		s.StrongAnswerCount = 0
	}

	s.OverallScore = s.AvgScore()
}

// AddRedFlag appends a red flag, deduplicated by exact value
func (s *CandidateState) AddRedFlag(flag string) {
	if flag == "" {
		return
	}
	for _, f := range s.RedFlags {
		if f == flag {
			return
		}
	}
	s.RedFlags = append(s.RedFlags, flag)
}

// AddGreenFlag appends a green flag, deduplicated by exact value
func (s *CandidateState) AddGreenFlag(flag string) {
	if flag == "" {
		return
	}
	for _, f := range s.GreenFlags {
		if f == flag {
			return
		}
	}
	s.GreenFlags = append(s.GreenFlags, flag)
}

// HasCovered reports whether the category was already asked
func (s *CandidateState) HasCovered(c Category) bool {
	for _, t := range s.TopicsCovered {
		if t == c {
			return true
		}
	}
	return false
}

// MarkCovered records a category as asked (set semantics)
func (s *CandidateState) MarkCovered(c Category) {
	if !s.HasCovered(c) {
		s.TopicsCovered = append(s.TopicsCovered, c)
	}
}

// HasTestedSkill reports whether a skill was already probed
func (s *CandidateState) HasTestedSkill(skill string) bool {
	for _, t := range s.SkillsTested {
		if t == skill {
			return true
		}
	}
	return false
}

// MarkSkillTested records a probed skill, preserving test order
func (s *CandidateState) MarkSkillTested(skill string) {
	if skill != "" && !s.HasTestedSkill(skill) {
		s.SkillsTested = append(s.SkillsTested, skill)
	}
}
