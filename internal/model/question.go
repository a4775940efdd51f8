package model

// Category is the semantic type of an interview question
type Category string

const (
	CategoryWarmup             Category = "warmup"
	CategoryBehavioral         Category = "behavioral"
	CategoryMotivation         Category = "motivation"
	CategoryTechnical          Category = "technical"
	CategoryScenario           Category = "scenario"
	CategoryCulture            Category = "culture"
	CategoryCandidateQuestions Category = "candidate_questions"
	CategoryWrapup             Category = "wrapup"
)

// IsLowSignal reports whether answers in this category carry no evaluative
// weight (fixed neutral score, no gibberish check, no external scoring call).
func (c Category) IsLowSignal() bool {
	switch c {
	case CategoryWarmup, CategoryCandidateQuestions, CategoryWrapup:
		return true
	}
	return false
}

// IsSubstantive reports whether the category contributes to the competence
// assessment and may receive follow-ups.
func (c Category) IsSubstantive() bool {
	switch c {
	case CategoryBehavioral, CategoryMotivation, CategoryTechnical, CategoryScenario, CategoryCulture:
		return true
	}
	return false
}

// Difficulty of a question
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Rubric is the grading guidance attached to a drafted question
type Rubric struct {
	MustMention   []string `json:"mustMention" bson:"mustMention"`
	GoodToMention []string `json:"goodToMention" bson:"goodToMention"`
	RedFlags      []string `json:"redFlags" bson:"redFlags"`
}

// Question is one materialized interview question
type Question struct {
	Text        string     `json:"question" bson:"question"`
	Category    Category   `json:"type" bson:"type"`
	Difficulty  Difficulty `json:"difficulty,omitempty" bson:"difficulty,omitempty"`
	TargetSkill string     `json:"targetSkill,omitempty" bson:"targetSkill,omitempty"`
	Rubric      Rubric     `json:"rubric" bson:"rubric"`
}

// FollowUpMode describes why an extension question was injected
type FollowUpMode string

const (
	FollowUpClarify      FollowUpMode = "clarify"
	FollowUpDeepDive     FollowUpMode = "deep_dive"
	FollowUpProbeRedFlag FollowUpMode = "probe_red_flag"
)
