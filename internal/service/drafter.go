package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"voicescreen/internal/model"
)

// DraftRequest carries everything the drafter needs to produce one question
type DraftRequest struct {
	Category    model.Category
	Difficulty  model.Difficulty
	TargetSkill string
	FollowUp    model.FollowUpMode
	Job         *model.Job
	History     []model.Turn
}

// QuestionDrafter produces interview questions with grading rubrics
type QuestionDrafter interface {
	Draft(ctx context.Context, req DraftRequest) (*model.Question, error)
}

type geminiDrafter struct {
	gemini *GeminiClient
	logger *zap.Logger
}

// NewQuestionDrafter creates the Gemini-backed question drafter
func NewQuestionDrafter(gemini *GeminiClient, logger *zap.Logger) QuestionDrafter {
	return &geminiDrafter{gemini: gemini, logger: logger}
}

func (d *geminiDrafter) Draft(ctx context.Context, req DraftRequest) (*model.Question, error) {
	if !d.gemini.IsEnabled() {
		return nil, fmt.Errorf("gemini not configured")
	}

	prompt := d.buildPrompt(req)
	response, err := d.gemini.Generate(ctx, d.gemini.Models().Drafter, prompt)
	if err != nil {
		d.logger.Warn("question drafting failed",
			zap.String("category", string(req.Category)),
			zap.Error(err))
		return nil, err
	}

	var q model.Question
	if err := json.Unmarshal([]byte(response), &q); err != nil {
		return nil, fmt.Errorf("failed to parse drafted question: %w", err)
	}
	if strings.TrimSpace(q.Text) == "" {
		return nil, fmt.Errorf("drafter returned an empty question")
	}

	q.Category = req.Category
	q.Difficulty = req.Difficulty
	q.TargetSkill = req.TargetSkill
	return &q, nil
}

func (d *geminiDrafter) buildPrompt(req DraftRequest) string {
	var sb strings.Builder

	sb.WriteString("You are an experienced interviewer running a screening interview. ")
	sb.WriteString("Draft exactly one interview question.\n\n")

	if req.Job != nil {
		sb.WriteString(fmt.Sprintf("ROLE: %s (%s, %s experience)\n", req.Job.Title, req.Job.Level, req.Job.ExperienceYears))
		if req.Job.Description != "" {
			sb.WriteString(fmt.Sprintf("DESCRIPTION: %s\n", req.Job.Description))
		}
		if len(req.Job.MustHaveSkills) > 0 {
			sb.WriteString(fmt.Sprintf("MUST-HAVE SKILLS: %s\n", strings.Join(req.Job.MustHaveSkills, ", ")))
		}
	}

	sb.WriteString(fmt.Sprintf("\nQUESTION TYPE: %s\n", req.Category))
	sb.WriteString(fmt.Sprintf("DIFFICULTY: %s\n", req.Difficulty))

	switch req.Category {
	case model.CategoryWarmup:
		sb.WriteString("Ask the candidate to briefly introduce themselves and their background. Keep it light, no trick questions.\n")
	case model.CategoryBehavioral:
		sb.WriteString("Ask about a specific past situation. The question should invite a Situation/Task/Action/Result story.\n")
	case model.CategoryMotivation:
		sb.WriteString("Ask why the candidate wants this specific role and what they know about the work.\n")
	case model.CategoryTechnical:
		sb.WriteString(fmt.Sprintf("Probe the candidate's hands-on knowledge of: %s. Ask for concrete experience, not definitions.\n", req.TargetSkill))
	case model.CategoryScenario:
		sb.WriteString("Present a realistic hypothetical situation from this role and ask how the candidate would handle it.\n")
	case model.CategoryCulture:
		sb.WriteString("Ask about working style, collaboration, or how the candidate handles disagreement.\n")
	}

	switch req.FollowUp {
	case model.FollowUpClarify:
		sb.WriteString("\nThe previous answer was weak. Re-approach the same ground from a different angle to give the candidate a fair second look.\n")
	case model.FollowUpDeepDive:
		sb.WriteString("\nThe previous answer was strong. Go one level deeper: edge cases, trade-offs, scale.\n")
	case model.FollowUpProbeRedFlag:
		sb.WriteString("\nA concern was raised earlier in the interview. Ask a question that lets the candidate address it without being confrontational.\n")
	}

	if n := len(req.History); n > 0 {
		sb.WriteString("\nRECENT EXCHANGE (do not repeat these topics):\n")
		start := n - 4
		if start < 0 {
			start = 0
		}
		for _, t := range req.History[start:] {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", t.Speaker, truncate(t.Text, 200)))
		}
	}

	sb.WriteString(`
Return JSON only:
{
  "question": "the question text, phrased conversationally for a voice interview",
  "rubric": {
    "mustMention": ["2-4 things a good answer covers"],
    "goodToMention": ["1-3 bonus points"],
    "redFlags": ["1-3 warning signs in an answer"]
  }
}`)

	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// FallbackQuestion returns a canned question for the category, used when
// drafting fails. The interview keeps moving on a degraded question rather
// than stalling.
func FallbackQuestion(category model.Category, req DraftRequest) *model.Question {
	text := fallbackTexts[category]
	if text == "" {
		text = "Tell me more about your relevant experience for this role."
	}
	if category == model.CategoryTechnical && req.TargetSkill != "" {
		text = fmt.Sprintf("Can you walk me through your hands-on experience with %s, including a project where you used it?", req.TargetSkill)
	}
	if category == model.CategoryMotivation && req.Job != nil {
		text = fmt.Sprintf("What interests you about this %s position, and what do you hope to get out of it?", req.Job.Title)
	}
	return &model.Question{
		Text:        text,
		Category:    category,
		Difficulty:  req.Difficulty,
		TargetSkill: req.TargetSkill,
		Rubric: model.Rubric{
			MustMention:   []string{"relevant specifics", "first-hand experience"},
			GoodToMention: []string{"measurable outcomes"},
			RedFlags:      []string{"vague or evasive answer"},
		},
	}
}

var fallbackTexts = map[model.Category]string{
	model.CategoryWarmup:     "To get us started, could you tell me a bit about yourself and your professional background?",
	model.CategoryBehavioral: "Tell me about a time you faced a significant challenge at work. What was the situation, and how did you handle it?",
	model.CategoryMotivation: "What interests you about this role, and why are you looking to make a move right now?",
	model.CategoryTechnical:  "Walk me through a technically challenging project you worked on recently. What was your specific contribution?",
	model.CategoryScenario:   "Imagine you are given a task with an unrealistic deadline and unclear requirements. How would you approach it?",
	model.CategoryCulture:    "How do you prefer to work with your team, and how do you handle disagreements about technical direction?",
}
