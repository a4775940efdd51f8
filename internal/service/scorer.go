package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"voicescreen/internal/model"
)

// ScoreRequest carries one answered turn for grading
type ScoreRequest struct {
	TurnNo   int
	Question string
	Answer   string
	Category model.Category
	Rubric   model.Rubric
	Job      *model.Job
}

// AnswerScorer grades answers on the four 0-10 axes. Score never returns an
// error for bad answers; it degrades to local heuristics so a scoring outage
// cannot sink a finished interview.
type AnswerScorer interface {
	Score(ctx context.Context, req ScoreRequest) *model.Evaluation
}

type rubricScorer struct {
	gemini *GeminiClient
	logger *zap.Logger
}

// NewAnswerScorer creates the Gemini-backed answer scorer
func NewAnswerScorer(gemini *GeminiClient, logger *zap.Logger) AnswerScorer {
	return &rubricScorer{gemini: gemini, logger: logger}
}

func (s *rubricScorer) Score(ctx context.Context, req ScoreRequest) *model.Evaluation {
	// Warmup, candidate Q&A and wrapup answers carry no evaluative weight
	if req.Category.IsLowSignal() {
		return neutralEvaluation(req, "low-signal turn, not graded")
	}

	if IsGibberish(req.Answer) {
		return &model.Evaluation{
			TurnNo:       req.TurnNo,
			Category:     req.Category,
			Strengths:    []string{},
			Improvements: []string{"provide a substantive answer"},
			RedFlags:     []string{"non-answer or gibberish input"},
			Reasoning:    "answer failed the minimum-signal check; scored 0 without external grading",
		}
	}

	if !s.gemini.IsEnabled() {
		return s.lengthFallback(req)
	}

	response, err := s.gemini.Generate(ctx, s.gemini.Models().Scorer, s.buildPrompt(req))
	if err != nil {
		s.logger.Warn("answer scoring failed, using length fallback",
			zap.Int("turnNo", req.TurnNo),
			zap.Error(err))
		return s.lengthFallback(req)
	}

	var eval model.Evaluation
	if err := json.Unmarshal([]byte(response), &eval); err != nil {
		s.logger.Warn("unparseable scoring response, using length fallback",
			zap.Int("turnNo", req.TurnNo),
			zap.Error(err))
		return s.lengthFallback(req)
	}

	eval.TurnNo = req.TurnNo
	eval.Category = req.Category
	clampAxes(&eval)
	return &eval
}

func (s *rubricScorer) buildPrompt(req ScoreRequest) string {
	var sb strings.Builder

	sb.WriteString("You are grading one answer from a screening interview.\n\n")
	if req.Job != nil {
		sb.WriteString(fmt.Sprintf("ROLE: %s (%s)\n", req.Job.Title, req.Job.Level))
	}
	sb.WriteString(fmt.Sprintf("QUESTION TYPE: %s\n", req.Category))
	sb.WriteString(fmt.Sprintf("QUESTION: %s\n", req.Question))
	sb.WriteString(fmt.Sprintf("ANSWER: %s\n", req.Answer))

	if len(req.Rubric.MustMention) > 0 {
		sb.WriteString(fmt.Sprintf("\nA good answer covers: %s\n", strings.Join(req.Rubric.MustMention, "; ")))
	}
	if len(req.Rubric.GoodToMention) > 0 {
		sb.WriteString(fmt.Sprintf("Bonus points for: %s\n", strings.Join(req.Rubric.GoodToMention, "; ")))
	}
	if len(req.Rubric.RedFlags) > 0 {
		sb.WriteString(fmt.Sprintf("Warning signs: %s\n", strings.Join(req.Rubric.RedFlags, "; ")))
	}

	sb.WriteString(`
GRADING RULES:
- First check relevance. If the answer does not address the question at all, every axis is 0-2 and you must add the red flag "irrelevant answer".
- If the answer repeats earlier content nearly verbatim, add the red flag "repetitive content".
- For behavioral and scenario answers, reward STAR structure (situation, task, action, result) under the structure axis.
- Grade what was said, not how long it is. A short precise answer beats a long vague one.

Return JSON only:
{
  "technical": 0-10,
  "communication": 0-10,
  "structure": 0-10,
  "confidence": 0-10,
  "strengths": ["specific things done well"],
  "improvements": ["specific gaps"],
  "redFlags": ["serious concerns, empty if none"],
  "reasoning": "one or two sentences"
}`)

	return sb.String()
}

// lengthFallback is the local grade when the external scorer is unreachable.
// The band is proportional to answer length, clipped to 5-10 so a candidate
// is never tanked by an outage on our side.
func (s *rubricScorer) lengthFallback(req ScoreRequest) *model.Evaluation {
	words := len(strings.Fields(req.Answer))
	score := float64(words) / 10.0
	if score < 5 {
		score = 5
	}
	if score > 10 {
		score = 10
	}

	return &model.Evaluation{
		TurnNo:        req.TurnNo,
		Category:      req.Category,
		Technical:     score,
		Communication: score,
		Structure:     score,
		Confidence:    score,
		Strengths:     []string{},
		Improvements:  []string{"detailed evaluation unavailable for this answer"},
		RedFlags:      []string{},
		Reasoning:     fmt.Sprintf("length-based fallback grade (%d words)", words),
	}
}

func neutralEvaluation(req ScoreRequest, reason string) *model.Evaluation {
	return &model.Evaluation{
		TurnNo:        req.TurnNo,
		Category:      req.Category,
		Technical:     5,
		Communication: 5,
		Structure:     5,
		Confidence:    5,
		Strengths:     []string{},
		Improvements:  []string{},
		RedFlags:      []string{},
		Reasoning:     reason,
	}
}

func clampAxes(e *model.Evaluation) {
	e.Technical = clamp01(e.Technical)
	e.Communication = clamp01(e.Communication)
	e.Structure = clamp01(e.Structure)
	e.Confidence = clamp01(e.Confidence)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

var keyboardMashes = []string{"asdf", "qwer", "zxcv", "hjkl", "rtyu"}

// IsGibberish runs the cheap local pre-filter that catches non-answers
// before they reach (and waste) an external scoring call.
func IsGibberish(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return true
	}

	if len(strings.Fields(trimmed)) <= 2 || len(trimmed) < 10 {
		return true
	}

	var letters, vowels, uppers int
	for _, r := range trimmed {
		if unicode.IsUpper(r) {
			uppers++
		}
		if unicode.IsLetter(r) {
			letters++
			switch unicode.ToLower(r) {
			case 'a', 'e', 'i', 'o', 'u':
				vowels++
			}
		}
	}

	// Sustained shouting reads as hostile noise, not an answer
	if len(trimmed) > 50 && letters > 0 && float64(uppers)/float64(letters) > 0.85 {
		return true
	}

	if letters > 0 && float64(vowels)/float64(letters) < 0.15 {
		return true
	}

	lower := strings.ToLower(trimmed)
	for _, mash := range keyboardMashes {
		if strings.Contains(lower, mash) {
			return true
		}
	}

	return false
}

// SmoothedCategoryAverage averages a category's per-turn scores. With three
// or more samples, a single outlier far below the rest is pulled toward the
// category mean so one bad moment does not define the category.
func SmoothedCategoryAverage(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	if len(scores) < 3 {
		return mean(scores)
	}

	minIdx := 0
	for i, v := range scores {
		if v < scores[minIdx] {
			minIdx = i
		}
	}

	var restSum float64
	for i, v := range scores {
		if i != minIdx {
			restSum += v
		}
	}
	restAvg := restSum / float64(len(scores)-1)

	minVal := scores[minIdx]
	if restAvg-minVal > 4.0 {
		minVal = 0.3*minVal + 0.7*restAvg
	}

	return (restSum + minVal) / float64(len(scores))
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
