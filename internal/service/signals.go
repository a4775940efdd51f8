package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"voicescreen/internal/model"
)

// SignalsService computes transcript-level delivery metrics at finish time.
// These describe how the candidate spoke, not what they said; scoring never
// reads them.
type SignalsService struct {
	gemini *GeminiClient
	logger *zap.Logger
}

// NewSignalsService creates the signals computer
func NewSignalsService(gemini *GeminiClient, logger *zap.Logger) *SignalsService {
	return &SignalsService{gemini: gemini, logger: logger}
}

// Compute derives signals from the full transcript
func (s *SignalsService) Compute(ctx context.Context, interviewID string, turns []model.Turn) *model.InterviewSignals {
	var agentWords, candidateWords, candidateChars, candidateTurns int
	var candidateTexts []string

	for _, t := range turns {
		words := len(strings.Fields(t.Text))
		switch t.Speaker {
		case model.SpeakerAgent:
			agentWords += words
		case model.SpeakerCandidate:
			candidateWords += words
			candidateChars += len(t.Text)
			candidateTurns++
			candidateTexts = append(candidateTexts, t.Text)
		}
	}

	signals := &model.InterviewSignals{
		InterviewID:      interviewID,
		Sentiment:        "neutral",
		CallQualityScore: 85,
	}

	if total := agentWords + candidateWords; total > 0 {
		signals.TalkRatio = float64(candidateWords) / float64(total)
	}
	if candidateTurns > 0 {
		signals.AvgResponseLength = candidateChars / candidateTurns
		// Text transcripts carry no timing, so speech rate is estimated
		// from average response length
		signals.SpeechRateWPM = int(float64(candidateWords) / float64(candidateTurns) * 2.5)
	}

	signals.Sentiment = s.classifySentiment(ctx, candidateTexts)
	return signals
}

func (s *SignalsService) classifySentiment(ctx context.Context, responses []string) string {
	if len(responses) == 0 {
		return "neutral"
	}
	sample := responses
	if len(sample) > 5 {
		sample = sample[:5]
	}

	if s.gemini.IsEnabled() {
		prompt := "Classify the overall tone of this interview candidate as exactly one of: positive, neutral, negative.\n\nRESPONSES:\n- " +
			strings.Join(sample, "\n- ") +
			"\n\nReturn JSON only: {\"sentiment\": \"positive|neutral|negative\"}"
		response, err := s.gemini.Generate(ctx, s.gemini.Models().Sentiment, prompt)
		if err == nil {
			var result struct {
				Sentiment string `json:"sentiment"`
			}
			if json.Unmarshal([]byte(response), &result) == nil {
				switch result.Sentiment {
				case "positive", "neutral", "negative":
					return result.Sentiment
				}
			}
		}
		s.logger.Debug("sentiment classification fell back to keywords", zap.Error(err))
	}

	return keywordSentiment(sample)
}

var positiveMarkers = []string{"excited", "passionate", "love", "excellent", "thrilled", "enjoy"}

func keywordSentiment(responses []string) string {
	joined := strings.ToLower(strings.Join(responses, " "))
	for _, marker := range positiveMarkers {
		if strings.Contains(joined, marker) {
			return "positive"
		}
	}
	return "neutral"
}
