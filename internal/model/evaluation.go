package model

import "time"

// Evaluation is the scored result for one answered turn. Axis scores are on
// a 0-10 scale.
type Evaluation struct {
	TurnNo        int      `json:"turnNo" bson:"turnNo"`
	Category      Category `json:"category" bson:"category"`
	Technical     float64  `json:"technical" bson:"technical"`
	Communication float64  `json:"communication" bson:"communication"`
	Structure     float64  `json:"structure" bson:"structure"`
	Confidence    float64  `json:"confidence" bson:"confidence"`
	Strengths     []string `json:"strengths" bson:"strengths"`
	Improvements  []string `json:"improvements" bson:"improvements"`
	RedFlags      []string `json:"redFlags" bson:"redFlags"`
	Reasoning     string   `json:"reasoning,omitempty" bson:"reasoning,omitempty"`
}

// Overall is the mean of the four axis scores (0-10)
func (e *Evaluation) Overall() float64 {
	return (e.Technical + e.Communication + e.Structure + e.Confidence) / 4.0
}

// ScoreSummary holds the aggregated interview scores on a 0-100 scale
type ScoreSummary struct {
	Technical     int `json:"technical" bson:"technical"`
	Communication int `json:"communication" bson:"communication"`
	Culture       int `json:"culture" bson:"culture"`
	Overall       int `json:"overall" bson:"overall"`
}

// Recommendation is the bounded session-ending verdict
type Recommendation string

const (
	RecommendProceed Recommendation = "PROCEED"
	RecommendHold    Recommendation = "HOLD"
	RecommendReject  Recommendation = "REJECT"
)

// Verdict pairs the recommendation with its human-readable audit trail
type Verdict struct {
	Recommendation Recommendation `json:"recommendation" bson:"recommendation"`
	Reasoning      string         `json:"reasoning" bson:"reasoning"`
}

// InterviewScores is the persisted scoring record for a finished interview
type InterviewScores struct {
	InterviewID    string         `json:"interviewId" bson:"_id"`
	Scores         ScoreSummary   `json:"scores" bson:"scores"`
	Recommendation Recommendation `json:"recommendation" bson:"recommendation"`
	Reasoning      string         `json:"reasoning" bson:"reasoning"`
	Highlights     []string       `json:"highlights" bson:"highlights"`
	Concerns       []string       `json:"concerns" bson:"concerns"`
	CreatedAt      time.Time      `json:"createdAt" bson:"createdAt"`
}

// InterviewSignals are transcript-level metrics computed at finish
type InterviewSignals struct {
	InterviewID       string    `json:"interviewId" bson:"_id"`
	TalkRatio         float64   `json:"talkRatio" bson:"talkRatio"`
	AvgResponseLength int       `json:"avgResponseLength" bson:"avgResponseLength"`
	Sentiment         string    `json:"sentiment" bson:"sentiment"`
	SpeechRateWPM     int       `json:"speechRateWpm" bson:"speechRateWpm"`
	CallQualityScore  int       `json:"callQualityScore" bson:"callQualityScore"`
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
}

// Report is the full retrievable interview report
type Report struct {
	InterviewID string            `json:"interviewId"`
	CandidateID string            `json:"candidateId"`
	JobID       string            `json:"jobId"`
	Status      InterviewStatus   `json:"status"`
	Transcript  []Turn            `json:"transcript"`
	Scores      *InterviewScores  `json:"scores,omitempty"`
	Signals     *InterviewSignals `json:"signals,omitempty"`
}

// ATSSyncLog records one attempt to push results to the ATS webhook
type ATSSyncLog struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	InterviewID string    `json:"interviewId" bson:"interviewId"`
	Status      string    `json:"status" bson:"status"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}
