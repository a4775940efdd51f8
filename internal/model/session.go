package model

import "time"

// InterviewStatus is the session lifecycle state
type InterviewStatus string

const (
	StatusCreated        InterviewStatus = "CREATED"
	StatusDisclosureDone InterviewStatus = "DISCLOSURE_DONE"
	StatusConsentGranted InterviewStatus = "CONSENT_GRANTED"
	StatusInProgress     InterviewStatus = "INTERVIEW_IN_PROGRESS"
	StatusCompleted      InterviewStatus = "COMPLETED"
	StatusEnded          InterviewStatus = "ENDED"
)

// ConsentStatus tracks the compliance gate
type ConsentStatus string

const (
	ConsentPending     ConsentStatus = "pending"
	ConsentNotRequired ConsentStatus = "not_required"
	ConsentGranted     ConsentStatus = "granted"
	ConsentDenied      ConsentStatus = "denied"
)

// Interview is one interview session record
type Interview struct {
	ID            string          `json:"id" bson:"_id"`
	CandidateID   string          `json:"candidateId" bson:"candidateId"`
	JobID         string          `json:"jobId" bson:"jobId"`
	Status        InterviewStatus `json:"status" bson:"status"`
	Channel       string          `json:"channel" bson:"channel"`
	ConsentStatus ConsentStatus   `json:"consentStatus" bson:"consentStatus"`
	ConsentText   string          `json:"consentText,omitempty" bson:"consentText,omitempty"`
	CreatedAt     time.Time       `json:"createdAt" bson:"createdAt"`
	StartedAt     *time.Time      `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	EndedAt       *time.Time      `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
}

// Speaker identifies who produced a turn
type Speaker string

const (
	SpeakerSystem    Speaker = "system"
	SpeakerAgent     Speaker = "agent"
	SpeakerCandidate Speaker = "candidate"
)

// Turn is one transcript entry. Agent turns that ask a question carry the
// question category and rubric so deferred scoring does not have to re-infer
// them from the text.
type Turn struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	InterviewID string    `json:"interviewId" bson:"interviewId"`
	TurnNo      int       `json:"turnNo" bson:"turnNo"`
	Speaker     Speaker   `json:"speaker" bson:"speaker"`
	Text        string    `json:"text" bson:"text"`
	Category    Category  `json:"category,omitempty" bson:"category,omitempty"`
	Rubric      *Rubric   `json:"rubric,omitempty" bson:"rubric,omitempty"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
}
