package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"voicescreen/internal/model"
	"voicescreen/internal/repository"
)

// ATSPayload is what gets pushed to the applicant tracking system after an
// interview finishes
type ATSPayload struct {
	InterviewID    string               `json:"interviewId"`
	CandidateID    string               `json:"candidateId"`
	JobID          string               `json:"jobId"`
	Scores         model.ScoreSummary   `json:"scores"`
	Recommendation model.Recommendation `json:"recommendation"`
	Reasoning      string               `json:"reasoning"`
	CompletedAt    time.Time            `json:"completedAt"`
}

// ATSSyncService pushes finished interview results to the ATS webhook.
// Delivery is best effort: a failed push is logged and recorded, never
// retried, and never fails the finish flow.
type ATSSyncService struct {
	webhookURL string
	client     *http.Client
	syncLogs   repository.SyncLogRepo
	logger     *zap.Logger
}

// NewATSSyncService creates the ATS sync service
func NewATSSyncService(webhookURL string, syncLogs repository.SyncLogRepo, logger *zap.Logger) *ATSSyncService {
	return &ATSSyncService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
		syncLogs:   syncLogs,
		logger:     logger,
	}
}

// Sync delivers the payload and records the attempt
func (s *ATSSyncService) Sync(ctx context.Context, payload *ATSPayload) bool {
	status := "delivered"
	if err := s.deliver(ctx, payload); err != nil {
		status = "failed"
		s.logger.Warn("ATS sync failed",
			zap.String("interviewId", payload.InterviewID),
			zap.Error(err))
	}

	entry := &model.ATSSyncLog{InterviewID: payload.InterviewID, Status: status}
	if err := s.syncLogs.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to record ATS sync attempt",
			zap.String("interviewId", payload.InterviewID),
			zap.Error(err))
	}
	return status == "delivered"
}

func (s *ATSSyncService) deliver(ctx context.Context, payload *ATSPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
