package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ATSHandler implements the local mock ATS webhook used in development when
// no real applicant tracking system is wired up
type ATSHandler struct {
	logger *zap.Logger
}

// NewATSHandler creates a new mock ATS handler
func NewATSHandler(logger *zap.Logger) *ATSHandler {
	return &ATSHandler{logger: logger}
}

// Webhook handles POST /mock-ats/webhook
func (h *ATSHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	h.logger.Info("mock ATS received interview result",
		zap.Any("interviewId", payload["interviewId"]),
		zap.Any("recommendation", payload["recommendation"]))

	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
