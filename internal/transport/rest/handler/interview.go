package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"voicescreen/internal/service"
)

// InterviewHandler handles the interview lifecycle endpoints
type InterviewHandler struct {
	interviews *service.InterviewService
}

// NewInterviewHandler creates a new interview handler
func NewInterviewHandler(interviews *service.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviews: interviews}
}

// Create handles POST /v1/interviews
func (h *InterviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CandidateID string `json:"candidateId"`
		JobID       string `json:"jobId"`
		Channel     string `json:"channel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CandidateID == "" || req.JobID == "" {
		writeError(w, http.StatusBadRequest, "candidateId and jobId are required")
		return
	}

	interview, err := h.interviews.Create(r.Context(), req.CandidateID, req.JobID, req.Channel)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, interview)
}

// Disclosure handles GET /v1/interviews/{id}/disclosure
func (h *InterviewHandler) Disclosure(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	text, err := h.interviews.Disclosure(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"disclosure": text})
}

// Consent handles POST /v1/interviews/{id}/consent
func (h *InterviewHandler) Consent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	granted, err := h.interviews.Consent(r.Context(), id, req.Response)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"granted": granted})
}

// NextQuestion handles GET /v1/interviews/{id}/next-question
func (h *InterviewHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	resp, err := h.interviews.NextQuestion(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SubmitAnswer handles POST /v1/interviews/{id}/answer
func (h *InterviewHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Answer == "" {
		writeError(w, http.StatusBadRequest, "answer is required")
		return
	}

	resp, err := h.interviews.SubmitAnswer(r.Context(), id, req.Answer)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Finish handles POST /v1/interviews/{id}/finish
func (h *InterviewHandler) Finish(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	report, err := h.interviews.Finish(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Turns handles GET /v1/interviews/{id}/turns
func (h *InterviewHandler) Turns(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	turns, err := h.interviews.GetTurns(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"turns": turns})
}

// Report handles GET /v1/interviews/{id}/report
func (h *InterviewHandler) Report(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	report, err := h.interviews.GetReport(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrActiveInterview), errors.Is(err, service.ErrInterviewOver):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrConsentRequired):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
