package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"voicescreen/internal/repository"
	"voicescreen/internal/service"
	"voicescreen/internal/transport/rest/handler"
)

// Container holds all dependencies for the router
type Container struct {
	InterviewService *service.InterviewService
	JobRepo          repository.JobRepo
	Logger           *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	interviewHandler := handler.NewInterviewHandler(c.InterviewService)
	jobHandler := handler.NewJobHandler(c.JobRepo)
	atsHandler := handler.NewATSHandler(c.Logger)

	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/interviews", interviewHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/interviews/{id}/disclosure", interviewHandler.Disclosure).Methods("GET", "OPTIONS")
	v1.HandleFunc("/interviews/{id}/consent", interviewHandler.Consent).Methods("POST", "OPTIONS")
	v1.HandleFunc("/interviews/{id}/next-question", interviewHandler.NextQuestion).Methods("GET", "OPTIONS")
	v1.HandleFunc("/interviews/{id}/answer", interviewHandler.SubmitAnswer).Methods("POST", "OPTIONS")
	v1.HandleFunc("/interviews/{id}/finish", interviewHandler.Finish).Methods("POST", "OPTIONS")
	v1.HandleFunc("/interviews/{id}/turns", interviewHandler.Turns).Methods("GET", "OPTIONS")
	v1.HandleFunc("/interviews/{id}/report", interviewHandler.Report).Methods("GET", "OPTIONS")

	v1.HandleFunc("/jobs", jobHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/jobs/{id}", jobHandler.Get).Methods("GET", "OPTIONS")

	// Local stand-in for a real applicant tracking system
	r.HandleFunc("/mock-ats/webhook", atsHandler.Webhook).Methods("POST")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
