package config

import "os"

// GeminiModels defines which Gemini models to use for different tasks
type GeminiModels struct {
	// Drafter generates interview questions (needs to be fast, per-turn)
	Drafter string `json:"drafter"`

	// Scorer grades answers against a rubric (bulk at finish, quality matters)
	Scorer string `json:"scorer"`

	// Sentiment classifies transcript tone (single call at finish)
	Sentiment string `json:"sentiment"`

	// CandidateQA answers the candidate's own questions about the role
	CandidateQA string `json:"candidateQA"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey    string       `json:"-"` // Never serialize
	BaseURL   string       `json:"baseUrl"`
	Models    GeminiModels `json:"models"`
	TimeoutMS int          `json:"timeoutMs"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		Models: GeminiModels{
			Drafter:     getEnvOrDefault("GEMINI_MODEL_DRAFTER", "gemini-2.5-flash"),
			Scorer:      getEnvOrDefault("GEMINI_MODEL_SCORER", "gemini-2.5-flash"),
			Sentiment:   getEnvOrDefault("GEMINI_MODEL_SENTIMENT", "gemini-2.0-flash"),
			CandidateQA: getEnvOrDefault("GEMINI_MODEL_QA", "gemini-2.0-flash"),
		},
		TimeoutMS: 15000, // per-call ceiling; drafting/scoring must never hang a turn
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
