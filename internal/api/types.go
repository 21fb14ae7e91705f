package api

import (
	"github.com/pageza/grocerly/backend/internal/health"
	"github.com/pageza/grocerly/backend/internal/suggestion"
)

// SuggestRequest is the body of POST /api/v1/suggestions
type SuggestRequest struct {
	Items []string `json:"items" binding:"required"`
}

// SuggestResponse carries the validated suggestion set. Status is "ok" or the failure kind;
// Suggestions is empty, never null, on failure.
type SuggestResponse struct {
	Suggestions []suggestion.Suggestion `json:"suggestions"`
	Status      string                  `json:"status"`
}

// StatusResponse describes the inference service as seen right now
type StatusResponse struct {
	Available      bool     `json:"available"`
	Model          string   `json:"model"`
	Models         []string `json:"models"`
	ModelInstalled bool     `json:"model_installed"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status string        `json:"status"`
	Ollama health.Status `json:"ollama"`
}
