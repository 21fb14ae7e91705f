package ollama

import (
	"errors"
	"fmt"
	"net/http"
)

// GenerateRequest is the body of POST /api/generate
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	// Format "json" constrains the model output to a JSON document
	Format string `json:"format,omitempty"`
}

// GenerateResponse is the non-streamed result of POST /api/generate
type GenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// ModelInfo describes one installed model as returned by GET /api/tags
type ModelInfo struct {
	Name   string `json:"name"`
	Model  string `json:"model,omitempty"`
	Digest string `json:"digest,omitempty"`
	Size   int64  `json:"size,omitempty"`
}

// TagsResponse is the body of GET /api/tags. Models is absent on some servers.
type TagsResponse struct {
	Models []ModelInfo `json:"models"`
}

// ErrInvalidResponse marks a response body that could not be decoded
var ErrInvalidResponse = errors.New("invalid response from inference service")

// StatusError is returned when the inference service answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("inference service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("inference service returned status %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err carries a 404 from the inference service.
// Ollama answers 404 on /api/generate when the requested model is not installed.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}
