package suggestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/pageza/grocerly/backend/internal/ollama"
)

// Inferencer is the subset of the inference client the suggestion pathway needs
type Inferencer interface {
	IsAvailable(ctx context.Context) bool
	ListModels(ctx context.Context) []string
	Generate(ctx context.Context, req ollama.GenerateRequest) (*ollama.GenerateResponse, error)
}

// Service generates grocery suggestions from a local model
type Service struct {
	client Inferencer
	model  string
	logger *log.Logger
}

// NewService creates a Service that asks model for suggestions. A nil logger
// falls back to the standard logger.
func NewService(client Inferencer, model string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		client: client,
		model:  model,
		logger: logger,
	}
}

// Model returns the model identifier used for generation
func (s *Service) Model() string {
	return s.model
}

// Suggest returns only the suggestion set for items; it is empty on any failure
func (s *Service) Suggest(ctx context.Context, items []string) []Suggestion {
	return s.GenerateSuggestions(ctx, items).Suggestions
}

// GenerateSuggestions runs probe, generation and validation for items.
// It never panics or returns an error: failures yield an empty set and a Diagnostic.
func (s *Service) GenerateSuggestions(ctx context.Context, items []string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = s.fail(DiagnosticTransport, fmt.Errorf("unexpected error: %v", r), "Unexpected error while generating suggestions")
		}
	}()

	if !s.client.IsAvailable(ctx) {
		return s.fail(DiagnosticServiceUnavailable, nil, "Ollama service is not running. Please start Ollama first.")
	}

	resp, err := s.client.Generate(ctx, ollama.GenerateRequest{
		Model:  s.model,
		Prompt: BuildPrompt(items),
		Stream: false,
		Format: "json",
	})
	if err != nil {
		switch {
		case ollama.IsNotFound(err):
			return s.modelNotFound(ctx, err)
		case errors.Is(err, ollama.ErrInvalidResponse):
			return s.fail(DiagnosticMalformedResponse, err, "Malformed response from Ollama")
		default:
			return s.fail(DiagnosticTransport, err, "Error connecting to Ollama")
		}
	}

	suggestions, err := Validate([]byte(resp.Response))
	if err != nil {
		return s.fail(DiagnosticMalformedResponse, err, "Model output did not match the suggestion schema")
	}

	return Result{
		Suggestions: suggestions,
		Diagnostic:  Diagnostic{Kind: DiagnosticNone},
	}
}

func (s *Service) modelNotFound(ctx context.Context, err error) Result {
	models := s.client.ListModels(ctx)

	listed := "(none installed)"
	if len(models) > 0 {
		listed = strings.Join(models, "\n")
	}
	msg := fmt.Sprintf("Model %q not found. Available models:\n%s\n\nTo use a different model, set OLLAMA_MODEL to one of the models above.", s.model, listed)
	s.logger.Printf("[suggestions] %s", msg)

	return Result{
		Suggestions: []Suggestion{},
		Diagnostic: Diagnostic{
			Kind:    DiagnosticModelNotFound,
			Message: msg,
			Models:  models,
			Err:     err,
		},
	}
}

func (s *Service) fail(kind DiagnosticKind, err error, msg string) Result {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	s.logger.Printf("[suggestions] %s", msg)

	return Result{
		Suggestions: []Suggestion{},
		Diagnostic: Diagnostic{
			Kind:    kind,
			Message: msg,
			Err:     err,
		},
	}
}
