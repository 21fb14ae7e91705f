package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/grocerly/backend/internal/suggestion"
)

// SuggestionGenerator runs the suggestion pathway
type SuggestionGenerator interface {
	GenerateSuggestions(ctx context.Context, items []string) suggestion.Result
	Model() string
}

// ModelCatalog answers availability and installed-model questions
type ModelCatalog interface {
	IsAvailable(ctx context.Context) bool
	ListModels(ctx context.Context) []string
}

// SuggestionHandler handles grocery suggestion requests
type SuggestionHandler struct {
	suggestions SuggestionGenerator
	catalog     ModelCatalog
}

// NewSuggestionHandler creates a new SuggestionHandler instance
func NewSuggestionHandler(suggestions SuggestionGenerator, catalog ModelCatalog) *SuggestionHandler {
	return &SuggestionHandler{
		suggestions: suggestions,
		catalog:     catalog,
	}
}

// RegisterRoutes registers the suggestion routes. limit guards generation only.
func (h *SuggestionHandler) RegisterRoutes(router *gin.RouterGroup, limit gin.HandlerFunc) {
	suggestions := router.Group("/suggestions")
	{
		if limit != nil {
			suggestions.POST("", limit, h.Suggest)
		} else {
			suggestions.POST("", h.Suggest)
		}
		suggestions.GET("/status", h.Status)
	}
}

// Suggest handles POST /api/v1/suggestions
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.suggestions.GenerateSuggestions(c.Request.Context(), req.Items)

	suggestions := result.Suggestions
	if suggestions == nil {
		suggestions = []suggestion.Suggestion{}
	}
	c.JSON(http.StatusOK, SuggestResponse{
		Suggestions: suggestions,
		Status:      string(result.Diagnostic.Kind),
	})
}

// Status handles GET /api/v1/suggestions/status
func (h *SuggestionHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	model := h.suggestions.Model()

	resp := StatusResponse{
		Available: h.catalog.IsAvailable(ctx),
		Model:     model,
		Models:    []string{},
	}
	if resp.Available {
		resp.Models = h.catalog.ListModels(ctx)
		resp.ModelInstalled = modelInstalled(resp.Models, model)
	}

	c.JSON(http.StatusOK, resp)
}

// modelInstalled matches "llama3.2" against "llama3.2" or "llama3.2:latest"
func modelInstalled(models []string, model string) bool {
	for _, name := range models {
		if name == model {
			return true
		}
		if !strings.Contains(model, ":") && name == model+":latest" {
			return true
		}
	}
	return false
}
