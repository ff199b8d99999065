package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
	"github.com/akinalp/chronora/services"
)

// AIHandler, yazma asistanı endpoint'leri. Tüm route'lar auth gerektirir.
type AIHandler struct {
	aiService services.AIService
}

// NewAIHandler, constructor.
func NewAIHandler(aiService services.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// GenerateBlog godoc
// POST /api/ai/generate-blog
// Body: { "topic": "..." } → { "title", "tags", "content" }
func (h *AIHandler) GenerateBlog(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateBlogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	blog, err := h.aiService.GenerateBlog(r.Context(), &req)
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.Message(w, http.StatusOK, "blog generated successfully", blog)
}

// GenerateTitles godoc
// POST /api/ai/generate-titles
// Body: { "content": "..." } → { "titles": [] }
func (h *AIHandler) GenerateTitles(w http.ResponseWriter, r *http.Request) {
	h.content(w, r, "titles generated successfully", func(req *models.AIContentRequest) (any, error) {
		return h.aiService.GenerateTitles(r.Context(), req)
	})
}

// FixGrammar godoc
// POST /api/ai/fix-grammar
func (h *AIHandler) FixGrammar(w http.ResponseWriter, r *http.Request) {
	h.content(w, r, "grammar fixed successfully", func(req *models.AIContentRequest) (any, error) {
		return h.aiService.FixGrammar(r.Context(), req)
	})
}

// ImproveContent godoc
// POST /api/ai/improve-content
func (h *AIHandler) ImproveContent(w http.ResponseWriter, r *http.Request) {
	h.content(w, r, "content improved successfully", func(req *models.AIContentRequest) (any, error) {
		return h.aiService.ImproveContent(r.Context(), req)
	})
}

// content, { "content": "..." } body'li üç endpoint'in ortak akışı.
func (h *AIHandler) content(w http.ResponseWriter, r *http.Request, message string, call func(*models.AIContentRequest) (any, error)) {
	var req models.AIContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := call(&req)
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.Message(w, http.StatusOK, message, out)
}
