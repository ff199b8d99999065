package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
	"github.com/akinalp/chronora/services"
)

// CommentHandler, yorum endpoint'lerini yönetir.
type CommentHandler struct {
	commentService services.CommentService
}

// NewCommentHandler, constructor.
func NewCommentHandler(commentService services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create godoc
// POST /api/comments
// Body: { "post_id": "...", "content": "...", "parent_id": "..." (opsiyonel) }
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.commentService.Create(r.Context(), identity, &req)
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.Message(w, http.StatusCreated, "comment added", comment)
}

// ListByPost godoc
// GET /api/posts/{postId}/comments
func (h *CommentHandler) ListByPost(w http.ResponseWriter, r *http.Request) {
	comments, err := h.commentService.ListByPost(r.Context(), r.PathValue("postId"), viewerID(r))
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.JSON(w, http.StatusOK, comments)
}

// Delete godoc
// DELETE /api/comments/{commentId}
// Yorumun yazarı, yazının yazarı veya admin silebilir. Yanıtlar da silinir.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.commentService.Delete(r.Context(), identity, r.PathValue("commentId")); err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.Message(w, http.StatusOK, "comment deleted", nil)
}
