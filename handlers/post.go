package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
	"github.com/akinalp/chronora/services"
)

// PostHandler, blog yazısı endpoint'lerini yönetir.
type PostHandler struct {
	postService  services.PostService
	maxImageSize int64
}

// NewPostHandler, constructor.
func NewPostHandler(postService services.PostService, maxImageSize int64) *PostHandler {
	return &PostHandler{postService: postService, maxImageSize: maxImageSize}
}

// Feed godoc
// GET /api/posts?tag=go&limit=20&offset=0
// Yayınlanmış yazılar, en yeniden eskiye.
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.Feed(r.Context(), listFilter(r))
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.JSON(w, http.StatusOK, posts)
}

// ListByAuthor godoc
// GET /api/posts/u/{userId}
// Yazarın kendisi bakıyorsa taslaklar da gelir.
func (h *PostHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ListByAuthor(r.Context(), r.PathValue("userId"), listFilter(r))
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.JSON(w, http.StatusOK, posts)
}

// Get godoc
// GET /api/posts/{postId}
// Yazı + yorumları. Taslak sadece yazarına görünür, diğerlerine 404.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.postService.Get(r.Context(), r.PathValue("postId"), viewerID(r))
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.JSON(w, http.StatusOK, post)
}

// Create godoc
// POST /api/posts
// JSON: { "title", "content", "status", "tags": [] }
// veya multipart: title, content, status, tags (virgülle ayrılmış), coverImage (dosya)
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.CreatePostRequest
	var cover *services.CoverUpload

	if isMultipart(r) {
		if err := parseMultipart(w, r, h.maxImageSize); err != nil {
			pkg.Error(w, r, err)
			return
		}
		req = models.CreatePostRequest{
			Title:   r.FormValue("title"),
			Content: r.FormValue("content"),
			Status:  models.PostStatus(r.FormValue("status")),
			Tags:    models.SplitTags(r.FormValue("tags")),
		}

		var err error
		if cover, err = h.coverFromForm(r); err != nil {
			pkg.Error(w, r, err)
			return
		}
		if cover != nil {
			defer cover.File.Close()
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), identity, &req, cover)
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.Message(w, http.StatusCreated, "post created", post)
}

// Update godoc
// PUT /api/posts/{postId}
// Kısmi güncelleme: gönderilmeyen alanlar değişmez.
// Multipart isteklerde yeni coverImage eskisinin yerini alır; remove_cover=true kapağı kaldırır.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.UpdatePostRequest
	var cover *services.CoverUpload

	if isMultipart(r) {
		if err := parseMultipart(w, r, h.maxImageSize); err != nil {
			pkg.Error(w, r, err)
			return
		}
		req = updateRequestFromForm(r)

		var err error
		if cover, err = h.coverFromForm(r); err != nil {
			pkg.Error(w, r, err)
			return
		}
		if cover != nil {
			defer cover.File.Close()
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := h.postService.Update(r.Context(), identity, r.PathValue("postId"), &req, cover)
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.Message(w, http.StatusOK, "post updated", post)
}

// Delete godoc
// DELETE /api/posts/{postId}
// Yazar veya admin silebilir; yorumlar, beğeniler ve kapak resmi de silinir.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.postService.Delete(r.Context(), identity, r.PathValue("postId")); err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.Message(w, http.StatusOK, "post deleted", nil)
}

// ToggleLike godoc
// POST /api/posts/{postId}/like
// Response: { "liked": bool, "likes_count": int }
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := h.postService.ToggleLike(r.Context(), identity, r.PathValue("postId"))
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.JSON(w, http.StatusOK, result)
}

func (h *PostHandler) coverFromForm(r *http.Request) (*services.CoverUpload, error) {
	file, header, err := formImage(r, "coverImage", h.maxImageSize)
	if err != nil || file == nil {
		return nil, err
	}
	return &services.CoverUpload{File: file, Header: header}, nil
}

// updateRequestFromForm, multipart formdan sadece GÖNDERİLEN alanları doldurur.
func updateRequestFromForm(r *http.Request) models.UpdatePostRequest {
	var req models.UpdatePostRequest
	form := r.MultipartForm.Value

	if v, ok := form["title"]; ok && len(v) > 0 {
		req.Title = &v[0]
	}
	if v, ok := form["content"]; ok && len(v) > 0 {
		req.Content = &v[0]
	}
	if v, ok := form["status"]; ok && len(v) > 0 {
		status := models.PostStatus(v[0])
		req.Status = &status
	}
	if v, ok := form["tags"]; ok && len(v) > 0 {
		tags := models.SplitTags(v[0])
		req.Tags = &tags
	}
	req.RemoveCover, _ = strconv.ParseBool(r.FormValue("remove_cover"))
	return req
}

// listFilter, sorgu parametrelerinden PostFilter üretir.
// Geçersiz sayılar yok sayılır; sınırlar repository'de uygulanır.
func listFilter(r *http.Request) models.PostFilter {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	return models.PostFilter{
		Tag:      q.Get("tag"),
		ViewerID: viewerID(r),
		Limit:    limit,
		Offset:   offset,
	}
}
