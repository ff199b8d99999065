package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
	"github.com/akinalp/chronora/services"
)

// UserHandler, profil ve oturum (cihaz) endpoint'lerini yönetir.
type UserHandler struct {
	userService    services.UserService
	sessionService services.SessionService
	maxImageSize   int64
}

// NewUserHandler, constructor.
func NewUserHandler(userService services.UserService, sessionService services.SessionService, maxImageSize int64) *UserHandler {
	return &UserHandler{
		userService:    userService,
		sessionService: sessionService,
		maxImageSize:   maxImageSize,
	}
}

// Me godoc
// GET /api/users/me
// Auth middleware gerektirir — context'te kimlik bilgisi olur.
// Token'daki claim'ler değil, DB'deki güncel profil döner.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.userService.GetMe(r.Context(), identity.UserID)
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.JSON(w, http.StatusOK, user)
}

// UpdateDisplayName godoc
// PUT /api/users/me/displayname
// Body: { "display_name": "..." }
func (h *UserHandler) UpdateDisplayName(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.UpdateDisplayNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.UpdateDisplayName(r.Context(), identity.UserID, &req)
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.Message(w, http.StatusOK, "display name updated", user)
}

// UploadAvatar godoc
// POST /api/users/me/avatar
// Content-Type: multipart/form-data
// Body: "image" alanında resim dosyası
//
// Eski avatar dosyası varsa storage'dan silinir (çöp birikmesini önler).
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := parseMultipart(w, r, h.maxImageSize); err != nil {
		pkg.Error(w, r, err)
		return
	}

	file, header, err := formImage(r, "image", h.maxImageSize)
	if err != nil {
		pkg.Error(w, r, err)
		return
	}
	if file == nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "image field is required")
		return
	}
	defer file.Close()

	user, err := h.userService.UpdateAvatar(r.Context(), identity.UserID, file, header)
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.Message(w, http.StatusOK, "avatar updated", user)
}

// RemoveAvatar godoc
// DELETE /api/users/me/avatar
func (h *UserHandler) RemoveAvatar(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.userService.RemoveAvatar(r.Context(), identity.UserID)
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.Message(w, http.StatusOK, "avatar removed", user)
}

// ListSessions godoc
// GET /api/users/me/sessions
// Kullanıcının aktif oturumları; isteği yapan oturum "current": true ile işaretlenir.
func (h *UserHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sessions, err := h.sessionService.ListSessions(r.Context(), identity.UserID, identity.SessionID)
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.JSON(w, http.StatusOK, sessions)
}

// RevokeSession godoc
// DELETE /api/users/me/sessions/{sessionId}
func (h *UserHandler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.sessionService.RevokeSession(r.Context(), identity.UserID, r.PathValue("sessionId")); err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.Message(w, http.StatusOK, "session revoked", nil)
}

// GetProfile godoc
// GET /api/users/{userId}
// Herkese açık profil: username, görünen ad, avatar.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetPublic(r.Context(), r.PathValue("userId"))
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.JSON(w, http.StatusOK, user)
}
