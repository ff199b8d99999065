// Package handlers, HTTP request/response işlemlerini yönetir.
//
// Handler'ın görevi çok basit ve "ince" (thin) olmalı:
// 1. Request body'yi parse et (JSON → struct)
// 2. Service katmanını çağır
// 3. Sonucu HTTP response olarak döndür
//
// Handler ASLA iş mantığı (business logic) içermez.
// Handler ASLA doğrudan DB'ye erişmez.
// Tüm akıl service'de, handler sadece köprü.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
	"github.com/akinalp/chronora/pkg/cookies"
	"github.com/akinalp/chronora/services"
)

// AuthHandler, auth endpoint'lerini yöneten struct.
// Token'lar response body'de DÖNMEZ — sadece HttpOnly cookie olarak yazılır.
type AuthHandler struct {
	authService    services.AuthService
	sessionService services.SessionService
	cookies        *cookies.Manager
}

// NewAuthHandler, constructor.
func NewAuthHandler(authService services.AuthService, sessionService services.SessionService, cookieManager *cookies.Manager) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		sessionService: sessionService,
		cookies:        cookieManager,
	}
}

// Register godoc
// POST /api/auth/register
// Body: { "username": "...", "email": "...", "password": "..." }
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest

	// json.NewDecoder: Request body'yi Go struct'ına parse eder.
	// r.Body bir io.Reader'dır — stream olarak okunur, hepsini belleğe almaz.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.Register(r.Context(), &req, SessionMetaFromRequest(r))
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	h.cookies.SetTokens(w, result.Pair)
	pkg.Message(w, http.StatusCreated, "user registered successfully", result.User.Public())
}

// Login godoc
// POST /api/auth/login
// Body: { "email": "...", "password": "..." }
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), &req, SessionMetaFromRequest(r))
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	h.cookies.SetTokens(w, result.Pair)
	pkg.Message(w, http.StatusOK, "logged in successfully", result.User.Public())
}

// Logout godoc
// POST /api/auth/logout
//
// Refresh cookie'sinin işaret ettiği oturumu geçersiz kılar ve iki cookie'yi siler.
// Cookie yoksa 400; token geçersizse cookie'ler yine silinir ve 400 döner.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	refreshToken := cookies.Read(r, cookies.RefreshTokenName)
	if refreshToken == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "no active session")
		return
	}

	if err := h.sessionService.Logout(r.Context(), refreshToken); err != nil {
		h.cookies.Clear(w)
		if errors.Is(err, pkg.ErrInvalidToken) {
			pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid session")
			return
		}
		pkg.Error(w, r, err)
		return
	}

	h.cookies.Clear(w)
	pkg.Message(w, http.StatusOK, "logged out successfully", nil)
}

// ChangePassword godoc
// PUT /api/auth/change-password
// Auth middleware gerektirir.
//
// Body: { "current_password": "...", "new_password": "...", "confirm_password": "..." }
// İsteği yapan oturum açık kalır, diğer oturumlar kapanır.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.ChangePassword(r.Context(), identity, &req); err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.Message(w, http.StatusOK, "password changed successfully", nil)
}

// ForgotPassword godoc
// POST /api/auth/forgot-password
// Body: { "email": "..." }
//
// Güvenlik: Email DB'de yoksa bile aynı success yanıtı döner (enumeration koruması).
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), &req); err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.Message(w, http.StatusOK, "if the email exists, a reset link has been sent", nil)
}

// ResetPassword godoc
// POST /api/auth/reset-password
// Body: { "token": "...", "password": "..." }
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.ResetPassword(r.Context(), &req); err != nil {
		pkg.Error(w, r, err)
		return
	}

	// Reset tüm oturumları kapattı; bu tarayıcıdaki cookie'ler de artık geçersiz
	h.cookies.Clear(w)
	pkg.Message(w, http.StatusOK, "password has been reset successfully", nil)
}
