package pkg

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

// APIResponse, tüm API yanıtları için standart format.
// Frontend her zaman aynı yapıyı bekler: "ok" alanı başarıyı belirtir,
// "message" kullanıcıya gösterilebilecek metindir.
type APIResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// internalErrorMessage, 5xx yanıtlarında client'a giden genel mesaj.
const internalErrorMessage = "internal server error"

type debugKey struct{}

// WithDebugErrors, request context'ine "detaylı hata" bayrağını ekler.
// Production dışında true olur — 500 yanıtlarına wrap edilmiş hata metni eklenir.
func WithDebugErrors(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, debugKey{}, enabled)
}

func debugErrors(ctx context.Context) bool {
	enabled, _ := ctx.Value(debugKey{}).(bool)
	return enabled
}

// JSON, başarılı bir yanıt gönderir.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, APIResponse{OK: true, Data: data})
}

// Message, veri taşımayan (veya mesajla birlikte veri taşıyan) başarılı yanıt.
func Message(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, APIResponse{OK: true, Message: message, Data: data})
}

// Error, hata yanıtı gönderir.
// Domain error'ları otomatik olarak uygun HTTP status code'a çevrilir.
//
// 4xx: err.Error() mesaj olarak döner — validation ve yetki hataları
// kullanıcıya okunabilir olmalı.
// 5xx: sadece genel mesaj döner; detay loglanır ve debug modunda "error"
// alanına eklenir.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToStatus(err)

	resp := APIResponse{OK: false, Message: err.Error()}
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("component", "http").
			Str("path", r.URL.Path).
			Msg("request failed")

		resp.Message = internalErrorMessage
		if status == http.StatusServiceUnavailable {
			resp.Message = err.Error()
		}
		if debugErrors(r.Context()) {
			resp.Error = err.Error()
		}
	}

	write(w, status, resp)
}

// ErrorWithMessage, özel mesajlı hata yanıtı gönderir.
func ErrorWithMessage(w http.ResponseWriter, status int, message string) {
	write(w, status, APIResponse{OK: false, Message: message})
}

func write(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// mapErrorToStatus, domain error'ları HTTP status code'larına eşler.
// errors.Is() wrap edilmiş error'ları da doğru eşler.
func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidSession):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
