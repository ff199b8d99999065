package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind, imzalama anahtarını ve süreyi seçen token türü.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// AccessClaims, kısa ömürlü access token'ın payload'ı.
//
// Server her request'te bu token'ı doğrular — DB'ye gitmeden
// kullanıcının kim olduğunu ve hangi oturumdan geldiğini bilir.
// Bu struct models paketinde tanımlanır çünkü services ve middleware
// katmanları tarafından kullanılır.
type AccessClaims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Identity, claim'lerden Identity üretir.
func (c *AccessClaims) Identity() Identity {
	return Identity{
		UserID:    c.UserID,
		Username:  c.Username,
		Email:     c.Email,
		Role:      c.Role,
		SessionID: c.SessionID,
	}
}

// RefreshClaims, uzun ömürlü refresh token'ın payload'ı.
// Kasıtlı olarak sadece session ID taşır; kullanıcı bilgisi rotasyonda DB'den okunur.
type RefreshClaims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// TokenPair, bir oturum için üretilen access + refresh token çifti.
// Cookie'ler bu struct'tan yazılır; JSON body'de dönmez.
type TokenPair struct {
	AccessToken      string    `json:"-"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshToken     string    `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
	SessionID        string    `json:"-"`
}
