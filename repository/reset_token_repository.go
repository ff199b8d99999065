// Package repository — PasswordResetRepository interface tanımı.
//
// Şifre sıfırlama token'larının CRUD işlemlerini soyutlar.
// Service katmanı bu interface'e bağımlıdır, SQLite implementasyonuna değil.
package repository

import (
	"context"
	"time"

	"github.com/akinalp/chronora/models"
)

// PasswordResetRepository, password reset token veritabanı işlemleri için interface.
type PasswordResetRepository interface {
	// Create, yeni bir reset token kaydı oluşturur.
	Create(ctx context.Context, token *models.PasswordResetToken) error

	// GetValidByTokenHash, SHA256 hash'e göre süresi DOLMAMIŞ token kaydını bulur.
	// Bulunamazsa veya süresi dolmuşsa pkg.ErrNotFound döner.
	GetValidByTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.PasswordResetToken, error)

	// DeleteByUserID, bir kullanıcının TÜM reset token'larını siler.
	// Yeni token oluşturmadan önce ve başarılı reset sonrası çağrılır.
	DeleteByUserID(ctx context.Context, userID string) error

	// DeleteExpired, süresi dolmuş tüm token'ları temizler.
	// SessionSweeper her turda bunu da çağırır.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
