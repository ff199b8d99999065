package repository

import (
	"context"
	"time"

	"github.com/akinalp/chronora/models"
)

// SessionRepository, oturum (session store) işlemleri için interface.
//
// Oturum canlılığı sorgu anında filtrelenir: "aktif" = valid AND expires_at > now.
// Süresi dolmuş kayıtlar okunmaz ama silinmez; DeleteExpired periyodik temizliktir.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error

	// GetByID, geçerlilik filtresi OLMADAN oturumu döner.
	GetByID(ctx context.Context, id string) (*models.Session, error)

	// GetActiveByID, sadece aktif oturumu döner; aksi halde pkg.ErrNotFound.
	GetActiveByID(ctx context.Context, id string, now time.Time) (*models.Session, error)

	// Invalidate, oturumu geçersiz işaretler. Kayıt yoksa veya zaten
	// geçersizse hata dönmez (idempotent).
	Invalidate(ctx context.Context, id string) error

	// InvalidateByUserID, kullanıcının tüm oturumlarını geçersiz kılar.
	// exceptID boş değilse o oturum korunur (şifre değiştiren cihaz).
	InvalidateByUserID(ctx context.Context, userID, exceptID string) (int64, error)

	// ListActiveByUserID, kullanıcının aktif oturumlarını en yeniden eskiye döner.
	ListActiveByUserID(ctx context.Context, userID string, now time.Time) ([]models.Session, error)

	// DeleteExpired, now anında süresi dolmuş kayıtları siler ve sayısını döner.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
