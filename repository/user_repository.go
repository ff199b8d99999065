// Package repository, veritabanı erişim katmanını tanımlar.
//
// Repository Pattern nedir?
// Veritabanı işlemlerini (CRUD) soyutlayan bir tasarım kalıbıdır.
// Service katmanı doğrudan SQL yazmaz — repository interface'i üzerinden çalışır.
//
// Her interface'in iki implementasyonu vardır:
//   - sqlite_*.go → varsayılan, database/sql + modernc SQLite
//   - mongo_*.go  → DATABASE_DRIVER=mongo, mongo-driver v2
//
// Go'da interface "implicit"tır — bir struct, interface'deki tüm method'ları
// implement ediyorsa otomatik olarak o interface'i sağlar.
package repository

import (
	"context"
	"time"

	"github.com/akinalp/chronora/models"
)

// UserRepository, kullanıcı (credential store) işlemleri için interface.
//
// Bulunamayan kayıtlar için pkg.ErrNotFound döner; username/email çakışması
// pkg.ErrAlreadyExists ile wrap edilir.
type UserRepository interface {
	// Create, yeni kullanıcı ekler. ID boşsa üretilir.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateDisplayName(ctx context.Context, userID, displayName string) error
	// UpdateAvatar, avatar URL'ini ve storage key'ini birlikte günceller.
	// Boş değerler avatarı kaldırır.
	UpdateAvatar(ctx context.Context, userID, avatarURL, avatarKey string) error
	// UpdatePassword, kullanıcının şifre hash'ini günceller.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
}
