package repository

import (
	"context"

	"github.com/akinalp/chronora/models"
)

// PostRepository, blog yazısı işlemleri için interface.
//
// Okuma method'ları viewerID alır: LikesCount her zaman, Liked sadece
// viewerID doluysa hesaplanır. Author özeti JOIN ile doldurulur.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id, viewerID string) (*models.Post, error)
	// List, filtreye uyan yazıları en yeniden eskiye döner.
	// IncludeDrafts=false ise sadece published yazılar gelir.
	List(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	// Update, başlık, içerik, durum, tag ve kapak alanlarını yazar.
	Update(ctx context.Context, post *models.Post) error
	// Delete, yazıyı yorumları ve beğenileriyle birlikte siler.
	Delete(ctx context.Context, id string) error
	// ToggleLike, kullanıcının beğenisini ekler/kaldırır; yeni durumu ve sayıyı döner.
	ToggleLike(ctx context.Context, postID, userID string) (*models.LikeResult, error)
}
