package repository

import (
	"context"

	"github.com/akinalp/chronora/models"
)

// CommentRepository, yorum işlemleri için interface.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	// ListByPost, yazının yorumlarını en yeniden eskiye döner (author özetiyle).
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	// Delete, yorumu ve ona verilen tüm yanıtları siler.
	Delete(ctx context.Context, id string) error
}
