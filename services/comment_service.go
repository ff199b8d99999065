package services

import (
	"context"
	"fmt"

	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
	"github.com/akinalp/chronora/repository"
)

// CommentService, yorum iş mantığı.
type CommentService interface {
	// Create, görünür bir yazıya yorum (veya yanıt) ekler.
	Create(ctx context.Context, identity *models.Identity, req *models.CreateCommentRequest) (*models.Comment, error)
	ListByPost(ctx context.Context, postID, viewerID string) ([]models.Comment, error)
	// Delete, yorumu ve yanıtlarını siler.
	// Yorumun yazarı, yazının yazarı veya admin yapabilir.
	Delete(ctx context.Context, identity *models.Identity, commentID string) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

// NewCommentService, constructor.
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) CommentService {
	return &commentService{commentRepo: commentRepo, postRepo: postRepo}
}

func (s *commentService) Create(ctx context.Context, identity *models.Identity, req *models.CreateCommentRequest) (*models.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if _, err := s.visiblePost(ctx, req.PostID, identity.UserID); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != req.PostID {
			return nil, fmt.Errorf("%w: parent comment belongs to another post", pkg.ErrBadRequest)
		}
	}

	comment := &models.Comment{
		PostID:   req.PostID,
		AuthorID: identity.UserID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// Author özetiyle birlikte dön
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *commentService) ListByPost(ctx context.Context, postID, viewerID string) ([]models.Comment, error) {
	if _, err := s.visiblePost(ctx, postID, viewerID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

func (s *commentService) Delete(ctx context.Context, identity *models.Identity, commentID string) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.AuthorID != identity.UserID && !identity.IsAdmin() {
		post, err := s.postRepo.GetByID(ctx, comment.PostID, identity.UserID)
		if err != nil {
			return err
		}
		if post.AuthorID != identity.UserID {
			return fmt.Errorf("%w: not allowed to delete this comment", pkg.ErrForbidden)
		}
	}

	return s.commentRepo.Delete(ctx, commentID)
}

func (s *commentService) visiblePost(ctx context.Context, postID, viewerID string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(viewerID) {
		return nil, fmt.Errorf("%w: post not found", pkg.ErrNotFound)
	}
	return post, nil
}
