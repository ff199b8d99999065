package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
	"github.com/akinalp/chronora/repository"
)

// CoverUpload, multipart isteklerden gelen opsiyonel kapak resmi.
type CoverUpload struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// PostService, blog yazısı iş mantığı.
//
// Görünürlük kuralı: published yazılar herkese, draft yazılar SADECE yazarına
// görünür. Yazarı olmayan birinin draft'a erişimi "bulunamadı" olarak döner.
type PostService interface {
	Create(ctx context.Context, identity *models.Identity, req *models.CreatePostRequest, cover *CoverUpload) (*models.Post, error)
	// Get, yazıyı yorumlarıyla birlikte döner.
	Get(ctx context.Context, postID, viewerID string) (*models.PostDetail, error)
	// Feed, yayınlanmış yazıları en yeniden eskiye döner.
	Feed(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	// ListByAuthor, bir yazarın yazıları. Draft'lar sadece yazar kendisi bakıyorsa gelir.
	ListByAuthor(ctx context.Context, authorID string, filter models.PostFilter) ([]models.Post, error)
	Update(ctx context.Context, identity *models.Identity, postID string, req *models.UpdatePostRequest, cover *CoverUpload) (*models.Post, error)
	// Delete, yazıyı siler. Yazar veya admin yapabilir.
	Delete(ctx context.Context, identity *models.Identity, postID string) error
	ToggleLike(ctx context.Context, identity *models.Identity, postID string) (*models.LikeResult, error)
}

type postService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	uploads     UploadService
}

// NewPostService, constructor.
func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	uploads UploadService,
) PostService {
	return &postService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		uploads:     uploads,
	}
}

func (s *postService) Create(ctx context.Context, identity *models.Identity, req *models.CreatePostRequest, cover *CoverUpload) (*models.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	post := &models.Post{
		AuthorID: identity.UserID,
		Title:    req.Title,
		Content:  req.Content,
		Status:   req.Status,
		Tags:     req.Tags,
	}

	if cover != nil {
		img, err := s.uploads.UploadImage(ctx, "covers", cover.File, cover.Header)
		if err != nil {
			return nil, err
		}
		post.CoverImageURL = img.URL
		post.CoverImageKey = img.Key
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		s.uploads.Delete(ctx, post.CoverImageKey)
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, identity.UserID)
}

func (s *postService) Get(ctx context.Context, postID, viewerID string) (*models.PostDetail, error) {
	post, err := s.visiblePost(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &models.PostDetail{Post: post, Comments: comments}, nil
}

func (s *postService) Feed(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	filter.AuthorID = ""
	filter.IncludeDrafts = false
	return s.postRepo.List(ctx, filter)
}

func (s *postService) ListByAuthor(ctx context.Context, authorID string, filter models.PostFilter) ([]models.Post, error) {
	filter.AuthorID = authorID
	filter.IncludeDrafts = filter.ViewerID != "" && filter.ViewerID == authorID
	return s.postRepo.List(ctx, filter)
}

func (s *postService) Update(ctx context.Context, identity *models.Identity, postID string, req *models.UpdatePostRequest, cover *CoverUpload) (*models.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	post, err := s.visiblePost(ctx, postID, identity.UserID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != identity.UserID {
		return nil, fmt.Errorf("%w: only the author can edit this post", pkg.ErrForbidden)
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Status != nil {
		post.Status = *req.Status
	}
	if req.Tags != nil {
		post.Tags = *req.Tags
	}

	oldKey := post.CoverImageKey
	var newKey string

	switch {
	case cover != nil:
		img, err := s.uploads.UploadImage(ctx, "covers", cover.File, cover.Header)
		if err != nil {
			return nil, err
		}
		post.CoverImageURL = img.URL
		post.CoverImageKey = img.Key
		newKey = img.Key
	case req.RemoveCover:
		post.CoverImageURL = ""
		post.CoverImageKey = ""
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		s.uploads.Delete(ctx, newKey)
		return nil, err
	}

	if oldKey != "" && oldKey != post.CoverImageKey {
		s.uploads.Delete(ctx, oldKey)
	}

	return s.postRepo.GetByID(ctx, postID, identity.UserID)
}

func (s *postService) Delete(ctx context.Context, identity *models.Identity, postID string) error {
	post, err := s.visiblePost(ctx, postID, identity.UserID)
	if err != nil {
		return err
	}
	if post.AuthorID != identity.UserID && !identity.IsAdmin() {
		return fmt.Errorf("%w: only the author can delete this post", pkg.ErrForbidden)
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	s.uploads.Delete(ctx, post.CoverImageKey)
	return nil
}

func (s *postService) ToggleLike(ctx context.Context, identity *models.Identity, postID string) (*models.LikeResult, error) {
	if _, err := s.visiblePost(ctx, postID, identity.UserID); err != nil {
		return nil, err
	}
	return s.postRepo.ToggleLike(ctx, postID, identity.UserID)
}

// visiblePost, yazıyı getirir; izleyiciye görünmüyorsa ErrNotFound döner.
// Admin'ler de başkasının draft'ını göremez.
func (s *postService) visiblePost(ctx context.Context, postID, viewerID string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(viewerID) {
		return nil, fmt.Errorf("%w: post not found", pkg.ErrNotFound)
	}
	return post, nil
}
