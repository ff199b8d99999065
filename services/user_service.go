package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
	"github.com/akinalp/chronora/repository"
)

// UserService, profil işlemleri.
type UserService interface {
	GetMe(ctx context.Context, userID string) (*models.User, error)
	GetPublic(ctx context.Context, userID string) (*models.PublicUser, error)
	UpdateDisplayName(ctx context.Context, userID string, req *models.UpdateDisplayNameRequest) (*models.User, error)
	// UpdateAvatar, yeni avatarı yükler ve önceki avatar dosyasını siler.
	UpdateAvatar(ctx context.Context, userID string, file multipart.File, header *multipart.FileHeader) (*models.User, error)
	RemoveAvatar(ctx context.Context, userID string) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	uploads  UploadService
}

// NewUserService, constructor.
func NewUserService(userRepo repository.UserRepository, uploads UploadService) UserService {
	return &userService{userRepo: userRepo, uploads: uploads}
}

func (s *userService) GetMe(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, userNotFound(err)
	}
	return user, nil
}

func (s *userService) GetPublic(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, userNotFound(err)
	}
	public := user.Public()
	return &public, nil
}

func (s *userService) UpdateDisplayName(ctx context.Context, userID string, req *models.UpdateDisplayNameRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if err := s.userRepo.UpdateDisplayName(ctx, userID, req.DisplayName); err != nil {
		return nil, userNotFound(err)
	}
	return s.GetMe(ctx, userID)
}

func (s *userService) UpdateAvatar(ctx context.Context, userID string, file multipart.File, header *multipart.FileHeader) (*models.User, error) {
	user, err := s.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}

	img, err := s.uploads.UploadImage(ctx, "avatars", file, header)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateAvatar(ctx, userID, img.URL, img.Key); err != nil {
		s.uploads.Delete(ctx, img.Key)
		return nil, userNotFound(err)
	}

	s.uploads.Delete(ctx, user.AvatarKey)

	user.AvatarURL = img.URL
	user.AvatarKey = img.Key
	return user, nil
}

func (s *userService) RemoveAvatar(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.AvatarKey == "" && user.AvatarURL == "" {
		return user, nil
	}

	if err := s.userRepo.UpdateAvatar(ctx, userID, "", ""); err != nil {
		return nil, userNotFound(err)
	}
	s.uploads.Delete(ctx, user.AvatarKey)

	user.AvatarURL = ""
	user.AvatarKey = ""
	return user, nil
}

// userNotFound, repository'nin genel ErrNotFound'unu ErrUserNotFound'a çevirir.
func userNotFound(err error) error {
	if errors.Is(err, pkg.ErrNotFound) {
		return pkg.ErrUserNotFound
	}
	return err
}
