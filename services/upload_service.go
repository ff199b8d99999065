package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/akinalp/chronora/pkg"
	"github.com/akinalp/chronora/pkg/storage"
)

// StoredImage, storage'a yazılmış bir resmin URL'i ve silme için key'i.
type StoredImage struct {
	URL string
	Key string
}

// UploadService, resim yükleme iş mantığı interface'i.
// Post kapakları ve kullanıcı avatarları bu servisten geçer.
type UploadService interface {
	// UploadImage, resmi doğrular ve folder/ altına rastgele isimle yazar.
	UploadImage(ctx context.Context, folder string, file multipart.File, header *multipart.FileHeader) (*StoredImage, error)
	// Delete, key'i siler. Boş key no-op'tur; hata sadece loglanır.
	Delete(ctx context.Context, key string)
}

type uploadService struct {
	store   storage.Storage
	maxSize int64
}

// NewUploadService, constructor.
func NewUploadService(store storage.Storage, maxSize int64) UploadService {
	return &uploadService{store: store, maxSize: maxSize}
}

// allowedImageTypes, yüklemeye izin verilen resim türleri ve uzantıları.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadImage, boyut ve içerik türünü kontrol edip resmi storage'a yazar.
//
// İçerik türü header'daki Content-Type'a değil, dosyanın ilk 512 byte'ına
// bakılarak (http.DetectContentType) belirlenir.
func (s *uploadService) UploadImage(ctx context.Context, folder string, file multipart.File, header *multipart.FileHeader) (*StoredImage, error) {
	if header.Size > s.maxSize {
		return nil, fmt.Errorf("%w: image too large (max %dMB)", pkg.ErrBadRequest, s.maxSize/(1024*1024))
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	sniff = sniff[:n]

	contentType := http.DetectContentType(sniff)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: only jpeg, png, gif and webp images are allowed", pkg.ErrBadRequest)
	}

	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random filename: %w", err)
	}
	key := folder + "/" + hex.EncodeToString(randomBytes) + ext

	// Okunan ilk byte'lar + kalan içerik
	body := io.MultiReader(bytes.NewReader(sniff), io.LimitReader(file, s.maxSize-int64(n)+1))

	url, err := s.store.Put(ctx, key, body, header.Size, contentType)
	if err != nil {
		return nil, err
	}

	return &StoredImage{URL: url, Key: key}, nil
}

func (s *uploadService) Delete(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("component", "upload").Str("key", key).Msg("failed to delete stored image")
	}
}
