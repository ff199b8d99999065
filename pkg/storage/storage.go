// Package storage, yüklenen resimlerin (kapak, avatar) saklandığı katmandır.
//
// İki implementasyon vardır, UPLOAD_STORAGE_DRIVER ile seçilir:
//   - "local" → diskte bir dizin; dosyalar /api/uploads/ altından servis edilir
//   - "s3"    → S3 uyumlu object storage (AWS, MinIO, SeaweedFS ...)
//
// Key'ler "covers/<random>.jpg" gibi göreli yollardır; DB'de URL ile birlikte
// saklanır ki eski dosya sonradan silinebilsin.
package storage

import (
	"context"
	"io"
)

// Storage, object saklama interface'i.
type Storage interface {
	// Put, içeriği key altına yazar ve public URL'ini döner.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (url string, err error)
	// Delete, key'i siler. Olmayan key hata değildir.
	Delete(ctx context.Context, key string) error
}
