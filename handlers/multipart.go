// Avatar ve kapak resmi yükleme yardımcıları.
//
// İşlem akışı:
// 1. Multipart form parse → dosya alanını oku
// 2. Boyut ön kontrolü (header.Size)
// 3. İçerik türü ve storage'a yazma UploadService'de yapılır
// 4. Kullanıcı/yazı kaydı ilgili service'te güncellenir
package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/akinalp/chronora/pkg"
)

// multipartMemory, ParseMultipartForm'un bellekte tuttuğu üst sınır.
// Üzerindeki kısım temp dosyaya yazılır.
const multipartMemory = 8 << 20

// isMultipart, isteğin multipart/form-data olup olmadığını döner.
func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// parseMultipart, body'yi maxSize (+ form alanları için 1MB pay) ile sınırlar
// ve multipart formu parse eder.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxSize int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+(1<<20))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: image too large (max %dMB)", pkg.ErrBadRequest, maxSize/(1024*1024))
		}
		return fmt.Errorf("%w: failed to parse multipart form", pkg.ErrBadRequest)
	}
	return nil
}

// formImage, parse edilmiş formdaki dosya alanını döner.
// Alan yoksa (nil, nil, nil) döner; zorunluluğu çağıran belirler.
// Dönen dosyayı kapatmak çağıranın sorumluluğundadır.
func formImage(r *http.Request, field string, maxSize int64) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid %s field", pkg.ErrBadRequest, field)
	}

	if header.Size > maxSize {
		file.Close()
		return nil, nil, fmt.Errorf("%w: image too large (max %dMB)", pkg.ErrBadRequest, maxSize/(1024*1024))
	}
	return file, header, nil
}
