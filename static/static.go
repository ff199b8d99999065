// Package static, SPA frontend build çıktısını binary'ye gömer.
//
// Build sırasında client/dist/ içeriği static/dist/ dizinine kopyalanır,
// ardından Go derleyicisi bu dosyaları binary'ye gömer.
//
// Development modunda dist/ içi boş olabilir (.gitkeep) —
// bu durumda Vite dev server frontend'i servis eder.
//
// Production'da binary frontend'i doğrudan servis eder (SPA fallback ile).
package static

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// FrontendFS, dist/ dizinindeki frontend build dosyalarını içerir.
// "all:" prefix'i .gitkeep gibi nokta ile başlayan dosyaları da dahil eder.
//
//go:embed all:dist
var FrontendFS embed.FS

// Handler, gömülü frontend'i servis eder.
//
// SPA fallback: dosya olarak bulunamayan path'ler (ör: /posts/123) index.html'e
// düşer; client-side router sayfayı çözer. /api/ altındaki path'ler bu
// handler'a hiç gelmemelidir.
//
// Build yoksa (dist/ boş) ok=false döner ve route eklenmez.
func Handler() (h http.Handler, ok bool) {
	dist, err := fs.Sub(FrontendFS, "dist")
	if err != nil {
		return nil, false
	}
	if _, err := fs.Stat(dist, "index.html"); err != nil {
		return nil, false
	}
	return spaHandler(dist), true
}

func spaHandler(dist fs.FS) http.Handler {
	fileServer := http.FileServerFS(dist)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}

		if info, err := fs.Stat(dist, name); err != nil || info.IsDir() {
			http.ServeFileFS(w, r, dist, "index.html")
			return
		}

		// Vite hash'li asset isimleri üretir; uzun cache güvenli
		if strings.HasPrefix(name, "assets/") {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}
		fileServer.ServeHTTP(w, r)
	})
}
