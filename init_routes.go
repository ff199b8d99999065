// Package main — HTTP route registration.
//
// initRoutes, chi router'ı kurar, global middleware zincirini bağlar ve tüm
// API endpoint'lerini kaydeder.
//
// Middleware sırası (dıştan içe):
//
//	otelhttp → CORS → RequestID → RealIP → RequestLogger → Recoverer → auth.Resolve → route
//
// auth.Resolve HER isteğe uygulanır ve isteği asla durdurmaz; kimlik zorunlu
// route'lar ayrıca auth.Require ile sarılır.
package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/akinalp/chronora/config"
	"github.com/akinalp/chronora/middleware"
	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
	"github.com/akinalp/chronora/pkg/telemetry"
	"github.com/akinalp/chronora/static"
)

// initRoutes, tüm route'ları bağlar ve en dıştaki handler'ı döner.
func initRoutes(
	h *Handlers,
	svcs *Services,
	cfg *config.Config,
	metrics *telemetry.Metrics,
	registry *prometheus.Registry,
) http.Handler {
	authMw := middleware.NewAuthMiddleware(svcs.Tokens, svcs.Sessions, svcs.Cookies)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(metrics, !cfg.Server.IsProduction()))
	r.Use(chimw.Recoverer)
	r.Use(authMw.Resolve)

	// ─── Infrastructure ───
	if cfg.Telemetry.MetricsEnabled {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "service": serviceName})
		})

		if svcs.UploadsDir != "" {
			r.Get("/uploads/*", uploadsHandler(svcs.UploadsDir))
		}

		// ─── Auth ───
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/logout", h.Auth.Logout)
			r.Post("/forgot-password", h.Auth.ForgotPassword)
			r.Post("/reset-password", h.Auth.ResetPassword)
			r.With(authMw.Require).Put("/change-password", h.Auth.ChangePassword)
		})

		// ─── Users ───
		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authMw.Require)
				r.Get("/me", h.User.Me)
				r.Put("/me/displayname", h.User.UpdateDisplayName)
				r.Post("/me/avatar", h.User.UploadAvatar)
				r.Delete("/me/avatar", h.User.RemoveAvatar)
				r.Get("/me/sessions", h.User.ListSessions)
				r.Delete("/me/sessions/{sessionId}", h.User.RevokeSession)
			})
			r.Get("/{userId}", h.User.GetProfile)
		})

		// ─── Posts ───
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.Post.Feed)
			r.Get("/u/{userId}", h.Post.ListByAuthor)
			r.Get("/{postId}", h.Post.Get)
			r.Get("/{postId}/comments", h.Comment.ListByPost)

			r.Group(func(r chi.Router) {
				r.Use(authMw.Require)
				r.Post("/", h.Post.Create)
				r.Put("/{postId}", h.Post.Update)
				r.Delete("/{postId}", h.Post.Delete)
				r.Post("/{postId}/like", h.Post.ToggleLike)
			})
		})

		// ─── Comments ───
		r.Route("/comments", func(r chi.Router) {
			r.Use(authMw.Require)
			r.Post("/", h.Comment.Create)
			r.Delete("/{commentId}", h.Comment.Delete)
		})

		// ─── AI assist ───
		r.Route("/ai", func(r chi.Router) {
			r.Use(authMw.Require)
			r.Post("/generate-blog", h.AI.GenerateBlog)
			r.Post("/generate-titles", h.AI.GenerateTitles)
			r.Post("/fix-grammar", h.AI.FixGrammar)
			r.Post("/improve-content", h.AI.ImproveContent)
		})

		// ─── Admin ───
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMw.RequireRole(models.RoleAdmin))
			r.Post("/sweep", sweepHandler(svcs))
		})
	})

	// ─── Frontend (SPA) ───
	// Build gömülüyse /api dışındaki her path frontend'e düşer.
	if spa, ok := static.Handler(); ok {
		r.NotFound(func(w http.ResponseWriter, req *http.Request) {
			if strings.HasPrefix(req.URL.Path, "/api/") {
				http.NotFound(w, req)
				return
			}
			spa.ServeHTTP(w, req)
		})
	}

	// ─── CORS ───
	// SPA farklı origin'den cookie ile istek atar → AllowCredentials şart.
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	})

	return otelhttp.NewHandler(corsHandler.Handler(r), serviceName,
		otelhttp.WithFilter(func(req *http.Request) bool {
			return req.URL.Path != "/metrics" && req.URL.Path != "/api/health"
		}),
	)
}

// uploadsHandler, yerel storage dizinini servis eder.
//
// http.StripPrefix: URL'den "/api/uploads" kısmını çıkarır.
// http.FileServer: Kalan path'i upload dizininde dosya olarak arar.
// Örnek: GET /api/uploads/covers/abc123.jpg → ./data/uploads/covers/abc123.jpg
//
// http.Dir ".." path'lerini zaten reddeder; dizin listelemesi kapalıdır.
func uploadsHandler(dir string) http.HandlerFunc {
	fileServer := http.StripPrefix(uploadsURLPrefix, http.FileServer(http.Dir(dir)))

	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fileServer.ServeHTTP(w, r)
	}
}

// sweepHandler, süresi dolmuş oturum ve reset token'larını hemen temizler.
// POST /api/admin/sweep (admin)
func sweepHandler(svcs *Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svcs.Sweeper.SweepOnce(r.Context())
		if err != nil {
			pkg.Error(w, r, err)
			return
		}
		pkg.JSON(w, http.StatusOK, result)
	}
}
