// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Middleware Pattern nedir?
// Her HTTP request, handler'a ulaşmadan önce bir veya daha fazla middleware'dan geçer.
// Middleware'lar zincir şeklinde çalışır: Logger → Resolve → Require → Handler
//
// Go'da middleware bir fonksiyondur:
//
//	func(next http.Handler) http.Handler
//
// "next" parametresi zincirdeki bir sonraki handler'dır.
// Middleware kendi işini yapar (ör: token doğrula), sonra next'i çağırır.
// Eğer hata varsa next'i çağırmaz → request burada durur.
package middleware

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/akinalp/chronora/handlers"
	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
	"github.com/akinalp/chronora/pkg/cookies"
	"github.com/akinalp/chronora/services"
)

// AuthMiddleware, cookie tabanlı kimlik çözümleme middleware'ı.
type AuthMiddleware struct {
	tokens   services.TokenService
	sessions services.SessionService
	cookies  *cookies.Manager
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(tokens services.TokenService, sessions services.SessionService, cookieManager *cookies.Manager) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		sessions: sessions,
		cookies:  cookieManager,
	}
}

// Resolve, isteğin kimliğini access_token / refresh_token cookie'lerinden çözer
// ve context'e ekler. İsteği ASLA durdurmaz; anonim kimliğin kabul edilip
// edilmeyeceğine route karar verir (bkz. Require).
//
// Öncelik sırası:
//  1. Cookie yok → anonim
//  2. Access token geçerli → token'daki kimlik (DB'ye gidilmez)
//  3. Access token yok veya geçersiz, refresh token var → RegenerateTokens.
//     Başarılıysa yeni cookie'ler yazılır; başarısızsa iki cookie de silinir ve
//     istek anonim devam eder.
//
// Not: Access token DB'ye bakmadan kabul edildiği için logout sonrası
// access token süresi dolana kadar (en fazla AccessTTL) geçerli kalır.
func (m *AuthMiddleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accessToken := cookies.Read(r, cookies.AccessTokenName)
		refreshToken := cookies.Read(r, cookies.RefreshTokenName)

		// 1. Cookie yok
		if accessToken == "" && refreshToken == "" {
			next.ServeHTTP(w, r)
			return
		}

		logger := zerolog.Ctx(r.Context())

		// 2. Access token
		if accessToken != "" {
			claims, err := m.tokens.VerifyAccess(accessToken)
			if err == nil {
				identity := claims.Identity()
				next.ServeHTTP(w, r.WithContext(handlers.WithIdentity(r.Context(), &identity)))
				return
			}
			logger.Debug().Err(err).Str("component", "auth").Msg("access token rejected")

			if refreshToken == "" {
				next.ServeHTTP(w, r)
				return
			}
		}

		// 3. Refresh token ile rotation
		rotation, err := m.sessions.RegenerateTokens(r.Context(), refreshToken)
		if err != nil {
			ev := logger.Debug()
			if !isSessionFailure(err) {
				// DB hatası gibi beklenmeyen durumlar
				ev = logger.Warn()
			}
			ev.Err(err).Str("component", "auth").Msg("token rotation failed")

			m.cookies.Clear(w)
			next.ServeHTTP(w, r)
			return
		}

		m.cookies.SetTokens(w, rotation.Pair)
		identity := rotation.Identity
		next.ServeHTTP(w, r.WithContext(handlers.WithIdentity(r.Context(), &identity)))
	})
}

// Require, kimlik zorunlu kılan middleware. Resolve'dan SONRA çalışmalıdır.
// Anonim istek → 401 Unauthorized, next ÇAĞIRILMAZ.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handlers.IdentityFromContext(r.Context()) == nil {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole, belirli bir rol gerektirir. Anonim → 401, yetersiz rol → 403.
func (m *AuthMiddleware) RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := handlers.IdentityFromContext(r.Context())
			if identity == nil {
				pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if identity.Role != role {
				pkg.ErrorWithMessage(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// isSessionFailure, kimliğin anonime düşmesine yol açan beklenen hataları ayırır.
func isSessionFailure(err error) bool {
	return errors.Is(err, pkg.ErrInvalidToken) ||
		errors.Is(err, pkg.ErrInvalidSession) ||
		errors.Is(err, pkg.ErrUserNotFound)
}
