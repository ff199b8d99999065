// Package cookies, access/refresh token cookie'lerini yazar ve temizler.
//
// İki cookie de HttpOnly'dir; JavaScript token'lara erişemez.
// Max-Age token'ların ömrüne eşittir, böylece tarayıcı süresi dolmuş
// token'ı kendiliğinden göndermeyi bırakır.
package cookies

import (
	"net/http"
	"time"

	"github.com/akinalp/chronora/models"
)

// Cookie isimleri.
const (
	AccessTokenName  = "access_token"
	RefreshTokenName = "refresh_token"
)

// Manager, cookie özniteliklerini tek yerde tutar.
type Manager struct {
	Secure     bool
	SameSite   http.SameSite
	Domain     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// SetTokens, token çiftini iki cookie olarak yazar.
func (m *Manager) SetTokens(w http.ResponseWriter, pair *models.TokenPair) {
	http.SetCookie(w, m.cookie(AccessTokenName, pair.AccessToken, int(m.AccessTTL.Seconds())))
	http.SetCookie(w, m.cookie(RefreshTokenName, pair.RefreshToken, int(m.RefreshTTL.Seconds())))
}

// Clear, iki cookie'yi de siler. Tarayıcının eşleştirebilmesi için
// öznitelikler yazarkenkiyle aynı olmalı.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie(AccessTokenName, "", -1))
	http.SetCookie(w, m.cookie(RefreshTokenName, "", -1))
}

// Read, isimli cookie'nin değerini döner; yoksa boş string.
func Read(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	sameSite := m.SameSite
	if sameSite == 0 {
		sameSite = http.SameSiteLaxMode
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   m.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: sameSite,
	}
}
