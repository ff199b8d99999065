package models

import "time"

// Session, bir cihazdaki oturumu temsil eder.
//
// Refresh token'ın kendisi DB'de SAKLANMAZ — refresh token sadece session ID'yi
// taşıyan imzalı bir JWT'dir. Oturumun geçerliliği bu tablodan okunur:
//   - Valid=false → logout / revoke edilmiş (INVALIDATED)
//   - ExpiresAt <= now → süresi dolmuş (EXPIRED)
//
// Kayıt silinmez; logout sadece Valid bayrağını düşürür.
// Süresi dolmuş kayıtları SessionSweeper periyodik olarak temizler.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserAgent string    `json:"user_agent"`
	IP        string    `json:"ip"`
	Valid     bool      `json:"valid"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsActive, oturumun verilen anda kullanılabilir olup olmadığını döner.
func (s *Session) IsActive(now time.Time) bool {
	return s.Valid && s.ExpiresAt.After(now)
}

// SessionMeta, oturum açılırken istekten toplanan cihaz bilgisi.
type SessionMeta struct {
	UserAgent string
	IP        string
}

// SessionView, kullanıcının "aktif cihazlarım" listesindeki bir satır.
// Current, isteği yapan oturumu işaretler.
type SessionView struct {
	Session
	Current bool `json:"current"`
}
