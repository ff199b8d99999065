package handlers

import (
	"context"
	"net"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/akinalp/chronora/models"
)

// contextKey, context'te değer taşımak için kullanılan özel key tipi.
//
// Go'da context.Value() any tip kabul eder — string key kullanmak çakışmaya neden olabilir.
// Özel bir tip tanımlayarak namespace collision'ı önleriz.
type contextKey string

// IdentityContextKey, auth middleware'ın çözdüğü kimliği taşır.
const IdentityContextKey contextKey = "identity"

// WithIdentity, kimliği context'e ekler.
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, identity)
}

// IdentityFromContext, istekteki kimliği döner. Anonim istekte nil döner.
func IdentityFromContext(ctx context.Context) *models.Identity {
	identity, _ := ctx.Value(IdentityContextKey).(*models.Identity)
	return identity
}

// viewerID, anonim istekte boş string döner.
func viewerID(r *http.Request) string {
	if identity := IdentityFromContext(r.Context()); identity != nil {
		return identity.UserID
	}
	return ""
}

// maxUserAgentLen, oturum kaydında saklanan user-agent'ın byte sınırı.
const maxUserAgentLen = 512

// SessionMetaFromRequest, oturum kaydına yazılacak istemci bilgisini çıkarır.
// RemoteAddr, chi RealIP middleware'ı tarafından X-Forwarded-For'dan düzeltilmiş olur.
func SessionMetaFromRequest(r *http.Request) models.SessionMeta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}

	ua := r.UserAgent()
	if len(ua) > maxUserAgentLen {
		// Kesim çok byte'lı bir karakterin ortasına düşmesin
		cut := maxUserAgentLen
		for cut > 0 && !utf8.RuneStart(ua[cut]) {
			cut--
		}
		ua = ua[:cut]
	}

	return models.SessionMeta{
		UserAgent: strings.TrimSpace(ua),
		IP:        ip,
	}
}
