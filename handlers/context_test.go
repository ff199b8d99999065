package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSessionMetaFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	req.Header.Set("User-Agent", "  Mozilla/5.0  ")

	meta := SessionMetaFromRequest(req)
	assert.Equal(t, "203.0.113.7", meta.IP)
	assert.Equal(t, "Mozilla/5.0", meta.UserAgent)
}

func TestSessionMetaFromRequest_TruncatesOnRuneBoundary(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want int
	}{
		{name: "ascii", ua: strings.Repeat("a", 600), want: maxUserAgentLen},
		// 511 byte ASCII + 3 byte'lık "€": sınır karakterin ortasına düşer
		{name: "multibyte across limit", ua: strings.Repeat("a", 511) + strings.Repeat("€", 10), want: 511},
		{name: "multibyte only", ua: strings.Repeat("ş", 400), want: 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
			req.Header.Set("User-Agent", tt.ua)

			meta := SessionMetaFromRequest(req)
			assert.Len(t, meta.UserAgent, tt.want)
			assert.True(t, utf8.ValidString(meta.UserAgent))
			assert.True(t, strings.HasPrefix(tt.ua, meta.UserAgent))
		})
	}
}
