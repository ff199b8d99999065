package email

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// logSender, email göndermek yerine reset linkini loglar.
// Development ortamında email sağlayıcısı olmadan akışı test etmek için.
type logSender struct{}

// NewLogSender, loglayan EmailSender döner.
func NewLogSender() EmailSender {
	return logSender{}
}

func (logSender) SendPasswordReset(ctx context.Context, toEmail, resetLink string, ttl time.Duration) error {
	log.Ctx(ctx).Info().
		Str("component", "email").
		Str("to", toEmail).
		Str("link", resetLink).
		Dur("ttl", ttl).
		Msg("password reset email (not sent, log provider)")
	return nil
}
