package email

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v3"
)

// resendSender, Resend API ile email gönderen EmailSender implementasyonu.
type resendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender, Resend API client'ı ile yeni bir EmailSender oluşturur.
//
// apiKey: Resend dashboard'dan alınan API key (re_xxxxxxxx formatında).
// fromEmail: Gönderici adresi — Resend'de doğrulanmış domain altında olmalı.
func NewResendSender(apiKey, fromName, fromEmail string) EmailSender {
	return &resendSender{
		client: resend.NewClient(apiKey),
		from:   formatFrom(fromName, fromEmail),
	}
}

func (s *resendSender) SendPasswordReset(ctx context.Context, toEmail, resetLink string, ttl time.Duration) error {
	msg := PasswordResetMessage(resetLink, ttl)

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}
