// Package email, uygulama genelinde email gönderimi için soyutlama katmanı sağlar.
//
// EmailSender interface'i ile email gönderim detayları soyutlanır (Dependency Inversion).
// Üç implementasyon vardır, EMAIL_PROVIDER ile seçilir:
//   - "resend" → Resend API
//   - "ses"    → AWS SES v2
//   - "log"    → email göndermez, linki loglar (development)
package email

import (
	"context"
	"fmt"
	"html"
	"time"
)

// EmailSender, email gönderimi için interface.
// Service katmanı bu interface'e bağımlıdır, concrete implementasyonlara değil.
type EmailSender interface {
	// SendPasswordReset, kullanıcıya şifre sıfırlama linki içeren email gönderir.
	// resetLink: token'ı query param olarak taşıyan tam frontend URL'i.
	SendPasswordReset(ctx context.Context, toEmail, resetLink string, ttl time.Duration) error
}

// Message, sağlayıcıdan bağımsız render edilmiş email.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

const passwordResetSubject = "Reset your Chronora password"

// PasswordResetMessage, reset email'inin HTML ve düz metin gövdesini üretir.
func PasswordResetMessage(resetLink string, ttl time.Duration) Message {
	link := html.EscapeString(resetLink)
	minutes := int(ttl.Minutes())

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;background-color:#f8fafc;font-family:Georgia,serif;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="padding:40px 0;">
    <tr>
      <td align="center">
        <table width="480" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;padding:40px;">
          <tr>
            <td>
              <h1 style="color:#0f172a;font-size:24px;margin:0 0 8px 0;">Chronora</h1>
              <h2 style="color:#334155;font-size:18px;margin:0 0 24px 0;">Password Reset Request</h2>
              <p style="color:#475569;font-size:15px;line-height:1.6;margin:0 0 24px 0;">
                We received a request to reset your password. Click the button below to choose a new password.
              </p>
              <table cellpadding="0" cellspacing="0" style="margin:0 0 24px 0;">
                <tr>
                  <td style="background-color:#0f172a;border-radius:6px;padding:12px 32px;">
                    <a href="%s" style="color:#ffffff;text-decoration:none;font-size:15px;font-weight:600;">
                      Reset Password
                    </a>
                  </td>
                </tr>
              </table>
              <p style="color:#64748b;font-size:13px;line-height:1.6;margin:0 0 16px 0;">
                This link will expire in %d minutes. If you didn't request a password reset, you can safely ignore this email.
              </p>
              <p style="color:#64748b;font-size:13px;line-height:1.6;margin:0;word-break:break-all;">
                If the button doesn't work, copy and paste this link:<br>
                <a href="%s" style="color:#0f172a;">%s</a>
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`, link, minutes, link, link)

	text := fmt.Sprintf("We received a request to reset your Chronora password.\n\n"+
		"Open this link to choose a new password (expires in %d minutes):\n%s\n\n"+
		"If you didn't request a password reset, you can ignore this email.\n", minutes, resetLink)

	return Message{Subject: passwordResetSubject, HTML: body, Text: text}
}

// formatFrom, "Ad <adres>" biçiminde gönderici üretir.
func formatFrom(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}
