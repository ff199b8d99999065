package email

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESAPI, sesSender'ın kullandığı SES v2 alt kümesi. Testlerde fake ile değiştirilir.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// sesSender, AWS SES v2 ile email gönderen EmailSender implementasyonu.
type sesSender struct {
	client SESAPI
	from   string
}

// NewSESSender, varsayılan AWS credential zincirinden (env, shared config, IAM role)
// SES client'ı oluşturur.
func NewSESSender(ctx context.Context, region, fromName, fromEmail string) (EmailSender, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewSESSenderWithClient(sesv2.NewFromConfig(cfg), fromName, fromEmail), nil
}

// NewSESSenderWithClient, hazır bir SES client'ı ile sender oluşturur.
func NewSESSenderWithClient(client SESAPI, fromName, fromEmail string) EmailSender {
	return &sesSender{client: client, from: formatFrom(fromName, fromEmail)}
}

func (s *sesSender) SendPasswordReset(ctx context.Context, toEmail, resetLink string, ttl time.Duration) error {
	msg := PasswordResetMessage(resetLink, ttl)

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send password reset email via SES: %w", err)
	}
	return nil
}
