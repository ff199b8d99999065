// Package main — Service katmanı başlatma.
//
// initServices, tüm service implementasyonlarını oluşturur.
// Her service, ihtiyaç duyduğu repository interface'lerini ve diğer
// dependency'leri constructor injection ile alır.
//
// Sıralama kuralı: tokens → sessions → auth. Auth servisi oturum açmak için
// SessionService'e, SessionService token imzalamak için TokenService'e bağımlıdır.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/akinalp/chronora/config"
	"github.com/akinalp/chronora/pkg/cookies"
	"github.com/akinalp/chronora/pkg/email"
	"github.com/akinalp/chronora/pkg/llm"
	"github.com/akinalp/chronora/pkg/storage"
	"github.com/akinalp/chronora/pkg/telemetry"
	"github.com/akinalp/chronora/services"
)

// uploadsURLPrefix, yerel storage'daki dosyaların servis edildiği path.
const uploadsURLPrefix = "/api/uploads"

// Services, tüm service instance'larını ve paylaşılan altyapıyı tutan container.
type Services struct {
	Tokens   services.TokenService
	Sessions services.SessionService
	Auth     services.AuthService
	User     services.UserService
	Post     services.PostService
	Comment  services.CommentService
	AI       services.AIService
	Upload   services.UploadService
	Sweeper  services.SessionSweeper

	Cookies *cookies.Manager

	// UploadsDir, yerel storage kullanılıyorsa servis edilecek dizin; S3'te boş.
	UploadsDir string
}

// initServices, tüm service'leri oluşturur.
func initServices(ctx context.Context, repos *Repositories, cfg *config.Config, metrics *telemetry.Metrics) (*Services, error) {
	// Token codec ve oturumlar aynı saati kullanır
	now := time.Now

	tokens, err := services.NewTokenService(services.TokenConfig{
		AccessSecret:  []byte(cfg.Auth.AccessSecret),
		RefreshSecret: []byte(cfg.Auth.RefreshSecret),
		AccessTTL:     cfg.Auth.AccessTTL,
		RefreshTTL:    cfg.Auth.RefreshTTL,
		Issuer:        cfg.Auth.TokenIssuer,
		Now:           now,
	})
	if err != nil {
		return nil, err
	}

	store, uploadsDir, err := initStorage(ctx, cfg.Upload)
	if err != nil {
		return nil, err
	}

	mailer, err := initEmailSender(ctx, cfg.Email)
	if err != nil {
		return nil, err
	}

	sessions := services.NewSessionService(repos.Session, repos.User, tokens, metrics, now)
	uploads := services.NewUploadService(store, cfg.Upload.MaxSize)

	authService := services.NewAuthService(
		repos.User,
		repos.ResetToken,
		sessions,
		mailer,
		services.AuthConfig{
			BcryptCost:    cfg.Auth.BcryptCost,
			ResetTokenTTL: cfg.Auth.ResetTokenTTL,
			FrontendURL:   cfg.Email.FrontendURL,
		},
		now,
	)

	llmClient := llm.New(llm.Config{
		APIKey:  cfg.AI.APIKey,
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	})
	if !llmClient.Configured() {
		log.Warn().Str("component", "main").Msg("AI_API_KEY not set, AI assist endpoints will return 503")
	}

	return &Services{
		Tokens:   tokens,
		Sessions: sessions,
		Auth:     authService,
		User:     services.NewUserService(repos.User, uploads),
		Post:     services.NewPostService(repos.Post, repos.Comment, uploads),
		Comment:  services.NewCommentService(repos.Comment, repos.Post),
		AI:       services.NewAIService(llmClient, metrics),
		Upload:   uploads,
		Sweeper:  services.NewSessionSweeper(repos.Session, repos.ResetToken, metrics, cfg.Auth.SweepInterval, now),
		Cookies: &cookies.Manager{
			Secure:     cfg.SecureCookies(),
			SameSite:   cfg.SameSite(),
			Domain:     cfg.Cookie.Domain,
			AccessTTL:  cfg.Auth.AccessTTL,
			RefreshTTL: cfg.Auth.RefreshTTL,
		},
		UploadsDir: uploadsDir,
	}, nil
}

// initStorage, UPLOAD_STORAGE_DRIVER'a göre resim storage'ını kurar.
// Yerel storage için servis edilecek dizini de döner.
func initStorage(ctx context.Context, cfg config.UploadConfig) (storage.Storage, string, error) {
	switch cfg.Driver {
	case "s3":
		s3, err := storage.NewS3(ctx, storage.S3Config{
			Endpoint:       cfg.S3Endpoint,
			Region:         cfg.S3Region,
			Bucket:         cfg.S3Bucket,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			PublicURL:      cfg.S3PublicURL,
			ForcePathStyle: cfg.S3ForcePathStyle,
		})
		if err != nil {
			return nil, "", err
		}
		log.Info().Str("component", "main").Str("bucket", cfg.S3Bucket).Msg("using s3 storage")
		return s3, "", nil

	case "local":
		local, err := storage.NewLocal(cfg.Dir, uploadsURLPrefix)
		if err != nil {
			return nil, "", err
		}
		return local, local.Root(), nil
	}

	return nil, "", fmt.Errorf("unsupported storage driver %q", cfg.Driver)
}

// initEmailSender, EMAIL_PROVIDER'a göre şifre sıfırlama email göndericisini seçer.
func initEmailSender(ctx context.Context, cfg config.EmailConfig) (email.EmailSender, error) {
	switch cfg.Provider {
	case "resend":
		return email.NewResendSender(cfg.ResendAPIKey, cfg.FromName, cfg.FromEmail), nil
	case "ses":
		return email.NewSESSender(ctx, cfg.SESRegion, cfg.FromName, cfg.FromEmail)
	case "log":
		log.Warn().Str("component", "main").Msg("EMAIL_PROVIDER=log, reset links are only logged")
		return email.NewLogSender(), nil
	}
	return nil, fmt.Errorf("unsupported email provider %q", cfg.Provider)
}
