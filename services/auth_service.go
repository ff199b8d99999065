// Package services, business logic katmanını barındırır.
//
// Service Layer Pattern nedir?
// Handler (HTTP) ile Repository (DB) arasında oturan katmandır.
// Tüm iş kuralları burada yaşar:
//   - Şifre hash'leme
//   - Token imzalama ve oturum yönetimi
//   - Yetki kontrolleri
//
// Service ASLA http.Request/Response bilmez — sadece domain modelleri alır/verir.
// Service ASLA doğrudan SQL çalıştırmaz — Repository interface'i kullanır.
package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
	"github.com/akinalp/chronora/pkg/email"
	"github.com/akinalp/chronora/repository"
)

// AuthService interface'i — dışarıya açık API.
// Handler bu interface'e bağımlıdır, concrete struct'a değil.
type AuthService interface {
	// Register, kullanıcı oluşturur ve ilk oturumunu açar.
	Register(ctx context.Context, req *models.RegisterRequest, meta models.SessionMeta) (*AuthResult, error)
	// Login, email + şifre ile oturum açar. Yanlış email ve yanlış şifre
	// aynı hatayı (pkg.ErrInvalidCredentials) döner.
	Login(ctx context.Context, req *models.LoginRequest, meta models.SessionMeta) (*AuthResult, error)
	// ChangePassword, şifreyi değiştirir ve isteği yapan dışındaki oturumları kapatır.
	ChangePassword(ctx context.Context, identity *models.Identity, req *models.ChangePasswordRequest) error
	// ForgotPassword, kullanıcı varsa reset linki gönderir. Kullanıcının var olup
	// olmadığı çağırana SIZDIRILMAZ: bilinmeyen email için de nil döner.
	ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error
	// ResetPassword, geçerli bir reset token ile şifreyi değiştirir ve tüm oturumları kapatır.
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
}

// AuthResult, register/login sonrası dönen kullanıcı + token çifti.
// Token'lar cookie olarak yazılır, body'de sadece User döner.
type AuthResult struct {
	User *models.User
	Pair *models.TokenPair
}

// AuthConfig, auth servisinin ayarları.
type AuthConfig struct {
	BcryptCost    int
	ResetTokenTTL time.Duration
	FrontendURL   string
}

// authService, AuthService interface'inin implementasyonu.
type authService struct {
	userRepo  repository.UserRepository
	resetRepo repository.PasswordResetRepository
	sessions  SessionService
	mailer    email.EmailSender
	cfg       AuthConfig
	now       func() time.Time

	// dummyHash, bilinmeyen email ile login'de bcrypt karşılaştırması yapmak için.
	// Böylece "kullanıcı yok" yanıtı "şifre yanlış" ile aynı sürede döner.
	dummyHash []byte
}

// NewAuthService, constructor.
func NewAuthService(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	sessions SessionService,
	mailer email.EmailSender,
	cfg AuthConfig,
	now func() time.Time,
) AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.ResetTokenTTL == 0 {
		cfg.ResetTokenTTL = 10 * time.Minute
	}
	if now == nil {
		now = time.Now
	}

	dummy, _ := bcrypt.GenerateFromPassword([]byte("chronora-dummy-password"), cfg.BcryptCost)

	return &authService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		sessions:  sessions,
		mailer:    mailer,
		cfg:       cfg,
		now:       now,
		dummyHash: dummy,
	}
}

// Register, yeni kullanıcı kaydı oluşturur.
//
// Username ve email unique'tir; çakışma repository'den pkg.ErrAlreadyExists
// olarak gelir ve handler'da 409'a çevrilir.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest, meta models.SessionMeta) (*AuthResult, error) {
	// 1. Validation
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	// 2. Bcrypt hash
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// 3. User oluştur
	now := s.now().UTC()
	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		DisplayName:  req.Username,
		Role:         models.RoleUser,
		CreatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err // ErrAlreadyExists olabilir
	}

	// 4. Oturum aç
	pair, err := s.sessions.CreateSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Str("component", "auth").Str("user_id", user.ID).Msg("user registered")
	return &AuthResult{User: user, Pair: pair}, nil
}

// Login, kullanıcı girişi yapar.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest, meta models.SessionMeta) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
			return nil, pkg.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, pkg.ErrInvalidCredentials
	}

	pair, err := s.sessions.CreateSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Pair: pair}, nil
}

// ChangePassword, kullanıcının şifresini değiştirir.
// Mevcut oturum açık kalır, diğer cihazlardaki oturumlar kapanır.
func (s *authService) ChangePassword(ctx context.Context, identity *models.Identity, req *models.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", pkg.ErrUnauthorized)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(newHash)); err != nil {
		return err
	}

	return s.sessions.InvalidateOtherSessions(ctx, user.ID, identity.SessionID)
}

// ForgotPassword, şifre sıfırlama akışını başlatır.
//
// Akış:
//  1. Kullanıcıyı email ile bul — yoksa sessizce nil dön
//  2. Eski reset token'larını sil
//  3. 32 byte rastgele token üret, SHA256 hash'ini sakla
//  4. Plaintext token'ı link içinde email'le gönder
//
// Email gönderim hatası loglanır ama çağırana dönmez — yanıt her durumda aynıdır.
func (s *authService) ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.resetRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return err
	}

	plain, hash, err := generateResetToken()
	if err != nil {
		return err
	}

	now := s.now().UTC()
	token := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(s.cfg.ResetTokenTTL),
		CreatedAt: now,
	}
	if err := s.resetRepo.Create(ctx, token); err != nil {
		return err
	}

	link := s.resetLink(plain)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link, s.cfg.ResetTokenTTL); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "auth").Str("user_id", user.ID).
			Msg("failed to send password reset email")
	}

	return nil
}

// ResetPassword, reset token ile yeni şifre belirler.
// Başarılı reset sonrası kullanıcının TÜM oturumları kapanır ve token'lar silinir.
func (s *authService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	token, err := s.resetRepo.GetValidByTokenHash(ctx, hashResetToken(req.Token), s.now())
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: reset link is invalid or has expired", pkg.ErrBadRequest)
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, token.UserID, string(hash)); err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: reset link is invalid or has expired", pkg.ErrBadRequest)
		}
		return err
	}

	if err := s.resetRepo.DeleteByUserID(ctx, token.UserID); err != nil {
		return err
	}

	log.Ctx(ctx).Info().Str("component", "auth").Str("user_id", token.UserID).Msg("password reset completed")
	return s.sessions.InvalidateOtherSessions(ctx, token.UserID, "")
}

func (s *authService) resetLink(token string) string {
	return strings.TrimRight(s.cfg.FrontendURL, "/") + "/auth/reset-password?token=" + url.QueryEscape(token)
}

// generateResetToken, 32 byte rastgele token ve SHA256 hash'ini (hex) üretir.
func generateResetToken() (plain, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	plain = hex.EncodeToString(b)
	return plain, hashResetToken(plain), nil
}

func hashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
