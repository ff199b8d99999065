package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
)

// TokenConfig, token codec'in tüm ayarları. config.AuthConfig'ten üretilir;
// paket seviyesinde secret veya süre tutulmaz.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	// Now, imzalama ve doğrulama saati. nil ise time.Now.
	Now func() time.Time
}

// TokenService, access/refresh token'ları imzalar ve doğrular.
//
// Her token türü KENDİ secret'ı ile imzalanır ve audience olarak türünü taşır:
// bir access token refresh olarak (veya tersi) asla doğrulanmaz.
// Doğrulama hatalarının hepsi tek bir değere, pkg.ErrInvalidToken'a indirgenir.
type TokenService interface {
	IssueAccess(identity models.Identity) (token string, expiresAt time.Time, err error)
	IssueRefresh(sessionID string) (token string, expiresAt time.Time, err error)
	VerifyAccess(token string) (*models.AccessClaims, error)
	VerifyRefresh(token string) (*models.RefreshClaims, error)
}

type tokenService struct {
	cfg TokenConfig
}

// NewTokenService, constructor. Secret'lar boş veya aynıysa hata döner.
func NewTokenService(cfg TokenConfig) (TokenService, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("token secrets must not be empty")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &tokenService{cfg: cfg}, nil
}

func (s *tokenService) IssueAccess(identity models.Identity) (string, time.Time, error) {
	now := s.cfg.Now()
	exp := now.Add(s.cfg.AccessTTL)

	claims := &models.AccessClaims{
		UserID:           identity.UserID,
		Username:         identity.Username,
		Email:            identity.Email,
		Role:             identity.Role,
		SessionID:        identity.SessionID,
		RegisteredClaims: s.registered(models.TokenAccess, identity.UserID, now, exp),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.AccessSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, exp, nil
}

func (s *tokenService) IssueRefresh(sessionID string) (string, time.Time, error) {
	now := s.cfg.Now()
	exp := now.Add(s.cfg.RefreshTTL)

	claims := &models.RefreshClaims{
		SessionID:        sessionID,
		RegisteredClaims: s.registered(models.TokenRefresh, sessionID, now, exp),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.RefreshSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return token, exp, nil
}

func (s *tokenService) VerifyAccess(token string) (*models.AccessClaims, error) {
	claims := &models.AccessClaims{}
	if err := s.parse(models.TokenAccess, token, claims, s.cfg.AccessSecret); err != nil {
		return nil, err
	}
	if claims.UserID == "" || claims.SessionID == "" {
		return nil, pkg.ErrInvalidToken
	}
	return claims, nil
}

func (s *tokenService) VerifyRefresh(token string) (*models.RefreshClaims, error) {
	claims := &models.RefreshClaims{}
	if err := s.parse(models.TokenRefresh, token, claims, s.cfg.RefreshSecret); err != nil {
		return nil, err
	}
	if claims.SessionID == "" {
		return nil, pkg.ErrInvalidToken
	}
	return claims, nil
}

// parse, imza, algoritma, issuer, audience ve exp kontrollerini yapar.
// jwt kütüphanesinin ayrıntılı hata türleri dışarı sızdırılmaz.
func (s *tokenService) parse(kind models.TokenKind, token string, claims jwt.Claims, secret []byte) error {
	if token == "" {
		return pkg.ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(string(kind)),
		jwt.WithTimeFunc(s.cfg.Now),
	)

	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return pkg.ErrInvalidToken
	}
	return nil
}

func (s *tokenService) registered(kind models.TokenKind, subject string, now, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.cfg.Issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{string(kind)},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
}
