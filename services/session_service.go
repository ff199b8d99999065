package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
	"github.com/akinalp/chronora/pkg/telemetry"
	"github.com/akinalp/chronora/repository"
)

// SessionService, oturum yaşam döngüsünü yönetir: oluşturma, geçersiz kılma
// ve refresh token ile token çifti yenileme (rotation).
//
// Oturum durumları:
//
//	ACTIVE ──logout/revoke──► INVALIDATED
//	ACTIVE ──expires_at<=now──► EXPIRED
//
// INVALIDATED ve EXPIRED son durumlardır; bir oturum asla tekrar aktif olmaz.
// Rotation oturum kimliğini DEĞİŞTİRMEZ, sadece yeni token'lar imzalar.
type SessionService interface {
	// CreateSession, kullanıcı için yeni oturum açar ve token çiftini döner.
	// Kullanıcının last_login alanı güncellenir.
	CreateSession(ctx context.Context, user *models.User, meta models.SessionMeta) (*models.TokenPair, error)

	// InvalidateSession, oturumu geçersiz kılar. Idempotent'tir: olmayan veya
	// zaten geçersiz oturum için hata dönmez.
	InvalidateSession(ctx context.Context, sessionID string) error

	// Logout, refresh token'ı doğrular ve oturumunu geçersiz kılar.
	// Token geçersizse pkg.ErrInvalidToken döner.
	Logout(ctx context.Context, refreshToken string) error

	// RegenerateTokens, geçerli bir refresh token için AYNI oturuma ait
	// yeni token çifti üretir. Hatalar:
	//   - pkg.ErrInvalidToken   → imza/format/süre hatası
	//   - pkg.ErrInvalidSession → oturum yok, geçersiz veya süresi dolmuş
	//   - pkg.ErrUserNotFound   → oturumun kullanıcısı silinmiş
	RegenerateTokens(ctx context.Context, refreshToken string) (*Rotation, error)

	// ListSessions, kullanıcının aktif oturumlarını döner; currentID işaretlenir.
	ListSessions(ctx context.Context, userID, currentID string) ([]models.SessionView, error)

	// RevokeSession, kullanıcının KENDİ oturumlarından birini kapatır.
	// Başkasına ait oturum pkg.ErrNotFound ile reddedilir.
	RevokeSession(ctx context.Context, userID, sessionID string) error

	// InvalidateOtherSessions, keepID dışındaki tüm oturumları kapatır.
	// keepID boşsa kullanıcının tüm oturumları kapanır.
	InvalidateOtherSessions(ctx context.Context, userID, keepID string) error
}

// Rotation, RegenerateTokens sonucu: yeni çift + yeni access token'ın kimliği.
type Rotation struct {
	Pair     *models.TokenPair
	Identity models.Identity
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	tokens      TokenService
	metrics     *telemetry.Metrics
	now         func() time.Time
}

// NewSessionService, constructor. now nil ise time.Now kullanılır;
// token codec ile aynı saat verilmelidir.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	tokens TokenService,
	metrics *telemetry.Metrics,
	now func() time.Time,
) SessionService {
	if now == nil {
		now = time.Now
	}
	return &sessionService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		tokens:      tokens,
		metrics:     metrics,
		now:         now,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, user *models.User, meta models.SessionMeta) (*models.TokenPair, error) {
	now := s.now().UTC()
	sessionID := uuid.NewString()

	pair, err := s.issuePair(models.IdentityFor(user, sessionID))
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:        sessionID,
		UserID:    user.ID,
		UserAgent: orUnknown(meta.UserAgent),
		IP:        orUnknown(meta.IP),
		Valid:     true,
		CreatedAt: now,
		ExpiresAt: pair.RefreshExpiresAt,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// Token'lar istemciye hiç ulaşmayacak; oturum geçerli kalmamalı
		if invErr := s.sessionRepo.Invalidate(ctx, sessionID); invErr != nil {
			log.Ctx(ctx).Error().Err(invErr).Str("component", "session").
				Str("session_id", sessionID).Msg("failed to invalidate orphaned session")
		}
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLogin = &now

	s.metrics.SessionEvent(telemetry.SessionCreated, "")
	log.Ctx(ctx).Debug().Str("component", "session").
		Str("user_id", user.ID).Str("session_id", sessionID).Msg("session created")

	return pair, nil
}

func (s *sessionService) InvalidateSession(ctx context.Context, sessionID string) error {
	if err := s.sessionRepo.Invalidate(ctx, sessionID); err != nil {
		return err
	}
	s.metrics.SessionEvent(telemetry.SessionInvalidated, "")
	return nil
}

func (s *sessionService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return err
	}
	return s.InvalidateSession(ctx, claims.SessionID)
}

func (s *sessionService) RegenerateTokens(ctx context.Context, refreshToken string) (*Rotation, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		s.metrics.SessionEvent(telemetry.SessionRotationFailed, "invalid_token")
		return nil, err
	}

	session, err := s.sessionRepo.GetActiveByID(ctx, claims.SessionID, s.now())
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			s.metrics.SessionEvent(telemetry.SessionRotationFailed, "invalid_session")
			return nil, pkg.ErrInvalidSession
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			s.metrics.SessionEvent(telemetry.SessionRotationFailed, "user_not_found")
			return nil, pkg.ErrUserNotFound
		}
		return nil, err
	}

	identity := models.IdentityFor(user, session.ID)
	pair, err := s.issuePair(identity)
	if err != nil {
		return nil, err
	}

	s.metrics.SessionEvent(telemetry.SessionRotated, "")
	return &Rotation{Pair: pair, Identity: identity}, nil
}

func (s *sessionService) ListSessions(ctx context.Context, userID, currentID string) ([]models.SessionView, error) {
	sessions, err := s.sessionRepo.ListActiveByUserID(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}

	views := make([]models.SessionView, 0, len(sessions))
	for _, sess := range sessions {
		views = append(views, models.SessionView{Session: sess, Current: sess.ID == currentID})
	}
	return views, nil
}

func (s *sessionService) RevokeSession(ctx context.Context, userID, sessionID string) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: session not found", pkg.ErrNotFound)
		}
		return err
	}
	if session.UserID != userID {
		return fmt.Errorf("%w: session not found", pkg.ErrNotFound)
	}
	return s.InvalidateSession(ctx, sessionID)
}

func (s *sessionService) InvalidateOtherSessions(ctx context.Context, userID, keepID string) error {
	n, err := s.sessionRepo.InvalidateByUserID(ctx, userID, keepID)
	if err != nil {
		return err
	}
	s.metrics.SessionEventCount(telemetry.SessionInvalidated, n)
	return nil
}

// issuePair, bir kimlik için access + refresh token imzalar.
func (s *sessionService) issuePair(identity models.Identity) (*models.TokenPair, error) {
	access, accessExp, err := s.tokens.IssueAccess(identity)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.tokens.IssueRefresh(identity.SessionID)
	if err != nil {
		return nil, err
	}

	return &models.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
		SessionID:        identity.SessionID,
	}, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
