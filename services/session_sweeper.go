// Package services — SessionSweeper, periyodik arka plan temizlik servisi.
//
// Her interval'de süresi dolmuş oturumları ve şifre sıfırlama token'larını siler.
// Doğruluk bu servise bağlı DEĞİLDİR: repository sorguları zaten
// "valid AND expires_at > now" filtresi uygular. Sweeper sadece tabloların
// sınırsız büyümesini engeller.
//
// Goroutine pattern: time.NewTicker + select + stopCh.
// Graceful shutdown: main.go'da sweeper.Stop() çağrılır.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/akinalp/chronora/pkg/telemetry"
	"github.com/akinalp/chronora/repository"
)

// SessionSweeper, periyodik temizlik interface'i.
type SessionSweeper interface {
	// Start, sweeper goroutine'ini başlatır. İlk tur hemen çalışır.
	Start()
	// Stop, goroutine'i durdurur ve çıkmasını bekler. Birden fazla çağrı güvenlidir.
	Stop()
	// SweepOnce, tek bir temizlik turu çalıştırır (Start, admin endpoint'i ve testler kullanır).
	// Bir tablo hata verse de diğeri temizlenir; hatalar birleştirilip döner.
	SweepOnce(ctx context.Context) (SweepResult, error)
}

// SweepResult, bir turda silinen kayıt sayıları.
type SweepResult struct {
	Sessions    int64 `json:"sessions"`
	ResetTokens int64 `json:"reset_tokens"`
}

type sessionSweeper struct {
	sessionRepo repository.SessionRepository
	resetRepo   repository.PasswordResetRepository
	metrics     *telemetry.Metrics
	interval    time.Duration
	now         func() time.Time
	logger      zerolog.Logger

	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex // Start/Stop race koruması
	running bool
}

// defaultSweepInterval, pozitif olmayan interval verildiğinde kullanılır.
// time.NewTicker sıfır veya negatif süreyle panic atar.
const defaultSweepInterval = time.Hour

// NewSessionSweeper, constructor. now nil ise time.Now kullanılır.
func NewSessionSweeper(
	sessionRepo repository.SessionRepository,
	resetRepo repository.PasswordResetRepository,
	metrics *telemetry.Metrics,
	interval time.Duration,
	now func() time.Time,
) SessionSweeper {
	if now == nil {
		now = time.Now
	}
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &sessionSweeper{
		sessionRepo: sessionRepo,
		resetRepo:   resetRepo,
		metrics:     metrics,
		interval:    interval,
		now:         now,
		logger:      log.With().Str("component", "sweeper").Logger(),
	}
}

func (s *sessionSweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	s.logger.Info().Dur("interval", s.interval).Msg("starting")

	go func(stopCh <-chan struct{}, doneCh chan<- struct{}) {
		defer close(doneCh)

		s.sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-stopCh:
				s.logger.Info().Msg("stopped")
				return
			}
		}
	}(s.stopCh, s.doneCh)
}

func (s *sessionSweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	doneCh := s.doneCh
	s.mu.Unlock()

	<-doneCh
}

func (s *sessionSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, _ = s.SweepOnce(ctx)
}

func (s *sessionSweeper) SweepOnce(ctx context.Context) (SweepResult, error) {
	now := s.now().UTC()
	var result SweepResult

	sessions, sessErr := s.sessionRepo.DeleteExpired(ctx, now)
	if sessErr != nil {
		s.logger.Error().Err(sessErr).Msg("failed to delete expired sessions")
	} else {
		result.Sessions = sessions
		s.metrics.Swept("sessions", sessions)
	}

	tokens, tokErr := s.resetRepo.DeleteExpired(ctx, now)
	if tokErr != nil {
		s.logger.Error().Err(tokErr).Msg("failed to delete expired reset tokens")
	} else {
		result.ResetTokens = tokens
		s.metrics.Swept("password_reset_tokens", tokens)
	}

	if result.Sessions > 0 || result.ResetTokens > 0 {
		s.logger.Info().Int64("sessions", result.Sessions).Int64("reset_tokens", result.ResetTokens).Msg("swept expired rows")
	}

	return result, errors.Join(sessErr, tokErr)
}
