package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg/telemetry"
)

func seedSweepData(t *testing.T, clock *testClock, sessions *memSessionRepo, resets *memResetRepo) {
	t.Helper()
	ctx := context.Background()
	now := clock.Now()

	require.NoError(t, sessions.Create(ctx, &models.Session{ID: "live", UserID: "u1", Valid: true, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, sessions.Create(ctx, &models.Session{ID: "expired", UserID: "u1", Valid: true, ExpiresAt: now.Add(-time.Second)}))
	require.NoError(t, sessions.Create(ctx, &models.Session{ID: "edge", UserID: "u1", Valid: false, ExpiresAt: now}))

	require.NoError(t, resets.Create(ctx, &models.PasswordResetToken{UserID: "u1", TokenHash: "a", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, resets.Create(ctx, &models.PasswordResetToken{UserID: "u2", TokenHash: "b", ExpiresAt: now.Add(-time.Minute)}))
}

func TestSweepOnce(t *testing.T) {
	clock := newTestClock()
	sessions := newMemSessionRepo()
	resets := newMemResetRepo()
	seedSweepData(t, clock, sessions, resets)

	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)
	sweeper := NewSessionSweeper(sessions, resets, metrics, time.Hour, clock.Now)

	result, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Sessions: 2, ResetTokens: 1}, result)

	assert.NotNil(t, sessions.get("live"))
	assert.Nil(t, sessions.get("expired"))
	assert.Nil(t, sessions.get("edge"))
	assert.Equal(t, 1, resets.count())

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.SweptRows.WithLabelValues("sessions")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SweptRows.WithLabelValues("password_reset_tokens")))

	result, err = sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Sessions)
	assert.Zero(t, result.ResetTokens)
}

func TestSweepOnce_PartialFailure(t *testing.T) {
	clock := newTestClock()
	sessions := newMemSessionRepo()
	resets := newMemResetRepo()
	seedSweepData(t, clock, sessions, resets)
	resets.deleteErr = errors.New("locked")

	sweeper := NewSessionSweeper(sessions, resets, nil, time.Hour, clock.Now)

	result, err := sweeper.SweepOnce(context.Background())
	assert.ErrorContains(t, err, "locked")
	assert.Equal(t, int64(2), result.Sessions, "sessions are swept even when the token table fails")
	assert.Zero(t, result.ResetTokens)
}

func TestSweeper_StartStop(t *testing.T) {
	clock := newTestClock()
	sessions := newMemSessionRepo()
	resets := newMemResetRepo()
	seedSweepData(t, clock, sessions, resets)

	sweeper := NewSessionSweeper(sessions, resets, nil, time.Hour, clock.Now)
	sweeper.Start()
	sweeper.Start()

	// İlk tur Start'ta hemen çalışır
	assert.Eventually(t, func() bool {
		return sessions.get("expired") == nil
	}, time.Second, 10*time.Millisecond)

	sweeper.Stop()
	sweeper.Stop()
}

func TestSweeper_NonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Minute} {
		clock := newTestClock()
		sessions := newMemSessionRepo()
		resets := newMemResetRepo()
		seedSweepData(t, clock, sessions, resets)

		sweeper := NewSessionSweeper(sessions, resets, nil, interval, clock.Now)
		assert.Equal(t, defaultSweepInterval, sweeper.(*sessionSweeper).interval)

		// Ticker panic atmadan goroutine çalışır ve durur
		sweeper.Start()
		assert.Eventually(t, func() bool {
			return sessions.get("expired") == nil
		}, time.Second, 10*time.Millisecond)
		sweeper.Stop()
	}
}
