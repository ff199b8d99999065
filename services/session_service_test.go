package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
)

type sessionFixture struct {
	clock    *testClock
	users    *memUserRepo
	store    *memSessionRepo
	tokens   TokenService
	sessions SessionService
	user     *models.User
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	f := &sessionFixture{
		clock: newTestClock(),
		users: newMemUserRepo(),
		store: newMemSessionRepo(),
	}
	f.tokens = newTestTokens(t, f.clock)
	f.sessions = NewSessionService(f.store, f.users, f.tokens, nil, f.clock.Now)

	f.user = &models.User{
		Username: "alice",
		Email:    "alice@example.com",
		Role:     models.RoleUser,
	}
	require.NoError(t, f.users.Create(context.Background(), f.user))
	return f
}

func TestCreateSession(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	pair, err := f.sessions.CreateSession(ctx, f.user, models.SessionMeta{UserAgent: "curl/8", IP: "10.0.0.1"})
	require.NoError(t, err)

	stored := f.store.get(pair.SessionID)
	require.NotNil(t, stored)
	assert.True(t, stored.Valid)
	assert.Equal(t, f.user.ID, stored.UserID)
	assert.Equal(t, "curl/8", stored.UserAgent)
	assert.Equal(t, "10.0.0.1", stored.IP)
	assert.Equal(t, pair.RefreshExpiresAt, stored.ExpiresAt)

	claims, err := f.tokens.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, pair.SessionID, claims.SessionID)

	refresh, err := f.tokens.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.SessionID, refresh.SessionID)

	reloaded, err := f.users.GetByID(ctx, f.user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLogin)
	assert.Equal(t, f.clock.Now(), *reloaded.LastLogin)
}

func TestCreateSession_UnknownMeta(t *testing.T) {
	f := newSessionFixture(t)

	pair, err := f.sessions.CreateSession(context.Background(), f.user, models.SessionMeta{})
	require.NoError(t, err)

	stored := f.store.get(pair.SessionID)
	require.NotNil(t, stored)
	assert.Equal(t, "unknown", stored.UserAgent)
	assert.Equal(t, "unknown", stored.IP)
}

func TestCreateSession_StoreFailure(t *testing.T) {
	f := newSessionFixture(t)
	f.store.createErr = errors.New("disk full")

	_, err := f.sessions.CreateSession(context.Background(), f.user, models.SessionMeta{})
	assert.ErrorContains(t, err, "disk full")
}

func TestCreateSession_LastLoginFailureLeavesNoActiveSession(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	f.users.lastLoginErr = errors.New("database is locked")

	pair, err := f.sessions.CreateSession(ctx, f.user, models.SessionMeta{UserAgent: "curl/8"})
	assert.ErrorContains(t, err, "database is locked")
	assert.Nil(t, pair)

	active, err := f.store.ListActiveByUserID(ctx, f.user.ID, f.clock.Now())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestInvalidateSession_Idempotent(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	pair, err := f.sessions.CreateSession(ctx, f.user, models.SessionMeta{})
	require.NoError(t, err)

	require.NoError(t, f.sessions.InvalidateSession(ctx, pair.SessionID))
	require.NoError(t, f.sessions.InvalidateSession(ctx, pair.SessionID))
	require.NoError(t, f.sessions.InvalidateSession(ctx, "does-not-exist"))

	assert.False(t, f.store.get(pair.SessionID).Valid)
}

func TestRegenerateTokens_KeepsSessionID(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	pair, err := f.sessions.CreateSession(ctx, f.user, models.SessionMeta{})
	require.NoError(t, err)

	f.clock.Advance(20 * time.Minute)

	rotation, err := f.sessions.RegenerateTokens(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.SessionID, rotation.Pair.SessionID)
	assert.Equal(t, pair.SessionID, rotation.Identity.SessionID)
	assert.Equal(t, f.user.ID, rotation.Identity.UserID)
	assert.NotEqual(t, pair.AccessToken, rotation.Pair.AccessToken)

	claims, err := f.tokens.VerifyAccess(rotation.Pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, rotation.Identity, claims.Identity())

	// Oturumun kendi bitiş zamanı rotasyonla uzamaz
	assert.Equal(t, pair.RefreshExpiresAt, f.store.get(pair.SessionID).ExpiresAt)
}

func TestRegenerateTokens_ReadsFreshUser(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	pair, err := f.sessions.CreateSession(ctx, f.user, models.SessionMeta{})
	require.NoError(t, err)

	require.NoError(t, f.users.update(f.user.ID, func(u *models.User) { u.Role = models.RoleAdmin }))

	rotation, err := f.sessions.RegenerateTokens(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, rotation.Identity.Role)
}

func TestRegenerateTokens_Failures(t *testing.T) {
	t.Run("invalid token", func(t *testing.T) {
		f := newSessionFixture(t)
		_, err := f.sessions.RegenerateTokens(context.Background(), "garbage")
		assert.ErrorIs(t, err, pkg.ErrInvalidToken)
	})

	t.Run("access token as refresh", func(t *testing.T) {
		f := newSessionFixture(t)
		pair, err := f.sessions.CreateSession(context.Background(), f.user, models.SessionMeta{})
		require.NoError(t, err)

		_, err = f.sessions.RegenerateTokens(context.Background(), pair.AccessToken)
		assert.ErrorIs(t, err, pkg.ErrInvalidToken)
	})

	t.Run("invalidated session", func(t *testing.T) {
		f := newSessionFixture(t)
		ctx := context.Background()
		pair, err := f.sessions.CreateSession(ctx, f.user, models.SessionMeta{})
		require.NoError(t, err)
		require.NoError(t, f.sessions.InvalidateSession(ctx, pair.SessionID))

		_, err = f.sessions.RegenerateTokens(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, pkg.ErrInvalidSession)
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newSessionFixture(t)
		token, _, err := f.tokens.IssueRefresh("never-stored")
		require.NoError(t, err)

		_, err = f.sessions.RegenerateTokens(context.Background(), token)
		assert.ErrorIs(t, err, pkg.ErrInvalidSession)
	})

	t.Run("deleted user", func(t *testing.T) {
		f := newSessionFixture(t)
		ctx := context.Background()
		pair, err := f.sessions.CreateSession(ctx, f.user, models.SessionMeta{})
		require.NoError(t, err)
		f.users.delete(f.user.ID)

		_, err = f.sessions.RegenerateTokens(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, pkg.ErrUserNotFound)
		assert.ErrorIs(t, err, pkg.ErrNotFound)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		f := newSessionFixture(t)
		ctx := context.Background()
		pair, err := f.sessions.CreateSession(ctx, f.user, models.SessionMeta{})
		require.NoError(t, err)

		f.clock.Advance(25 * time.Hour)
		_, err = f.sessions.RegenerateTokens(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, pkg.ErrInvalidToken)
	})
}

func TestLogout(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	pair, err := f.sessions.CreateSession(ctx, f.user, models.SessionMeta{})
	require.NoError(t, err)

	require.NoError(t, f.sessions.Logout(ctx, pair.RefreshToken))
	assert.False(t, f.store.get(pair.SessionID).Valid)

	// Aynı token ile ikinci logout da hata vermez
	require.NoError(t, f.sessions.Logout(ctx, pair.RefreshToken))

	err = f.sessions.Logout(ctx, "garbage")
	assert.ErrorIs(t, err, pkg.ErrInvalidToken)
}

func TestListAndRevokeSessions(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	first, err := f.sessions.CreateSession(ctx, f.user, models.SessionMeta{UserAgent: "laptop"})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	second, err := f.sessions.CreateSession(ctx, f.user, models.SessionMeta{UserAgent: "phone"})
	require.NoError(t, err)

	views, err := f.sessions.ListSessions(ctx, f.user.ID, second.SessionID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, second.SessionID, views[0].ID)
	assert.True(t, views[0].Current)
	assert.False(t, views[1].Current)

	// Başka kullanıcının oturumu görünmez ve kapatılamaz
	bob := &models.User{Username: "bob", Email: "bob@example.com", Role: models.RoleUser}
	require.NoError(t, f.users.Create(ctx, bob))
	err = f.sessions.RevokeSession(ctx, bob.ID, first.SessionID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	assert.True(t, f.store.get(first.SessionID).Valid)

	require.NoError(t, f.sessions.RevokeSession(ctx, f.user.ID, first.SessionID))
	assert.False(t, f.store.get(first.SessionID).Valid)

	views, err = f.sessions.ListSessions(ctx, f.user.ID, second.SessionID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, second.SessionID, views[0].ID)

	err = f.sessions.RevokeSession(ctx, f.user.ID, "missing")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestInvalidateOtherSessions(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	keep, err := f.sessions.CreateSession(ctx, f.user, models.SessionMeta{})
	require.NoError(t, err)
	drop, err := f.sessions.CreateSession(ctx, f.user, models.SessionMeta{})
	require.NoError(t, err)

	require.NoError(t, f.sessions.InvalidateOtherSessions(ctx, f.user.ID, keep.SessionID))
	assert.True(t, f.store.get(keep.SessionID).Valid)
	assert.False(t, f.store.get(drop.SessionID).Valid)

	require.NoError(t, f.sessions.InvalidateOtherSessions(ctx, f.user.ID, ""))
	assert.False(t, f.store.get(keep.SessionID).Valid)
}
