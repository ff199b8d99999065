package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/chronora/database"
	"github.com/akinalp/chronora/handlers"
	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg/cookies"
	"github.com/akinalp/chronora/repository"
	"github.com/akinalp/chronora/services"
)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 7 * 24 * time.Hour
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type authEnv struct {
	clock    *clock
	tokens   services.TokenService
	sessions services.SessionService
	users    repository.UserRepository
	mw       *AuthMiddleware
	user     *models.User
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.New(ctx, filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	env := &authEnv{clock: &clock{now: time.Now().UTC().Truncate(time.Second)}}

	env.tokens, err = services.NewTokenService(services.TokenConfig{
		AccessSecret:  []byte("middleware-access-secret"),
		RefreshSecret: []byte("middleware-refresh-secret"),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		Issuer:        "chronora-test",
		Now:           env.clock.Now,
	})
	require.NoError(t, err)

	env.users = repository.NewSQLiteUserRepo(db.Conn)
	env.sessions = services.NewSessionService(repository.NewSQLiteSessionRepo(db.Conn), env.users, env.tokens, nil, env.clock.Now)
	env.mw = NewAuthMiddleware(env.tokens, env.sessions, &cookies.Manager{AccessTTL: accessTTL, RefreshTTL: refreshTTL})

	env.user = &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, env.users.Create(ctx, env.user))
	return env
}

func (e *authEnv) login(t *testing.T) *models.TokenPair {
	t.Helper()
	pair, err := e.sessions.CreateSession(context.Background(), e.user, models.SessionMeta{UserAgent: "test"})
	require.NoError(t, err)
	return pair
}

// probe, Resolve'dan geçen kimliği yakalar.
type probe struct {
	called   bool
	identity *models.Identity
}

func (p *probe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.called = true
	p.identity = handlers.IdentityFromContext(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (e *authEnv) do(access, refresh string) (*probe, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	if access != "" {
		req.AddCookie(&http.Cookie{Name: cookies.AccessTokenName, Value: access})
	}
	if refresh != "" {
		req.AddCookie(&http.Cookie{Name: cookies.RefreshTokenName, Value: refresh})
	}

	p := &probe{}
	rec := httptest.NewRecorder()
	e.mw.Resolve(p).ServeHTTP(rec, req)
	return p, rec
}

func responseCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie)
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestResolve_Anonymous(t *testing.T) {
	env := newAuthEnv(t)

	p, rec := env.do("", "")
	assert.True(t, p.called)
	assert.Nil(t, p.identity)
	assert.Empty(t, rec.Result().Cookies())
}

func TestResolve_ValidAccessToken(t *testing.T) {
	env := newAuthEnv(t)
	pair := env.login(t)

	p, rec := env.do(pair.AccessToken, pair.RefreshToken)
	require.NotNil(t, p.identity)
	assert.Equal(t, env.user.ID, p.identity.UserID)
	assert.Equal(t, pair.SessionID, p.identity.SessionID)
	assert.Empty(t, rec.Result().Cookies(), "no rotation while the access token is valid")
}

func TestResolve_ForgedAccessTokenIsAnonymous(t *testing.T) {
	env := newAuthEnv(t)

	other, err := services.NewTokenService(services.TokenConfig{
		AccessSecret:  []byte("attacker-access"),
		RefreshSecret: []byte("attacker-refresh"),
		AccessTTL:     time.Hour,
		RefreshTTL:    time.Hour,
		Issuer:        "chronora-test",
	})
	require.NoError(t, err)
	forged, _, err := other.IssueAccess(models.Identity{UserID: env.user.ID, Role: models.RoleAdmin, SessionID: "x"})
	require.NoError(t, err)

	p, _ := env.do(forged, "")
	assert.True(t, p.called)
	assert.Nil(t, p.identity)
}

func TestResolve_RefreshFallback(t *testing.T) {
	env := newAuthEnv(t)
	pair := env.login(t)

	env.clock.Advance(accessTTL + time.Second)

	p, rec := env.do(pair.AccessToken, pair.RefreshToken)
	require.NotNil(t, p.identity, "expired access token falls back to the refresh token")
	assert.Equal(t, pair.SessionID, p.identity.SessionID)

	set := responseCookies(rec)
	require.Contains(t, set, cookies.AccessTokenName)
	require.Contains(t, set, cookies.RefreshTokenName)
	assert.True(t, set[cookies.AccessTokenName].HttpOnly)
	assert.Equal(t, int(accessTTL.Seconds()), set[cookies.AccessTokenName].MaxAge)

	claims, err := env.tokens.VerifyAccess(set[cookies.AccessTokenName].Value)
	require.NoError(t, err)
	assert.Equal(t, pair.SessionID, claims.SessionID)

	// Sadece refresh cookie'si de yeterli
	p, rec = env.do("", pair.RefreshToken)
	require.NotNil(t, p.identity)
	assert.Contains(t, responseCookies(rec), cookies.AccessTokenName)
}

func TestResolve_LogoutStalenessWindow(t *testing.T) {
	env := newAuthEnv(t)
	pair := env.login(t)

	require.NoError(t, env.sessions.Logout(context.Background(), pair.RefreshToken))

	// Access token DB'ye bakılmadan kabul edilir: süresi dolana kadar kimlik çözülür
	env.clock.Advance(accessTTL - time.Second)
	p, _ := env.do(pair.AccessToken, pair.RefreshToken)
	require.NotNil(t, p.identity)

	// Süre dolunca rotation geçersiz oturuma çarpar ve cookie'ler silinir
	env.clock.Advance(2 * time.Second)
	p, rec := env.do(pair.AccessToken, pair.RefreshToken)
	assert.True(t, p.called)
	assert.Nil(t, p.identity)

	set := responseCookies(rec)
	require.Contains(t, set, cookies.AccessTokenName)
	require.Contains(t, set, cookies.RefreshTokenName)
	assert.Negative(t, set[cookies.AccessTokenName].MaxAge)
	assert.Negative(t, set[cookies.RefreshTokenName].MaxAge)
}

func TestResolve_GarbageRefreshClearsCookies(t *testing.T) {
	env := newAuthEnv(t)

	p, rec := env.do("", "garbage")
	assert.True(t, p.called)
	assert.Nil(t, p.identity)
	assert.Negative(t, responseCookies(rec)[cookies.RefreshTokenName].MaxAge)
}

func TestResolve_ExpiredSession(t *testing.T) {
	env := newAuthEnv(t)
	pair := env.login(t)

	env.clock.Advance(refreshTTL + time.Second)

	p, rec := env.do(pair.AccessToken, pair.RefreshToken)
	assert.Nil(t, p.identity)
	assert.Contains(t, responseCookies(rec), cookies.RefreshTokenName)
}

func TestRequire(t *testing.T) {
	env := newAuthEnv(t)
	handler := env.mw.Resolve(env.mw.Require(&probe{}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"ok":false,"message":"authentication required"}`, rec.Body.String())

	pair := env.login(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookies.AccessTokenName, Value: pair.AccessToken})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireRole(t *testing.T) {
	env := newAuthEnv(t)
	handler := env.mw.RequireRole(models.RoleAdmin)(&probe{})

	serve := func(identity *models.Identity) int {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/sweep", nil)
		if identity != nil {
			req = req.WithContext(handlers.WithIdentity(req.Context(), identity))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(nil))
	assert.Equal(t, http.StatusForbidden, serve(&models.Identity{UserID: "u", Role: models.RoleUser}))
	assert.Equal(t, http.StatusNoContent, serve(&models.Identity{UserID: "u", Role: models.RoleAdmin}))
}
