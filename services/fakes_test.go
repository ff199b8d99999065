package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
)

// memUserRepo, testler için bellek içi UserRepository.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
	// lastLoginErr set edilirse UpdateLastLogin bu hatayı döner.
	lastLoginErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*models.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return fmt.Errorf("%w: username already taken", pkg.ErrAlreadyExists)
		}
		if u.Email == user.Email {
			return fmt.Errorf("%w: email already registered", pkg.ErrAlreadyExists)
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, pkg.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pkg.ErrNotFound
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pkg.ErrNotFound
}

func (r *memUserRepo) update(id string, fn func(u *models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return pkg.ErrNotFound
	}
	fn(u)
	return nil
}

func (r *memUserRepo) UpdateDisplayName(_ context.Context, userID, displayName string) error {
	return r.update(userID, func(u *models.User) { u.DisplayName = displayName })
}

func (r *memUserRepo) UpdateAvatar(_ context.Context, userID, avatarURL, avatarKey string) error {
	return r.update(userID, func(u *models.User) {
		u.AvatarURL = avatarURL
		u.AvatarKey = avatarKey
	})
}

func (r *memUserRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	return r.update(userID, func(u *models.User) { u.PasswordHash = passwordHash })
}

func (r *memUserRepo) UpdateLastLogin(_ context.Context, userID string, at time.Time) error {
	if r.lastLoginErr != nil {
		return r.lastLoginErr
	}
	return r.update(userID, func(u *models.User) { u.LastLogin = &at })
}

func (r *memUserRepo) delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

// memSessionRepo, testler için bellek içi SessionRepository.
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	// createErr set edilirse Create bu hatayı döner.
	createErr error
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*models.Session)}
}

func (r *memSessionRepo) Create(_ context.Context, session *models.Session) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *memSessionRepo) GetByID(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, pkg.ErrNotFound
}

func (r *memSessionRepo) GetActiveByID(_ context.Context, id string, now time.Time) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok && s.IsActive(now) {
		cp := *s
		return &cp, nil
	}
	return nil, pkg.ErrNotFound
}

func (r *memSessionRepo) Invalidate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.Valid = false
	}
	return nil
}

func (r *memSessionRepo) InvalidateByUserID(_ context.Context, userID, exceptID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.sessions {
		if s.UserID == userID && s.ID != exceptID && s.Valid {
			s.Valid = false
			n++
		}
	}
	return n, nil
}

func (r *memSessionRepo) ListActiveByUserID(_ context.Context, userID string, now time.Time) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Session
	for _, s := range r.sessions {
		if s.UserID == userID && s.IsActive(now) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.sessions {
		if !s.ExpiresAt.After(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *memSessionRepo) get(id string) *models.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		cp := *s
		return &cp
	}
	return nil
}

// memResetRepo, testler için bellek içi PasswordResetRepository.
type memResetRepo struct {
	mu     sync.Mutex
	tokens map[string]*models.PasswordResetToken
	// deleteErr set edilirse DeleteExpired bu hatayı döner.
	deleteErr error
}

func newMemResetRepo() *memResetRepo {
	return &memResetRepo{tokens: make(map[string]*models.PasswordResetToken)}
}

func (r *memResetRepo) Create(_ context.Context, token *models.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	cp := *token
	r.tokens[token.ID] = &cp
	return nil
}

func (r *memResetRepo) GetValidByTokenHash(_ context.Context, tokenHash string, now time.Time) (*models.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash && t.ExpiresAt.After(now) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, pkg.ErrNotFound
}

func (r *memResetRepo) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, id)
		}
	}
	return nil
}

func (r *memResetRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.tokens {
		if !t.ExpiresAt.After(now) {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}

func (r *memResetRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

// fakeMailer, gönderilen reset linklerini kaydeder.
type fakeMailer struct {
	mu    sync.Mutex
	sent  []sentMail
	fails error
}

type sentMail struct {
	To   string
	Link string
	TTL  time.Duration
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, toEmail, resetLink string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: toEmail, Link: resetLink, TTL: ttl})
	return m.fails
}

func (m *fakeMailer) last() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// testClock, testlerin ilerletebildiği sabit saat.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
