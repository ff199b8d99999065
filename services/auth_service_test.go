package services

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
)

type authFixture struct {
	*sessionFixture
	resets *memResetRepo
	mailer *fakeMailer
	auth   AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	sf := newSessionFixture(t)
	f := &authFixture{
		sessionFixture: sf,
		resets:         newMemResetRepo(),
		mailer:         &fakeMailer{},
	}
	f.auth = NewAuthService(sf.users, f.resets, sf.sessions, f.mailer, AuthConfig{
		BcryptCost:    bcrypt.MinCost,
		ResetTokenTTL: 10 * time.Minute,
		FrontendURL:   "https://blog.example.com/",
	}, sf.clock.Now)
	return f
}

func (f *authFixture) register(t *testing.T, username, email, password string) *AuthResult {
	t.Helper()
	res, err := f.auth.Register(context.Background(), &models.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, models.SessionMeta{UserAgent: "test"})
	require.NoError(t, err)
	return res
}

func TestRegister(t *testing.T) {
	f := newAuthFixture(t)

	res := f.register(t, "  Carol_1 ", "Carol@Example.com ", "secret123")
	assert.Equal(t, "carol_1", res.User.Username)
	assert.Equal(t, "carol@example.com", res.User.Email)
	assert.Equal(t, "carol_1", res.User.DisplayName)
	assert.Equal(t, models.RoleUser, res.User.Role)
	assert.NotEqual(t, "secret123", res.User.PasswordHash)
	require.NotNil(t, res.Pair)

	claims, err := f.tokens.VerifyAccess(res.Pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
}

func TestRegister_Validation(t *testing.T) {
	f := newAuthFixture(t)

	tests := []struct {
		name string
		req  models.RegisterRequest
	}{
		{"short username", models.RegisterRequest{Username: "ab", Email: "a@b.co", Password: "secret123"}},
		{"bad username chars", models.RegisterRequest{Username: "bad-name", Email: "a@b.co", Password: "secret123"}},
		{"bad email", models.RegisterRequest{Username: "dave", Email: "not-an-email", Password: "secret123"}},
		{"short password", models.RegisterRequest{Username: "dave", Email: "a@b.co", Password: "123"}},
		{"long password", models.RegisterRequest{Username: "dave", Email: "a@b.co", Password: "0123456789012345678901234567890"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.auth.Register(context.Background(), &req, models.SessionMeta{})
			assert.ErrorIs(t, err, pkg.ErrBadRequest)
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "dave", "dave@example.com", "secret123")

	_, err := f.auth.Register(context.Background(), &models.RegisterRequest{
		Username: "dave", Email: "other@example.com", Password: "secret123",
	}, models.SessionMeta{})
	assert.ErrorIs(t, err, pkg.ErrAlreadyExists)

	_, err = f.auth.Register(context.Background(), &models.RegisterRequest{
		Username: "dave2", Email: "DAVE@example.com", Password: "secret123",
	}, models.SessionMeta{})
	assert.ErrorIs(t, err, pkg.ErrAlreadyExists)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "erin", "erin@example.com", "secret123")

	res, err := f.auth.Login(context.Background(), &models.LoginRequest{
		Email: " ERIN@example.com", Password: "secret123",
	}, models.SessionMeta{})
	require.NoError(t, err)
	assert.Equal(t, "erin", res.User.Username)
	assert.NotEmpty(t, res.Pair.RefreshToken)
}

func TestLogin_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "erin", "erin@example.com", "secret123")

	_, errWrong := f.auth.Login(context.Background(), &models.LoginRequest{
		Email: "erin@example.com", Password: "wrong-pass",
	}, models.SessionMeta{})
	_, errUnknown := f.auth.Login(context.Background(), &models.LoginRequest{
		Email: "nobody@example.com", Password: "secret123",
	}, models.SessionMeta{})

	assert.ErrorIs(t, errWrong, pkg.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, pkg.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, pkg.ErrUnauthorized)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())

	_, err := f.auth.Login(context.Background(), &models.LoginRequest{Email: "erin@example.com"}, models.SessionMeta{})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	res := f.register(t, "frank", "frank@example.com", "secret123")
	other, err := f.auth.Login(ctx, &models.LoginRequest{Email: "frank@example.com", Password: "secret123"}, models.SessionMeta{})
	require.NoError(t, err)

	identity := models.IdentityFor(res.User, res.Pair.SessionID)

	err = f.auth.ChangePassword(ctx, &identity, &models.ChangePasswordRequest{
		CurrentPassword: "wrong-one", NewPassword: "newsecret1", ConfirmPassword: "newsecret1",
	})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	err = f.auth.ChangePassword(ctx, &identity, &models.ChangePasswordRequest{
		CurrentPassword: "secret123", NewPassword: "newsecret1", ConfirmPassword: "mismatch1",
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	require.NoError(t, f.auth.ChangePassword(ctx, &identity, &models.ChangePasswordRequest{
		CurrentPassword: "secret123", NewPassword: "newsecret1", ConfirmPassword: "newsecret1",
	}))

	assert.True(t, f.store.get(res.Pair.SessionID).Valid, "current session stays open")
	assert.False(t, f.store.get(other.Pair.SessionID).Valid, "other sessions are closed")

	_, err = f.auth.Login(ctx, &models.LoginRequest{Email: "frank@example.com", Password: "newsecret1"}, models.SessionMeta{})
	assert.NoError(t, err)
}

func TestForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	f := newAuthFixture(t)

	err := f.auth.ForgotPassword(context.Background(), &models.ForgotPasswordRequest{Email: "ghost@example.com"})
	require.NoError(t, err)
	_, sent := f.mailer.last()
	assert.False(t, sent)
	assert.Zero(t, f.resets.count())
}

func TestForgotPassword_MailerFailureIsHidden(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "gina", "gina@example.com", "secret123")
	f.mailer.fails = errors.New("smtp down")

	err := f.auth.ForgotPassword(context.Background(), &models.ForgotPasswordRequest{Email: "gina@example.com"})
	assert.NoError(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	res := f.register(t, "gina", "gina@example.com", "secret123")

	require.NoError(t, f.auth.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "gina@example.com"}))
	require.NoError(t, f.auth.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "gina@example.com"}))
	assert.Equal(t, 1, f.resets.count(), "a new request replaces earlier tokens")

	mail, ok := f.mailer.last()
	require.True(t, ok)
	assert.Equal(t, "gina@example.com", mail.To)
	assert.Equal(t, 10*time.Minute, mail.TTL)

	link, err := url.Parse(mail.Link)
	require.NoError(t, err)
	assert.Equal(t, "blog.example.com", link.Host)
	assert.Equal(t, "/auth/reset-password", link.Path)
	token := link.Query().Get("token")
	require.Len(t, token, 64)

	require.NoError(t, f.auth.ResetPassword(ctx, &models.ResetPasswordRequest{Token: token, Password: "brandnew1"}))

	assert.False(t, f.store.get(res.Pair.SessionID).Valid, "all sessions are closed after reset")
	assert.Zero(t, f.resets.count())

	_, err = f.auth.Login(ctx, &models.LoginRequest{Email: "gina@example.com", Password: "brandnew1"}, models.SessionMeta{})
	assert.NoError(t, err)

	// Token tek kullanımlıktır
	err = f.auth.ResetPassword(ctx, &models.ResetPasswordRequest{Token: token, Password: "another1"})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "hank", "hank@example.com", "secret123")

	require.NoError(t, f.auth.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "hank@example.com"}))
	mail, ok := f.mailer.last()
	require.True(t, ok)
	link, err := url.Parse(mail.Link)
	require.NoError(t, err)

	f.clock.Advance(11 * time.Minute)

	err = f.auth.ResetPassword(ctx, &models.ResetPasswordRequest{Token: link.Query().Get("token"), Password: "brandnew1"})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	err = f.auth.ResetPassword(ctx, &models.ResetPasswordRequest{Token: "", Password: "brandnew1"})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}
