// Package models, uygulamanın domain modellerini (veri yapıları) tanımlar.
//
// Model nedir?
// Veritabanındaki bir tablonun Go karşılığıdır.
// Aynı zamanda API'den gelen/giden verilerin şeklini de belirler.
//
// Go'da `json:"username"` gibi tag'ler, struct field'larının JSON'a
// nasıl serialize/deserialize edileceğini belirler.
package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Role, kullanıcının platform genelindeki yetki seviyesi.
// Go'da enum yoktur, bunun yerine typed constant'lar kullanılır.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User, bir kullanıcıyı temsil eder (credential store kaydı).
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // json:"-" → API response'a DAHİL ETME (güvenlik!)
	DisplayName  string     `json:"display_name"`
	AvatarURL    string     `json:"avatar_url"`
	AvatarKey    string     `json:"-"` // storage key — silme için, client görmez
	Role         Role       `json:"role"`
	IsVerified   bool       `json:"is_verified"`
	LastLogin    *time.Time `json:"last_login"` // *time.Time = nullable, hiç giriş yapmamış olabilir
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PublicUser, başka kullanıcılara gösterilen profil.
// Email ve oturum bilgisi içermez.
type PublicUser struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// Public, User'ın herkese açık görünümünü döner.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		CreatedAt:   u.CreatedAt,
	}
}

// Identity, doğrulanmış bir isteğin "kim" olduğunu taşır.
// Auth middleware access token claim'lerinden üretir, handler'lar context'ten okur.
type Identity struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	SessionID string `json:"session_id"`
}

// IdentityFor, bir kullanıcı ve oturumdan Identity oluşturur.
func IdentityFor(u *User, sessionID string) Identity {
	return Identity{
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		SessionID: sessionID,
	}
}

// IsAdmin, kimliğin admin rolünde olup olmadığını döner.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Doğrulama sınırları.
const (
	UsernameMinLen    = 3
	UsernameMaxLen    = 30
	PasswordMinLen    = 6
	PasswordMaxLen    = 30
	DisplayNameMaxLen = 50
)

var (
	usernameRegex = regexp.MustCompile(`^[a-z0-9_]+$`)
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// RegisterRequest, kayıt olurken frontend'den gelen veri.
// PasswordHash yerine Password alırız — hash'leme service katmanında yapılır.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate, RegisterRequest'i normalize eder ve kontrol eder.
//   - Username: 3-30 karakter, küçük harf, rakam, alt çizgi
//   - Email: geçerli format, küçük harfe çevrilir
//   - Password: 6-30 karakter
func (r *RegisterRequest) Validate() error {
	r.Username = strings.ToLower(strings.TrimSpace(r.Username))
	if err := validateUsername(r.Username); err != nil {
		return err
	}

	r.Email = normalizeEmail(r.Email)
	if err := validateEmail(r.Email); err != nil {
		return err
	}

	return validatePassword(r.Password, "password")
}

// LoginRequest, giriş yaparken frontend'den gelen veri.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate, LoginRequest'in geçerli olup olmadığını kontrol eder.
func (r *LoginRequest) Validate() error {
	r.Email = normalizeEmail(r.Email)
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// ChangePasswordRequest, oturum açmış kullanıcının şifre değişikliği.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Validate, ChangePasswordRequest'i kontrol eder.
// Mevcut şifrenin doğruluğu service katmanında (bcrypt) kontrol edilir.
func (r *ChangePasswordRequest) Validate() error {
	if r.CurrentPassword == "" {
		return fmt.Errorf("current password is required")
	}
	if err := validatePassword(r.NewPassword, "new password"); err != nil {
		return err
	}
	if r.NewPassword != r.ConfirmPassword {
		return fmt.Errorf("passwords do not match")
	}
	if r.NewPassword == r.CurrentPassword {
		return fmt.Errorf("new password must be different from the current password")
	}
	return nil
}

// UpdateDisplayNameRequest, görünen ad güncellemesi.
type UpdateDisplayNameRequest struct {
	DisplayName string `json:"display_name"`
}

// Validate, UpdateDisplayNameRequest'i kontrol eder. Boş ad, adı temizler.
func (r *UpdateDisplayNameRequest) Validate() error {
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	if utf8.RuneCountInString(r.DisplayName) > DisplayNameMaxLen {
		return fmt.Errorf("display name must be at most %d characters", DisplayNameMaxLen)
	}
	return nil
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < UsernameMinLen || n > UsernameMaxLen {
		return fmt.Errorf("username must be between %d and %d characters", UsernameMinLen, UsernameMaxLen)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain lowercase letters, numbers, and underscores")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

func validatePassword(password, field string) error {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLen || n > PasswordMaxLen {
		return fmt.Errorf("%s must be between %d and %d characters", field, PasswordMinLen, PasswordMaxLen)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
