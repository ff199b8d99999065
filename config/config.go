// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Her yerde ayrı ayrı os.Getenv() çağırmak yerine go-envconfig struct tag'leri
// ile tek bir Config nesnesi doldurulur ve constructor'lara enjekte edilir.
// Paket seviyesinde global state YOK.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Ortam isimleri.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
// Her alt bölüm ayrı bir struct, her biri tek bir concern'ü temsil eder.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig  `env:", prefix=DATABASE_"`
	Auth      AuthConfig      `env:", prefix=AUTH_"`
	Cookie    CookieConfig    `env:", prefix=COOKIE_"`
	Upload    UploadConfig    `env:", prefix=UPLOAD_"`
	Email     EmailConfig     `env:", prefix=EMAIL_"`
	AI        AIConfig        `env:", prefix=AI_"`
	Telemetry TelemetryConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host           string   `env:"SERVER_HOST, default=0.0.0.0"`
	Port           int      `env:"SERVER_PORT, default=9090"`
	Env            string   `env:"APP_ENV, default=development"`
	LogLevel       string   `env:"LOG_LEVEL, default=info"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=http://localhost:5173"`
}

// DatabaseConfig, veritabanı ayarları.
// Driver "sqlite" (varsayılan) veya "mongo" olabilir.
type DatabaseConfig struct {
	Driver   string `env:"DRIVER, default=sqlite"`
	Path     string `env:"PATH, default=./data/chronora.db"` // SQLite dosya yolu
	MongoURI string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	MongoDB  string `env:"MONGO_NAME, default=chronora"`
}

// AuthConfig, token ve oturum ayarları.
//
// Access ve refresh token'lar FARKLI secret'larla imzalanır:
// kısa ömürlü access token materyalinden uzun ömürlü refresh secret'ı çıkarılamaz.
type AuthConfig struct {
	AccessSecret  string        `env:"ACCESS_TOKEN_SECRET, required"`
	RefreshSecret string        `env:"REFRESH_TOKEN_SECRET, required"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_TTL, default=15m"`
	RefreshTTL    time.Duration `env:"REFRESH_TOKEN_TTL, default=168h"` // 7 gün
	SweepInterval time.Duration `env:"SWEEP_INTERVAL, default=1h"`
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL, default=10m"`
	BcryptCost    int           `env:"BCRYPT_COST, default=12"`
	TokenIssuer   string        `env:"TOKEN_ISSUER, default=chronora"`
}

// CookieConfig, auth cookie'lerinin güvenlik bayrakları.
// Boş bırakılırsa APP_ENV'e göre türetilir (bkz. SecureCookies, SameSite).
type CookieConfig struct {
	Secure   *bool  `env:"SECURE, noinit"`
	SameSite string `env:"SAMESITE"` // "strict" | "lax" | "none"
	Domain   string `env:"DOMAIN"`
}

// UploadConfig, resim yükleme ve depolama ayarları.
type UploadConfig struct {
	MaxSize int64  `env:"MAX_SIZE, default=5242880"` // 5MB
	Driver  string `env:"STORAGE_DRIVER, default=local"`
	Dir     string `env:"DIR, default=./data/uploads"`

	S3Endpoint       string `env:"S3_ENDPOINT"`
	S3Region         string `env:"S3_REGION, default=us-east-1"`
	S3Bucket         string `env:"S3_BUCKET"`
	S3AccessKey      string `env:"S3_ACCESS_KEY"`
	S3SecretKey      string `env:"S3_SECRET_KEY"`
	S3PublicURL      string `env:"S3_PUBLIC_URL"`
	S3ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE, default=true"`
}

// EmailConfig, şifre sıfırlama email'i ayarları.
// Provider "log" (development), "resend" veya "ses" olabilir.
type EmailConfig struct {
	Provider     string `env:"PROVIDER, default=log"`
	ResendAPIKey string `env:"RESEND_API_KEY"`
	FromEmail    string `env:"FROM, default=noreply@chronora.local"`
	FromName     string `env:"FROM_NAME, default=Chronora"`
	SESRegion    string `env:"SES_REGION, default=us-east-1"`
	FrontendURL  string `env:"FRONTEND_URL, default=http://localhost:5173"`
}

// AIConfig, AI-assist proxy ayarları (OpenAI uyumlu chat completions API).
type AIConfig struct {
	APIKey  string        `env:"API_KEY"`
	BaseURL string        `env:"BASE_URL, default=https://api.openai.com/v1"`
	Model   string        `env:"MODEL, default=gpt-4o-mini"`
	Timeout time.Duration `env:"TIMEOUT, default=60s"`
}

// TelemetryConfig, tracing ve metrik ayarları.
type TelemetryConfig struct {
	OTLPEndpoint   string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	MetricsEnabled bool   `env:"METRICS_ENABLED, default=true"`
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler; dosya yoksa sessizce devam eder.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom, verilen lookuper ile Config oluşturur. Testlerde
// envconfig.MapLookuper ile process env'e dokunmadan kullanılır.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate, alanlar arası kuralları kontrol eder.
func (c *Config) Validate() error {
	if c.Auth.AccessSecret == c.Auth.RefreshSecret {
		return errors.New("AUTH_ACCESS_TOKEN_SECRET and AUTH_REFRESH_TOKEN_SECRET must differ")
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.Auth.AccessTTL >= c.Auth.RefreshTTL {
		return errors.New("AUTH_ACCESS_TOKEN_TTL must be shorter than AUTH_REFRESH_TOKEN_TTL")
	}
	if c.Auth.SweepInterval <= 0 {
		return errors.New("AUTH_SWEEP_INTERVAL must be positive")
	}

	switch c.Database.Driver {
	case "sqlite", "mongo":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}

	switch c.Upload.Driver {
	case "local":
	case "s3":
		if c.Upload.S3Bucket == "" {
			return errors.New("UPLOAD_S3_BUCKET is required when UPLOAD_STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unsupported UPLOAD_STORAGE_DRIVER %q", c.Upload.Driver)
	}

	switch c.Email.Provider {
	case "log", "ses":
	case "resend":
		if c.Email.ResendAPIKey == "" {
			return errors.New("EMAIL_RESEND_API_KEY is required when EMAIL_PROVIDER=resend")
		}
	default:
		return fmt.Errorf("unsupported EMAIL_PROVIDER %q", c.Email.Provider)
	}

	return nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:9090").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction, production ortamında mı çalıştığımızı döner.
func (c *ServerConfig) IsProduction() bool {
	return c.Env == EnvProduction
}

// SecureCookies, cookie'lerin Secure bayrağını döner.
// Açıkça ayarlanmamışsa production'da true.
func (c *Config) SecureCookies() bool {
	if c.Cookie.Secure != nil {
		return *c.Cookie.Secure
	}
	return c.Server.IsProduction()
}

// SameSite, cookie SameSite modunu döner.
// Açıkça ayarlanmamışsa production'da Strict, aksi halde Lax.
func (c *Config) SameSite() http.SameSite {
	switch strings.ToLower(c.Cookie.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	}
	if c.Server.IsProduction() {
		return http.SameSiteStrictMode
	}
	return http.SameSiteLaxMode
}
