package config

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"AUTH_ACCESS_TOKEN_SECRET":  "access",
		"AUTH_REFRESH_TOKEN_SECRET": "refresh",
	}
}

func load(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	return LoadFrom(context.Background(), envconfig.MapLookuper(env))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, baseEnv())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, EnvDevelopment, cfg.Server.Env)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, 10*time.Minute, cfg.Auth.ResetTokenTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, int64(5<<20), cfg.Upload.MaxSize)
	assert.Equal(t, "local", cfg.Upload.Driver)
	assert.Equal(t, "log", cfg.Email.Provider)
	assert.Empty(t, cfg.AI.APIKey)
	assert.True(t, cfg.Telemetry.MetricsEnabled)

	assert.False(t, cfg.SecureCookies())
	assert.Equal(t, http.SameSiteLaxMode, cfg.SameSite())
}

func TestLoad_Production(t *testing.T) {
	env := baseEnv()
	env["APP_ENV"] = "production"
	env["CORS_ALLOWED_ORIGINS"] = "https://a.example.com,https://b.example.com"

	cfg, err := load(t, env)
	require.NoError(t, err)
	assert.True(t, cfg.Server.IsProduction())
	assert.True(t, cfg.SecureCookies())
	assert.Equal(t, http.SameSiteStrictMode, cfg.SameSite())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)

	env["COOKIE_SECURE"] = "false"
	env["COOKIE_SAMESITE"] = "None"
	cfg, err = load(t, env)
	require.NoError(t, err)
	assert.False(t, cfg.SecureCookies(), "explicit cookie flag wins")
	assert.Equal(t, http.SameSiteNoneMode, cfg.SameSite())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]string
		drop string
	}{
		{name: "missing access secret", drop: "AUTH_ACCESS_TOKEN_SECRET"},
		{name: "same secrets", set: map[string]string{"AUTH_REFRESH_TOKEN_SECRET": "access"}},
		{name: "access ttl not shorter", set: map[string]string{"AUTH_ACCESS_TOKEN_TTL": "2h", "AUTH_REFRESH_TOKEN_TTL": "1h"}},
		{name: "bad ttl", set: map[string]string{"AUTH_ACCESS_TOKEN_TTL": "soon"}},
		{name: "zero sweep interval", set: map[string]string{"AUTH_SWEEP_INTERVAL": "0s"}},
		{name: "negative sweep interval", set: map[string]string{"AUTH_SWEEP_INTERVAL": "-1m"}},
		{name: "unknown db driver", set: map[string]string{"DATABASE_DRIVER": "postgres"}},
		{name: "s3 without bucket", set: map[string]string{"UPLOAD_STORAGE_DRIVER": "s3"}},
		{name: "resend without key", set: map[string]string{"EMAIL_PROVIDER": "resend"}},
		{name: "unknown email provider", set: map[string]string{"EMAIL_PROVIDER": "smtp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := baseEnv()
			for k, v := range tt.set {
				env[k] = v
			}
			if tt.drop != "" {
				delete(env, tt.drop)
			}
			_, err := load(t, env)
			assert.Error(t, err)
		})
	}
}

func TestLoad_AlternateBackends(t *testing.T) {
	env := baseEnv()
	env["DATABASE_DRIVER"] = "mongo"
	env["DATABASE_MONGO_URI"] = "mongodb://db:27017"
	env["UPLOAD_STORAGE_DRIVER"] = "s3"
	env["UPLOAD_S3_BUCKET"] = "covers"
	env["EMAIL_PROVIDER"] = "ses"

	cfg, err := load(t, env)
	require.NoError(t, err)
	assert.Equal(t, "mongodb://db:27017", cfg.Database.MongoURI)
	assert.Equal(t, "covers", cfg.Upload.S3Bucket)
	assert.True(t, cfg.Upload.S3ForcePathStyle)
	assert.Equal(t, "ses", cfg.Email.Provider)
}
