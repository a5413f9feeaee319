package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	require.Equal(t, "development", cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, "tutora-platform", cfg.Issuer)
	require.Equal(t, []string{"tutora-clients"}, cfg.Audience)
	require.Equal(t, 15*time.Minute, cfg.AccessTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	require.Equal(t, 300, cfg.RateLimitCeiling)
	require.Equal(t, 10*time.Minute, cfg.RateLimitWindow)
	require.Equal(t, []string{"X-Real-IP", "X-Forwarded-For"}, cfg.TrustedProxyHeaders)
	require.Contains(t, cfg.RateLimitBypass, "/api/payments/webhook")
	require.Contains(t, cfg.SanitizeSkipPaths, "/api/uploads")
	require.Contains(t, cfg.RichTextFields, "description")
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "from-the-environment")
	t.Setenv("JWT_AUDIENCE", "web, mobile")
	t.Setenv("JWT_ACCESS_TTL", "5m")
	t.Setenv("ALLOWED_ORIGINS", "https://app.tutora.io, https://admin.tutora.io")
	t.Setenv("TRUSTED_PROXY_HEADERS", "X-Real-IP")
	t.Setenv("RATELIMIT_CEILING", "50")
	t.Setenv("RATELIMIT_WINDOW", "1m")
	t.Setenv("SANITIZE_RICH_FIELDS", "summary,notes")

	cfg := LoadConfig()

	require.Equal(t, "production", cfg.Env)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, "from-the-environment", cfg.JWTSecret)
	require.Equal(t, []string{"web", "mobile"}, cfg.Audience)
	require.Equal(t, 5*time.Minute, cfg.AccessTTL)
	require.Equal(t, []string{"https://app.tutora.io", "https://admin.tutora.io"}, cfg.AllowedOrigins)
	require.Equal(t, []string{"X-Real-IP"}, cfg.TrustedProxyHeaders)
	require.Equal(t, 50, cfg.RateLimitCeiling)
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
	require.Equal(t, []string{"summary", "notes"}, cfg.RichTextFields)
	require.True(t, cfg.IsProduction())
}

func TestIsProduction(t *testing.T) {
	require.True(t, Config{Env: "production"}.IsProduction())
	require.True(t, Config{Env: "staging"}.IsProduction())
	require.False(t, Config{Env: "development"}.IsProduction())
	require.False(t, Config{Env: "test"}.IsProduction())
}

func TestDurationFallbacks(t *testing.T) {
	t.Setenv("RATELIMIT_WINDOW", "15")
	cfg := LoadConfig()
	// Bare integers read as minutes.
	require.Equal(t, 15*time.Minute, cfg.RateLimitWindow)

	t.Setenv("RATELIMIT_WINDOW", "not-a-duration")
	cfg = LoadConfig()
	require.Equal(t, 10*time.Minute, cfg.RateLimitWindow)
}
