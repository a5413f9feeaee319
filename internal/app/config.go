package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tutora/platform/pkg/httpx"
	"github.com/tutora/platform/pkg/jwtx"
)

type Config struct {
	Env       string // Environment (development, staging, production) (default: development)
	Port      int    // HTTP server port (default: 8080)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)

	JWTSecret  string        // Required: HMAC signing secret for tokens
	Issuer     string        // Issuer claim for tokens (default: tutora-platform)
	Audience   []string      // Audience claims for tokens (comma-separated)
	AccessTTL  time.Duration // Access token lifetime (default: 15m)
	RefreshTTL time.Duration // Refresh token lifetime (default: 168h)

	AllowedOrigins      []string // CORS origin allow-list (comma-separated)
	TrustedProxyHeaders []string // Proxy headers trusted for client IP derivation

	RateLimitCeiling int           // Requests per key per window (default: 300)
	RateLimitWindow  time.Duration // Rate limit window (default: 10m)
	RateLimitBypass  []string      // Path prefixes exempt from rate limiting

	SanitizeSkipPaths   []string      // Path prefixes exempt from input sanitization
	RichTextFields      []string      // Field names allowed a constrained HTML subset
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// Payment-critical paths exempt from rate limiting by default. A rejected
// checkout retry costs more than under-throttling these.
var defaultRateLimitBypass = []string{
	"/api/payments/customer-manual",
	"/api/payments/webhook",
}

// Upload endpoints carry binary/multipart bodies the sanitizer must not
// touch.
var defaultSanitizeSkipPaths = []string{
	"/api/uploads",
	"/api/payments/webhook",
}

// Fields across the platform's content types that legitimately carry rich
// text authored in the admin editor.
var defaultRichTextFields = []string{
	"description",
	"content",
	"body",
	"bio",
	"answer",
}

func LoadConfig() Config {
	cfg := Config{
		Env:       getEnvOrDefault("ENV", "development"),
		Port:      getEnvIntOrDefault("PORT", 8080),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		Issuer:     getEnvOrDefault("JWT_ISSUER", "tutora-platform"),
		Audience:   splitAndTrim(getEnvOrDefault("JWT_AUDIENCE", "tutora-clients")),
		AccessTTL:  getEnvDurationOrDefault("JWT_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL: getEnvDurationOrDefault("JWT_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),

		AllowedOrigins: splitAndTrim(os.Getenv("ALLOWED_ORIGINS")),
		TrustedProxyHeaders: splitAndTrim(getEnvOrDefault(
			"TRUSTED_PROXY_HEADERS",
			httpx.HeaderRealIP+","+httpx.HeaderForwardedFor,
		)),

		RateLimitCeiling: getEnvIntOrDefault("RATELIMIT_CEILING", httpx.DefaultRateLimitCeiling),
		RateLimitWindow:  getEnvDurationOrDefault("RATELIMIT_WINDOW", httpx.DefaultRateLimitWindow),
		RateLimitBypass:  defaultRateLimitBypass,

		SanitizeSkipPaths:   defaultSanitizeSkipPaths,
		RichTextFields:      defaultRichTextFields,
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if extra := splitAndTrim(os.Getenv("SANITIZE_RICH_FIELDS")); len(extra) > 0 {
		cfg.RichTextFields = extra
	}
	if extra := splitAndTrim(os.Getenv("SANITIZE_SKIP_PATHS")); len(extra) > 0 {
		cfg.SanitizeSkipPaths = append(cfg.SanitizeSkipPaths, extra...)
	}

	return cfg
}

// IsProduction reports whether the process runs in a production-like mode.
// Staging keeps production semantics so misconfigurations surface before the
// real thing.
func (c Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "staging"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	// Bare integers are treated as minutes for backwards compatibility.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
