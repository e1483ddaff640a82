package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv string
	Port   string

	ShopifyStoreDomain     string
	ShopifyStorefrontToken string
	ShopifyAPIVersion      string
	ShopifyAdminToken      string

	RedisURL string

	AnthropicAPIKey      string
	ChatModel            string
	ChatMaxTokens        int
	ChatInstructionsPath string
	ChatRateLimit        int
	ChatRateWindow       time.Duration

	SupportEmail  string
	DefaultLocale string
	GeoHeader     string

	CORSAllowedOrigins []string
	SessionCookieName  string
	SessionCookieTTL   time.Duration
	CartIDTTL          time.Duration
	CatalogCacheTTL    time.Duration
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:                 valueOrDefault(k.String("APP_ENV"), "development"),
		Port:                   valueOrDefault(k.String("PORT"), "8080"),
		ShopifyStoreDomain:     strings.TrimSpace(k.String("SHOPIFY_STORE_DOMAIN")),
		ShopifyStorefrontToken: strings.TrimSpace(k.String("SHOPIFY_STOREFRONT_ACCESS_TOKEN")),
		ShopifyAPIVersion:      valueOrDefault(k.String("SHOPIFY_API_VERSION"), "2024-01"),
		ShopifyAdminToken:      strings.TrimSpace(k.String("SHOPIFY_ADMIN_ACCESS_TOKEN")),
		RedisURL:               k.String("REDIS_URL"),
		AnthropicAPIKey:        strings.TrimSpace(k.String("ANTHROPIC_API_KEY")),
		ChatModel:              valueOrDefault(k.String("CHAT_MODEL"), "claude-sonnet-4-20250514"),
		ChatMaxTokens:          parseInt(k.String("CHAT_MAX_TOKENS"), 300),
		ChatInstructionsPath:   valueOrDefault(k.String("CHAT_INSTRUCTIONS_PATH"), "chat-instructions.md"),
		ChatRateLimit:          parseInt(k.String("CHAT_RATE_LIMIT"), 20),
		ChatRateWindow:         parseDuration(k.String("CHAT_RATE_WINDOW"), "1m"),
		SupportEmail:           valueOrDefault(k.String("SUPPORT_EMAIL"), "gelgloves@carpartsroosendaal.nl"),
		DefaultLocale:          valueOrDefault(k.String("DEFAULT_LOCALE"), "nl"),
		GeoHeader:              valueOrDefault(k.String("GEO_COUNTRY_HEADER"), "X-Vercel-IP-Country"),
		CORSAllowedOrigins:     splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		SessionCookieName:      valueOrDefault(k.String("SESSION_COOKIE_NAME"), "sid"),
		SessionCookieTTL:       parseDuration(k.String("SESSION_COOKIE_TTL"), "720h"),
		CartIDTTL:              parseDuration(k.String("CART_ID_TTL"), "240h"),
		CatalogCacheTTL:        parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
	}

	if cfg.ShopifyStoreDomain == "" {
		return nil, errors.New("SHOPIFY_STORE_DOMAIN is required")
	}
	if cfg.ShopifyStorefrontToken == "" {
		return nil, errors.New("SHOPIFY_STOREFRONT_ACCESS_TOKEN is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.DefaultLocale != "nl" && cfg.DefaultLocale != "en" {
		return nil, fmt.Errorf("DEFAULT_LOCALE must be nl or en, got %q", cfg.DefaultLocale)
	}

	return cfg, nil
}

// ChatEnabled reports whether a completion-service credential is configured.
// Its absence is a defined degraded mode, not an error.
func (c *Config) ChatEnabled() bool {
	return c != nil && c.AnthropicAPIKey != ""
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// LoadForTests allows tests to override environment variables without
// leaking them into the surrounding process state.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
