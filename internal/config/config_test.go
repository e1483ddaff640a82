package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/norvia/storefront-api/internal/config"
)

func baseEnv() map[string]string {
	return map[string]string{
		"SHOPIFY_STORE_DOMAIN":            "norvia-test.myshopify.com",
		"SHOPIFY_STOREFRONT_ACCESS_TOKEN": "shpat_test",
		"REDIS_URL":                       "redis://localhost:6379/0",
		"ANTHROPIC_API_KEY":               "",
		"DEFAULT_LOCALE":                  "",
		"PORT":                            "",
		"APP_ENV":                         "",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(baseEnv())
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "2024-01", cfg.ShopifyAPIVersion)
	require.Equal(t, "nl", cfg.DefaultLocale)
	require.Equal(t, 300, cfg.ChatMaxTokens)
	require.Equal(t, time.Minute, cfg.ChatRateWindow)
	require.False(t, cfg.ChatEnabled())
	require.Contains(t, cfg.SupportEmail, "@")
}

func TestLoadRequiredKeys(t *testing.T) {
	for _, missing := range []string{"SHOPIFY_STORE_DOMAIN", "SHOPIFY_STOREFRONT_ACCESS_TOKEN", "REDIS_URL"} {
		env := baseEnv()
		env[missing] = ""
		_, err := config.LoadForTests(env)
		require.Error(t, err, missing)
		require.Contains(t, err.Error(), missing)
	}
}

func TestLoadRejectsUnknownLocale(t *testing.T) {
	env := baseEnv()
	env["DEFAULT_LOCALE"] = "fr"
	_, err := config.LoadForTests(env)
	require.Error(t, err)
}

func TestChatEnabled(t *testing.T) {
	env := baseEnv()
	env["ANTHROPIC_API_KEY"] = "sk-ant-test"
	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)
	require.True(t, cfg.ChatEnabled())
}
