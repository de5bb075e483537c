package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimitConfig_IsEnabled(t *testing.T) {
	cases := map[string]bool{
		"":      true,
		"true":  true,
		"0":     true,
		"FALSE": true,
		"false": false,
		" false ": false,
	}
	for raw, want := range cases {
		require.Equal(t, want, RateLimitConfig{Enabled: raw}.IsEnabled(), "enabled=%q", raw)
	}
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("APP_CONFIG_NAME", "does-not-exist")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("API_TOKEN", "s3cret")
	t.Setenv("APP_RATE_LIMIT_MAX_REQUESTS", "7")

	cfg, err := New()
	require.NoError(t, err)
	require.False(t, cfg.RateLimit.IsEnabled())
	require.Equal(t, "s3cret", cfg.APIToken.Secret)
	require.Equal(t, 7, cfg.RateLimit.MaxRequests)
	require.Equal(t, 60*time.Second, cfg.RateLimit.Window)
	require.Equal(t, TokenModeStatic, cfg.APIToken.Mode)
	require.Equal(t, "external_api", cfg.APIToken.Source)
}

func TestNew_YAMLBoolDisablesRateLimit(t *testing.T) {
	for raw, want := range map[string]bool{"false": false, "true": true, `"false"`: false} {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rate_limit:\n  enabled: "+raw+"\n  max_requests: 3\n"), 0o600))
		t.Setenv("APP_CONFIG_FILE", path)

		cfg, err := New()
		require.NoError(t, err)
		require.Equal(t, want, cfg.RateLimit.IsEnabled(), "enabled: %s", raw)
		require.Equal(t, 3, cfg.RateLimit.MaxRequests)
	}
}
