package config

import (
	"bytes"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every VPSMON_ env var that Load() reads.
var allConfigKeys = []string{
	"VPSMON_LISTEN_ADDR",
	"VPSMON_DB_PATH",
	"VPSMON_SCRAPE_CRON",
	"VPSMON_TARGET_URL",
	"VPSMON_SOURCE_TZ",
	"VPSMON_DISPLAY_TZ",
	"VPSMON_SCRAPE_TIMEOUT",
	"VPSMON_CLOUDFLARE_BYPASS",
	"VPSMON_SECRET_KEY",
	"VPSMON_STATIC_DIR",
	"VPSMON_LOG_LEVEL",
	"VPSMON_LOG_FORMAT",
}

// isolateConfigEnv saves and unsets all VPSMON_ env vars so tests don't
// inherit values from the host environment.
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:4000", cfg.ListenAddr)
	assert.Equal(t, "monitor.db", cfg.DBPath)
	assert.Equal(t, "0 * * * *", cfg.ScrapeCron)
	assert.Equal(t, "https://hax.co.id/vps-info", cfg.TargetURL)
	assert.Equal(t, "Asia/Jakarta", cfg.SourceZone.String())
	assert.Equal(t, "Asia/Kuala_Lumpur", cfg.DisplayZone.String())
	assert.Equal(t, 30*time.Second, cfg.ScrapeTimeout)
	assert.False(t, cfg.CloudflareBypass)
	assert.Empty(t, cfg.StaticDir)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Nil(t, cfg.SecretKey)
	assert.False(t, cfg.HasSecretKey())
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("VPSMON_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("VPSMON_DB_PATH", "/tmp/test.db")
	t.Setenv("VPSMON_SCRAPE_CRON", "*/15 * * * *")
	t.Setenv("VPSMON_TARGET_URL", "http://localhost:8081/vps-info")
	t.Setenv("VPSMON_SOURCE_TZ", "UTC")
	t.Setenv("VPSMON_DISPLAY_TZ", "Asia/Singapore")
	t.Setenv("VPSMON_SCRAPE_TIMEOUT", "0")
	t.Setenv("VPSMON_CLOUDFLARE_BYPASS", "true")
	t.Setenv("VPSMON_STATIC_DIR", "client/dist")
	t.Setenv("VPSMON_LOG_LEVEL", "debug")
	t.Setenv("VPSMON_LOG_FORMAT", "JSON")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "*/15 * * * *", cfg.ScrapeCron)
	assert.Equal(t, "http://localhost:8081/vps-info", cfg.TargetURL)
	assert.Equal(t, time.UTC, cfg.SourceZone)
	assert.Equal(t, "Asia/Singapore", cfg.DisplayZone.String())
	assert.Equal(t, time.Duration(0), cfg.ScrapeTimeout)
	assert.True(t, cfg.CloudflareBypass)
	assert.Equal(t, "client/dist", cfg.StaticDir)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_CronDescriptor(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("VPSMON_SCRAPE_CRON", "@every 30m")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "@every 30m", cfg.ScrapeCron)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: "VPSMON_SCRAPE_CRON", value: "every hour"},
		{key: "VPSMON_SCRAPE_CRON", value: "0 0 * * * *"},
		{key: "VPSMON_SOURCE_TZ", value: "Mars/Olympus_Mons"},
		{key: "VPSMON_DISPLAY_TZ", value: "Nowhere"},
		{key: "VPSMON_SCRAPE_TIMEOUT", value: "soon"},
		{key: "VPSMON_SCRAPE_TIMEOUT", value: "-5s"},
		{key: "VPSMON_CLOUDFLARE_BYPASS", value: "maybe"},
		{key: "VPSMON_LOG_LEVEL", value: "loud"},
		{key: "VPSMON_LOG_FORMAT", value: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_SecretKey_Valid(t *testing.T) {
	isolateConfigEnv(t)
	// 64 hex chars = 32 bytes
	t.Setenv("VPSMON_SECRET_KEY", "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Len(t, cfg.SecretKey, 32)
	assert.True(t, cfg.HasSecretKey())
}

func TestLoad_SecretKey_TooShort(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("VPSMON_SECRET_KEY", "deadbeef")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VPSMON_SECRET_KEY")
}

func TestLoad_SecretKey_NotHex(t *testing.T) {
	isolateConfigEnv(t)
	// 64 chars but not valid hex
	t.Setenv("VPSMON_SECRET_KEY", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VPSMON_SECRET_KEY")
}

func TestConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer

	cfg := &Config{LogLevel: slog.LevelWarn, LogFormat: "json"}
	logger := cfg.NewLogger(&buf)
	logger.Info("dropped")
	logger.Warn("kept", "account_id", 7)

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"msg":"kept"`)
	assert.Contains(t, buf.String(), `"account_id":7`)

	buf.Reset()
	cfg = &Config{LogLevel: slog.LevelInfo, LogFormat: "text"}
	cfg.NewLogger(&buf).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
