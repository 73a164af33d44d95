// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // Zone lookups must work in images without /usr/share/zoneinfo.

	"github.com/robfig/cron/v3"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr       string
	DBPath           string
	ScrapeCron       string
	TargetURL        string
	SourceZone       *time.Location
	DisplayZone      *time.Location
	ScrapeTimeout    time.Duration
	CloudflareBypass bool
	StaticDir        string
	LogLevel         slog.Level
	LogFormat        string

	// SecretKey is the 32-byte AES-256 key used to encrypt stored cookies.
	// Nil when VPSMON_SECRET_KEY is unset; cookies are then stored in plaintext.
	SecretKey []byte
}

// HasSecretKey reports whether cookie encryption is enabled.
func (c *Config) HasSecretKey() bool {
	return c.SecretKey != nil
}

// NewLogger builds the process logger writing to w in the configured format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Load reads configuration from environment variables and returns a validated Config.
// Every variable is optional. Defaults: VPSMON_LISTEN_ADDR (127.0.0.1:4000),
// VPSMON_DB_PATH (monitor.db), VPSMON_SCRAPE_CRON ("0 * * * *"),
// VPSMON_TARGET_URL (https://hax.co.id/vps-info), VPSMON_SOURCE_TZ (Asia/Jakarta),
// VPSMON_DISPLAY_TZ (Asia/Kuala_Lumpur), VPSMON_SCRAPE_TIMEOUT (30s),
// VPSMON_CLOUDFLARE_BYPASS (false), VPSMON_LOG_LEVEL (info), VPSMON_LOG_FORMAT (text).
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:4000"
	if v, ok := os.LookupEnv("VPSMON_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "monitor.db"
	if v, ok := os.LookupEnv("VPSMON_DB_PATH"); ok {
		dbPath = v
	}

	scrapeCron := "0 * * * *"
	if v, ok := os.LookupEnv("VPSMON_SCRAPE_CRON"); ok {
		scrapeCron = strings.TrimSpace(v)
	}
	if _, err := cron.ParseStandard(scrapeCron); err != nil {
		return nil, fmt.Errorf("VPSMON_SCRAPE_CRON has invalid schedule %q: %w", scrapeCron, err)
	}

	targetURL := "https://hax.co.id/vps-info"
	if v, ok := os.LookupEnv("VPSMON_TARGET_URL"); ok && v != "" {
		targetURL = v
	}

	sourceZone, err := loadZone("VPSMON_SOURCE_TZ", "Asia/Jakarta")
	if err != nil {
		return nil, err
	}
	displayZone, err := loadZone("VPSMON_DISPLAY_TZ", "Asia/Kuala_Lumpur")
	if err != nil {
		return nil, err
	}

	scrapeTimeout := 30 * time.Second
	if v, ok := os.LookupEnv("VPSMON_SCRAPE_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("VPSMON_SCRAPE_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed < 0 {
			return nil, fmt.Errorf("VPSMON_SCRAPE_TIMEOUT must not be negative, got %s", parsed)
		}
		scrapeTimeout = parsed
	}

	var cloudflareBypass bool
	if v, ok := os.LookupEnv("VPSMON_CLOUDFLARE_BYPASS"); ok && v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("VPSMON_CLOUDFLARE_BYPASS has invalid boolean %q: %w", v, err)
		}
		cloudflareBypass = parsed
	}

	staticDir := os.Getenv("VPSMON_STATIC_DIR")

	logLevel := slog.LevelInfo
	if v, ok := os.LookupEnv("VPSMON_LOG_LEVEL"); ok && v != "" {
		if err := logLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("VPSMON_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	logFormat := "text"
	if v, ok := os.LookupEnv("VPSMON_LOG_FORMAT"); ok && v != "" {
		logFormat = strings.ToLower(v)
		if logFormat != "text" && logFormat != "json" {
			return nil, fmt.Errorf("VPSMON_LOG_FORMAT must be text or json, got %q", v)
		}
	}

	var secretKey []byte
	if v, ok := os.LookupEnv("VPSMON_SECRET_KEY"); ok && v != "" {
		decoded, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("VPSMON_SECRET_KEY must be 64 hex characters: %w", err)
		}
		if len(decoded) != 32 {
			return nil, fmt.Errorf("VPSMON_SECRET_KEY must decode to 32 bytes, got %d", len(decoded))
		}
		secretKey = decoded
	}

	return &Config{
		ListenAddr:       listenAddr,
		DBPath:           dbPath,
		ScrapeCron:       scrapeCron,
		TargetURL:        targetURL,
		SourceZone:       sourceZone,
		DisplayZone:      displayZone,
		ScrapeTimeout:    scrapeTimeout,
		CloudflareBypass: cloudflareBypass,
		StaticDir:        staticDir,
		LogLevel:         logLevel,
		LogFormat:        logFormat,
		SecretKey:        secretKey,
	}, nil
}

func loadZone(key, fallback string) (*time.Location, error) {
	name := fallback
	if v, ok := os.LookupEnv(key); ok && v != "" {
		name = v
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%s has unknown time zone %q: %w", key, name, err)
	}
	return loc, nil
}
