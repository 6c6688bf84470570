package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
)

// Config holds all runtime configuration for titlesd.
type Config struct {
	// Control API server
	BindAddr string // env: BIND_ADDR, default: "127.0.0.1"
	Port     int    // env: PORT, default: 11470

	// Remote API
	APIBaseURL string // env: STREMIO_API_URL, default: "https://api.strem.io"

	// Aggregation
	MaxItemsPerCatalog int // env: MAX_ITEMS_PER_CATALOG, default: 20
	FetchConcurrency   int // env: FETCH_CONCURRENCY, default: 4

	// Poster cache
	CacheMaxMB int // env: CACHE_MAX_MB, default: 0 (unlimited)

	// Refresh scheduler
	RefreshCheckMin int // env: REFRESH_CHECK_MIN, default: 60

	// Storage
	DataDir  string // env: DATA_DIR, default: "data"
	CacheDir string // env: CACHE_DIR, default: "{DataDir}/posters"

	// Logging
	LogLevel string // env: LOG_LEVEL, default: "info"
}

// Load creates a new Config with defaults and overrides from environment
// variables.
func Load() *Config {
	c := &Config{
		// Server defaults. The control API is meant for a UI shell on the
		// same machine, so it binds to loopback.
		BindAddr: "127.0.0.1",
		Port:     11470,

		// Remote API default
		APIBaseURL: "https://api.strem.io",

		// Aggregation defaults
		MaxItemsPerCatalog: 20,
		FetchConcurrency:   4,

		// Poster cache defaults
		CacheMaxMB: 0,

		// Refresh defaults
		RefreshCheckMin: 60,

		// Storage defaults
		DataDir: "data",

		// Logging defaults
		LogLevel: "info",
	}

	// Override from environment variables
	if v := os.Getenv("BIND_ADDR"); v != "" {
		c.BindAddr = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("STREMIO_API_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("MAX_ITEMS_PER_CATALOG"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxItemsPerCatalog = n
		}
	}
	if v := os.Getenv("FETCH_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.FetchConcurrency = n
		}
	}
	if v := os.Getenv("CACHE_MAX_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.CacheMaxMB = n
		}
	}
	if v := os.Getenv("REFRESH_CHECK_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RefreshCheckMin = n
		}
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(c.DataDir, "posters")
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	return c
}

// LogSummary logs the key configuration values at startup.
func (c *Config) LogSummary(log *zerolog.Logger) {
	log.Info().
		Str("bindAddr", c.BindAddr).
		Int("port", c.Port).
		Str("apiBaseUrl", c.APIBaseURL).
		Int("maxItemsPerCatalog", c.MaxItemsPerCatalog).
		Int("fetchConcurrency", c.FetchConcurrency).
		Int("cacheMaxMB", c.CacheMaxMB).
		Int("refreshCheckMin", c.RefreshCheckMin).
		Str("dataDir", c.DataDir).
		Str("cacheDir", c.CacheDir).
		Msg("configuration loaded")
}
