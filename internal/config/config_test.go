package config

import (
	"path/filepath"
	"testing"
)

// clearEnv blanks every variable Load reads so ambient values from the host
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BIND_ADDR", "PORT", "STREMIO_API_URL",
		"MAX_ITEMS_PER_CATALOG", "FETCH_CONCURRENCY",
		"CACHE_MAX_MB", "REFRESH_CHECK_MIN",
		"DATA_DIR", "CACHE_DIR", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	c := Load()

	if c.BindAddr != "127.0.0.1" {
		t.Errorf("BindAddr = %q, want 127.0.0.1", c.BindAddr)
	}
	if c.Port != 11470 {
		t.Errorf("Port = %d, want 11470", c.Port)
	}
	if c.APIBaseURL != "https://api.strem.io" {
		t.Errorf("APIBaseURL = %q", c.APIBaseURL)
	}
	if c.MaxItemsPerCatalog != 20 {
		t.Errorf("MaxItemsPerCatalog = %d, want 20", c.MaxItemsPerCatalog)
	}
	if c.FetchConcurrency != 4 {
		t.Errorf("FetchConcurrency = %d, want 4", c.FetchConcurrency)
	}
	if c.CacheMaxMB != 0 {
		t.Errorf("CacheMaxMB = %d, want 0", c.CacheMaxMB)
	}
	if c.RefreshCheckMin != 60 {
		t.Errorf("RefreshCheckMin = %d, want 60", c.RefreshCheckMin)
	}
	if c.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", c.DataDir)
	}
	if want := filepath.Join("data", "posters"); c.CacheDir != want {
		t.Errorf("CacheDir = %q, want %q", c.CacheDir, want)
	}
	if c.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", c.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BIND_ADDR", "0.0.0.0")
	t.Setenv("PORT", "9090")
	t.Setenv("STREMIO_API_URL", "https://api.example.com")
	t.Setenv("MAX_ITEMS_PER_CATALOG", "50")
	t.Setenv("FETCH_CONCURRENCY", "8")
	t.Setenv("CACHE_MAX_MB", "200")
	t.Setenv("REFRESH_CHECK_MIN", "15")
	t.Setenv("DATA_DIR", "/var/lib/titles")
	t.Setenv("CACHE_DIR", "/var/cache/titles")
	t.Setenv("LOG_LEVEL", "debug")

	c := Load()

	if c.BindAddr != "0.0.0.0" {
		t.Errorf("BindAddr = %q", c.BindAddr)
	}
	if c.Port != 9090 {
		t.Errorf("Port = %d, want 9090", c.Port)
	}
	if c.APIBaseURL != "https://api.example.com" {
		t.Errorf("APIBaseURL = %q", c.APIBaseURL)
	}
	if c.MaxItemsPerCatalog != 50 {
		t.Errorf("MaxItemsPerCatalog = %d, want 50", c.MaxItemsPerCatalog)
	}
	if c.FetchConcurrency != 8 {
		t.Errorf("FetchConcurrency = %d, want 8", c.FetchConcurrency)
	}
	if c.CacheMaxMB != 200 {
		t.Errorf("CacheMaxMB = %d, want 200", c.CacheMaxMB)
	}
	if c.RefreshCheckMin != 15 {
		t.Errorf("RefreshCheckMin = %d, want 15", c.RefreshCheckMin)
	}
	if c.DataDir != "/var/lib/titles" {
		t.Errorf("DataDir = %q", c.DataDir)
	}
	if c.CacheDir != "/var/cache/titles" {
		t.Errorf("CacheDir = %q", c.CacheDir)
	}
	if c.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", c.LogLevel)
	}
}

func TestCacheDirFollowsDataDir(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_DIR", "/srv/titles")

	c := Load()

	if want := filepath.Join("/srv/titles", "posters"); c.CacheDir != want {
		t.Errorf("CacheDir = %q, want %q", c.CacheDir, want)
	}
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-port")
	t.Setenv("MAX_ITEMS_PER_CATALOG", "0")
	t.Setenv("FETCH_CONCURRENCY", "-2")
	t.Setenv("CACHE_MAX_MB", "-1")
	t.Setenv("REFRESH_CHECK_MIN", "soon")

	c := Load()

	if c.Port != 11470 {
		t.Errorf("Port = %d, want default 11470", c.Port)
	}
	if c.MaxItemsPerCatalog != 20 {
		t.Errorf("MaxItemsPerCatalog = %d, want default 20", c.MaxItemsPerCatalog)
	}
	if c.FetchConcurrency != 4 {
		t.Errorf("FetchConcurrency = %d, want default 4", c.FetchConcurrency)
	}
	if c.CacheMaxMB != 0 {
		t.Errorf("CacheMaxMB = %d, want default 0", c.CacheMaxMB)
	}
	if c.RefreshCheckMin != 60 {
		t.Errorf("RefreshCheckMin = %d, want default 60", c.RefreshCheckMin)
	}
}
