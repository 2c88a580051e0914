package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"mediaminder/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"TMDB_API_KEY", "MEDIAMINDER_TOKEN", "MEDIAMINDER_BACKEND_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultConfigUsesEnvAndExpandsPaths(t *testing.T) {
	clearEnv(t)
	t.Setenv("TMDB_API_KEY", "test-key")
	t.Setenv("MEDIAMINDER_TOKEN", " token-1 ")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "mediaminder", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "mediaminder")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Recommendations.CachePath != filepath.Join(wantState, "recommendations.json") {
		t.Fatalf("unexpected cache path %q", cfg.Recommendations.CachePath)
	}
	if cfg.DetailCache.Path != filepath.Join(wantState, "details.db") {
		t.Fatalf("unexpected detail cache path %q", cfg.DetailCache.Path)
	}
	if cfg.TMDB.APIKey != "test-key" {
		t.Fatalf("expected TMDB key from env, got %q", cfg.TMDB.APIKey)
	}
	if cfg.Backend.Token != "token-1" {
		t.Fatalf("expected trimmed backend token from env, got %q", cfg.Backend.Token)
	}
	if cfg.RecommendationTTL() != time.Hour {
		t.Fatalf("expected one hour ttl, got %s", cfg.RecommendationTTL())
	}
	if cfg.Recommendations.MaxResults != 8 || cfg.Recommendations.PerTypeLimit != 4 {
		t.Fatalf("unexpected recommendation limits %+v", cfg.Recommendations)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "mediaminder.toml")

	type payload struct {
		Backend struct {
			BaseURL string `toml:"base_url"`
		} `toml:"backend"`
		TMDB struct {
			APIKey  string `toml:"api_key"`
			BaseURL string `toml:"base_url"`
		} `toml:"tmdb"`
		Recommendations struct {
			TTLMinutes int `toml:"ttl_minutes"`
		} `toml:"recommendations"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Backend.BaseURL = "https://media.example.com/api/"
	custom.TMDB.APIKey = "abc123"
	custom.TMDB.BaseURL = "https://example.com/tmdb"
	custom.Recommendations.TTLMinutes = 15
	custom.Logging.Format = "JSON"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Backend.BaseURL != "https://media.example.com/api" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Backend.BaseURL)
	}
	if cfg.TMDB.BaseURL != "https://example.com/tmdb" {
		t.Fatalf("unexpected tmdb base url %q", cfg.TMDB.BaseURL)
	}
	if cfg.RecommendationTTL() != 15*time.Minute {
		t.Fatalf("unexpected ttl %s", cfg.RecommendationTTL())
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized log format, got %q", cfg.Logging.Format)
	}
}

func TestBackendURLEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("TMDB_API_KEY", "k")
	t.Setenv("MEDIAMINDER_BACKEND_URL", "https://override.example.com/api")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Backend.BaseURL != "https://override.example.com/api" {
		t.Fatalf("expected env override, got %q", cfg.Backend.BaseURL)
	}
}

func TestLoadRequiresTMDBKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "tmdb.api_key") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"backend.base_url":               func(c *config.Config) { c.Backend.BaseURL = "ftp://example.com" },
		"recommendations.max_results":    func(c *config.Config) { c.Recommendations.MaxResults = -1 },
		"tmdb.requests_per_second":       func(c *config.Config) { c.TMDB.RequestsPerSecond = -2 },
		"recommendations.per_type_limit": func(c *config.Config) { c.Recommendations.PerTypeLimit = 20 },
	}
	for want, mutate := range cases {
		cfg := config.Default()
		cfg.TMDB.APIKey = "k"
		mutate(&cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error mentioning %q, got %v", want, err)
		}
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	clearEnv(t)
	t.Setenv("TMDB_API_KEY", "from-env")
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.TMDB.APIKey != "from-env" {
		t.Fatalf("expected env fallback for empty sample key, got %q", cfg.TMDB.APIKey)
	}
}
