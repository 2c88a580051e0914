package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediaminder/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.backend.URL())

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if !strings.Contains(string(data), "[tmdb]") {
		t.Fatalf("sample config missing [tmdb] section:\n%s", data)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init without --overwrite to refuse an existing file")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateRequiresTMDBKey(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	env := setupCLITestEnv(t, testsupport.WithTMDBKey(""))

	_, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err == nil {
		t.Fatal("expected validation error without a TMDB key")
	}
	requireContains(t, err.Error(), "tmdb.api_key")

	// Commands that need config fail before touching the network.
	if _, _, err := runCLI(t, []string{"recommend"}, env.configPath); err == nil {
		t.Fatal("expected recommend to fail without a TMDB key")
	}
	if calls := env.backend.Calls("GET"); calls != 0 {
		t.Fatalf("expected no backend calls, got %d", calls)
	}
}
