package main

import (
	"testing"

	"github.com/goccy/go-json"

	"mediaminder/internal/media"
	"mediaminder/internal/testsupport"
)

func TestCacheStatsAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.Seed("movie", "550", "Fight Club", "finished", 5)

	if _, _, err := runCLI(t, []string{"recommend"}, env.configPath); err != nil {
		t.Fatalf("recommend: %v", err)
	}

	out, _, err := runCLI(t, []string{"--json", "cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	var stats cacheStatsOutput
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v\n%s", err, out)
	}
	if stats.DetailEntries[media.TypeMovie] != 1 {
		t.Fatalf("expected one cached movie detail, got %v", stats.DetailEntries)
	}
	if !stats.RecommendationsCurrent || stats.RecommendationsAt == nil {
		t.Fatalf("expected current recommendations, got %+v", stats)
	}

	out, _, err = runCLI(t, []string{"--json", "cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	var cleared map[string]int64
	if err := json.Unmarshal([]byte(out), &cleared); err != nil {
		t.Fatalf("decode clear: %v\n%s", err, out)
	}
	if cleared["removed"] != 1 {
		t.Fatalf("expected one removed entry, got %v", cleared)
	}

	out, _, err = runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats after clear: %v", err)
	}
	requireContains(t, out, "Recommendations")
	requireContains(t, out, "empty")
}

func TestCachePruneKeepsFreshEntries(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.Seed("movie", "550", "Fight Club", "finished", 5)

	if _, _, err := runCLI(t, []string{"recommend"}, env.configPath); err != nil {
		t.Fatalf("recommend: %v", err)
	}
	out, _, err := runCLI(t, []string{"--json", "cache", "prune"}, env.configPath)
	if err != nil {
		t.Fatalf("cache prune: %v", err)
	}
	requireContains(t, out, `"removed": 0`)
}

func TestCacheDisabled(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithDetailCacheDisabled())

	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "disabled")

	_, errOut, err := runCLI(t, []string{"cache", "prune"}, env.configPath)
	if err != nil {
		t.Fatalf("cache prune: %v", err)
	}
	requireContains(t, errOut, "Detail cache is disabled")
}
