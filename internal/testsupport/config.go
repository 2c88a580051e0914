package testsupport

import (
	"path/filepath"
	"testing"

	"mediaminder/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.TMDB.APIKey = "test"
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Recommendations.CachePath = filepath.Join(base, "state", "recommendations.json")
	cfgVal.DetailCache.Path = filepath.Join(base, "state", "details.db")
	cfgVal.TMDB.RequestsPerSecond = 1000
	cfgVal.OpenLibrary.RequestsPerSecond = 1000

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTMDBKey sets the TMDB API key on the test config.
func WithTMDBKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = key
	}
}

// WithBackendURL points the backend client at a test server.
func WithBackendURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backend.BaseURL = url
	}
}

// WithTMDBURL points the TMDB client at a test server.
func WithTMDBURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.BaseURL = url
	}
}

// WithOpenLibraryURL points the OpenLibrary client at a test server.
func WithOpenLibraryURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OpenLibrary.BaseURL = url
	}
}

// WithDetailCacheDisabled turns off the SQLite detail cache.
func WithDetailCacheDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.DetailCache.Enabled = false
	}
}

// BaseDir exposes the temp root used by the builder for callers that need to
// place additional files next to the config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
