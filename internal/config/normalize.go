package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBackend()
	c.normalizeTMDB()
	c.normalizeOpenLibrary()
	if err := c.normalizeRecommendations(); err != nil {
		return err
	}
	if err := c.normalizeDetailCache(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBackend() {
	if value, ok := os.LookupEnv("MEDIAMINDER_BACKEND_URL"); ok && strings.TrimSpace(value) != "" {
		c.Backend.BaseURL = value
	}
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = defaultBackendBaseURL
	}
	c.Backend.Token = strings.TrimSpace(c.Backend.Token)
	if c.Backend.Token == "" {
		if value, ok := os.LookupEnv("MEDIAMINDER_TOKEN"); ok {
			c.Backend.Token = strings.TrimSpace(value)
		}
	}
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = defaultBackendTimeoutSeconds
	}
}

func (c *Config) normalizeTMDB() {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = value
		}
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.ImageBaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.ImageBaseURL), "/")
	if c.TMDB.ImageBaseURL == "" {
		c.TMDB.ImageBaseURL = defaultTMDBImageBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
	if c.TMDB.RequestsPerSecond == 0 {
		c.TMDB.RequestsPerSecond = defaultTMDBRequestsPerSecond
	}
}

func (c *Config) normalizeOpenLibrary() {
	c.OpenLibrary.BaseURL = strings.TrimRight(strings.TrimSpace(c.OpenLibrary.BaseURL), "/")
	if c.OpenLibrary.BaseURL == "" {
		c.OpenLibrary.BaseURL = defaultOpenLibraryBaseURL
	}
	c.OpenLibrary.CoversBaseURL = strings.TrimRight(strings.TrimSpace(c.OpenLibrary.CoversBaseURL), "/")
	if c.OpenLibrary.CoversBaseURL == "" {
		c.OpenLibrary.CoversBaseURL = defaultOpenLibraryCoversURL
	}
	if c.OpenLibrary.RequestsPerSecond == 0 {
		c.OpenLibrary.RequestsPerSecond = defaultOpenLibraryRPS
	}
	if c.OpenLibrary.SearchLimit == 0 {
		c.OpenLibrary.SearchLimit = defaultOpenLibrarySearchLimit
	}
}

func (c *Config) normalizeRecommendations() error {
	if c.Recommendations.TTLMinutes == 0 {
		c.Recommendations.TTLMinutes = defaultRecommendationTTL
	}
	if c.Recommendations.MaxResults == 0 {
		c.Recommendations.MaxResults = defaultRecommendationMax
	}
	if c.Recommendations.PerTypeLimit == 0 {
		c.Recommendations.PerTypeLimit = defaultRecommendationPerType
	}
	if c.Recommendations.DetailConcurrency == 0 {
		c.Recommendations.DetailConcurrency = defaultDetailConcurrency
	}
	var err error
	if strings.TrimSpace(c.Recommendations.CachePath) == "" {
		c.Recommendations.CachePath = filepath.Join(c.Paths.StateDir, "recommendations.json")
	}
	if c.Recommendations.CachePath, err = expandPath(c.Recommendations.CachePath); err != nil {
		return fmt.Errorf("recommendations.cache_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeDetailCache() error {
	var err error
	if strings.TrimSpace(c.DetailCache.Path) == "" {
		c.DetailCache.Path = filepath.Join(c.Paths.StateDir, "details.db")
	}
	if c.DetailCache.Path, err = expandPath(c.DetailCache.Path); err != nil {
		return fmt.Errorf("detail_cache.path: %w", err)
	}
	if c.DetailCache.TTLHours == 0 {
		c.DetailCache.TTLHours = defaultDetailCacheTTLHours
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
