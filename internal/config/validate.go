package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateURLs(); err != nil {
		return err
	}
	if err := c.validateLimits(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'mediaminder config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateURLs() error {
	for key, value := range map[string]string{
		"backend.base_url":            c.Backend.BaseURL,
		"tmdb.base_url":               c.TMDB.BaseURL,
		"tmdb.image_base_url":         c.TMDB.ImageBaseURL,
		"openlibrary.base_url":        c.OpenLibrary.BaseURL,
		"openlibrary.covers_base_url": c.OpenLibrary.CoversBaseURL,
	} {
		if err := validateURL(key, value); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateLimits() error {
	if err := ensurePositiveMap(map[string]int{
		"backend.timeout_seconds":            c.Backend.TimeoutSeconds,
		"openlibrary.search_limit":           c.OpenLibrary.SearchLimit,
		"recommendations.ttl_minutes":        c.Recommendations.TTLMinutes,
		"recommendations.max_results":        c.Recommendations.MaxResults,
		"recommendations.per_type_limit":     c.Recommendations.PerTypeLimit,
		"recommendations.detail_concurrency": c.Recommendations.DetailConcurrency,
		"detail_cache.ttl_hours":             c.DetailCache.TTLHours,
	}); err != nil {
		return err
	}
	if c.TMDB.RequestsPerSecond <= 0 {
		return errors.New("tmdb.requests_per_second must be positive")
	}
	if c.OpenLibrary.RequestsPerSecond <= 0 {
		return errors.New("openlibrary.requests_per_second must be positive")
	}
	if c.Recommendations.PerTypeLimit > c.Recommendations.MaxResults {
		return errors.New("recommendations.per_type_limit must not exceed recommendations.max_results")
	}
	return nil
}

func validateURL(key, value string) error {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s is missing a host: %q", key, value)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
