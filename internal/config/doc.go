// Package config loads, normalizes, and validates MediaMinder configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TMDB_API_KEY and MEDIAMINDER_TOKEN. The Config type centralizes every knob
// the CLI needs, so catalog endpoints, backend credentials and cache locations
// are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized URLs, expanded paths, and clear validation errors.
package config
