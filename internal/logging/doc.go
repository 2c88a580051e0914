// Package logging assembles structured slog loggers and formatting helpers used
// across MediaMinder.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so catalog, tracking and
// recommendation code can tag log lines with correlation ids and the media id
// being processed. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
package logging
