// Package services defines shared utilities consumed by the catalog adapters,
// the tracking store and the recommendation pipeline.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers and the media id being
//     worked on for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (not found vs unavailable vs malformed) with errors.Is.
//   - UserMessage, which turns a classified error into the short text shown
//     after a failed mutation.
package services
