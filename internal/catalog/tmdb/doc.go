// Package tmdb provides the TMDB API client behind MediaMinder's movie and TV
// catalog.
//
// It authenticates requests with the configured api key and exposes movie and
// TV search, detail lookups (for genres), per-title recommendations, and
// popularity-sorted discover queries filtered by genre and release window.
// Calls go through an upstream.Client, so failures arrive classified as not
// found or unavailable.
package tmdb
