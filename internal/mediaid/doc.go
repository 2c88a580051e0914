// Package mediaid converts between the three identifier shapes MediaMinder
// sees: bare catalog ids (TMDB numbers, OpenLibrary work keys), compound
// `{type}_{externalId}` ids, and backend-assigned local ids.
//
// All id string handling lives here; other packages must not split ids on
// their own.
package mediaid
