// Package recommend builds personalized suggestions from a tracked-media
// snapshot.
//
// The Engine scores the snapshot with the preference analyzer, asks the
// catalog for items similar to a random favorite and for popular items in the
// top genre or subject, drops anything already tracked, and caps the result
// per media type and overall. Results are cached for a TTL, optionally in a
// snapshot file so separate CLI runs share them. When there is no signal or
// every lookup fails, the curated Defaults list is returned instead.
package recommend
