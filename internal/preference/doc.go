// Package preference turns a tracked-list snapshot into a Profile of genre and
// subject scores plus per-type favorites.
//
// Only significant items count (rated 3+ or finished). Each contributes a
// weight derived from its rating and status to the genres (movies, TV) or
// subjects (books) fetched from the catalog.
package preference
