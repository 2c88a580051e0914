package media

import (
	"fmt"
	"strings"
)

// Type identifies which catalog a tracked item comes from.
type Type string

const (
	TypeBook   Type = "book"
	TypeMovie  Type = "movie"
	TypeTVShow Type = "tvshow"
)

// wireSeries is the backend's name for TypeTVShow.
const wireSeries = "series"

// AllTypes lists the media types in display order.
var AllTypes = []Type{TypeMovie, TypeTVShow, TypeBook}

// Valid reports whether t is one of the canonical media types.
func (t Type) Valid() bool {
	switch t {
	case TypeBook, TypeMovie, TypeTVShow:
		return true
	default:
		return false
	}
}

// IsVideo reports whether t is served by the video catalog.
func (t Type) IsVideo() bool {
	return t == TypeMovie || t == TypeTVShow
}

// Wire returns the backend vocabulary for t.
func (t Type) Wire() string {
	if t == TypeTVShow {
		return wireSeries
	}
	return string(t)
}

// Label is the human form used in tables.
func (t Type) Label() string {
	switch t {
	case TypeBook:
		return "Book"
	case TypeMovie:
		return "Movie"
	case TypeTVShow:
		return "TV Show"
	default:
		return string(t)
	}
}

// TypeFromWire converts a backend media type to the canonical type.
func TypeFromWire(raw string) (Type, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == wireSeries {
		return TypeTVShow, nil
	}
	t := Type(normalized)
	if !t.Valid() {
		return "", fmt.Errorf("unknown media type %q", raw)
	}
	return t, nil
}

// ParseType accepts the canonical names plus the aliases people type on the
// command line (books, movies, tv, series, show).
func ParseType(raw string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "book", "books":
		return TypeBook, nil
	case "movie", "movies", "film", "films":
		return TypeMovie, nil
	case "tvshow", "tvshows", "tv", "series", "show", "shows":
		return TypeTVShow, nil
	default:
		return "", fmt.Errorf("unknown media type %q (expected book, movie, or tv)", raw)
	}
}
