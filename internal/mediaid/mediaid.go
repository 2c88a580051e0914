package mediaid

import (
	"regexp"
	"strconv"
	"strings"

	"mediaminder/internal/media"
	"mediaminder/internal/services"
)

const separator = "_"

var bareWorkPattern = regexp.MustCompile(`^OL\d+W$`)

// Compound is a `{type}_{externalId}` identifier split into its parts.
type Compound struct {
	Type       media.Type
	ExternalID string
}

// String joins the compound back to its `{type}_{externalId}` form.
func (c Compound) String() string {
	return Join(c.Type, c.ExternalID)
}

// Join builds the compound identifier for an external id.
func Join(t media.Type, externalID string) string {
	return string(t) + separator + strings.TrimSpace(externalID)
}

// Split parses a compound identifier. It reports false instead of failing when
// raw has no separator or its prefix is not a media type, because callers
// routinely hand it bare local ids.
func Split(raw string) (Compound, bool) {
	raw = strings.TrimSpace(raw)
	prefix, rest, found := strings.Cut(raw, separator)
	if !found || rest == "" {
		return Compound{}, false
	}
	t, err := media.TypeFromWire(prefix)
	if err != nil {
		return Compound{}, false
	}
	return Compound{Type: t, ExternalID: rest}, true
}

// Parse is Split for callers that require a compound identifier.
func Parse(raw string) (Compound, error) {
	c, ok := Split(raw)
	if !ok {
		return Compound{}, services.Wrap(services.ErrMalformedID, "mediaid", "parse", "expected {type}_{id}, got "+strconv.Quote(raw), nil)
	}
	return c, nil
}

// NormalizeBookKey maps every accepted shape of an OpenLibrary work reference
// (`OL1W`, `works/OL1W`, `/works/OL1W`, `book_OL1W`) to `/works/OL1W`.
// Other OpenLibrary paths such as `/books/OL1M` keep their own prefix.
func NormalizeBookKey(raw string) string {
	key := strings.TrimSpace(raw)
	key = strings.TrimPrefix(key, string(media.TypeBook)+separator)
	key = strings.TrimPrefix(key, "/")
	key = strings.TrimPrefix(key, "works/")
	if key == "" {
		return ""
	}
	if bareWorkPattern.MatchString(key) || !strings.Contains(key, "/") {
		return "/works/" + key
	}
	return "/" + key
}

// BookWorkID returns the bare work id (`OL1W`) for any accepted book key shape.
func BookWorkID(raw string) string {
	key := NormalizeBookKey(raw)
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		return key[idx+1:]
	}
	return key
}

// Candidates lists the ids to try, in order, when matching an externally
// supplied id against stored external ids: the raw value, the part after the
// first separator, then the part after the last separator.
func Candidates(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := []string{raw}
	if _, rest, ok := strings.Cut(raw, separator); ok {
		out = appendUnique(out, rest)
	}
	if idx := strings.LastIndex(raw, separator); idx >= 0 {
		out = appendUnique(out, raw[idx+1:])
	}
	return out
}

// Matches reports whether candidate refers to the stored external id of an
// item of type t. Book ids also match across their path shapes.
func Matches(t media.Type, stored, candidate string) bool {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return false
	}
	storedWork := ""
	if t == media.TypeBook {
		storedWork = BookWorkID(stored)
	}
	for _, c := range Candidates(candidate) {
		if c == stored {
			return true
		}
		if storedWork != "" && BookWorkID(c) == storedWork {
			return true
		}
	}
	return false
}

// TMDBID extracts the numeric TMDB id from a bare or compound identifier.
func TMDBID(raw string) (int64, error) {
	for _, c := range Candidates(raw) {
		if id, err := strconv.ParseInt(c, 10, 64); err == nil && id > 0 {
			return id, nil
		}
	}
	return 0, services.Wrap(services.ErrMalformedID, "mediaid", "tmdb id", "not a positive integer: "+strconv.Quote(raw), nil)
}

func appendUnique(list []string, value string) []string {
	if value == "" {
		return list
	}
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
