package catalog

import (
	"strconv"
	"strings"

	"mediaminder/internal/media"
)

const (
	// DefaultPosterSize is the TMDB poster width used for list displays.
	DefaultPosterSize = "w342"
	// DefaultCoverSize is the OpenLibrary cover size used for list displays.
	DefaultCoverSize = "M"

	olidPrefix = "olid:"
	isbnPrefix = "isbn:"
)

// Images builds display URLs for catalog artwork.
type Images struct {
	tmdbBase   string
	coversBase string
}

// NewImages returns an Images for the given TMDB image and OpenLibrary covers
// base URLs.
func NewImages(tmdbImageBase, coversBase string) Images {
	return Images{
		tmdbBase:   strings.TrimRight(strings.TrimSpace(tmdbImageBase), "/"),
		coversBase: strings.TrimRight(strings.TrimSpace(coversBase), "/"),
	}
}

// ImageURL builds a sized TMDB image URL. It returns "" for an empty path.
func (im Images) ImageURL(path, size string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if size == "" {
		size = DefaultPosterSize
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return im.tmdbBase + "/" + size + path
}

// BookCoverURL resolves a cover image for b. Sources are tried in order:
// numeric cover id, edition id from the key path, cover/edition key fields,
// first ISBN. It returns "" when none is present.
func (im Images) BookCoverURL(b Book, size string) string {
	if b.CoverID > 0 {
		return im.coverURL("id", strconv.FormatInt(b.CoverID, 10), size)
	}
	if olid := b.EditionOLID(); olid != "" {
		return im.coverURL("olid", olid, size)
	}
	if isbn := b.FirstISBN(); isbn != "" {
		return im.coverURL("isbn", isbn, size)
	}
	return ""
}

// CoverIDURL builds a cover URL from a numeric cover id.
func (im Images) CoverIDURL(id int64, size string) string {
	if id <= 0 {
		return ""
	}
	return im.coverURL("id", strconv.FormatInt(id, 10), size)
}

// PosterURL resolves a stored poster reference for an item of type t.
func (im Images) PosterURL(t media.Type, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if t != media.TypeBook {
		return im.ImageURL(ref, DefaultPosterSize)
	}
	switch {
	case strings.HasPrefix(ref, olidPrefix):
		return im.coverURL("olid", strings.TrimPrefix(ref, olidPrefix), DefaultCoverSize)
	case strings.HasPrefix(ref, isbnPrefix):
		return im.coverURL("isbn", strings.TrimPrefix(ref, isbnPrefix), DefaultCoverSize)
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return im.CoverIDURL(id, DefaultCoverSize)
	}
	if strings.HasPrefix(ref, "OL") && strings.HasSuffix(ref, "M") {
		return im.coverURL("olid", ref, DefaultCoverSize)
	}
	return ""
}

// ItemImageURL resolves the display image for any catalog item.
func (im Images) ItemImageURL(item Item) string {
	return Match(item,
		func(b Book) string { return im.BookCoverURL(b, DefaultCoverSize) },
		func(m Movie) string { return im.ImageURL(m.PosterPath, DefaultPosterSize) },
		func(s TVShow) string { return im.ImageURL(s.PosterPath, DefaultPosterSize) },
	)
}

func (im Images) coverURL(kind, value, size string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if size == "" {
		size = DefaultCoverSize
	}
	return im.coversBase + "/b/" + kind + "/" + value + "-" + size + ".jpg"
}
