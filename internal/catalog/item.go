package catalog

import (
	"strconv"
	"strings"

	"mediaminder/internal/media"
	"mediaminder/internal/mediaid"
)

// Item is a catalog entry from either catalog. The set of implementations is
// closed (Book, Movie, TVShow); use Match to branch on it.
type Item interface {
	Kind() media.Type
	// ExternalID is the bare catalog id: "550" or "OL82586W".
	ExternalID() string
	DisplayTitle() string
	// ReleaseYear is 0 when unknown.
	ReleaseYear() int
	// PosterRef is the opaque reference stored with a tracked item and
	// resolved later by Images.PosterURL.
	PosterRef() string

	sealed()
}

// Genre is a video catalog genre.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Book is an OpenLibrary work.
type Book struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	Authors          []string `json:"authors,omitempty"`
	CoverID          int64    `json:"coverId,omitempty"`
	CoverEditionKey  string   `json:"coverEditionKey,omitempty"`
	EditionKeys      []string `json:"editionKeys,omitempty"`
	ISBNs            []string `json:"isbns,omitempty"`
	FirstPublishYear int      `json:"firstPublishYear,omitempty"`
	Subjects         []string `json:"subjects,omitempty"`
	Description      string   `json:"description,omitempty"`
}

// Movie is a TMDB movie.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview,omitempty"`
	ReleaseDate string  `json:"releaseDate,omitempty"`
	PosterPath  string  `json:"posterPath,omitempty"`
	GenreIDs    []int64 `json:"genreIds,omitempty"`
	Genres      []Genre `json:"genres,omitempty"`
	VoteAverage float64 `json:"voteAverage,omitempty"`
}

// TVShow is a TMDB TV show.
type TVShow struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview,omitempty"`
	FirstAirDate string  `json:"firstAirDate,omitempty"`
	PosterPath   string  `json:"posterPath,omitempty"`
	GenreIDs     []int64 `json:"genreIds,omitempty"`
	Genres       []Genre `json:"genres,omitempty"`
	VoteAverage  float64 `json:"voteAverage,omitempty"`
}

func (Book) Kind() media.Type   { return media.TypeBook }
func (Movie) Kind() media.Type  { return media.TypeMovie }
func (TVShow) Kind() media.Type { return media.TypeTVShow }

func (Book) sealed()   {}
func (Movie) sealed()  {}
func (TVShow) sealed() {}

func (b Book) ExternalID() string   { return mediaid.BookWorkID(b.Key) }
func (m Movie) ExternalID() string  { return strconv.FormatInt(m.ID, 10) }
func (s TVShow) ExternalID() string { return strconv.FormatInt(s.ID, 10) }

func (b Book) DisplayTitle() string   { return b.Title }
func (m Movie) DisplayTitle() string  { return m.Title }
func (s TVShow) DisplayTitle() string { return s.Name }

func (b Book) ReleaseYear() int   { return b.FirstPublishYear }
func (m Movie) ReleaseYear() int  { return yearOf(m.ReleaseDate) }
func (s TVShow) ReleaseYear() int { return yearOf(s.FirstAirDate) }

func (m Movie) PosterRef() string  { return m.PosterPath }
func (s TVShow) PosterRef() string { return s.PosterPath }

// PosterRef encodes the best available cover source: the numeric cover id,
// else "olid:<edition>", else "isbn:<isbn>".
func (b Book) PosterRef() string {
	if b.CoverID > 0 {
		return strconv.FormatInt(b.CoverID, 10)
	}
	if olid := b.EditionOLID(); olid != "" {
		return olidPrefix + olid
	}
	if isbn := b.FirstISBN(); isbn != "" {
		return isbnPrefix + isbn
	}
	return ""
}

// EditionOLID returns an edition id (OL..M) taken first from the key path when
// the key names an edition, then from the cover and edition key fields.
func (b Book) EditionOLID() string {
	if olid := editionFromPath(b.Key); olid != "" {
		return olid
	}
	if key := strings.TrimSpace(b.CoverEditionKey); key != "" {
		return key
	}
	for _, key := range b.EditionKeys {
		if key = strings.TrimSpace(key); key != "" {
			return key
		}
	}
	return ""
}

// FirstISBN returns the first non-blank ISBN.
func (b Book) FirstISBN() string {
	for _, isbn := range b.ISBNs {
		if isbn = strings.TrimSpace(isbn); isbn != "" {
			return isbn
		}
	}
	return ""
}

// GenreList returns detail genres, or bare ids when only list data is known.
func (m Movie) GenreList() []Genre { return genreList(m.Genres, m.GenreIDs) }

// GenreList returns detail genres, or bare ids when only list data is known.
func (s TVShow) GenreList() []Genre { return genreList(s.Genres, s.GenreIDs) }

// Match dispatches on the concrete type of item. Adding a media type means
// adding a parameter here, which breaks every caller at compile time.
func Match[T any](item Item, onBook func(Book) T, onMovie func(Movie) T, onTV func(TVShow) T) T {
	switch v := item.(type) {
	case Book:
		return onBook(v)
	case *Book:
		return onBook(*v)
	case Movie:
		return onMovie(v)
	case *Movie:
		return onMovie(*v)
	case TVShow:
		return onTV(v)
	case *TVShow:
		return onTV(*v)
	default:
		var zero T
		return zero
	}
}

// CompoundID returns the `{type}_{externalId}` identifier for item.
func CompoundID(item Item) string {
	return mediaid.Join(item.Kind(), item.ExternalID())
}

func editionFromPath(key string) string {
	key = strings.TrimSpace(key)
	if !strings.HasPrefix(strings.TrimPrefix(key, "/"), "books/") {
		return ""
	}
	olid := key[strings.LastIndex(key, "/")+1:]
	if strings.HasPrefix(olid, "OL") && strings.HasSuffix(olid, "M") {
		return olid
	}
	return ""
}

func genreList(genres []Genre, ids []int64) []Genre {
	if len(genres) > 0 {
		return genres
	}
	out := make([]Genre, 0, len(ids))
	for _, id := range ids {
		out = append(out, Genre{ID: id})
	}
	return out
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
