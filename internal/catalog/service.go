package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mediaminder/internal/catalog/openlibrary"
	"mediaminder/internal/catalog/tmdb"
	"mediaminder/internal/logging"
	"mediaminder/internal/media"
	"mediaminder/internal/mediaid"
	"mediaminder/internal/services"
)

// BookAPI is the subset of the OpenLibrary client the service uses.
type BookAPI interface {
	Search(ctx context.Context, query string) (*openlibrary.SearchResponse, error)
	SearchPublished(ctx context.Context, fromYear, toYear int) (*openlibrary.SearchResponse, error)
	Work(ctx context.Context, key string) (*openlibrary.Work, error)
	Subject(ctx context.Context, subject string, limit int) (*openlibrary.SubjectResponse, error)
}

// VideoAPI is the subset of the TMDB client the service uses.
type VideoAPI interface {
	SearchMovie(ctx context.Context, query string) (*tmdb.Response, error)
	SearchTV(ctx context.Context, query string) (*tmdb.Response, error)
	MovieDetails(ctx context.Context, id int64) (*tmdb.Details, error)
	TVDetails(ctx context.Context, id int64) (*tmdb.Details, error)
	MovieRecommendations(ctx context.Context, id int64) (*tmdb.Response, error)
	TVRecommendations(ctx context.Context, id int64) (*tmdb.Response, error)
	DiscoverMovies(ctx context.Context, opts tmdb.DiscoverOptions) (*tmdb.Response, error)
	DiscoverTV(ctx context.Context, opts tmdb.DiscoverOptions) (*tmdb.Response, error)
}

var (
	_ BookAPI  = (*openlibrary.Client)(nil)
	_ VideoAPI = (*tmdb.Client)(nil)
)

// SearchResult is one page of catalog search output.
type SearchResult struct {
	Items      []Item
	TotalCount int
}

// Service composes both catalogs behind one contract.
type Service struct {
	books  BookAPI
	video  VideoAPI
	images Images
	logger *slog.Logger
	now    func() time.Time

	releaseTTL time.Duration
	releaseMu  sync.Mutex
	releases   map[media.Type]releaseEntry
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the time source used for release windows and caching.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithReleaseTTL overrides how long recent-release lists are reused.
func WithReleaseTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.releaseTTL = ttl
		}
	}
}

// NewService builds a Service over the given catalog clients.
func NewService(books BookAPI, video VideoAPI, images Images, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		books:      books,
		video:      video,
		images:     images,
		logger:     logging.NewComponentLogger(logger, "catalog"),
		now:        time.Now,
		releaseTTL: defaultReleaseTTL,
		releases:   make(map[media.Type]releaseEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Images returns the image resolver used by the service.
func (s *Service) Images() Images {
	return s.images
}

// SearchBooks searches the book catalog.
func (s *Service) SearchBooks(ctx context.Context, query string) (SearchResult, error) {
	resp, err := s.books.Search(ctx, query)
	if err != nil {
		return SearchResult{}, err
	}
	items := make([]Item, 0, len(resp.Docs))
	for _, doc := range resp.Docs {
		items = append(items, bookFromDoc(doc))
	}
	return SearchResult{Items: items, TotalCount: resp.NumFound}, nil
}

// SearchMovies searches the movie catalog.
func (s *Service) SearchMovies(ctx context.Context, query string) (SearchResult, error) {
	resp, err := s.video.SearchMovie(ctx, query)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Items: moviesFrom(resp.Results), TotalCount: resp.TotalResults}, nil
}

// SearchTVShows searches the TV catalog.
func (s *Service) SearchTVShows(ctx context.Context, query string) (SearchResult, error) {
	resp, err := s.video.SearchTV(ctx, query)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Items: showsFrom(resp.Results), TotalCount: resp.TotalResults}, nil
}

// Search dispatches to the catalog for t.
func (s *Service) Search(ctx context.Context, t media.Type, query string) (SearchResult, error) {
	switch t {
	case media.TypeBook:
		return s.SearchBooks(ctx, query)
	case media.TypeMovie:
		return s.SearchMovies(ctx, query)
	case media.TypeTVShow:
		return s.SearchTVShows(ctx, query)
	default:
		return SearchResult{}, services.Wrap(services.ErrValidation, "catalog", "search", fmt.Sprintf("unknown media type %q", t), nil)
	}
}

// BookDetails fetches a work by any accepted key shape.
func (s *Service) BookDetails(ctx context.Context, key string) (Book, error) {
	work, err := s.books.Work(ctx, key)
	if err != nil {
		return Book{}, err
	}
	book := Book{
		Key:              work.Key,
		Title:            work.Title,
		Subjects:         work.Subjects,
		Description:      string(work.Description),
		FirstPublishYear: publishYear(work.FirstPublishDate),
	}
	if book.Key == "" {
		book.Key = mediaid.NormalizeBookKey(key)
	}
	if len(work.Covers) > 0 && work.Covers[0] > 0 {
		book.CoverID = work.Covers[0]
	}
	return book, nil
}

// MovieDetails fetches a movie with its genres.
func (s *Service) MovieDetails(ctx context.Context, id int64) (Movie, error) {
	d, err := s.video.MovieDetails(ctx, id)
	if err != nil {
		return Movie{}, err
	}
	return Movie{
		ID:          d.ID,
		Title:       d.DisplayTitle(),
		Overview:    d.Overview,
		ReleaseDate: d.ReleaseDate,
		PosterPath:  d.PosterPath,
		Genres:      genresFrom(d.Genres),
		VoteAverage: d.VoteAverage,
	}, nil
}

// TVShowDetails fetches a TV show with its genres.
func (s *Service) TVShowDetails(ctx context.Context, id int64) (TVShow, error) {
	d, err := s.video.TVDetails(ctx, id)
	if err != nil {
		return TVShow{}, err
	}
	return TVShow{
		ID:           d.ID,
		Name:         d.DisplayTitle(),
		Overview:     d.Overview,
		FirstAirDate: d.FirstAirDate,
		PosterPath:   d.PosterPath,
		Genres:       genresFrom(d.Genres),
		VoteAverage:  d.VoteAverage,
	}, nil
}

// Details fetches any item by media type and a bare or compound external id.
// Unparseable ids surface as ErrMalformedID.
func (s *Service) Details(ctx context.Context, t media.Type, externalID string) (Item, error) {
	switch t {
	case media.TypeBook:
		return s.BookDetails(ctx, externalID)
	case media.TypeMovie:
		id, err := mediaid.TMDBID(externalID)
		if err != nil {
			return nil, err
		}
		return s.MovieDetails(ctx, id)
	case media.TypeTVShow:
		id, err := mediaid.TMDBID(externalID)
		if err != nil {
			return nil, err
		}
		return s.TVShowDetails(ctx, id)
	default:
		return nil, services.Wrap(services.ErrValidation, "catalog", "details", fmt.Sprintf("unknown media type %q", t), nil)
	}
}

// Genres returns the genres of a movie or TV show.
func (s *Service) Genres(ctx context.Context, t media.Type, externalID string) ([]Genre, error) {
	item, err := s.Details(ctx, t, externalID)
	if err != nil {
		return nil, err
	}
	return Match(item,
		func(Book) []Genre { return nil },
		func(m Movie) []Genre { return m.Genres },
		func(v TVShow) []Genre { return v.Genres },
	), nil
}

// Subjects returns the normalized subject tags of a book.
func (s *Service) Subjects(ctx context.Context, externalID string) ([]string, error) {
	book, err := s.BookDetails(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return normalizeSubjects(book.Subjects), nil
}

// Similar lists items the video catalog recommends for the given title.
func (s *Service) Similar(ctx context.Context, t media.Type, externalID string) ([]Item, error) {
	id, err := mediaid.TMDBID(externalID)
	if err != nil {
		return nil, err
	}
	switch t {
	case media.TypeMovie:
		resp, err := s.video.MovieRecommendations(ctx, id)
		if err != nil {
			return nil, err
		}
		return moviesFrom(resp.Results), nil
	case media.TypeTVShow:
		resp, err := s.video.TVRecommendations(ctx, id)
		if err != nil {
			return nil, err
		}
		return showsFrom(resp.Results), nil
	default:
		return nil, services.Wrap(services.ErrValidation, "catalog", "similar", fmt.Sprintf("no similarity endpoint for %q", t), nil)
	}
}

// ByGenre lists popular items of type t in the given genre.
func (s *Service) ByGenre(ctx context.Context, t media.Type, genreID int64) ([]Item, error) {
	return s.discover(ctx, t, tmdb.DiscoverOptions{GenreID: genreID})
}

// BySubject lists books tagged with subject.
func (s *Service) BySubject(ctx context.Context, subject string, limit int) ([]Item, error) {
	resp, err := s.books.Subject(ctx, subject, limit)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(resp.Works))
	for _, w := range resp.Works {
		authors := make([]string, 0, len(w.Authors))
		for _, a := range w.Authors {
			authors = append(authors, a.Name)
		}
		items = append(items, Book{
			Key:              w.Key,
			Title:            w.Title,
			Authors:          authors,
			CoverID:          w.Cover(),
			CoverEditionKey:  w.CoverEditionKey,
			FirstPublishYear: w.FirstPublishYear,
		})
	}
	return items, nil
}

func (s *Service) discover(ctx context.Context, t media.Type, opts tmdb.DiscoverOptions) ([]Item, error) {
	switch t {
	case media.TypeMovie:
		resp, err := s.video.DiscoverMovies(ctx, opts)
		if err != nil {
			return nil, err
		}
		return moviesFrom(resp.Results), nil
	case media.TypeTVShow:
		resp, err := s.video.DiscoverTV(ctx, opts)
		if err != nil {
			return nil, err
		}
		return showsFrom(resp.Results), nil
	default:
		return nil, services.Wrap(services.ErrValidation, "catalog", "discover", fmt.Sprintf("no discover endpoint for %q", t), nil)
	}
}

func bookFromDoc(doc openlibrary.Doc) Book {
	return Book{
		Key:              doc.Key,
		Title:            doc.Title,
		Authors:          doc.AuthorName,
		CoverID:          doc.CoverI,
		CoverEditionKey:  doc.CoverEditionKey,
		EditionKeys:      doc.EditionKey,
		ISBNs:            doc.ISBN,
		FirstPublishYear: doc.FirstPublishYear,
		Subjects:         doc.Subject,
	}
}

func moviesFrom(results []tmdb.Result) []Item {
	items := make([]Item, 0, len(results))
	for _, r := range results {
		items = append(items, Movie{
			ID:          r.ID,
			Title:       r.DisplayTitle(),
			Overview:    r.Overview,
			ReleaseDate: r.ReleaseDate,
			PosterPath:  r.PosterPath,
			GenreIDs:    r.GenreIDs,
			VoteAverage: r.VoteAverage,
		})
	}
	return items
}

func showsFrom(results []tmdb.Result) []Item {
	items := make([]Item, 0, len(results))
	for _, r := range results {
		items = append(items, TVShow{
			ID:           r.ID,
			Name:         r.DisplayTitle(),
			Overview:     r.Overview,
			FirstAirDate: r.FirstAirDate,
			PosterPath:   r.PosterPath,
			GenreIDs:     r.GenreIDs,
			VoteAverage:  r.VoteAverage,
		})
	}
	return items
}

func genresFrom(in []tmdb.Genre) []Genre {
	out := make([]Genre, 0, len(in))
	for _, g := range in {
		out = append(out, Genre{ID: g.ID, Name: g.Name})
	}
	return out
}

// publishYear reads the year out of dates such as "September 21, 1937" or "1937-09-21".
func publishYear(date string) int {
	fields := strings.Fields(date)
	if len(fields) == 0 {
		return 0
	}
	if last := fields[len(fields)-1]; len(last) == 4 {
		return yearOf(last)
	}
	return yearOf(fields[0])
}

// normalizeSubjects lowercases, trims and dedupes subject tags, keeping first-seen order.
func normalizeSubjects(subjects []string) []string {
	lower := cases.Lower(language.Und)
	seen := make(map[string]struct{}, len(subjects))
	out := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		key := strings.TrimSpace(lower.String(subject))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
