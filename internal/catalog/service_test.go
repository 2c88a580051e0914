package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mediaminder/internal/catalog"
	"mediaminder/internal/catalog/openlibrary"
	"mediaminder/internal/catalog/tmdb"
	"mediaminder/internal/media"
	"mediaminder/internal/services"
)

type fakeBooks struct {
	mu          sync.Mutex
	search      *openlibrary.SearchResponse
	published   *openlibrary.SearchResponse
	publishErr  error
	work        *openlibrary.Work
	subject     *openlibrary.SubjectResponse
	workKeys    []string
	publishArgs [][2]int
}

func (f *fakeBooks) Search(context.Context, string) (*openlibrary.SearchResponse, error) {
	if f.search == nil {
		return &openlibrary.SearchResponse{Docs: []openlibrary.Doc{}}, nil
	}
	return f.search, nil
}

func (f *fakeBooks) SearchPublished(_ context.Context, from, to int) (*openlibrary.SearchResponse, error) {
	f.mu.Lock()
	f.publishArgs = append(f.publishArgs, [2]int{from, to})
	f.mu.Unlock()
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	return f.published, nil
}

func (f *fakeBooks) Work(_ context.Context, key string) (*openlibrary.Work, error) {
	f.mu.Lock()
	f.workKeys = append(f.workKeys, key)
	f.mu.Unlock()
	if f.work == nil {
		return nil, services.Wrap(services.ErrNotFound, "openlibrary", "work", "missing", nil)
	}
	return f.work, nil
}

func (f *fakeBooks) Subject(context.Context, string, int) (*openlibrary.SubjectResponse, error) {
	return f.subject, nil
}

type fakeVideo struct {
	mu            sync.Mutex
	details       map[int64]*tmdb.Details
	discover      *tmdb.Response
	discoverErr   error
	discoverCalls []tmdb.DiscoverOptions
	similar       *tmdb.Response
}

func (f *fakeVideo) SearchMovie(context.Context, string) (*tmdb.Response, error) {
	return &tmdb.Response{Results: []tmdb.Result{{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-31", GenreIDs: []int64{28}}}, TotalResults: 1}, nil
}

func (f *fakeVideo) SearchTV(context.Context, string) (*tmdb.Response, error) {
	return &tmdb.Response{Results: []tmdb.Result{{ID: 1399, Name: "Game of Thrones", FirstAirDate: "2011-04-17"}}, TotalResults: 1}, nil
}

func (f *fakeVideo) MovieDetails(_ context.Context, id int64) (*tmdb.Details, error) {
	return f.lookup(id)
}

func (f *fakeVideo) TVDetails(_ context.Context, id int64) (*tmdb.Details, error) {
	return f.lookup(id)
}

func (f *fakeVideo) lookup(id int64) (*tmdb.Details, error) {
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	return nil, services.Wrap(services.ErrNotFound, "tmdb", "details", "missing", nil)
}

func (f *fakeVideo) MovieRecommendations(context.Context, int64) (*tmdb.Response, error) {
	return f.similar, nil
}

func (f *fakeVideo) TVRecommendations(context.Context, int64) (*tmdb.Response, error) {
	return f.similar, nil
}

func (f *fakeVideo) DiscoverMovies(_ context.Context, opts tmdb.DiscoverOptions) (*tmdb.Response, error) {
	return f.recordDiscover(opts)
}

func (f *fakeVideo) DiscoverTV(_ context.Context, opts tmdb.DiscoverOptions) (*tmdb.Response, error) {
	return f.recordDiscover(opts)
}

func (f *fakeVideo) recordDiscover(opts tmdb.DiscoverOptions) (*tmdb.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discoverCalls = append(f.discoverCalls, opts)
	if f.discoverErr != nil {
		return nil, f.discoverErr
	}
	return f.discover, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newService(books *fakeBooks, video *fakeVideo, clock *fakeClock) *catalog.Service {
	return catalog.NewService(books, video, images, nil, catalog.WithClock(clock.Now))
}

func TestDetailsAcceptsCompoundIDs(t *testing.T) {
	video := &fakeVideo{details: map[int64]*tmdb.Details{
		603: {ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-31", Genres: []tmdb.Genre{{ID: 28, Name: "Action"}}},
	}}
	svc := newService(&fakeBooks{}, video, &fakeClock{now: time.Now()})

	item, err := svc.Details(context.Background(), media.TypeMovie, "movie_603")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	movie, ok := item.(catalog.Movie)
	if !ok {
		t.Fatalf("expected Movie, got %T", item)
	}
	if movie.Title != "The Matrix" || movie.ReleaseYear() != 1999 {
		t.Fatalf("unexpected movie %+v", movie)
	}

	genres, err := svc.Genres(context.Background(), media.TypeMovie, "603")
	if err != nil {
		t.Fatalf("Genres: %v", err)
	}
	if len(genres) != 1 || genres[0].Name != "Action" {
		t.Fatalf("unexpected genres %+v", genres)
	}
}

func TestDetailsErrors(t *testing.T) {
	svc := newService(&fakeBooks{}, &fakeVideo{}, &fakeClock{now: time.Now()})

	if _, err := svc.Details(context.Background(), media.TypeMovie, "movie_abc"); !errors.Is(err, services.ErrMalformedID) {
		t.Fatalf("expected malformed id, got %v", err)
	}
	if _, err := svc.Details(context.Background(), media.TypeTVShow, "42"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Details(context.Background(), media.Type("comic"), "42"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBookDetailsAndSubjects(t *testing.T) {
	books := &fakeBooks{work: &openlibrary.Work{
		Title:            "The Hobbit",
		Description:      "There and back again",
		Subjects:         []string{"Fantasy", " fantasy ", "Dragons", ""},
		Covers:           []int64{14627509},
		FirstPublishDate: "September 21, 1937",
	}}
	svc := newService(books, &fakeVideo{}, &fakeClock{now: time.Now()})

	book, err := svc.BookDetails(context.Background(), "OL262758W")
	if err != nil {
		t.Fatalf("BookDetails: %v", err)
	}
	if book.Key != "/works/OL262758W" {
		t.Fatalf("expected normalized key fallback, got %q", book.Key)
	}
	if book.FirstPublishYear != 1937 || book.CoverID != 14627509 {
		t.Fatalf("unexpected book %+v", book)
	}
	if book.ExternalID() != "OL262758W" {
		t.Fatalf("unexpected external id %q", book.ExternalID())
	}

	subjects, err := svc.Subjects(context.Background(), "book_OL262758W")
	if err != nil {
		t.Fatalf("Subjects: %v", err)
	}
	if len(subjects) != 2 || subjects[0] != "fantasy" || subjects[1] != "dragons" {
		t.Fatalf("unexpected subjects %v", subjects)
	}
}

func TestSearchEmptyResultIsNotAnError(t *testing.T) {
	svc := newService(&fakeBooks{}, &fakeVideo{}, &fakeClock{now: time.Now()})
	res, err := svc.SearchBooks(context.Background(), "zzzzzz")
	if err != nil {
		t.Fatalf("SearchBooks: %v", err)
	}
	if len(res.Items) != 0 || res.TotalCount != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}

	res, err = svc.Search(context.Background(), media.TypeTVShow, "thrones")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].DisplayTitle() != "Game of Thrones" {
		t.Fatalf("unexpected tv results %+v", res.Items)
	}
}

func TestBySubjectUsesEitherCoverField(t *testing.T) {
	books := &fakeBooks{subject: &openlibrary.SubjectResponse{Works: []openlibrary.SubjectWork{
		{Key: "/works/OL1W", Title: "A", CoverID: 11},
		{Key: "/works/OL2W", Title: "B", CoverI: 22, Authors: []openlibrary.SubjectAuthor{{Name: "Ann"}}},
	}}}
	svc := newService(books, &fakeVideo{}, &fakeClock{now: time.Now()})

	items, err := svc.BySubject(context.Background(), "fantasy", 10)
	if err != nil {
		t.Fatalf("BySubject: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].PosterRef() != "11" || items[1].PosterRef() != "22" {
		t.Fatalf("unexpected poster refs %q %q", items[0].PosterRef(), items[1].PosterRef())
	}
	if b := items[1].(catalog.Book); len(b.Authors) != 1 || b.Authors[0] != "Ann" {
		t.Fatalf("unexpected authors %+v", b.Authors)
	}
}

func TestRecentReleasesFailSoftPerType(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)}
	books := &fakeBooks{publishErr: services.Wrap(services.ErrUnavailable, "openlibrary", "search", "down", nil)}
	video := &fakeVideo{discover: &tmdb.Response{Results: []tmdb.Result{{ID: 1, Title: "New", ReleaseDate: "2024-05-01"}}}}
	svc := newService(books, video, clock)

	all := svc.AllRecentReleases(context.Background(), false)
	if got := all[media.TypeBook]; got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil book list, got %v", got)
	}
	if len(all[media.TypeMovie]) != 1 || len(all[media.TypeTVShow]) != 1 {
		t.Fatalf("expected video releases, got %v", all)
	}

	if len(books.publishArgs) != 1 || books.publishArgs[0] != [2]int{2023, 2024} {
		t.Fatalf("unexpected book window %v", books.publishArgs)
	}
	from := video.discoverCalls[0].From
	if !from.Equal(time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected discover window start %v", from)
	}
}

func TestRecentReleasesCache(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)}
	video := &fakeVideo{discover: &tmdb.Response{Results: []tmdb.Result{{ID: 1, Title: "New"}}}}
	svc := newService(&fakeBooks{}, video, clock)
	ctx := context.Background()

	svc.RecentReleases(ctx, media.TypeMovie, false)
	svc.RecentReleases(ctx, media.TypeMovie, false)
	if len(video.discoverCalls) != 1 {
		t.Fatalf("expected cached second call, got %d upstream calls", len(video.discoverCalls))
	}

	svc.RecentReleases(ctx, media.TypeMovie, true)
	if len(video.discoverCalls) != 2 {
		t.Fatalf("expected force refresh, got %d upstream calls", len(video.discoverCalls))
	}

	clock.Advance(59 * time.Minute)
	svc.RecentReleases(ctx, media.TypeMovie, false)
	if len(video.discoverCalls) != 2 {
		t.Fatalf("expected cache hit within ttl, got %d upstream calls", len(video.discoverCalls))
	}

	clock.Advance(2 * time.Minute)
	svc.RecentReleases(ctx, media.TypeMovie, false)
	if len(video.discoverCalls) != 3 {
		t.Fatalf("expected refetch after ttl, got %d upstream calls", len(video.discoverCalls))
	}
}

func TestRecentReleasesFailureIsNotCached(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	video := &fakeVideo{discoverErr: errors.New("boom")}
	svc := newService(&fakeBooks{}, video, clock)

	if got := svc.RecentReleases(context.Background(), media.TypeTVShow, false); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
	video.discoverErr = nil
	video.discover = &tmdb.Response{Results: []tmdb.Result{{ID: 7, Name: "Show"}}}
	if got := svc.RecentReleases(context.Background(), media.TypeTVShow, false); len(got) != 1 {
		t.Fatalf("expected retry after failure, got %v", got)
	}
}

func TestHighlights(t *testing.T) {
	releases := map[media.Type][]catalog.Item{
		media.TypeMovie: {
			catalog.Movie{ID: 1, ReleaseDate: "2023-01-01"},
			catalog.Movie{ID: 2, ReleaseDate: ""},
			catalog.Movie{ID: 3, ReleaseDate: "2024-03-01"},
			catalog.Movie{ID: 4, ReleaseDate: "2025-01-01"},
		},
		media.TypeTVShow: {
			catalog.TVShow{ID: 5, FirstAirDate: "2024-01-01"},
			catalog.TVShow{ID: 6, FirstAirDate: "2022-01-01"},
			catalog.TVShow{ID: 7, FirstAirDate: "2025-01-01"},
		},
		media.TypeBook: {
			catalog.Book{Key: "/works/OL1W", FirstPublishYear: 2024},
		},
	}
	got := catalog.Highlights(releases)
	want := []string{"movie_3", "tvshow_5", "book_OL1W", "movie_1", "tvshow_6", "movie_2"}
	if len(got) != len(want) {
		t.Fatalf("expected %d highlights, got %d", len(want), len(got))
	}
	for i, item := range got {
		if id := catalog.CompoundID(item); id != want[i] {
			t.Fatalf("position %d: got %s want %s", i, id, want[i])
		}
	}
}
