package detailcache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"mediaminder/internal/catalog"
	"mediaminder/internal/logging"
	"mediaminder/internal/media"
	"mediaminder/internal/mediaid"
)

// Upstream fetches genre and subject lists from the catalogs.
type Upstream interface {
	Genres(ctx context.Context, t media.Type, externalID string) ([]catalog.Genre, error)
	Subjects(ctx context.Context, externalID string) ([]string, error)
}

// Source serves detail lookups from the store while entries are younger than
// the TTL and falls through to upstream otherwise. Store failures never fail
// a lookup.
type Source struct {
	store    *Store
	upstream Upstream
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithClock overrides the time source used for freshness checks.
func WithClock(now func() time.Time) SourceOption {
	return func(s *Source) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSource decorates upstream with store.
func NewSource(store *Store, upstream Upstream, ttl time.Duration, logger *slog.Logger, opts ...SourceOption) *Source {
	s := &Source{
		store:    store,
		upstream: upstream,
		ttl:      ttl,
		now:      time.Now,
		logger:   logging.NewComponentLogger(logger, "detailcache"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Genres returns the genres of a movie or TV show.
func (s *Source) Genres(ctx context.Context, t media.Type, externalID string) ([]catalog.Genre, error) {
	key := cacheKey(t, externalID)
	if entry, ok := s.lookup(ctx, t, key); ok {
		return entry.Genres, nil
	}
	genres, err := s.upstream.Genres(ctx, t, externalID)
	if err != nil {
		return nil, err
	}
	s.store.put(ctx, s.logger, Entry{MediaType: t, ExternalID: key, Genres: genres, FetchedAt: s.now()})
	return genres, nil
}

// Subjects returns the subjects of a book.
func (s *Source) Subjects(ctx context.Context, externalID string) ([]string, error) {
	key := cacheKey(media.TypeBook, externalID)
	if entry, ok := s.lookup(ctx, media.TypeBook, key); ok {
		return entry.Subjects, nil
	}
	subjects, err := s.upstream.Subjects(ctx, externalID)
	if err != nil {
		return nil, err
	}
	s.store.put(ctx, s.logger, Entry{MediaType: media.TypeBook, ExternalID: key, Subjects: subjects, FetchedAt: s.now()})
	return subjects, nil
}

func (s *Source) lookup(ctx context.Context, t media.Type, key string) (Entry, bool) {
	if s.store == nil || key == "" {
		return Entry{}, false
	}
	entry, ok, err := s.store.Get(ctx, t, key)
	if err != nil {
		s.logger.Debug("detail cache read failed", logging.String(logging.FieldMediaType, string(t)), logging.String(logging.FieldExternalID, key), logging.Error(err))
		return Entry{}, false
	}
	if !ok || s.now().Sub(entry.FetchedAt) >= s.ttl {
		return Entry{}, false
	}
	return entry, true
}

func (st *Store) put(ctx context.Context, logger *slog.Logger, entry Entry) {
	if st == nil || entry.ExternalID == "" {
		return
	}
	if err := st.Put(ctx, entry); err != nil {
		logging.WarnWithContext(logger, "detail cache write failed", "detail_cache_write_failed",
			logging.String(logging.FieldMediaType, string(entry.MediaType)),
			logging.String(logging.FieldExternalID, entry.ExternalID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'mediaminder cache clear' if the database is corrupt"),
			logging.String(logging.FieldImpact, "details will be fetched again next time"),
		)
	}
}

// cacheKey folds the accepted id shapes onto one row: bare work ids for
// books and numeric ids for video.
func cacheKey(t media.Type, externalID string) string {
	if t == media.TypeBook {
		return mediaid.BookWorkID(externalID)
	}
	id, err := mediaid.TMDBID(externalID)
	if err != nil {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
