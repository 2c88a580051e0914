package recommend

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"mediaminder/internal/catalog"
	"mediaminder/internal/logging"
	"mediaminder/internal/media"
	"mediaminder/internal/mediaid"
	"mediaminder/internal/preference"
)

const (
	defaultPerTypeLimit = 4
	defaultMaxResults   = 8
	// enoughCandidates stops further queries for a type once reached.
	enoughCandidates = 5
	subjectQueries   = 2
	subjectLimit     = 10
)

// Catalog is the subset of the catalog service the engine queries.
type Catalog interface {
	Similar(ctx context.Context, t media.Type, externalID string) ([]catalog.Item, error)
	ByGenre(ctx context.Context, t media.Type, genreID int64) ([]catalog.Item, error)
	BySubject(ctx context.Context, subject string, limit int) ([]catalog.Item, error)
}

// Profiler derives a preference profile from a tracked-list snapshot.
type Profiler interface {
	Analyze(ctx context.Context, items []media.TrackedItem) preference.Profile
}

// Engine turns a tracked list into a short cross-type list of suggestions.
type Engine struct {
	catalog  Catalog
	profiler Profiler
	images   catalog.Images
	cache    *Cache
	perType  int
	maxTotal int
	pick     func(n int) int
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimits sets the per-type cap and the overall cap.
func WithLimits(perType, maxTotal int) Option {
	return func(e *Engine) {
		if perType > 0 {
			e.perType = perType
		}
		if maxTotal > 0 {
			e.maxTotal = maxTotal
		}
	}
}

// WithPicker replaces the random choice of which favorite seeds the
// similarity query. pick receives n > 0 and returns an index in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(e *Engine) {
		if pick != nil {
			e.pick = pick
		}
	}
}

// NewEngine builds an Engine. cache may be nil to disable caching.
func NewEngine(source Catalog, profiler Profiler, images catalog.Images, cache *Cache, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		catalog:  source,
		profiler: profiler,
		images:   images,
		cache:    cache,
		perType:  defaultPerTypeLimit,
		maxTotal: defaultMaxResults,
		pick:     rand.IntN,
		logger:   logging.NewComponentLogger(logger, "recommend"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend returns suggestions for the tracked snapshot. A cached list is
// served when fresh unless force is set. It never fails: lookup errors shrink
// the result and an empty result falls back to the curated defaults, which
// are not cached.
func (e *Engine) Recommend(ctx context.Context, items []media.TrackedItem, force bool) []Recommendation {
	logger := logging.WithContext(ctx, e.logger)
	if !force && e.cache != nil {
		if cached, ok := e.cache.Get(ctx); ok {
			logger.Debug("serving cached recommendations", logging.Int("count", len(cached)))
			return cached
		}
	}

	if len(items) == 0 {
		logger.Debug("no tracked media, using defaults")
		return Defaults(e.images)
	}

	profile := e.profiler.Analyze(ctx, items)
	if err := ctx.Err(); err != nil {
		logging.WarnWithContext(logger, "recommendation run cancelled", "recommend_cancelled",
			logging.Error(err),
			logging.String(logging.FieldImpact, "default recommendations shown"),
		)
		return Defaults(e.images)
	}
	if profile.Empty() {
		logger.Debug("no genre or subject signal, using defaults")
		return Defaults(e.images)
	}

	tracked := trackedSet(items)
	var combined []Recommendation
	for _, t := range []media.Type{media.TypeMovie, media.TypeTVShow, media.TypeBook} {
		var candidates []catalog.Item
		if t == media.TypeBook {
			candidates = e.bookCandidates(ctx, logger, profile)
		} else {
			candidates = e.videoCandidates(ctx, logger, t, profile)
		}
		recs := e.finalize(candidates, tracked)
		logger.Debug("collected recommendations",
			logging.String(logging.FieldMediaType, string(t)),
			logging.Int("candidates", len(candidates)),
			logging.Int("count", len(recs)),
		)
		combined = append(combined, recs...)
	}

	if len(combined) == 0 {
		logger.Info("no recommendations found, using defaults")
		return Defaults(e.images)
	}
	if len(combined) > e.maxTotal {
		combined = combined[:e.maxTotal]
	}
	if e.cache != nil {
		e.cache.Put(ctx, combined)
	}
	return combined
}

func (e *Engine) videoCandidates(ctx context.Context, logger *slog.Logger, t media.Type, profile preference.Profile) []catalog.Item {
	favorites := profile.Favorites[t]
	genre, hasGenre := profile.TopGenre(t)
	if len(favorites) == 0 && !hasGenre {
		return nil
	}

	var merged candidateSet
	if len(favorites) > 0 {
		seed := favorites[e.pick(len(favorites))]
		items, err := e.catalog.Similar(ctx, t, seed)
		if err != nil {
			e.degrade(logger, "similar", t, err, logging.String(logging.FieldExternalID, seed))
		}
		merged.add(items)
	}
	if merged.len() < enoughCandidates && hasGenre {
		items, err := e.catalog.ByGenre(ctx, t, genre.ID)
		if err != nil {
			e.degrade(logger, "genre", t, err, logging.Int64("genre_id", genre.ID))
		}
		merged.add(items)
	}
	return merged.items
}

func (e *Engine) bookCandidates(ctx context.Context, logger *slog.Logger, profile preference.Profile) []catalog.Item {
	var merged candidateSet
	for _, subject := range profile.TopSubjects(subjectQueries) {
		if merged.len() >= enoughCandidates {
			break
		}
		items, err := e.catalog.BySubject(ctx, subject, subjectLimit)
		if err != nil {
			e.degrade(logger, "subject", media.TypeBook, err, logging.String("subject", subject))
			continue
		}
		merged.add(items)
	}
	return merged.items
}

func (e *Engine) finalize(candidates []catalog.Item, tracked map[string]struct{}) []Recommendation {
	out := make([]Recommendation, 0, e.perType)
	for _, item := range candidates {
		if len(out) == e.perType {
			break
		}
		if isTracked(tracked, item) {
			continue
		}
		out = append(out, fromItem(item, e.images))
	}
	return out
}

func (e *Engine) degrade(logger *slog.Logger, source string, t media.Type, err error, attrs ...logging.Attr) {
	attrs = append(attrs,
		logging.String(logging.FieldMediaType, string(t)),
		logging.String("source", source),
		logging.Error(err),
		logging.String(logging.FieldImpact, "fewer recommendations for this media type"),
	)
	logging.WarnWithContext(logger, "recommendation lookup failed", "recommend_lookup_failed", attrs...)
}

// candidateSet merges result lists, keeping the first occurrence of each id.
type candidateSet struct {
	seen  map[string]struct{}
	items []catalog.Item
}

func (s *candidateSet) add(items []catalog.Item) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	for _, item := range items {
		if item == nil {
			continue
		}
		key := catalog.CompoundID(item)
		if _, dup := s.seen[key]; dup {
			continue
		}
		s.seen[key] = struct{}{}
		s.items = append(s.items, item)
	}
}

func (s *candidateSet) len() int {
	return len(s.items)
}

// trackedSet indexes every tracked external id in its bare, compound and
// (for books) work-id forms. Bare ids are not scoped by type.
func trackedSet(items []media.TrackedItem) map[string]struct{} {
	set := make(map[string]struct{}, len(items)*3)
	for _, item := range items {
		for _, id := range idForms(item.MediaType, item.ExternalID) {
			set[id] = struct{}{}
		}
	}
	return set
}

func isTracked(set map[string]struct{}, item catalog.Item) bool {
	forms := idForms(item.Kind(), item.ExternalID())
	if b, ok := item.(catalog.Book); ok {
		forms = append(forms, b.Key)
	}
	for _, id := range forms {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}

func idForms(t media.Type, externalID string) []string {
	forms := make([]string, 0, 4)
	if externalID == "" {
		return forms
	}
	forms = append(forms, externalID, mediaid.Join(t, externalID))
	if t == media.TypeBook {
		if work := mediaid.BookWorkID(externalID); work != "" && work != externalID {
			forms = append(forms, work, mediaid.Join(t, work))
		}
	}
	return forms
}
