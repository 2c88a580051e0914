package preference

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mediaminder/internal/catalog"
	"mediaminder/internal/logging"
	"mediaminder/internal/media"
)

const defaultConcurrency = 4

// DetailSource provides the per-item catalog data the analyzer scores.
type DetailSource interface {
	Genres(ctx context.Context, t media.Type, externalID string) ([]catalog.Genre, error)
	Subjects(ctx context.Context, externalID string) ([]string, error)
}

// GenreScore is the accumulated weight of one genre within a media type.
type GenreScore struct {
	Type  media.Type `json:"mediaType"`
	ID    int64      `json:"id"`
	Name  string     `json:"name,omitempty"`
	Score float64    `json:"score"`
	Count int        `json:"count"`
}

// SubjectScore is the accumulated weight of one normalized book subject.
type SubjectScore struct {
	Subject string  `json:"subject"`
	Score   float64 `json:"score"`
	Count   int     `json:"count"`
}

// Profile summarizes what the user likes. Genres and Subjects are sorted by
// descending score.
type Profile struct {
	Genres    []GenreScore            `json:"genres"`
	Subjects  []SubjectScore          `json:"subjects"`
	Favorites map[media.Type][]string `json:"favorites"`
}

// Empty reports whether the profile carries no genre or subject signal.
func (p Profile) Empty() bool {
	return len(p.Genres) == 0 && len(p.Subjects) == 0
}

// TopGenre returns the highest-scored genre for t.
func (p Profile) TopGenre(t media.Type) (GenreScore, bool) {
	for _, g := range p.Genres {
		if g.Type == t {
			return g, true
		}
	}
	return GenreScore{}, false
}

// TopSubjects returns up to n subjects in score order.
func (p Profile) TopSubjects(n int) []string {
	out := make([]string, 0, n)
	for _, s := range p.Subjects {
		if len(out) == n {
			break
		}
		out = append(out, s.Subject)
	}
	return out
}

// Analyzer derives a Profile from a tracked-list snapshot.
type Analyzer struct {
	source      DetailSource
	concurrency int
	logger      *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithConcurrency bounds the number of detail fetches in flight.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// NewAnalyzer constructs an Analyzer over source.
func NewAnalyzer(source DetailSource, logger *slog.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		source:      source,
		concurrency: defaultConcurrency,
		logger:      logging.NewComponentLogger(logger, "preference"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type genreKey struct {
	t  media.Type
	id int64
}

type accumulator struct {
	mu       sync.Mutex
	genres   map[genreKey]*GenreScore
	subjects map[string]*SubjectScore
}

func (acc *accumulator) addGenres(t media.Type, genres []catalog.Genre, weight float64) {
	acc.mu.Lock()
	defer acc.mu.Unlock()
	for _, g := range genres {
		key := genreKey{t: t, id: g.ID}
		score, ok := acc.genres[key]
		if !ok {
			score = &GenreScore{Type: t, ID: g.ID}
			acc.genres[key] = score
		}
		if score.Name == "" {
			score.Name = g.Name
		}
		score.Score += weight
		score.Count++
	}
}

func (acc *accumulator) addSubjects(subjects []string, weight float64) {
	lower := cases.Lower(language.Und)
	acc.mu.Lock()
	defer acc.mu.Unlock()
	for _, raw := range subjects {
		subject := strings.TrimSpace(lower.String(raw))
		if subject == "" {
			continue
		}
		score, ok := acc.subjects[subject]
		if !ok {
			score = &SubjectScore{Subject: subject}
			acc.subjects[subject] = score
		}
		score.Score += weight
		score.Count++
	}
}

// Analyze scores the significant items. Detail fetch failures are logged and
// the item is skipped. Accumulation is order independent, so fetches run
// concurrently.
func (a *Analyzer) Analyze(ctx context.Context, items []media.TrackedItem) Profile {
	acc := &accumulator{
		genres:   make(map[genreKey]*GenreScore),
		subjects: make(map[string]*SubjectScore),
	}
	profile := Profile{Favorites: make(map[media.Type][]string)}
	logger := logging.WithContext(ctx, a.logger)

	sem := make(chan struct{}, a.concurrency)
	var wg sync.WaitGroup
	for _, item := range items {
		if !Significant(item) {
			continue
		}
		if Favorite(item) {
			profile.Favorites[item.MediaType] = append(profile.Favorites[item.MediaType], item.ExternalID)
		}
		weight := Weight(item)

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			logging.WarnWithContext(logger, "preference analysis cancelled", "preference_cancelled", logging.Error(ctx.Err()))
			wg.Wait()
			return finish(profile, acc)
		}
		wg.Add(1)
		go func(item media.TrackedItem) {
			defer wg.Done()
			defer func() { <-sem }()
			a.score(ctx, logger, acc, item, weight)
		}(item)
	}
	wg.Wait()
	return finish(profile, acc)
}

func (a *Analyzer) score(ctx context.Context, logger *slog.Logger, acc *accumulator, item media.TrackedItem, weight float64) {
	switch item.MediaType {
	case media.TypeMovie, media.TypeTVShow:
		genres, err := a.source.Genres(ctx, item.MediaType, item.ExternalID)
		if err != nil {
			a.skip(logger, item, err)
			return
		}
		acc.addGenres(item.MediaType, genres, weight)
	case media.TypeBook:
		subjects, err := a.source.Subjects(ctx, item.ExternalID)
		if err != nil {
			a.skip(logger, item, err)
			return
		}
		acc.addSubjects(subjects, weight)
	}
}

func (a *Analyzer) skip(logger *slog.Logger, item media.TrackedItem, err error) {
	logging.WarnWithContext(logger, "detail fetch failed; item skipped", "preference_detail_failed",
		logging.String(logging.FieldMediaType, string(item.MediaType)),
		logging.String(logging.FieldExternalID, item.ExternalID),
		logging.Error(err),
		logging.String(logging.FieldImpact, "item does not contribute to preferences"),
	)
}

func finish(profile Profile, acc *accumulator) Profile {
	acc.mu.Lock()
	defer acc.mu.Unlock()

	profile.Genres = make([]GenreScore, 0, len(acc.genres))
	for _, g := range acc.genres {
		profile.Genres = append(profile.Genres, *g)
	}
	sort.Slice(profile.Genres, func(i, j int) bool {
		a, b := profile.Genres[i], profile.Genres[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.ID < b.ID
	})

	profile.Subjects = make([]SubjectScore, 0, len(acc.subjects))
	for _, s := range acc.subjects {
		profile.Subjects = append(profile.Subjects, *s)
	}
	sort.Slice(profile.Subjects, func(i, j int) bool {
		a, b := profile.Subjects[i], profile.Subjects[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Subject < b.Subject
	})
	return profile
}
