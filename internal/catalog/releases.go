package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"mediaminder/internal/catalog/tmdb"
	"mediaminder/internal/logging"
	"mediaminder/internal/media"
	"mediaminder/internal/services"
)

const (
	defaultReleaseTTL = time.Hour
	releaseWindow     = 3 // months
	highlightLimit    = 6
)

var highlightQuota = map[media.Type]int{
	media.TypeMovie:  3,
	media.TypeTVShow: 2,
	media.TypeBook:   2,
}

type releaseEntry struct {
	items     []Item
	fetchedAt time.Time
}

// RecentReleases lists newly published items of type t. Upstream failures
// are logged and yield an empty list. Results are reused for an hour unless
// force is set.
func (s *Service) RecentReleases(ctx context.Context, t media.Type, force bool) []Item {
	now := s.now()
	if !force {
		s.releaseMu.Lock()
		entry, ok := s.releases[t]
		s.releaseMu.Unlock()
		if ok && now.Sub(entry.fetchedAt) < s.releaseTTL {
			return entry.items
		}
	}

	items, err := s.fetchReleases(ctx, t, now)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "recent releases unavailable",
			"recent_releases_failed",
			logging.String(logging.FieldMediaType, string(t)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check catalog connectivity"),
			logging.String(logging.FieldImpact, "new releases omitted for this media type"),
		)
		return []Item{}
	}

	s.releaseMu.Lock()
	s.releases[t] = releaseEntry{items: items, fetchedAt: now}
	s.releaseMu.Unlock()
	return items
}

// AllRecentReleases collects recent releases for every media type.
func (s *Service) AllRecentReleases(ctx context.Context, force bool) map[media.Type][]Item {
	out := make(map[media.Type][]Item, len(media.AllTypes))
	for _, t := range media.AllTypes {
		out[t] = s.RecentReleases(ctx, t, force)
	}
	return out
}

// Highlights picks a short mixed list of new releases, newest first.
func Highlights(releases map[media.Type][]Item) []Item {
	picked := make([]Item, 0, highlightLimit+1)
	for _, t := range media.AllTypes {
		items := releases[t]
		if quota := highlightQuota[t]; len(items) > quota {
			items = items[:quota]
		}
		picked = append(picked, items...)
	}
	sort.SliceStable(picked, func(i, j int) bool {
		yi, yj := picked[i].ReleaseYear(), picked[j].ReleaseYear()
		if yi == 0 || yj == 0 {
			return yi != 0 && yj == 0
		}
		return yi > yj
	})
	if len(picked) > highlightLimit {
		picked = picked[:highlightLimit]
	}
	return picked
}

func (s *Service) fetchReleases(ctx context.Context, t media.Type, now time.Time) ([]Item, error) {
	switch t {
	case media.TypeBook:
		year := now.Year()
		resp, err := s.books.SearchPublished(ctx, year-1, year)
		if err != nil {
			return nil, err
		}
		items := make([]Item, 0, len(resp.Docs))
		for _, doc := range resp.Docs {
			items = append(items, bookFromDoc(doc))
		}
		return items, nil
	case media.TypeMovie, media.TypeTVShow:
		return s.discover(ctx, t, tmdb.DiscoverOptions{
			From: now.AddDate(0, -releaseWindow, 0),
			To:   now,
		})
	default:
		return nil, services.Wrap(services.ErrValidation, "catalog", "recent releases", fmt.Sprintf("unknown media type %q", t), nil)
	}
}
