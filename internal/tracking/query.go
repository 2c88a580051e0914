package tracking

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"mediaminder/internal/media"
	"mediaminder/internal/mediaid"
)

// SortField selects the ordering of Filter results.
type SortField string

// SortOrder selects ascending or descending order.
type SortOrder string

const (
	SortUpdatedAt SortField = "updated_at"
	SortAddedAt   SortField = "added_at"
	SortTitle     SortField = "title"
	SortRating    SortField = "rating"

	OrderDesc SortOrder = "desc"
	OrderAsc  SortOrder = "asc"
)

// ParseSortField accepts the field names and their camelCase spellings.
func ParseSortField(raw string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "updated", "updated_at", "updatedat":
		return SortUpdatedAt, nil
	case "added", "added_at", "addedat":
		return SortAddedAt, nil
	case "title":
		return SortTitle, nil
	case "rating":
		return SortRating, nil
	default:
		return "", fmt.Errorf("unknown sort field %q", raw)
	}
}

// ParseSortOrder accepts asc and desc.
func ParseSortOrder(raw string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "desc":
		return OrderDesc, nil
	case "asc":
		return OrderAsc, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", raw)
	}
}

// Filter narrows and orders the tracked list. Zero values mean all statuses,
// all types, most recently updated first.
type Filter struct {
	Status media.Status
	Type   media.Type
	Sort   SortField
	Order  SortOrder
}

// All returns a copy of every tracked item.
func (s *Store) All() []media.TrackedItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]media.TrackedItem(nil), s.items...)
}

// ByStatus returns the items with status.
func (s *Store) ByStatus(status media.Status) []media.TrackedItem {
	return s.Filter(Filter{Status: status})
}

// IsTracked reports whether an item of type t matches externalID, which may
// be bare or compound.
func (s *Store) IsTracked(t media.Type, externalID string) bool {
	_, ok := s.Item(t, externalID)
	return ok
}

// Item finds the tracked item of type t matching externalID.
func (s *Store) Item(t media.Type, externalID string) (media.TrackedItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findExternal(s.items, t, externalID)
}

// Lookup resolves an id handed in by a caller. A compound id only matches
// an item of its own media type; anything else is tried as a local id, then
// as a bare external id of any type.
func (s *Store) Lookup(id string) (media.TrackedItem, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return media.TrackedItem{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := mediaid.Split(id); ok {
		return findExternal(s.items, c.Type, c.ExternalID)
	}
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	for _, item := range s.items {
		if mediaid.Matches(item.MediaType, item.ExternalID, id) {
			return item, true
		}
	}
	return media.TrackedItem{}, false
}

// Counts returns the number of tracked items per media type.
func (s *Store) Counts() map[media.Type]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[media.Type]int, len(media.AllTypes))
	for _, t := range media.AllTypes {
		counts[t] = 0
	}
	for _, item := range s.items {
		counts[item.MediaType]++
	}
	return counts
}

// Filter returns the matching items in the requested order.
func (s *Store) Filter(f Filter) []media.TrackedItem {
	s.mu.RLock()
	out := make([]media.TrackedItem, 0, len(s.items))
	for _, item := range s.items {
		if f.Status != "" && item.Status != f.Status {
			continue
		}
		if f.Type != "" && item.MediaType != f.Type {
			continue
		}
		out = append(out, item)
	}
	s.mu.RUnlock()

	sortItems(out, f.Sort, f.Order)
	return out
}

func sortItems(items []media.TrackedItem, field SortField, order SortOrder) {
	if field == "" {
		field = SortUpdatedAt
	}
	desc := order != OrderAsc
	titles := collate.New(language.Und, collate.IgnoreCase, collate.IgnoreDiacritics)

	compare := func(a, b media.TrackedItem) int {
		switch field {
		case SortAddedAt:
			return a.AddedAt.Compare(b.AddedAt)
		case SortTitle:
			return titles.CompareString(a.Title, b.Title)
		case SortRating:
			return a.Rating - b.Rating
		default:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		c := compare(items[i], items[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func findExternal(items []media.TrackedItem, t media.Type, externalID string) (media.TrackedItem, bool) {
	if strings.TrimSpace(externalID) == "" {
		return media.TrackedItem{}, false
	}
	for _, item := range items {
		if item.MediaType == t && mediaid.Matches(t, item.ExternalID, externalID) {
			return item, true
		}
	}
	return media.TrackedItem{}, false
}
